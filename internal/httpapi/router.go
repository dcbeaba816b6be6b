package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mannsakha/sakha-server/internal/config"
	"github.com/mannsakha/sakha-server/internal/httpapi/handlers"
	"github.com/mannsakha/sakha-server/internal/httpapi/middleware"
	"github.com/mannsakha/sakha-server/internal/store/redisstore"
)

func NewRouter(db *gorm.DB, cfg config.Config, rds *redisstore.Store, mail handlers.EmailQueue, logger *zap.Logger) *gin.Engine {
	h := handlers.NewHandler(db, cfg, rds, mail, logger)
	return NewRouterWith(h)
}

// NewRouterWith wires routes around an existing handler. Split out so tests
// can inject a handler with stubbed collaborators.
func NewRouterWith(h *handlers.Handler) *gin.Engine {
	cfg := h.Cfg

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery(h.Logger))
	r.Use(middleware.RequestID())

	// The widget is embedded on arbitrary pages, so the API is open to every
	// origin.
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:           true,
		AllowMethods:              []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:              []string{"Content-Type", "Authorization"},
		OptionsResponseStatusCode: http.StatusOK,
	}))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	api := r.Group("/api")
	api.GET("/health", h.Health)

	chatGroup := api.Group("/")
	if cfg.AuthRequired {
		chatGroup.Use(middleware.AuthRequired(cfg.JWTSecret))
	}
	chatGroup.POST("/chat", h.Chat)

	api.POST("/auth/signup", h.Signup)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout)
	api.POST("/auth/forgot", h.Forgot)
	api.POST("/auth/reset", h.Reset)
	api.GET("/auth/google", h.GoogleLogin)
	api.GET("/auth/google/callback", h.GoogleCallback)

	authed := api.Group("/")
	authed.Use(middleware.AuthRequired(cfg.JWTSecret))
	authed.GET("/me", h.Me)

	api.POST("/newsletter/subscribe", h.Subscribe)

	return r
}
