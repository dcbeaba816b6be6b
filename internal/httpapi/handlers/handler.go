package handlers

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mannsakha/sakha-server/internal/ai"
	"github.com/mannsakha/sakha-server/internal/auth"
	"github.com/mannsakha/sakha-server/internal/chat"
	"github.com/mannsakha/sakha-server/internal/config"
	"github.com/mannsakha/sakha-server/internal/fallback"
	"github.com/mannsakha/sakha-server/internal/ratelimit"
	"github.com/mannsakha/sakha-server/internal/store/rabbitmq"
	"github.com/mannsakha/sakha-server/internal/store/redisstore"
)

// EmailQueue is what handlers need from the rabbit publisher. Nil-able so
// the API degrades to no outbound mail instead of refusing to start.
type EmailQueue interface {
	PublishEmail(ctx context.Context, job rabbitmq.EmailJob) error
}

type Handler struct {
	DB      *gorm.DB
	Cfg     config.Config
	Redis   *redisstore.Store
	Mail    EmailQueue
	Google  *auth.GoogleOAuth
	ChatSvc *chat.Service
	Limiter *ratelimit.Limiter
	Logger  *zap.Logger
}

func NewHandler(db *gorm.DB, cfg config.Config, rds *redisstore.Store, mail EmailQueue, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Chain order is the fallback policy: gemini first, then the alternates.
	chain := ai.NewChain(logger, cfg.ProviderTimeout,
		ai.NewGeminiProvider(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.PersonaContext),
		ai.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.PersonaContext),
		ai.NewHuggingFaceProvider(cfg.HuggingFaceURL, cfg.HuggingFaceAPIKey, cfg.PersonaContext),
		ai.NewCohereProvider(cfg.CohereBaseURL, cfg.CohereAPIKey, cfg.CohereModel, cfg.PersonaContext),
	)

	limiter := ratelimit.New(cfg.RateWindow, cfg.RateMaxHits)
	limiter.StartSweeper(cfg.RateWindow)

	engine := fallback.NewEngine(nil)
	svc := chat.NewService(chain, limiter, engine, logger)

	return &Handler{
		DB:      db,
		Cfg:     cfg,
		Redis:   rds,
		Mail:    mail,
		Google:  auth.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL),
		ChatSvc: svc,
		Limiter: limiter,
		Logger:  logger,
	}
}
