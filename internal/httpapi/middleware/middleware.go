package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/mannsakha/sakha-server/internal/auth"
)

const (
	UserIDKey    = "user_id"
	RequestIDKey = "request_id"
)

// RequestID tags every request with a ULID for log correlation.
// ulid.Make uses the package-level locked entropy source, so the
// handler is safe for concurrent requests.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = ulid.Make().String()
		}
		c.Set(RequestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// Recovery converts panics into a generic 500 without leaking detail.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", c.GetString(RequestIDKey)))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Server error",
				})
			}
		}()
		c.Next()
	}
}

// AuthRequired accepts the JWT from the token cookie or a bearer header and
// puts the user id on the context.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if v, err := c.Cookie("token"); err == nil {
			token = v
		}
		if token == "" {
			h := c.GetHeader("Authorization")
			if strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimPrefix(h, "Bearer ")
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		uid, err := auth.ParseJWT(token, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(UserIDKey, uid)
		c.Next()
	}
}
