package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mannsakha/sakha-server/internal/auth"
	"github.com/mannsakha/sakha-server/internal/httpapi/middleware"
	"github.com/mannsakha/sakha-server/internal/models"
	"github.com/mannsakha/sakha-server/internal/store/rabbitmq"
)

const tokenTTL = 7 * 24 * time.Hour

func (h *Handler) setSessionCookie(c *gin.Context, userID uint64) error {
	token, err := auth.SignJWT(userID, h.Cfg.JWTSecret, tokenTTL)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("token", token, int(tokenTTL.Seconds()), "/", "", false, true)
	return nil
}

func (h *Handler) queueEmail(c *gin.Context, job rabbitmq.EmailJob) {
	if h.Mail == nil {
		return
	}
	if err := h.Mail.PublishEmail(c.Request.Context(), job); err != nil {
		h.Logger.Warn("email job not queued",
			zap.String("kind", job.Kind),
			zap.Error(err))
	}
}

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Signup(c *gin.Context) {
	var req signupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
		return
	}

	var count int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Provider:     "local",
	}
	if err := h.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
		return
	}

	if err := h.setSessionCookie(c, user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	h.queueEmail(c, rabbitmq.EmailJob{Kind: rabbitmq.EmailWelcome, To: user.Email, Name: user.Name})

	c.JSON(http.StatusCreated, gin.H{"message": "Signup successful"})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := h.setSessionCookie(c, user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful"})
}

func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func (h *Handler) Me(c *gin.Context) {
	uid, ok := c.Get(middleware.UserIDKey)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user models.User
	if err := h.DB.First(&user, uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}

func (h *Handler) GoogleLogin(c *gin.Context) {
	if h.Google == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google login not configured"})
		return
	}
	state := uuid.NewString()
	c.SetCookie("oauth_state", state, 300, "/", "", false, true)
	c.Redirect(http.StatusFound, h.Google.AuthURL(state))
}

func (h *Handler) GoogleCallback(c *gin.Context) {
	if h.Google == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google login not configured"})
		return
	}

	stateCookie, err := c.Cookie("oauth_state")
	if err != nil || stateCookie == "" || stateCookie != c.Query("state") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid oauth state"})
		return
	}
	c.SetCookie("oauth_state", "", -1, "/", "", false, true)

	profile, err := h.Google.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		h.Logger.Warn("google exchange failed", zap.Error(err))
		c.Redirect(http.StatusFound, "/login.html")
		return
	}

	var user models.User
	err = h.DB.Where("email = ?", profile.Email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Name:     profile.Name,
			Email:    profile.Email,
			GoogleID: profile.ID,
			Provider: "google",
		}
		if err := h.DB.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if err := h.setSessionCookie(c, user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.Redirect(http.StatusFound, "/")
}

type forgotReq struct {
	Email string `json:"email"`
}

// Forgot always answers the same way so the endpoint can't be used to probe
// which emails exist.
func (h *Handler) Forgot(c *gin.Context) {
	var req forgotReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err == nil && h.Redis != nil {
		token := uuid.NewString()
		if err := h.Redis.SetResetToken(c.Request.Context(), token, user.Email); err != nil {
			h.Logger.Warn("reset token not stored", zap.Error(err))
		} else {
			h.queueEmail(c, rabbitmq.EmailJob{Kind: rabbitmq.EmailReset, To: user.Email, Name: user.Name, Token: token})
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a reset email has been sent"})
}

type resetReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *Handler) Reset(c *gin.Context) {
	var req resetReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token and password are required"})
		return
	}
	if h.Redis == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Password reset unavailable"})
		return
	}

	email, err := h.Redis.GetResetToken(c.Request.Context(), req.Token)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if err := h.DB.Model(&models.User{}).Where("email = ?", email).
		Update("password_hash", hash).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	_ = h.Redis.DeleteResetToken(c.Request.Context(), req.Token)

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
