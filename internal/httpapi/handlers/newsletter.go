package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mannsakha/sakha-server/internal/models"
	"github.com/mannsakha/sakha-server/internal/store/rabbitmq"
)

type subscribeReq struct {
	Email string `json:"email"`
}

func (h *Handler) Subscribe(c *gin.Context) {
	var req subscribeReq
	if err := c.ShouldBindJSON(&req); err != nil || !strings.Contains(req.Email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A valid email is required"})
		return
	}

	var count int64
	if err := h.DB.Model(&models.Subscriber{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusOK, gin.H{"message": "Already subscribed"})
		return
	}

	if err := h.DB.Create(&models.Subscriber{Email: req.Email}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	h.queueEmail(c, rabbitmq.EmailJob{Kind: rabbitmq.EmailNewsletter, To: req.Email})

	c.JSON(http.StatusCreated, gin.H{"message": "Subscribed"})
}
