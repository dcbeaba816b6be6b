package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mannsakha/sakha-server/internal/chat"
)

type chatReq struct {
	Message string `json:"message"`
}

// Chat is the single support endpoint: one message in, one reply out. The
// resolver guarantees a reply for any valid message, so the only client
// errors here are malformed bodies.
func (h *Handler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message format"})
		return
	}

	reply, err := h.ChatSvc.Resolve(c.Request.Context(), c.ClientIP(), req.Message)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
			return
		}
		h.Logger.Error("resolve failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	resp := gin.H{
		"reply":     reply.Text,
		"source":    reply.Source,
		"timestamp": reply.Timestamp.Format(time.RFC3339),
	}
	if reply.Category != "" {
		resp["category"] = string(reply.Category)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339),
	})
}
