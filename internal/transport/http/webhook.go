package http

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"totem-quiz-bot/internal/domain"
	"totem-quiz-bot/internal/logger"
	"totem-quiz-bot/internal/telegram"
)

const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookHandler accepts Bot API updates pushed by the platform.
type WebhookHandler struct {
	secret     string
	dispatcher telegram.Dispatcher
	log        *logger.Logger
}

func NewWebhookHandler(secret string, dispatcher telegram.Dispatcher, log *logger.Logger) *WebhookHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &WebhookHandler{secret: secret, dispatcher: dispatcher, log: log.With("component", "webhook")}
}

// Handle acknowledges the update right away; processing continues after the response.
func (h *WebhookHandler) Handle(c *gin.Context) {
	if h.secret != "" && subtle.ConstantTimeCompare([]byte(c.GetHeader(secretHeader)), []byte(h.secret)) != 1 {
		c.Status(http.StatusUnauthorized)
		return
	}

	var upd telegram.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		h.log.Warn("webhook payload rejected", "error", err)
		c.Status(http.StatusBadRequest)
		return
	}

	decoded := telegram.Decode(upd)
	if decoded.Kind != domain.UpdateUnknown {
		h.dispatcher.Dispatch(context.WithoutCancel(c.Request.Context()), decoded)
	}
	c.Status(http.StatusOK)
}
