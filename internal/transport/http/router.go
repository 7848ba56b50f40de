package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"totem-quiz-bot/internal/logger"
)

type RouterConfig struct {
	Webhook *WebhookHandler
	Feed    *FeedHandler
	Log     *logger.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(cfg.Log))

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	if cfg.Webhook != nil {
		r.POST("/webhook", cfg.Webhook.Handle)
	}
	if cfg.Feed != nil {
		r.GET("/ops/feed", cfg.Feed.ServeWS)
	}
	return r
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Debug("HTTP request", fields...)
		}
	}
}
