package middlewares

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"twason/pkg/logger"
)

type Middlewares struct {
	log logger.Logger
}

func New(log logger.Logger) *Middlewares {
	return &Middlewares{log: log}
}

// Logger logs each request at debug level.
func (m *Middlewares) Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		m.log.Debug("HTTP request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}
