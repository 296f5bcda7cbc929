package metrics

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/maktab-bot/pkg/config"
)

// NewServer builds the small HTTP side-car exposing liveness and
// Prometheus metrics next to the long-polling bot.
func NewServer(cfg *config.Config, m *Metrics, logger *zap.Logger) *http.Server {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("health server listening", zap.String("addr", addr))
	return &http.Server{Addr: addr, Handler: r}
}
