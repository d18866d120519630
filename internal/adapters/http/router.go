package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sketch/internal/adapters/signal"
	"github.com/dkeye/Sketch/internal/app"
	"github.com/dkeye/Sketch/internal/config"
)

func SetupRouter(ctx context.Context, cfg *config.Config, ctrl *signal.Controller, reg *app.Registry) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"connections": reg.Count(),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/ws", func(c *gin.Context) {
		ctrl.HandleWS(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")
	return r
}
