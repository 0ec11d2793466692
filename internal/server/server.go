package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Demigodrick/community-bot/internal/config"
	"github.com/Demigodrick/community-bot/internal/version"
)

// Server exposes the bot's operational surface: a health probe keyed to
// enforcement-tick freshness and the Prometheus metrics endpoint.
type Server struct {
	Engine *gin.Engine
	cfg    config.Config
}

// New wires up the HTTP router. lastTick reports when the enforcement job
// last completed; the health endpoint turns unhealthy when that goes stale.
func New(cfg config.Config, registry *prometheus.Registry, lastTick func() time.Time) *Server {
	gin.SetMode(gin.ReleaseMode)
	if cfg.Environment == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// A tick is allowed to miss twice before the probe fails, so a single
	// slow platform call does not flap the health status.
	staleAfter := 3 * cfg.EnforceInterval

	router.GET("/api/v1/health", func(c *gin.Context) {
		last := lastTick()
		if last.IsZero() || time.Since(last) > staleAfter {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "stale",
				"last_tick": last,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"version":   version.Full(),
			"last_tick": last,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return &Server{Engine: router, cfg: cfg}
}

// Run starts the HTTP server with proper shutdown semantics.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", s.cfg.HTTPPort),
		Handler: s.Engine,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
