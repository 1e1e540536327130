package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ialiagadev/physia-scheduler/internal/config"
	dbpkg "github.com/ialiagadev/physia-scheduler/internal/db"
	"github.com/ialiagadev/physia-scheduler/internal/logger"
	"github.com/ialiagadev/physia-scheduler/internal/routes"
	"github.com/ialiagadev/physia-scheduler/internal/timezone"
)

func main() {

	cfg := config.Load()

	log := logger.New(cfg)
	defer func() { _ = log.Sync() }()

	if !timezone.IsValid(cfg.DefaultTimezone) {
		log.Fatal("invalid DEFAULT_TIMEZONE", zap.String("timezone", cfg.DefaultTimezone))
	}
	timezone.SetDefault(cfg.DefaultTimezone)

	db := dbpkg.NewDB(cfg, log)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	shutdown := routes.RegisterRoutes(r, db, cfg, log)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server running", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	shutdown()
}
