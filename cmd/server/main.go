package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/suPer8Hu/askdb/internal/bootstrap"
	"github.com/suPer8Hu/askdb/internal/config"
	"github.com/suPer8Hu/askdb/internal/httpapi"
	"github.com/suPer8Hu/askdb/internal/httpapi/handlers"
	"github.com/suPer8Hu/askdb/internal/logger"
	"github.com/suPer8Hu/askdb/internal/store/rabbitmq"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogFile, cfg.LogJSON)
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer app.Close()

	// The broker is optional for the web UI; without it /api/jobs answers 503.
	var jobs handlers.Publisher
	pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Warn("rabbitmq unavailable, async jobs disabled", zap.Error(err))
	} else {
		defer func() { _ = pub.Close() }()
		jobs = pub
	}

	h := handlers.NewHandler(app.Service, app.Schemas, app.History, jobs, log)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(h, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server started", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}
