package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"admissions-back/internal/app"
	"admissions-back/internal/config"
	"admissions-back/internal/docs"
	"admissions-back/pkg/logger"
)

// @title Admissions API
// @description Admissions back office: prospects, students and instructors with a reliable event pipeline behind them.

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoadConfig()
	config.MustPrintConfig(cfg)

	docs.SwaggerInfo.Title = "Admissions API"
	docs.SwaggerInfo.Version = cfg.App.Version
	docs.SwaggerInfo.BasePath = cfg.HTTPServer.BasePath

	log := logger.MustSetupLogger(&logger.Config{
		Level:      cfg.Logger.Level,
		FormatJSON: cfg.Logger.FormatJSON,
		Rotation: logger.Rotation{
			File:       cfg.Logger.Rotation.File,
			MaxSize:    cfg.Logger.Rotation.MaxSize,
			MaxBackups: cfg.Logger.Rotation.MaxBackups,
			MaxAge:     cfg.Logger.Rotation.MaxAge,
		},
	})

	log.Info("Starting application", zap.String("service", cfg.App.ServiceName), zap.String("version", cfg.App.Version))

	application := app.MustNew(cfg, log)

	defer func() {
		if err := application.Shutdown(); err != nil {
			log.Error("Failed to shutdown application", zap.Error(err))
		}

		log.Info("Application stopped")

		_ = log.Sync()
	}()

	errs := make(chan error, 1)

	go func() {
		errs <- application.Run(ctx)
	}()

	select {
	case err := <-errs:
		if err != nil {
			log.Error("Application error", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}
}
