package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"linguamentor/backend/internal/config"
	"linguamentor/backend/internal/logger"
	"linguamentor/backend/internal/metrics"
	"linguamentor/backend/internal/services"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Log, "voice-worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storageService, err := services.NewStorage(cfg.Storage)
	if err != nil {
		log.WithError(err).Fatal("❌ Failed to initialize storage")
	}

	provider, err := services.NewAIProvider(ctx, cfg.AI)
	if err != nil {
		log.WithError(err).Fatal("❌ Failed to initialize AI provider")
	}
	log.WithField("provider", cfg.AI.Provider).Info("✅ AI provider initialized")

	broker, err := services.NewRabbitBroker(cfg.GetRabbitMQURL(), log, cfg.RabbitMQ.VoiceQueue, cfg.RabbitMQ.FeedbackQueue)
	if err != nil {
		log.WithError(err).Fatal("❌ Failed to connect to RabbitMQ")
	}
	defer broker.Close()
	log.Info("✅ RabbitMQ connected")

	if cfg.Metrics.Addr != "" {
		go metrics.Serve(ctx, cfg.Metrics.Addr, log)
	}

	worker := services.NewVoiceWorker(
		broker,
		storageService,
		services.NewVoiceAnalyzer(provider),
		cfg.RabbitMQ.VoiceQueue,
		cfg.RabbitMQ.FeedbackQueue,
		log,
	)

	if err := worker.Run(ctx); err != nil {
		log.WithError(err).Error("❌ Voice worker stopped")
		broker.Close()
		os.Exit(1)
	}
	log.Info("🛑 Voice worker stopped")
}
