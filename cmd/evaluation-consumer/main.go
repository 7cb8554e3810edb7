package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"linguamentor/backend/internal/config"
	"linguamentor/backend/internal/logger"
	"linguamentor/backend/internal/metrics"
	"linguamentor/backend/internal/repositories"
	"linguamentor/backend/internal/services"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Log, "evaluation-consumer")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := config.InitDatabase(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("❌ Failed to initialize database")
	}
	log.Info("✅ MongoDB connected")

	broker, err := services.NewRabbitBroker(cfg.GetRabbitMQURL(), log, cfg.RabbitMQ.FeedbackQueue)
	if err != nil {
		mongoClient.Disconnect(context.Background())
		log.WithError(err).Fatal("❌ Failed to connect to RabbitMQ")
	}
	log.Info("✅ RabbitMQ connected")

	if cfg.Metrics.Addr != "" {
		go metrics.Serve(ctx, cfg.Metrics.Addr, log)
	}

	consumer := services.NewResultConsumer(
		broker,
		repositories.NewEvaluationRepository(db),
		cfg.RabbitMQ.FeedbackQueue,
		log,
	)

	runErr := consumer.Run(ctx)

	broker.Close()
	if err := mongoClient.Disconnect(context.Background()); err != nil {
		log.WithError(err).Warn("⚠️  Failed to disconnect from MongoDB")
	}

	if runErr != nil {
		log.WithError(runErr).Error("❌ Evaluation consumer stopped")
		os.Exit(1)
	}
	log.Info("🛑 Evaluation consumer stopped")
}
