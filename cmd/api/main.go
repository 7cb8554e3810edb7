package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"linguamentor/backend/internal/config"
	"linguamentor/backend/internal/handlers"
	"linguamentor/backend/internal/logger"
	"linguamentor/backend/internal/metrics"
	"linguamentor/backend/internal/middleware"
	"linguamentor/backend/internal/repositories"
	"linguamentor/backend/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.Log, "api")
	log.Info("✅ Config loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	mongoClient, db, err := config.InitDatabase(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("❌ Failed to initialize database")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.WithError(err).Warn("⚠️  Failed to disconnect from MongoDB")
		}
	}()

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	evalRepo := repositories.NewEvaluationRepository(db)
	log.Info("✅ Repositories initialized successfully")

	// Initialize services
	storageService, err := services.NewStorage(cfg.Storage)
	if err != nil {
		log.WithError(err).Fatal("❌ Failed to initialize storage")
	}
	if err := storageService.EnsureReady(ctx); err != nil {
		log.WithError(err).Fatal("❌ Failed to prepare storage")
	}

	broker, err := services.NewRabbitBroker(cfg.GetRabbitMQURL(), log, cfg.RabbitMQ.VoiceQueue, cfg.RabbitMQ.FeedbackQueue)
	if err != nil {
		log.WithError(err).Fatal("❌ Failed to connect to RabbitMQ")
	}
	defer broker.Close()
	log.Info("✅ RabbitMQ connected")

	userService := services.NewUserService(userRepo)

	var voiceHandler *handlers.VoiceHandler
	provider, err := services.NewAIProvider(ctx, cfg.AI)
	if err != nil {
		log.WithError(err).Warn("⚠️  AI provider unavailable, synchronous voice analysis disabled")
	} else {
		voiceHandler = handlers.NewVoiceHandler(services.NewVoiceAnalyzer(provider), log)
		log.WithField("provider", cfg.AI.Provider).Info("✅ AI provider initialized")
	}

	// Initialize handlers
	uploadHandler := handlers.NewUploadHandler(storageService, broker, cfg.RabbitMQ.VoiceQueue, log)
	userHandler := handlers.NewUserHandler(userService)
	evaluationHandler := handlers.NewEvaluationHandler(evalRepo)
	systemHandler := handlers.NewSystemHandler(mongoClient)
	log.Info("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "LinguaMentor API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler(cfg.IsProduction()),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
	}))
	app.Use(metrics.Middleware())

	// Routes
	app.Get("/", systemHandler.HandleRoot)
	app.Get("/health", systemHandler.HandleHealth)
	app.Get("/info", systemHandler.HandleInfo)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	uploadChain := []fiber.Handler{middleware.RateLimiter(cfg.RateLimit.Max, cfg.RateLimit.Window)}
	if cfg.Idempotency.Enabled {
		uploadChain = append(uploadChain, middleware.Idempotency(idempotencyStore(ctx, cfg, log), cfg.Idempotency.TTL, log))
	}
	uploadChain = append(uploadChain, uploadHandler.HandleAnalyzeVoice)
	app.Post("/analyze_voice", uploadChain...)

	if voiceHandler != nil {
		app.Post("/voice/analyze-voice", middleware.RateLimiter(cfg.RateLimit.Max, cfg.RateLimit.Window), voiceHandler.HandleAnalyzeVoice)
	}

	users := app.Group("/users")
	users.Post("/", userHandler.HandleCreate)
	users.Get("/", userHandler.HandleList)
	users.Get("/:id", userHandler.HandleGet)
	users.Delete("/:id", userHandler.HandleDelete)

	evaluations := app.Group("/evaluations")
	evaluations.Get("/", evaluationHandler.HandleList)
	evaluations.Get("/:id", evaluationHandler.HandleGet)

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		log.Info("🛑 Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("❌ Server forced to shutdown")
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.WithField("addr", addr).Info("🚀 Server starting")

	if err := app.Listen(addr); err != nil {
		log.WithError(err).Fatal("❌ Failed to start server")
	}
}

// idempotencyStore prefers Redis when configured and reachable.
func idempotencyStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) middleware.IdempotencyStore {
	if cfg.Redis.Addr == "" {
		log.Info("🧠 Idempotency keys kept in memory")
		return middleware.NewMemoryStore(time.Minute)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).Warn("⚠️  Redis unreachable, idempotency keys kept in memory")
		client.Close()
		return middleware.NewMemoryStore(time.Minute)
	}

	log.WithField("addr", cfg.Redis.Addr).Info("✅ Idempotency keys kept in Redis")
	return middleware.NewRedisStore(client)
}

// customErrorHandler renders errors as {error, code}. In production the
// detail of server errors is not sent to clients.
func customErrorHandler(production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}

		message := err.Error()
		if production && code >= fiber.StatusInternalServerError {
			message = utils.StatusMessage(code)
		}

		return c.Status(code).JSON(fiber.Map{
			"error": message,
			"code":  code,
		})
	}
}
