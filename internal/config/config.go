package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	Mongo       MongoConfig
	RabbitMQ    RabbitMQConfig
	AI          AIConfig
	Storage     StorageConfig
	Log         LogConfig
	Redis       RedisConfig
	Idempotency IdempotencyConfig
	RateLimit   RateLimitConfig
	Metrics     MetricsConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type MongoConfig struct {
	URL    string
	DBName string
}

type RabbitMQConfig struct {
	URL           string
	User          string
	Password      string
	Host          string
	Port          string
	VHost         string
	VoiceQueue    string
	FeedbackQueue string
}

type AIConfig struct {
	Provider           string
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	TranscriptionModel string
	ChatModel          string
	GeminiAPIKey       string
	GeminiModel        string
}

type StorageConfig struct {
	Driver      string
	UploadPath  string
	MaxFileSize int64
	Minio       MinioConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type LogConfig struct {
	Level      string
	Format     string
	Filename   string
	MaxSize    int
	MaxAge     int
	MaxBackups int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type IdempotencyConfig struct {
	Enabled bool
	TTL     time.Duration
}

type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

type MetricsConfig struct {
	Addr string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment and default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8000"),
			Env:  getEnv("ENV", "development"),
		},
		Mongo: MongoConfig{
			URL:    getEnv("MONGODB_URL", "mongodb://localhost:27017"),
			DBName: getEnv("MONGODB_DB_NAME", "linguamentor"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:           getEnv("RABBITMQ_URL", ""),
			User:          getEnv("RABBITMQ_USER", "admin"),
			Password:      getEnv("RABBITMQ_PASS", "lingua123"),
			Host:          getEnv("RABBITMQ_HOST", "rabbitmq"),
			Port:          getEnv("RABBITMQ_PORT", "5672"),
			VHost:         getEnv("RABBITMQ_VHOST", "/"),
			VoiceQueue:    getEnv("VOICE_QUEUE", "voice_analysis"),
			FeedbackQueue: getEnv("FEEDBACK_QUEUE", "feedback_ready"),
		},
		AI: AIConfig{
			Provider:           strings.ToLower(getEnv("AI_PROVIDER", "openai")),
			OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
			TranscriptionModel: getEnv("OPENAI_TRANSCRIPTION_MODEL", "whisper-1"),
			ChatModel:          getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
			GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(getEnv("STORAGE_DRIVER", "local")),
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
			Minio: MinioConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", "voice-uploads"),
				UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
			},
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "text"),
			Filename:   getEnv("LOG_FILENAME", ""),
			MaxSize:    getEnvAsInt("LOG_MAX_SIZE", 100),
			MaxAge:     getEnvAsInt("LOG_MAX_AGE", 7),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 3),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Idempotency: IdempotencyConfig{
			Enabled: getEnvAsBool("IDEMPOTENCY_ENABLED", false),
			TTL:     getEnvAsDuration("IDEMPOTENCY_TTL", "10m"),
		},
		RateLimit: RateLimitConfig{
			Max:    getEnvAsInt("RATE_LIMIT_MAX", 30),
			Window: getEnvAsDuration("RATE_LIMIT_WINDOW", "1m"),
		},
		Metrics: MetricsConfig{
			Addr: getEnv("METRICS_ADDR", ""),
		},
	}
}

// GetRabbitMQURL returns RABBITMQ_URL when set, otherwise builds the AMQP URL
// from the individual credentials and host.
func (c *Config) GetRabbitMQURL() string {
	if c.RabbitMQ.URL != "" {
		return c.RabbitMQ.URL
	}

	host := c.RabbitMQ.Host
	if c.RabbitMQ.Port != "" {
		host = fmt.Sprintf("%s:%s", c.RabbitMQ.Host, c.RabbitMQ.Port)
	}

	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(c.RabbitMQ.User, c.RabbitMQ.Password),
		Host:   host,
		Path:   "/",
	}
	if vhost := strings.TrimPrefix(c.RabbitMQ.VHost, "/"); vhost != "" {
		u.Path = "/" + vhost
	}

	return u.String()
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
