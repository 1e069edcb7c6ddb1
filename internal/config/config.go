package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"npc-server/shared/utils"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	AIClientOpenAI = "openai"
	AIClientOllama = "ollama"
)

// Config содержит конфигурацию NPC сервиса.
type Config struct {
	Env        string `envconfig:"ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat  string `envconfig:"LOG_FORMAT" default:"json"`
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// PostgreSQL
	DBHost        string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" default:"postgres"`
	DBName        string        `envconfig:"DB_NAME" default:"npc_db"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_IDLE_TIMEOUT" default:"5m"`
	// Секретное поле БЕЗ envconfig тега
	DBPassword string

	// Redis. Пустой адрес отключает кэш сводок и переводит rate limit в память.
	RedisAddr       string        `envconfig:"REDIS_ADDR" default:""`
	RedisDB         int           `envconfig:"REDIS_DB" default:"0"`
	SummaryCacheTTL time.Duration `envconfig:"SUMMARY_CACHE_TTL" default:"24h"`
	RedisPassword   string

	// RabbitMQ. Пустой URL означает, что события не публикуются.
	RabbitMQURL string `envconfig:"RABBITMQ_URL" default:""`
	EventsQueue string `envconfig:"EVENTS_QUEUE" default:"npc_events"`

	// LLM
	AIClientType    string        `envconfig:"AI_CLIENT_TYPE" default:"openai"`
	AIBaseURL       string        `envconfig:"AI_BASE_URL" default:"https://openrouter.ai/api/v1"`
	AIModel         string        `envconfig:"AI_MODEL" default:"openai/gpt-4o-mini"`
	AITimeout       time.Duration `envconfig:"AI_TIMEOUT" default:"60s"`
	AIContextTokens int           `envconfig:"AI_CONTEXT_TOKENS" default:"128000"`
	AIAPIKey        string

	RateLimitPerMinute uint `envconfig:"RATE_LIMIT_PER_MINUTE" default:"30"`
}

// GetDSN возвращает строку подключения к PostgreSQL.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// MaskedDSN возвращает DSN без пароля, для логов.
func (c *Config) MaskedDSN() string {
	return fmt.Sprintf("postgres://%s:********@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// GetAllowedOrigins splits the CORSAllowedOrigins string into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.AIClientType) {
	case AIClientOpenAI:
		if c.AIAPIKey == "" {
			errs = append(errs, errors.New("AI API key is required for the openai client (secret ai_api_key or AI_API_KEY)"))
		}
	case AIClientOllama:
	default:
		errs = append(errs, fmt.Errorf("unknown AI_CLIENT_TYPE %q", c.AIClientType))
	}
	if c.AIModel == "" {
		errs = append(errs, errors.New("AI_MODEL must not be empty"))
	}
	if c.AITimeout <= 0 {
		errs = append(errs, errors.New("AI_TIMEOUT must be positive"))
	}
	if c.RateLimitPerMinute == 0 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be positive"))
	}
	return errors.Join(errs...)
}

// LoadConfig loads configuration from an optional .env file, environment variables and secrets.
func LoadConfig(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
			} else {
				log.Printf("Loaded configuration from %s", envFilePath)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	cfg.AIClientType = strings.ToLower(cfg.AIClientType)

	// Пароль БД может отсутствовать (trust auth в dev), ключ AI проверяется в Validate.
	cfg.DBPassword = readSecret("db_password", "DB_PASSWORD")
	cfg.AIAPIKey = readSecret("ai_api_key", "AI_API_KEY")
	if cfg.RedisEnabled() {
		cfg.RedisPassword = readSecret("redis_password", "REDIS_PASSWORD")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Printf("Конфигурация загружена: env=%s port=%s db=%s ai=%s/%s redis=%t rabbitmq=%t",
		cfg.Env, cfg.ServerPort, cfg.MaskedDSN(), cfg.AIClientType, cfg.AIModel,
		cfg.RedisEnabled(), cfg.RabbitMQURL != "")
	return &cfg, nil
}

// readSecret возвращает секрет из файла или окружения.
// Отсутствующий файл - штатная ситуация; прочие ошибки чтения только логируются.
func readSecret(secretName, envKey string) string {
	secret, err := utils.ReadSecretOrEnv(secretName, envKey)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: could not read secret %s: %v", secretName, err)
	}
	return secret
}
