package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"

	// DefaultMongoDatabase is used when neither MONGO_DATABASE nor the URI
	// names a database
	DefaultMongoDatabase = "shop"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Mongo    MongoConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Telegram TelegramConfig
	Session  SessionConfig
}

type ServerConfig struct {
	Port              string `validate:"required,numeric"`
	Env               string `validate:"oneof=development production"`
	RateLimitRequests int    `validate:"gte=0"` // per client per minute, 0 disables
}

type StoreConfig struct {
	Driver string `validate:"oneof=mongo postgres"`
}

type MongoConfig struct {
	URI      string `validate:"required_if=Driver mongo"`
	Database string
	Driver   string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type TelegramConfig struct {
	ClientToken   string `validate:"required"`
	AdminToken    string `validate:"required"`
	DeliveryToken string `validate:"required"`
	AdminChatID   int64  `validate:"required"`
	AppURL        string `validate:"omitempty,url"`
	WebhookSecret string
	APIEndpoint   string
	ImageDir      string
	RateLimit     float64 `validate:"gte=0"` // outbound requests per second per bot
}

type SessionConfig struct {
	TTL time.Duration `validate:"gt=0"`
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 120)
	viper.SetDefault("STORE_DRIVER", StoreMongo)
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_ENABLED", false)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("IMAGE_DIR", "images")
	viper.SetDefault("SESSION_TTL", "24h")
	viper.SetDefault("TELEGRAM_RATE_LIMIT", 25)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	driver := strings.ToLower(viper.GetString("STORE_DRIVER"))

	return &Config{
		Server: ServerConfig{
			Port:              viper.GetString("SERVER_PORT"),
			Env:               viper.GetString("SERVER_ENV"),
			RateLimitRequests: viper.GetInt("RATE_LIMIT_REQUESTS"),
		},
		Store: StoreConfig{
			Driver: driver,
		},
		Mongo: MongoConfig{
			URI:      viper.GetString("MONGO_URI"),
			Database: viper.GetString("MONGO_DATABASE"),
			Driver:   driver,
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("REDIS_ENABLED"),
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Telegram: TelegramConfig{
			ClientToken:   viper.GetString("BOT_TOKEN_CLIENT"),
			AdminToken:    viper.GetString("BOT_TOKEN_ADMIN"),
			DeliveryToken: viper.GetString("BOT_TOKEN_DELIVERY"),
			AdminChatID:   viper.GetInt64("ADMIN_CHAT_ID"),
			AppURL:        strings.TrimRight(viper.GetString("APP_URL"), "/"),
			WebhookSecret: viper.GetString("WEBHOOK_SECRET"),
			APIEndpoint:   viper.GetString("TELEGRAM_API_ENDPOINT"),
			ImageDir:      viper.GetString("IMAGE_DIR"),
			RateLimit:     viper.GetFloat64("TELEGRAM_RATE_LIMIT"),
		},
		Session: SessionConfig{
			TTL: viper.GetDuration("SESSION_TTL"),
		},
	}
}

// Validate reports the first group of invalid settings
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// DatabaseName returns MONGO_DATABASE, else the database named in the URI
func (c MongoConfig) DatabaseName() string {
	if c.Database != "" {
		return c.Database
	}
	if cs, err := connstring.ParseAndValidate(c.URI); err == nil && cs.Database != "" {
		return cs.Database
	}
	return DefaultMongoDatabase
}

// DSN returns the postgres connection string
func (c DatabaseConfig) DSN() string {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": {"disable"}, "search_path": {c.Schema}}.Encode(),
	}
	return dsn.String()
}

// WebhookURL returns the public endpoint a persona's bot posts to
func (c TelegramConfig) WebhookURL(path string) string {
	return c.AppURL + "/" + strings.TrimPrefix(path, "/")
}
