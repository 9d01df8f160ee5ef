package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from the environment.
type Config struct {
	Environment string

	Server  ServerConfig
	Mongo   MongoConfig
	JWT     JWTConfig
	SMTP    SMTPConfig
	Kafka   KafkaConfig
	OTP     OTPConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	EnableTLS    bool
	CertFile     string
	KeyFile      string
	BaseURL      string
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	QueryTimeout   time.Duration
}

// JWTConfig carries one secret and TTL per token kind. The secrets are
// independent so a token minted for one purpose never verifies for another.
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	ResetSecret   string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	ResetTTL      time.Duration
	Issuer        string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	TLS      bool
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

type OTPConfig struct {
	Length int
	TTL    time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

var (
	globalConfig *Config
	loadOnce     sync.Once
)

// LoadConfig reads .env (if present) and builds the typed configuration.
func LoadConfig() *Config {
	loadOnce.Do(func() {
		_ = godotenv.Load()

		globalConfig = &Config{
			Environment: getEnv("APP_ENV", "development"),
			Server: ServerConfig{
				Port:         getEnvInt("SERVER_PORT", 8080),
				ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
				WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
				IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
				EnableTLS:    getEnvBool("SERVER_ENABLE_TLS", false),
				CertFile:     getEnv("SERVER_CERT_FILE", ""),
				KeyFile:      getEnv("SERVER_KEY_FILE", ""),
				BaseURL:      getEnv("SERVER_BASE_URL", "http://localhost:8080"),
			},
			Mongo: MongoConfig{
				URI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
				Database:       getEnv("MONGO_DATABASE", "zappay"),
				ConnectTimeout: getEnvDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
				QueryTimeout:   getEnvDuration("MONGO_QUERY_TIMEOUT", 5*time.Second),
			},
			JWT: JWTConfig{
				AccessSecret:  getEnv("JWT_ACCESS_SECRET", ""),
				RefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),
				ResetSecret:   getEnv("JWT_RESET_SECRET", ""),
				AccessTTL:     getEnvDuration("JWT_ACCESS_TTL", 15*time.Minute),
				RefreshTTL:    getEnvDuration("JWT_REFRESH_TTL", 7*24*time.Hour),
				ResetTTL:      getEnvDuration("JWT_RESET_TTL", time.Hour),
				Issuer:        getEnv("JWT_ISSUER", "zappay-auth"),
			},
			SMTP: SMTPConfig{
				Host:     getEnv("SMTP_HOST", "localhost"),
				Port:     getEnvInt("SMTP_PORT", 587),
				Username: getEnv("SMTP_USERNAME", ""),
				Password: getEnv("SMTP_PASSWORD", ""),
				From:     getEnv("SMTP_FROM", "no-reply@zappay.io"),
				FromName: getEnv("SMTP_FROM_NAME", "ZapPay"),
				TLS:      getEnvBool("SMTP_TLS", true),
			},
			Kafka: KafkaConfig{
				Enabled: getEnvBool("KAFKA_ENABLED", false),
				Brokers: getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
				Topic:   getEnv("KAFKA_ACCOUNT_EVENTS_TOPIC", "account-events"),
			},
			OTP: OTPConfig{
				Length: getEnvInt("OTP_LENGTH", 6),
				TTL:    getEnvDuration("OTP_TTL", 10*time.Minute),
			},
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "console"),
			},
		}
	})

	return globalConfig
}

// Get returns the loaded configuration, loading it on first use.
func Get() *Config {
	if globalConfig == nil {
		return LoadConfig()
	}
	return globalConfig
}

// Validate checks for configuration that has no usable default.
func (c *Config) Validate() error {
	if c.JWT.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if c.JWT.RefreshSecret == "" {
		return fmt.Errorf("JWT_REFRESH_SECRET is required")
	}
	if c.JWT.ResetSecret == "" {
		return fmt.Errorf("JWT_RESET_SECRET is required")
	}
	if c.Server.EnableTLS && (c.Server.CertFile == "" || c.Server.KeyFile == "") {
		return fmt.Errorf("SERVER_CERT_FILE and SERVER_KEY_FILE are required when TLS is enabled")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) GetServerAddress() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
