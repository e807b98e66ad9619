package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/shareit-go/shareit/internal/pkg/database"
)

// KafkaConfig holds the booking event producer settings. No brokers disables publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// ServerConfig holds all configuration for the booking server.
type ServerConfig struct {
	Port        string
	AppEnv      string
	DBConfig    database.Config
	KafkaConfig KafkaConfig
}

// RateLimitConfig bounds requests per user at the gateway.
type RateLimitConfig struct {
	RPS    float64
	Burst  int
	Window time.Duration
}

// GatewayConfig holds all configuration for the gateway.
type GatewayConfig struct {
	Port          string
	AppEnv        string
	ServerURL     string
	ServerTimeout time.Duration
	RateLimit     RateLimitConfig
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// LoadServer reads server configuration from SHAREIT_SERVER_* environment variables.
func LoadServer() (*ServerConfig, error) {
	v := newViper("SHAREIT_SERVER")
	v.SetDefault("PORT", ":9090")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "shareit")
	v.SetDefault("DB_PASSWORD", "shareit")
	v.SetDefault("DB_NAME", "shareit")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_TOPIC", "booking.events")

	return &ServerConfig{
		Port:   normalizePort(v.GetString("PORT")),
		AppEnv: v.GetString("APP_ENV"),
		DBConfig: database.Config{
			Host:       v.GetString("DB_HOST"),
			Port:       v.GetString("DB_PORT"),
			User:       v.GetString("DB_USER"),
			Password:   v.GetString("DB_PASSWORD"),
			DBName:     v.GetString("DB_NAME"),
			SSLMode:    v.GetString("DB_SSLMODE"),
			SQLitePath: v.GetString("DB_SQLITE_PATH"),
		},
		KafkaConfig: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
	}, nil
}

// LoadGateway reads gateway configuration from SHAREIT_GATEWAY_* environment variables.
func LoadGateway() (*GatewayConfig, error) {
	v := newViper("SHAREIT_GATEWAY")
	v.SetDefault("PORT", ":8080")
	v.SetDefault("SERVER_URL", "http://localhost:9090")
	v.SetDefault("SERVER_TIMEOUT", "10s")
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW", "1s")

	return &GatewayConfig{
		Port:          normalizePort(v.GetString("PORT")),
		AppEnv:        v.GetString("APP_ENV"),
		ServerURL:     strings.TrimRight(v.GetString("SERVER_URL"), "/"),
		ServerTimeout: v.GetDuration("SERVER_TIMEOUT"),
		RateLimit: RateLimitConfig{
			RPS:    v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:  v.GetInt("RATE_LIMIT_BURST"),
			Window: v.GetDuration("RATE_LIMIT_WINDOW"),
		},
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
	}, nil
}

func newViper(prefix string) *viper.Viper {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.AutomaticEnv()
	v.SetDefault("APP_ENV", "development")
	return v
}

func normalizePort(port string) string {
	if port != "" && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
