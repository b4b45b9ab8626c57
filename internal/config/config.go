package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	DatabaseURL string
	RedisAddr   string
	CacheTTL    time.Duration
	WorkerCount int
	LogLevel    string

	JWTSecret   string
	JWKSURL     string
	JWTAudience string
	JWTIssuer   string

	SessionIdleTTL time.Duration
}

// New returns a viper instance reading environment variables (PORT,
// DATABASE_URL, ...) on top of an optional config file named by TODO_CONFIG.
func New() (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("database_url", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("cache_ttl", time.Minute)
	v.SetDefault("worker_count", 3)
	v.SetDefault("log_level", "info")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwks_url", "")
	v.SetDefault("jwt_audience", "")
	v.SetDefault("jwt_issuer", "")
	v.SetDefault("session_idle_ttl", 30*time.Minute)

	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := os.Getenv("TODO_CONFIG"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	return v, nil
}

func Read(v *viper.Viper) Config {
	return Config{
		Port:           v.GetString("port"),
		DatabaseURL:    v.GetString("database_url"),
		RedisAddr:      v.GetString("redis_addr"),
		CacheTTL:       v.GetDuration("cache_ttl"),
		WorkerCount:    v.GetInt("worker_count"),
		LogLevel:       v.GetString("log_level"),
		JWTSecret:      v.GetString("jwt_secret"),
		JWKSURL:        v.GetString("jwks_url"),
		JWTAudience:    v.GetString("jwt_audience"),
		JWTIssuer:      v.GetString("jwt_issuer"),
		SessionIdleTTL: v.GetDuration("session_idle_ttl"),
	}
}

func Load() (Config, error) {
	v, err := New()
	if err != nil {
		return Config{}, err
	}
	return Read(v), nil
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	if c.JWTSecret == "" && c.JWKSURL == "" {
		return fmt.Errorf("one of JWT_SECRET or JWKS_URL must be set")
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("WORKER_COUNT must be positive, got %d", c.WorkerCount)
	}
	return nil
}
