package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Auth       AuthConfig       `mapstructure:"auth" validate:"required"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Repository RepositoryConfig `mapstructure:"repository" validate:"required"`
	CORS       CORSConfig       `mapstructure:"cors"`
	Broadcast  BroadcastConfig  `mapstructure:"broadcast"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int32         `mapstructure:"max_connections"`
	MinConnections int32         `mapstructure:"min_connections"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	MigrationsPath string        `mapstructure:"migrations_path"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenTTL  time.Duration `mapstructure:"token_ttl" validate:"required"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

type RepositoryConfig struct {
	Type string `mapstructure:"type" validate:"required,oneof=postgres inmemory"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type BroadcastConfig struct {
	SendBuffer int `mapstructure:"send_buffer"`
}

// Load читает config.yml и переменные окружения с префиксом TASKBOARD_.
// Окружение имеет приоритет над файлом.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.min_connections", 2)
	v.SetDefault("database.idle_timeout", 5*time.Minute)
	v.SetDefault("database.migrations_path", "migrations")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("logging.development", false)
	v.SetDefault("repository.type", "postgres")
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("broadcast.send_buffer", 16)

	v.SetEnvPrefix("TASKBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// файл не обязателен, если всё задано окружением
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("чтение config.yml: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации: %w", err)
	}

	if cfg.Repository.Type == "postgres" && cfg.Database.URL == "" {
		return nil, fmt.Errorf("database.url обязателен для repository.type=postgres")
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("валидация конфигурации: %w", err)
	}

	return &cfg, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
