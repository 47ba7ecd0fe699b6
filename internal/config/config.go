package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"dataaccess-backend/internal/domain/models"
	"dataaccess-backend/internal/infrastructure/repositories"
	"dataaccess-backend/internal/security"
)

type (
	// Config - основная конфигурация приложения
	Config struct {
		App        `yaml:"app"`
		Settings   `yaml:"settings"`
		Log        `yaml:"logger"`
		Repository repositories.Config `yaml:"repository"`
		Security   Security            `yaml:"security"`
	}

	// App - конфигурация приложения
	App struct {
		Name    string `yaml:"name" env:"APP_NAME"`
		Version string `yaml:"version" env:"APP_VERSION"`
	}

	// Log - конфигурация логирования
	Log struct {
		Level int `yaml:"log-level" env:"LOG_LEVEL"`
	}

	// Settings - основные настройки
	Settings struct {
		HTTPAddr        string        `yaml:"http-addr" env:"HTTP_ADDR"`
		RateLimit       float64       `yaml:"rate-limit" env:"HTTP_RATE_LIMIT"`
		RateBurst       int           `yaml:"rate-burst" env:"HTTP_RATE_BURST"`
		ShutdownTimeout time.Duration `yaml:"shutdown-timeout" env:"HTTP_SHUTDOWN_TIMEOUT"`
	}

	// Security - роли и права доступа
	Security struct {
		DefaultRole string        `yaml:"default-role" env:"SECURITY_DEFAULT_ROLE"`
		Roles       []models.Role `yaml:"roles"`
	}
)

// NewConfig создает новую конфигурацию: значения по умолчанию, затем .env, файл и окружение
func NewConfig(path string) (*Config, error) {
	cfg := &Config{}

	// Установка значений по умолчанию
	cfg.App.Name = "dataaccess-backend"
	cfg.App.Version = "v1.0.0"
	cfg.Settings.HTTPAddr = ":8080"
	cfg.Settings.RateLimit = 50
	cfg.Settings.RateBurst = 100
	cfg.Settings.ShutdownTimeout = 10 * time.Second
	cfg.Repository = repositories.DefaultConfig()
	cfg.Security.DefaultRole = "guest"

	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	// Загрузка из файла конфигурации
	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	}

	// Загрузка из переменных окружения
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}

	if len(cfg.Security.Roles) == 0 {
		cfg.Security.Roles = security.DefaultRoles()
	}
	return cfg, nil
}

// LoadDotEnv exports variables of the existing files into the process environment
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Validate валидирует конфигурацию
func (c *Config) Validate() error {
	if c.Settings.HTTPAddr == "" {
		return fmt.Errorf("http address is required")
	}
	if c.Settings.RateLimit < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	if err := c.Repository.Validate(); err != nil {
		return fmt.Errorf("repository config validation failed: %w", err)
	}

	known := false
	for _, r := range c.Security.Roles {
		if r.Name == c.Security.DefaultRole {
			known = true
		}
		for _, p := range r.Permissions {
			switch p.Operation {
			case models.OperationRead, models.OperationCreate, models.OperationUpdate, models.OperationDelete:
			default:
				return fmt.Errorf("role %s: unknown operation %q", r.Name, p.Operation)
			}
		}
	}
	if !known {
		return fmt.Errorf("default role %q is not defined", c.Security.DefaultRole)
	}
	return nil
}
