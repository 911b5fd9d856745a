package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-SchedulingService/internal/domain"
)

// ErrInvalidConfig возвращается, когда конфигурация не проходит валидацию
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Переменные окружения, перекрывающие значения из файла
const (
	EnvConfigPath    = "CONFIG_PATH"
	EnvDBPassword    = "DB_PASSWORD"
	EnvRedisPassword = "REDIS_PASSWORD"
)

// Config конфигурация сервиса
type Config struct {
	Server       ServerConfig       `toml:"server"`
	Database     DatabaseConfig     `toml:"database"`
	Logs         LogsConfig         `toml:"logs"`
	Metrics      MetricsConfig      `toml:"metrics"`
	Scheduling   SchedulingConfig   `toml:"scheduling"`
	Invalidation InvalidationConfig `toml:"invalidation"`
	Migration    MigrationConfig    `toml:"migration"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	AutoMigrate     bool   `toml:"auto_migrate"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// MetricsConfig настройки prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// SchedulingConfig правила бронирования
type SchedulingConfig struct {
	Timezone                string `toml:"timezone"`
	AdvanceBookingDays      int    `toml:"advance_booking_days"`       // 0 = без ограничений
	MinBookingNoticeMinutes int    `toml:"min_booking_notice_minutes"` // минимальное время до начала слота

	location *time.Location
}

// Location часовой пояс бизнеса; все даты и слоты считаются в нём
func (c SchedulingConfig) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// InvalidationConfig публикация событий об изменении доступности в Redis
type InvalidationConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Channel  string `toml:"channel"`
	Timeout  int    `toml:"timeout"` // секунды
}

// MigrationConfig настройки пакетной миграции legacy-данных
type MigrationConfig struct {
	BatchSize int  `toml:"batch_size"`
	DryRun    bool `toml:"dry_run"`
}

// Load читает конфигурацию из TOML файла, подмешивает секреты из .env и окружения.
// Путь из CONFIG_PATH имеет приоритет над переданным.
func Load(path string) (*Config, error) {
	// .env опционален
	_ = godotenv.Load()

	if envPath := os.Getenv(EnvConfigPath); envPath != "" {
		path = envPath
	}

	cfg := defaults()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "scheduling_service",
		},
		Scheduling: SchedulingConfig{
			Timezone:                "UTC",
			AdvanceBookingDays:      domain.DefaultAdvanceBookingDays,
			MinBookingNoticeMinutes: domain.DefaultMinBookingNoticeMinutes,
		},
		Invalidation: InvalidationConfig{
			Addr:    "localhost:6379",
			Channel: "availability.invalidated",
			Timeout: 2,
		},
		Migration: MigrationConfig{
			BatchSize: 500,
		},
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvDBPassword); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		cfg.Invalidation.Password = v
	}
}

func (c *Config) validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port must be in 1..65535, got %d", ErrInvalidConfig, c.Server.HTTPPort)
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("%w: database.dbname is required", ErrInvalidConfig)
	}

	loc, err := time.LoadLocation(c.Scheduling.Timezone)
	if err != nil {
		return fmt.Errorf("%w: scheduling.timezone %q: %v", ErrInvalidConfig, c.Scheduling.Timezone, err)
	}
	c.Scheduling.location = loc

	if c.Scheduling.AdvanceBookingDays < 0 || c.Scheduling.AdvanceBookingDays > domain.MaxAdvanceBookingDays {
		return fmt.Errorf("%w: scheduling.advance_booking_days must be in 0..%d", ErrInvalidConfig, domain.MaxAdvanceBookingDays)
	}
	if c.Scheduling.MinBookingNoticeMinutes < 0 {
		return fmt.Errorf("%w: scheduling.min_booking_notice_minutes must not be negative", ErrInvalidConfig)
	}

	if c.Invalidation.Enabled && c.Invalidation.Channel == "" {
		return fmt.Errorf("%w: invalidation.channel is required when invalidation is enabled", ErrInvalidConfig)
	}
	if c.Migration.BatchSize <= 0 {
		return fmt.Errorf("%w: migration.batch_size must be positive", ErrInvalidConfig)
	}

	return nil
}
