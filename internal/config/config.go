package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultTimezone       = "America/Santiago"
	defaultWelcomeMessage = "Bienvenido al Terminal de Buses de Coyhaique"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret string
	AccessTTL    time.Duration
}

type TerminalConfig struct {
	Timezone       string
	Location       *time.Location
	WelcomeMessage string
}

type LogConfig struct {
	File           string
	FileMaxSizeMB  int
	FileMaxBackups int
	FileMaxAgeDays int
}

type MetricsConfig struct {
	Enabled bool
}

type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Terminal    TerminalConfig
	Log         LogConfig
	Metrics     MetricsConfig
	NATS        NATSConfig
}

func Load() (*Config, error) {
	// .env is optional; explicit environment always wins.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("NATS_SUBJECT_PREFIX", "terminal")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
			AccessTTL:    v.GetDuration("JWT_ACCESS_TTL"),
		},
		Terminal: TerminalConfig{
			Timezone:       v.GetString("TERMINAL_TIMEZONE"),
			WelcomeMessage: v.GetString("TERMINAL_WELCOME_MESSAGE"),
		},
		Log: LogConfig{
			File:           v.GetString("LOG_FILE"),
			FileMaxSizeMB:  v.GetInt("LOG_FILE_MAX_SIZE_MB"),
			FileMaxBackups: v.GetInt("LOG_FILE_MAX_BACKUPS"),
			FileMaxAgeDays: v.GetInt("LOG_FILE_MAX_AGE_DAYS"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
		NATS: NATSConfig{
			URL:           v.GetString("NATS_URL"),
			SubjectPrefix: v.GetString("NATS_SUBJECT_PREFIX"),
		},
	}

	applyDefaults(cfg)

	loc, err := time.LoadLocation(cfg.Terminal.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TERMINAL_TIMEZONE %q: %w", cfg.Terminal.Timezone, err)
	}
	cfg.Terminal.Location = loc

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 5000
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Auth.AccessTTL <= 0 {
		cfg.Auth.AccessTTL = 12 * time.Hour
	}
	if cfg.Terminal.Timezone == "" {
		cfg.Terminal.Timezone = defaultTimezone
	}
	if cfg.Terminal.WelcomeMessage == "" {
		cfg.Terminal.WelcomeMessage = defaultWelcomeMessage
	}
	if cfg.Log.FileMaxSizeMB <= 0 {
		cfg.Log.FileMaxSizeMB = 10
	}
	if cfg.Log.FileMaxBackups <= 0 {
		cfg.Log.FileMaxBackups = 7
	}
	if cfg.Log.FileMaxAgeDays <= 0 {
		cfg.Log.FileMaxAgeDays = 7
	}
	if cfg.NATS.SubjectPrefix == "" {
		cfg.NATS.SubjectPrefix = "terminal"
	}
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	return nil
}
