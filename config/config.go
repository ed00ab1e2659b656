package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Upstream UpstreamConfig
	Metrics  MetricsConfig
	DB       DBConfig
	Redis    RedisConfig
}

type AppConfig struct {
	Port     string
	Env      string
	Timezone string
	LogLevel string
}

type UpstreamConfig struct {
	BaseURL      string
	Timeout      time.Duration
	PollInterval time.Duration
	Filters      UpstreamFilters
}

// UpstreamFilters are sent with every poll so the feed narrows the records server-side.
// Empty values are not sent.
type UpstreamFilters struct {
	City      string
	Doctor    string
	Status    string
	Procedure string
	Insurance string
}

type MetricsConfig struct {
	CompletedIncludesPostSurgery bool
}

// DBConfig is optional. An empty Host disables the audit trail.
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (c DBConfig) Enabled() bool {
	return c.Host != ""
}

// RedisConfig is optional. An empty Host keeps the snapshot in process memory.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

func LoadConfig() (*Config, error) {
	if err := readConfig(); err != nil {
		return nil, err
	}

	upstreamTimeout, err := time.ParseDuration(viper.GetString("UPSTREAM_TIMEOUT"))
	if err != nil {
		upstreamTimeout = 10 * time.Second
	}

	pollInterval, err := time.ParseDuration(viper.GetString("POLL_INTERVAL"))
	if err != nil || pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}

	config := &Config{
		App: AppConfig{
			Port:     viper.GetString("APP_PORT"),
			Env:      viper.GetString("APP_ENV"),
			Timezone: viper.GetString("APP_TIMEZONE"),
			LogLevel: viper.GetString("LOG_LEVEL"),
		},
		Upstream: UpstreamConfig{
			BaseURL:      viper.GetString("UPSTREAM_BASE_URL"),
			Timeout:      upstreamTimeout,
			PollInterval: pollInterval,
			Filters: UpstreamFilters{
				City:      viper.GetString("UPSTREAM_FILTER_CITY"),
				Doctor:    viper.GetString("UPSTREAM_FILTER_DOCTOR"),
				Status:    viper.GetString("UPSTREAM_FILTER_STATUS"),
				Procedure: viper.GetString("UPSTREAM_FILTER_PROCEDURE"),
				Insurance: viper.GetString("UPSTREAM_FILTER_INSURANCE"),
			},
		},
		Metrics: MetricsConfig{
			CompletedIncludesPostSurgery: viper.GetBool("METRICS_COMPLETED_INCLUDES_POST_SURGERY"),
		},
		DB: loadDBConfig(),
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
	}

	if config.Upstream.BaseURL == "" {
		return nil, errors.New("UPSTREAM_BASE_URL is required")
	}

	return config, nil
}

// LoadDBConfig reads only the database settings, for tools that do not run the service.
func LoadDBConfig() (DBConfig, error) {
	if err := readConfig(); err != nil {
		return DBConfig{}, err
	}
	return loadDBConfig(), nil
}

func loadDBConfig() DBConfig {
	return DBConfig{
		Host:     viper.GetString("DB_HOST"),
		Port:     viper.GetString("DB_PORT"),
		User:     viper.GetString("DB_USER"),
		Password: viper.GetString("DB_PASSWORD"),
		Name:     viper.GetString("DB_NAME"),
		SSLMode:  viper.GetString("DB_SSLMODE"),
	}
}

func readConfig() error {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_TIMEZONE", "America/Sao_Paulo")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("UPSTREAM_TIMEOUT", "10s")
	viper.SetDefault("POLL_INTERVAL", "30s")
	viper.SetDefault("METRICS_COMPLETED_INCLUDES_POST_SURGERY", false)
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_PORT", "6379")

	// The .env file is optional; the environment alone is enough.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
