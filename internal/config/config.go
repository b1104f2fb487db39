package config

import (
	"fmt"
	"strings"

	"github.com/LankaTrails/service-booking/internal/platform/config"
	"github.com/LankaTrails/service-booking/internal/platform/domain"
)

// Store backends selectable with BOOKING_STORE.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port         string
	AppEnv       string
	Store        string
	Currency     string
	TxMaxRetries int
	DBConfig     config.DatabaseConfig
	JWTConfig    config.JWTConfig
	KafkaConfig  config.KafkaConfig
	RedisConfig  config.RedisConfig
}

// Load reads configuration from environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("BOOKING")
	if err != nil {
		return nil, err
	}
	v.SetDefault("SERVICE_PORT", ":8003")
	v.SetDefault("DB_NAME", "booking_db")
	v.SetDefault("STORE", StorePostgres)
	v.SetDefault("CURRENCY", domain.CurrencyLKR)
	v.SetDefault("TX_MAX_RETRIES", 3)

	cfg := &ServiceConfig{
		Port:         config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:       config.GetAppEnv(v),
		Store:        strings.ToLower(v.GetString("STORE")),
		Currency:     strings.ToUpper(v.GetString("CURRENCY")),
		TxMaxRetries: v.GetInt("TX_MAX_RETRIES"),
		DBConfig:     config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:    config.LoadJWTConfig(v),
		KafkaConfig:  config.LoadKafkaConfig(v),
		RedisConfig:  config.LoadRedisConfig(v),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ServiceConfig) validate() error {
	if c.Store != StorePostgres && c.Store != StoreMemory {
		return fmt.Errorf("invalid BOOKING_STORE %q: want %s or %s", c.Store, StorePostgres, StoreMemory)
	}
	if len(c.Currency) != 3 {
		return fmt.Errorf("invalid BOOKING_CURRENCY %q", c.Currency)
	}
	if c.TxMaxRetries < 1 {
		return fmt.Errorf("BOOKING_TX_MAX_RETRIES must be at least 1")
	}
	return nil
}
