package config

import (
	"fmt"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Environment string

const (
	Live Environment = "live"
	Beta Environment = "beta"
	Dev  Environment = "dev"
)

type StorageMode string

const (
	// StoragePostgres keeps links and profiles in Postgres.
	StoragePostgres StorageMode = "postgres"
	// StorageMemory keeps everything in process memory. Dev and tests only;
	// all data is lost on restart.
	StorageMemory StorageMode = "memory"
)

type LinkliConfig struct {
	Env         Environment
	Addr        string
	BaseUrl     string
	LogLevel    zerolog.Level
	StorageMode StorageMode

	Postgres PostgresConfig
	Identity IdentityConfig
}

type PostgresConfig struct {
	User     string
	Password string
	Hostname string
	Port     int
	DbName   string
	LogLevel tracelog.LogLevel
	MinConn  int32
	MaxConn  int32
}

func (info PostgresConfig) DSN() string {
	return fmt.Sprintf("user=%s password=%s host=%s port=%d dbname=%s", info.User, info.Password, info.Hostname, info.Port, info.DbName)
}

type IdentityConfig struct {
	// Base URL of the identity provider's management API,
	// e.g. "https://api.clerk.com/v1".
	BaseUrl string
	APIKey  string

	// Shared secret for verifying session JWTs minted by the provider.
	JWTSecret string
	// Shared secret for verifying webhook signatures.
	WebhookSecret string
}

var Config = load()

func load() LinkliConfig {
	viper.SetDefault("ENV", string(Dev))
	viper.SetDefault("ADDR", "localhost:9001")
	viper.SetDefault("BASE_URL", "http://localhost:9001")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("STORAGE_MODE", string(StoragePostgres))

	viper.SetDefault("POSTGRES_USER", "linkli")
	viper.SetDefault("POSTGRES_PASSWORD", "password")
	viper.SetDefault("POSTGRES_HOSTNAME", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_DBNAME", "linkli")
	viper.SetDefault("POSTGRES_LOG_LEVEL", "warn")
	viper.SetDefault("POSTGRES_MIN_CONN", 2)
	viper.SetDefault("POSTGRES_MAX_CONN", 10)

	viper.SetDefault("IDENTITY_BASE_URL", "")
	viper.SetDefault("IDENTITY_API_KEY", "")
	viper.SetDefault("IDENTITY_JWT_SECRET", "")
	viper.SetDefault("IDENTITY_WEBHOOK_SECRET", "")

	viper.AutomaticEnv()

	// A .env file never overrides real environment variables.
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	_ = viper.ReadInConfig()

	logLevel, err := zerolog.ParseLevel(viper.GetString("LOG_LEVEL"))
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	pgLogLevel, err := tracelog.LogLevelFromString(viper.GetString("POSTGRES_LOG_LEVEL"))
	if err != nil {
		pgLogLevel = tracelog.LogLevelWarn
	}

	return LinkliConfig{
		Env:         Environment(viper.GetString("ENV")),
		Addr:        viper.GetString("ADDR"),
		BaseUrl:     viper.GetString("BASE_URL"),
		LogLevel:    logLevel,
		StorageMode: StorageMode(viper.GetString("STORAGE_MODE")),
		Postgres: PostgresConfig{
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			Hostname: viper.GetString("POSTGRES_HOSTNAME"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			DbName:   viper.GetString("POSTGRES_DBNAME"),
			LogLevel: pgLogLevel,
			MinConn:  viper.GetInt32("POSTGRES_MIN_CONN"),
			MaxConn:  viper.GetInt32("POSTGRES_MAX_CONN"),
		},
		Identity: IdentityConfig{
			BaseUrl:       viper.GetString("IDENTITY_BASE_URL"),
			APIKey:        viper.GetString("IDENTITY_API_KEY"),
			JWTSecret:     viper.GetString("IDENTITY_JWT_SECRET"),
			WebhookSecret: viper.GetString("IDENTITY_WEBHOOK_SECRET"),
		},
	}
}
