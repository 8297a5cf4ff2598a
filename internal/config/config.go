package config

import (
	"time"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	CorsConfig
	APIConfig
	GateConfig
	StoreConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
	GetLogLevel() string
	GetSessionCookieMaxAge() int
	GetSessionIdleTimeout() time.Duration
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	API
	Gate
	Store
}

// New loads a .env file when one is present and returns the environment backed config.
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}
