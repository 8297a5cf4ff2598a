package config

import (
	"encoding/hex"
	"fmt"
	"time"
)

const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

type StoreConfig interface {
	GetTokenStore() string
	GetTokenStoreKey() (*[32]byte, error)
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisPrefix() string
	GetRedisTokenTTL() time.Duration
}

type Store struct{}

var _ StoreConfig = Store{}

// GetTokenStore selects where browser tokens live: memory, file or redis.
func (Store) GetTokenStore() string {
	return GetEnv("TOKEN_STORE", StoreMemory)
}

// GetTokenStoreKey returns the secretbox key for the file store, or nil when unset.
func (Store) GetTokenStoreKey() (*[32]byte, error) {
	raw := GetEnv("TOKEN_STORE_KEY", "")
	if raw == "" {
		return nil, nil
	}
	decoded, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("TOKEN_STORE_KEY: %w", err)
	}
	if len(decoded) != 32 {
		return nil, fmt.Errorf("TOKEN_STORE_KEY: want 32 bytes, got %d", len(decoded))
	}
	var key [32]byte
	copy(key[:], decoded)
	return &key, nil
}

func (Store) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "127.0.0.1:6379")
}

func (Store) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Store) GetRedisDB() int {
	return GetEnvInt("REDIS_DB", 0)
}

func (Store) GetRedisPrefix() string {
	return GetEnv("REDIS_PREFIX", "fewv")
}

// GetRedisTokenTTL of zero keeps tokens until logout.
func (Store) GetRedisTokenTTL() time.Duration {
	return GetEnvDuration("REDIS_TOKEN_TTL", 0)
}
