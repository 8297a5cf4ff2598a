package config

import (
	"strings"
	"time"
)

type APIConfig interface {
	GetAPIBaseURL() string
	GetAPITimeout() time.Duration
	GetEntitlementTimeout() time.Duration
}

type API struct{}

var _ APIConfig = API{}

// GetAPIBaseURL is the root of the remote course backend, without a trailing slash.
func (API) GetAPIBaseURL() string {
	return strings.TrimRight(GetEnv("API_BASE_URL", "http://localhost:3000"), "/")
}

// GetAPITimeout bounds every outbound call made to the backend.
func (API) GetAPITimeout() time.Duration {
	return GetEnvDuration("API_TIMEOUT", 15*time.Second)
}

func (API) GetEntitlementTimeout() time.Duration {
	return GetEnvDuration("ENTITLEMENT_TIMEOUT", 10*time.Second)
}
