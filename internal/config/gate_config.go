package config

type GateConfig interface {
	GetLoginRedirect() string
	GetCatalogRedirect() string
}

type Gate struct{}

var _ GateConfig = Gate{}

func (Gate) GetLoginRedirect() string {
	return GetEnv("GATE_LOGIN_REDIRECT", "/register")
}

func (Gate) GetCatalogRedirect() string {
	return GetEnv("GATE_CATALOG_REDIRECT", "/courses")
}
