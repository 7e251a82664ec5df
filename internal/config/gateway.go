package config

import (
	"strings"
	"time"
)

// GatewayConfig holds configuration for the CRM gateway.
type GatewayConfig struct {
	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool

	DBPath       string
	CampaignSeed string

	// AllowedOrigins always contains the LinkedIn origin followed by
	// CHROME_EXTENSION_ORIGIN entries.
	AllowedOrigins []string

	OdooRPCRate       float64
	ImageFetchTimeout time.Duration

	LogLevel string
	LogFile  string
}

// LoadGateway reads gateway configuration from environment variables.
func LoadGateway() (*GatewayConfig, error) {
	loadDotEnv()

	cfg := &GatewayConfig{
		BindAddr:          getEnvOrDefault("GATEWAY_BIND_ADDR", "127.0.0.1:8000"),
		PortCandidates:    getEnvListOrDefault("GATEWAY_PORT_CANDIDATES", []string{"127.0.0.1:8001", "127.0.0.1:8002"}),
		PortAutoFallback:  getEnvBoolOrDefault("GATEWAY_PORT_AUTO_FALLBACK", false),
		DBPath:            getEnvOrDefault("GATEWAY_DB_PATH", "./data/campaigns.db"),
		CampaignSeed:      getEnvOrDefault("GATEWAY_CAMPAIGN_SEED", "./config/campaigns.yaml"),
		AllowedOrigins:    append([]string{linkedInOrigin}, getEnvListOrDefault("CHROME_EXTENSION_ORIGIN", nil)...),
		OdooRPCRate:       getEnvFloatOrDefault("ODOO_RPC_RATE", 5),
		ImageFetchTimeout: time.Duration(getEnvIntOrDefault("IMAGE_FETCH_TIMEOUT_MS", 10000)) * time.Millisecond,
		LogLevel:          strings.ToLower(getEnvOrDefault("GATEWAY_LOG_LEVEL", "info")),
		LogFile:           getEnvOrDefault("GATEWAY_LOG_FILE", "logs/gateway.log"),
	}
	if cfg.ImageFetchTimeout < time.Second {
		cfg.ImageFetchTimeout = time.Second
	}
	if cfg.OdooRPCRate < 0 {
		cfg.OdooRPCRate = 0
	}
	return cfg, nil
}
