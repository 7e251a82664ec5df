package config

import (
	"strconv"
	"strings"
	"time"
)

// UploaderConfig holds configuration for the browser-side uploader.
type UploaderConfig struct {
	CDPAddress      string
	CDPPort         int
	TabURLFilter    string
	ActionTimeoutMS int

	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool

	SessionDir string

	// GatewayURL is used as backend URL when the saved credentials lack one.
	GatewayURL       string
	GatewayTimeoutMS int

	OverlayIntervalMS int
	OverlayAttempts   int

	LaunchBrowser bool
	BrowserPath   string
	ProfileDir    string
	Headless      bool

	NtfyEndpoint string

	LogLevel string
	LogFile  string
}

// LoadUploader reads uploader configuration from environment variables.
func LoadUploader() (*UploaderConfig, error) {
	loadDotEnv()

	cfg := &UploaderConfig{
		CDPAddress:        getEnvOrDefault("CHROMIUM_CDP_ADDRESS", "127.0.0.1"),
		CDPPort:           getEnvIntOrDefault("CHROMIUM_CDP_PORT", 9220),
		TabURLFilter:      getEnvOrDefault("UPLOADER_TAB_URL_FILTER", "linkedin.com/in/"),
		ActionTimeoutMS:   getEnvIntOrDefault("UPLOADER_ACTION_TIMEOUT_MS", 5000),
		BindAddr:          getEnvOrDefault("UPLOADER_BIND_ADDR", "127.0.0.1:8190"),
		PortCandidates:    getEnvListOrDefault("UPLOADER_PORT_CANDIDATES", []string{"127.0.0.1:8191", "127.0.0.1:8192"}),
		PortAutoFallback:  getEnvBoolOrDefault("UPLOADER_PORT_AUTO_FALLBACK", true),
		SessionDir:        getEnvOrDefault("UPLOADER_SESSION_DIR", "./session"),
		GatewayURL:        strings.TrimRight(getEnvOrDefault("UPLOADER_GATEWAY_URL", "http://127.0.0.1:8000"), "/"),
		GatewayTimeoutMS:  getEnvIntOrDefault("UPLOADER_GATEWAY_TIMEOUT_MS", 60000),
		OverlayIntervalMS: getEnvIntOrDefault("UPLOADER_OVERLAY_INTERVAL_MS", 250),
		OverlayAttempts:   getEnvIntOrDefault("UPLOADER_OVERLAY_ATTEMPTS", 20),
		LaunchBrowser:     getEnvBoolOrDefault("UPLOADER_LAUNCH_BROWSER", false),
		BrowserPath:       getEnvOrDefault("UPLOADER_BROWSER_PATH", ""),
		ProfileDir:        getEnvOrDefault("UPLOADER_PROFILE_DIR", "./browser_profile"),
		Headless:          getEnvBoolOrDefault("UPLOADER_HEADLESS", false),
		NtfyEndpoint:      getEnvOrDefault("NTFY_ENDPOINT", ""),
		LogLevel:          strings.ToLower(getEnvOrDefault("UPLOADER_LOG_LEVEL", "info")),
		LogFile:           getEnvOrDefault("UPLOADER_LOG_FILE", "logs/uploader.log"),
	}
	if cfg.ActionTimeoutMS < 1000 {
		cfg.ActionTimeoutMS = 1000
	}
	if cfg.OverlayIntervalMS < 50 {
		cfg.OverlayIntervalMS = 50
	}
	if cfg.OverlayAttempts < 1 {
		cfg.OverlayAttempts = 1
	}
	return cfg, nil
}

// CDPURL returns the CDP endpoint URL for the chromedp remote allocator.
func (c *UploaderConfig) CDPURL() string {
	return "http://" + c.CDPAddress + ":" + strconv.Itoa(c.CDPPort)
}

func (c *UploaderConfig) ActionTimeout() time.Duration {
	return time.Duration(c.ActionTimeoutMS) * time.Millisecond
}

func (c *UploaderConfig) GatewayTimeout() time.Duration {
	return time.Duration(c.GatewayTimeoutMS) * time.Millisecond
}

func (c *UploaderConfig) OverlayInterval() time.Duration {
	return time.Duration(c.OverlayIntervalMS) * time.Millisecond
}
