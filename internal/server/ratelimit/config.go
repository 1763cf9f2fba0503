package ratelimit

import (
	"time"

	"github.com/jonathan/services-gateway/internal/config"
)

// EndpointConfig represents rate limiting configuration for a class of endpoints.
type EndpointConfig struct {
	Name   string        // Bucket class; requests matching the same config share a bucket
	Path   string        // Path pattern (exact, or prefix when ending in "/")
	Suffix string        // Optional required path suffix for prefix patterns
	Method string        // HTTP method (GET, HEAD, ...)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	enabled := config.GetEnvBool("RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{
			Enabled: false,
		}
	}

	return &Config{
		Enabled:         enabled,
		DefaultLimit:    config.GetEnvInt("RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   config.GetEnvDuration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: config.GetEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		Whitelist:       config.GetEnvList("RATE_LIMIT_WHITELIST"),
		Blacklist:       config.GetEnvList("RATE_LIMIT_BLACKLIST"),
		EndpointConfigs: DefaultEndpointConfigs(
			config.GetEnvInt("RATE_LIMIT_DOWNLOAD_LIMIT", 120),
			config.GetEnvDuration("RATE_LIMIT_DOWNLOAD_WINDOW", time.Minute),
		),
	}
}

// DefaultEndpointConfigs returns the endpoint classes of the gateway.
// Raw downloads are limited separately from (and usually tighter than) HTML
// views, which fall back to the default limit.
func DefaultEndpointConfigs(downloadLimit int, downloadWindow time.Duration) []EndpointConfig {
	burst := downloadLimit / 6
	if burst < 1 {
		burst = downloadLimit
	}

	var configs []EndpointConfig
	for _, method := range []string{"GET", "HEAD"} {
		configs = append(configs,
			EndpointConfig{Name: "download", Path: "/services.json", Method: method, Limit: downloadLimit, Window: downloadWindow, Burst: burst},
			EndpointConfig{Name: "download", Path: "/services/", Suffix: ".json", Method: method, Limit: downloadLimit, Window: downloadWindow, Burst: burst},
		)
	}
	return configs
}
