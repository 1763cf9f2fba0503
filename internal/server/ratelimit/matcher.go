package ratelimit

import (
	"strings"
)

// MatchEndpoint matches a request path and method to an endpoint configuration.
// Returns the matching EndpointConfig or nil if no match is found.
// Patterns ending in "/" match by prefix, optionally restricted by Suffix.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	// Health checks are never limited
	if path == "/health" && (method == "GET" || method == "HEAD") {
		return &EndpointConfig{Name: "health"}
	}

	for i := range configs {
		config := &configs[i]
		if config.Path == path && config.Method == method {
			return config
		}
	}

	for i := range configs {
		config := &configs[i]
		if config.Method != method || !strings.HasSuffix(config.Path, "/") {
			continue
		}
		if strings.HasPrefix(path, config.Path) && strings.HasSuffix(path, config.Suffix) {
			return config
		}
	}

	return nil
}

// class returns the bucket class of a config.
func (c *EndpointConfig) class() string {
	if c.Name != "" {
		return c.Name + ":" + c.Method
	}
	return c.Path + "*" + c.Suffix + ":" + c.Method
}
