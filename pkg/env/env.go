package env

import (
	"os"
	"strings"
)

// Get returns the trimmed value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// ListenAddr builds the console's listen address. The platform-injected PORT wins over
// the configured port; either may be given with or without a leading colon.
func ListenAddr(fallbackPort string) string {
	port := strings.TrimPrefix(Get("PORT", strings.TrimSpace(fallbackPort)), ":")
	if port == "" {
		port = "8080"
	}
	return ":" + port
}
