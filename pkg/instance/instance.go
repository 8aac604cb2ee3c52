package instance

import "os"

// GetID identifies this process in logs and lock diagnostics. CONSOLE_WORKER_ID wins,
// then the hostname.
func GetID() string {
	if id := os.Getenv("CONSOLE_WORKER_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "sweeper-0"
}
