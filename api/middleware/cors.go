package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows the configured console origins. The browser needs the confirmation and
// idempotency headers.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", confirmDeleteHeader, "X-Requested-With"},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}

const confirmDeleteHeader = "X-Confirm-Delete"
