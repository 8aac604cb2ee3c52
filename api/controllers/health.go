package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/angelmondragon/content-console/api/responses"
	pkgerrors "github.com/angelmondragon/content-console/pkg/errors"
	"github.com/angelmondragon/content-console/pkg/config"
	"github.com/angelmondragon/content-console/pkg/logger"
)

const readyTimeout = 3 * time.Second

// Pinger is any dependency the readiness check pings.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Console-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every configured dependency; nil pingers are skipped.
func HealthReady(cfg *config.Config, deps map[string]Pinger, logg *logger.Logger) http.HandlerFunc {
	names := make([]string, 0, len(deps))
	for name, p := range deps {
		if p != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Console-Env", cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := make(map[string]string, len(names))
		failed := false
		for _, name := range names {
			if err := deps[name].Ping(ctx); err != nil {
				checks[name] = err.Error()
				failed = true
				continue
			}
			checks[name] = "ok"
		}
		if failed {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency check failed").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
