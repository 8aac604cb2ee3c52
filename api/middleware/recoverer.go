package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/angelmondragon/content-console/api/responses"
	pkgerrors "github.com/angelmondragon/content-console/pkg/errors"
	"github.com/angelmondragon/content-console/pkg/logger"
)

// Recoverer converts a handler panic into the INTERNAL_ERROR envelope and logs the
// route that raised it. http.ErrAbortHandler is re-raised for net/http to handle.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				err := fmt.Errorf("console handler panic: %v", rec)
				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithFields(ctx, map[string]any{
						"panic":  fmt.Sprint(rec),
						"method": r.Method,
						"path":   r.URL.Path,
						"route":  routePattern(r),
					})
					logg.Error(ctx, "console.panic_recovered", err)
				}
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "handler panic"))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
