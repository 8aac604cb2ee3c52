package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/content-console/api/responses"
	pkgerrors "github.com/angelmondragon/content-console/pkg/errors"
	"github.com/angelmondragon/content-console/pkg/logger"
)

// FixedWindowLimiter counts hits per scope inside a fixed window.
type FixedWindowLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimitPolicy caps requests per client IP inside a fixed window.
type RateLimitPolicy struct {
	name   string
	limit  int
	window time.Duration
}

func NewRateLimitPolicy(name string, limit int, window time.Duration) RateLimitPolicy {
	return RateLimitPolicy{name: strings.ToLower(strings.TrimSpace(name)), limit: limit, window: window}
}

func (p RateLimitPolicy) enabled() bool {
	return p.limit > 0 && p.window > 0
}

func (p RateLimitPolicy) scope(ip string) string {
	name := p.name
	if name == "" {
		name = "default"
	}
	return name + ":" + ip
}

// RateLimit throttles a route group. Without a limiter or with a disabled policy it is a no-op.
func RateLimit(policy RateLimitPolicy, limiter FixedWindowLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := clientIP(r)
			allowed, count, err := limiter.FixedWindowAllow(ctx, policy.scope(ip), int64(policy.limit), policy.window)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
				return
			}
			if !allowed {
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{
						"policy":         policy.name,
						"ip":             ip,
						"attempts":       count,
						"limit":          policy.limit,
						"window_seconds": int(policy.window.Seconds()),
					}), "rate_limit.blocked")
				}
				responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
