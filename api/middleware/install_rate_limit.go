package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/shoplens/shoplens-backend/api/responses"
	"github.com/shoplens/shoplens-backend/pkg/config"
	pkgerrors "github.com/shoplens/shoplens-backend/pkg/errors"
	"github.com/shoplens/shoplens-backend/pkg/logger"
)

// RateLimiter is the slice of the redis client the limiter needs.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// InstallRateLimitPolicy throttles the OAuth install entrypoints per
// client IP and per shop domain so one misbehaving storefront cannot
// exhaust the install flow for everyone behind the same proxy.
type InstallRateLimitPolicy struct {
	name      string
	window    time.Duration
	ipLimit   int64
	shopLimit int64
}

func NewInstallRateLimitPolicy(cfg config.RateLimitConfig) InstallRateLimitPolicy {
	return InstallRateLimitPolicy{
		name:      "install",
		window:    cfg.InstallWindow,
		ipLimit:   int64(cfg.InstallIPLimit),
		shopLimit: int64(cfg.InstallShopLimit),
	}
}

func (p InstallRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.shopLimit > 0)
}

func (p InstallRateLimitPolicy) ipScope(ip string) string {
	return fmt.Sprintf("ip:%s:%s", p.name, hashValue(ip))
}

func (p InstallRateLimitPolicy) shopScope(domain string) string {
	return fmt.Sprintf("shop:%s:%s", p.name, hashValue(strings.ToLower(domain)))
}

// InstallRateLimit enforces the policy on requests carrying a shop
// query parameter. Limiter outages fail open.
func InstallRateLimit(policy InstallRateLimitPolicy, limiter RateLimiter, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || !policy.enabled() {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()

			if policy.ipLimit > 0 {
				ip := ClientIP(r)
				allowed, count, err := limiter.FixedWindowAllow(ctx, policy.ipScope(ip), policy.ipLimit, policy.window)
				if err != nil {
					if logg != nil {
						logg.Warn(logg.WithFields(ctx, map[string]any{"scope": "ip", "error": err.Error()}), "rate_limit.check_failed")
					}
				} else if !allowed {
					respondRateLimited(ctx, logg, w, "ip", count)
					return
				}
			}

			if policy.shopLimit > 0 {
				if domain := strings.TrimSpace(r.URL.Query().Get("shop")); domain != "" {
					allowed, count, err := limiter.FixedWindowAllow(ctx, policy.shopScope(domain), policy.shopLimit, policy.window)
					if err != nil {
						if logg != nil {
							logg.Warn(logg.WithFields(ctx, map[string]any{"scope": "shop", "error": err.Error()}), "rate_limit.check_failed")
						}
					} else if !allowed {
						respondRateLimited(ctx, logg, w, "shop", count)
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func respondRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, scope string, count int64) {
	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{
			"scope": scope,
			"count": count,
		})
		logg.Warn(ctx, "rate_limit.exceeded")
	}
	responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many install attempts"))
}

// ClientIP resolves the caller address, preferring proxy headers.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-Ip")); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// hashValue keeps raw IPs and domains out of redis keys.
func hashValue(v string) string {
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:])
}
