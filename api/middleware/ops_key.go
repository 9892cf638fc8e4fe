package middleware

import (
	"net/http"

	"github.com/shoplens/shoplens-backend/api/responses"
	"github.com/shoplens/shoplens-backend/pkg/config"
	pkgerrors "github.com/shoplens/shoplens-backend/pkg/errors"
	"github.com/shoplens/shoplens-backend/pkg/logger"
	"github.com/shoplens/shoplens-backend/pkg/security"
)

const opsKeyHeader = "X-Ops-Key"

// OpsKeyGuard restricts the ops surface to callers presenting the
// pre-shared key. The configured value is an argon2id hash, never the
// plaintext key.
func OpsKeyGuard(cfg config.OpsConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if cfg.KeyHash == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "ops surface disabled"))
				return
			}

			key := r.Header.Get(opsKeyHeader)
			if key == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing ops key"))
				return
			}

			ok, err := security.VerifyOpsKey(key, cfg.KeyHash)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying ops key"))
				return
			}
			if !ok {
				if logg != nil {
					logg.Warn(ctx, "ops.key_rejected")
				}
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid ops key"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
