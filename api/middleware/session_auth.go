package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/shoplens/shoplens-backend/api/responses"
	"github.com/shoplens/shoplens-backend/pkg/auth"
	"github.com/shoplens/shoplens-backend/pkg/config"
	pkgerrors "github.com/shoplens/shoplens-backend/pkg/errors"
	"github.com/shoplens/shoplens-backend/pkg/logger"
)

// SessionVerifier checks that a session referenced by a cookie token is
// still active and records the access.
type SessionVerifier interface {
	VerifyAndTouch(ctx context.Context, sessionID, shopID string) error
}

// SessionAuth authenticates requests via the shop session cookie. The
// cookie carries a signed token whose jti is the session row id; the
// signature proves issuance, the verifier proves the session has not
// been revoked or expired since.
func SessionAuth(cfg config.SessionConfig, verifier SessionVerifier, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			cookie, err := r.Cookie(cfg.CookieName)
			if err != nil || cookie.Value == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session cookie"))
				return
			}

			claims, err := auth.ParseSessionToken(cfg, cookie.Value)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid session token"))
				return
			}

			sessionID := claims.ID
			if sessionID == "" || claims.ShopID == uuid.Nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "malformed session token"))
				return
			}

			shopID := claims.ShopID.String()

			if verifier != nil {
				if err := verifier.VerifyAndTouch(ctx, sessionID, shopID); err != nil {
					var coded *pkgerrors.Error
					if !errors.As(err, &coded) {
						err = pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "session verification failed")
					}
					responses.WriteError(ctx, logg, w, err)
					return
				}
			}

			ctx = WithShopID(ctx, shopID)
			ctx = WithShopDomain(ctx, claims.ShopDomain)
			ctx = WithSessionID(ctx, sessionID)
			if logg != nil {
				ctx = logg.WithShopID(ctx, shopID)
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
