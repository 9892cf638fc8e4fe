package controllers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shoplens/shoplens-backend/api/middleware"
	"github.com/shoplens/shoplens-backend/api/responses"
	"github.com/shoplens/shoplens-backend/internal/audit"
	"github.com/shoplens/shoplens-backend/internal/sessions"
	"github.com/shoplens/shoplens-backend/internal/shops"
	pkgauth "github.com/shoplens/shoplens-backend/pkg/auth"
	"github.com/shoplens/shoplens-backend/pkg/config"
	"github.com/shoplens/shoplens-backend/pkg/enums"
	pkgerrors "github.com/shoplens/shoplens-backend/pkg/errors"
	"github.com/shoplens/shoplens-backend/pkg/logger"
)

type installResponse struct {
	Shop         string `json:"shop"`
	AuthorizeURL string `json:"authorize_url"`
}

// ShopifyInstall validates the shop domain and hands back the authorize
// URL the storefront should redirect the merchant to. The token exchange
// itself happens on the Shopify side.
func ShopifyInstall(cfg config.ShopifyConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		domain := shops.NormalizeDomain(r.URL.Query().Get("shop"))
		if err := validateShopDomain(domain); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		authorize, err := buildAuthorizeURL(cfg, domain)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build authorize url"))
			return
		}

		responses.WriteSuccess(w, installResponse{Shop: domain, AuthorizeURL: authorize})
	}
}

// ShopifyCallback completes an install: the shop row is upserted, a new
// device session starts, and the signed cookie rides the redirect back
// to the app.
func ShopifyCallback(shopSvc shops.Service, sessionSvc sessions.Service, auditSvc audit.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if shopSvc == nil || sessionSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "install services unavailable"))
			return
		}

		domain := shops.NormalizeDomain(r.URL.Query().Get("shop"))
		if err := validateShopDomain(domain); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		token := strings.TrimSpace(r.URL.Query().Get("token"))
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "token parameter required"))
			return
		}

		shop, err := shopSvc.Install(r.Context(), shops.InstallParams{
			Domain:      domain,
			AccessToken: token,
			AppURL:      cfg.Shopify.AppURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clientIP := middleware.ClientIP(r)
		session, err := sessionSvc.Start(r.Context(), sessions.StartParams{
			ShopID:    shop.ID,
			UserAgent: r.UserAgent(),
			ClientIP:  clientIP,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		now := time.Now().UTC()
		signed, err := pkgauth.MintSessionToken(cfg.Session, now, pkgauth.SessionTokenPayload{
			ShopID:     shop.ID,
			ShopDomain: shop.Domain,
			SessionID:  session.ID.String(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session token"))
			return
		}
		http.SetCookie(w, pkgauth.NewSessionCookie(cfg.Session, signed, now))

		if auditSvc != nil {
			auditSvc.Record(r.Context(), audit.RecordParams{
				ShopID:   shop.ID,
				Action:   enums.AuditActionInstall,
				Detail:   shop.Domain,
				ClientIP: clientIP,
			})
			auditSvc.Record(r.Context(), audit.RecordParams{
				ShopID:    shop.ID,
				SessionID: &session.ID,
				Action:    enums.AuditActionSessionCreated,
				Detail:    r.UserAgent(),
				ClientIP:  clientIP,
			})
		}

		target := cfg.Shopify.AppURL
		if shop.AppURL != nil && *shop.AppURL != "" {
			target = *shop.AppURL
		}
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// ShopifyLogout retires the current session and expires the cookie.
func ShopifyLogout(sessionSvc sessions.Service, auditSvc audit.Service, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessionSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sessions service unavailable"))
			return
		}

		shopID, sessionID, err := sessionScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := sessionSvc.Logout(r.Context(), shopID, sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		http.SetCookie(w, pkgauth.ClearSessionCookie(cfg))

		if auditSvc != nil {
			auditSvc.Record(r.Context(), audit.RecordParams{
				ShopID:    shopID,
				SessionID: &sessionID,
				Action:    enums.AuditActionLogout,
				ClientIP:  middleware.ClientIP(r),
			})
		}

		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

type sessionDescriptor struct {
	SessionID      uuid.UUID `json:"session_id"`
	ShopID         uuid.UUID `json:"shop_id"`
	ShopDomain     string    `json:"shop_domain"`
	UserAgent      string    `json:"user_agent"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// ShopifySession describes the caller's current session.
func ShopifySession(sessionSvc sessions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessionSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sessions service unavailable"))
			return
		}

		_, sessionID, err := sessionScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := sessionSvc.Current(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sessionDescriptor{
			SessionID:      session.ID,
			ShopID:         session.ShopID,
			ShopDomain:     middleware.ShopDomainFromContext(r.Context()),
			UserAgent:      session.UserAgent,
			CreatedAt:      session.CreatedAt,
			LastAccessedAt: session.LastAccessedAt,
			ExpiresAt:      session.ExpiresAt,
		})
	}
}

// validateShopDomain rejects anything that is not a bare hostname.
func validateShopDomain(domain string) error {
	if domain == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop parameter required")
	}
	if strings.ContainsAny(domain, "/:?#@ ") || !strings.Contains(domain, ".") {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop must be a bare domain")
	}
	return nil
}

func buildAuthorizeURL(cfg config.ShopifyConfig, domain string) (string, error) {
	raw := strings.ReplaceAll(cfg.AuthorizeURL, "{shop}", domain)
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	q := u.Query()
	if cfg.APIKey != "" {
		q.Set("client_id", cfg.APIKey)
	}
	if cfg.Scopes != "" {
		q.Set("scope", cfg.Scopes)
	}
	if cfg.AppURL != "" {
		q.Set("redirect_uri", strings.TrimRight(cfg.AppURL, "/")+"/api/auth/shopify/callback")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
