package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shoplens/shoplens-backend/api/responses"
	"github.com/shoplens/shoplens-backend/api/validators"
	"github.com/shoplens/shoplens-backend/internal/competitors"
	"github.com/shoplens/shoplens-backend/internal/notifications"
	"github.com/shoplens/shoplens-backend/internal/shops"
	"github.com/shoplens/shoplens-backend/pkg/enums"
	pkgerrors "github.com/shoplens/shoplens-backend/pkg/errors"
	"github.com/shoplens/shoplens-backend/pkg/logger"
)

type opsShopRef struct {
	ShopID     string `json:"shop_id"`
	ShopDomain string `json:"shop_domain"`
}

// resolveShop accepts either an id or a domain reference.
func resolveShop(r *http.Request, shopSvc shops.Service, ref opsShopRef) (uuid.UUID, error) {
	if raw := strings.TrimSpace(ref.ShopID); raw != "" {
		shopID, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shop id")
		}
		shop, err := shopSvc.GetByID(r.Context(), shopID)
		if err != nil {
			return uuid.Nil, err
		}
		return shop.ID, nil
	}
	if domain := strings.TrimSpace(ref.ShopDomain); domain != "" {
		shop, err := shopSvc.GetByDomain(r.Context(), domain)
		if err != nil {
			return uuid.Nil, err
		}
		return shop.ID, nil
	}
	return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "shop_id or shop_domain required")
}

type opsNotificationRequest struct {
	opsShopRef
	SessionID string `json:"session_id"`
	Title     string `json:"title" validate:"required,max=200"`
	Message   string `json:"message" validate:"required,max=2000"`
	Type      string `json:"type" validate:"required"`
	Category  string `json:"category"`
	Scope     string `json:"scope"`
}

// OpsCreateNotification inserts a notification for a shop. Leaving
// session_id empty makes it shop-wide.
func OpsCreateNotification(svc notifications.Service, shopSvc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || shopSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ops services unavailable"))
			return
		}

		var body opsNotificationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shopID, err := resolveShop(r, shopSvc, body.opsShopRef)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := notifications.CreateParams{ShopID: shopID, Title: body.Title, Message: body.Message}

		notifType, err := enums.ParseNotificationType(body.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type"))
			return
		}
		params.Type = notifType

		if raw := strings.TrimSpace(body.Category); raw != "" {
			category, err := enums.ParseNotificationCategory(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
				return
			}
			params.Category = category
		}
		if raw := strings.TrimSpace(body.Scope); raw != "" {
			scope, err := enums.ParseNotificationScope(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid scope"))
				return
			}
			params.Scope = scope
		}
		if raw := strings.TrimSpace(body.SessionID); raw != "" {
			sessionID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid session id"))
				return
			}
			params.SessionID = &sessionID
		}

		notification, err := svc.Create(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, notification)
	}
}

type opsSuggestionRequest struct {
	opsShopRef
	ProductID         string `json:"product_id"`
	ProductExternalID string `json:"product_external_id"`
	SuggestedURL      string `json:"suggested_url" validate:"required,url"`
	Price             string `json:"price" validate:"required"`
	Currency          string `json:"currency"`
	Source            string `json:"source" validate:"required"`
}

type opsSuggestionResponse struct {
	SuggestionID uuid.UUID `json:"suggestion_id"`
	Created      bool      `json:"created"`
}

// OpsIngestSuggestion feeds one competitor listing into the suggestion
// store. Replays of a known (product, url) pair refresh the price.
func OpsIngestSuggestion(svc competitors.Service, shopSvc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || shopSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ops services unavailable"))
			return
		}

		var body opsSuggestionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shopID, err := resolveShop(r, shopSvc, body.opsShopRef)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := decimal.NewFromString(strings.TrimSpace(body.Price))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price"))
			return
		}
		source, err := enums.ParseSuggestionSource(body.Source)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid source"))
			return
		}

		params := competitors.IngestParams{
			ShopID:            shopID,
			ProductExternalID: body.ProductExternalID,
			SuggestedURL:      body.SuggestedURL,
			Price:             price,
			Currency:          body.Currency,
			Source:            source,
		}
		if raw := strings.TrimSpace(body.ProductID); raw != "" {
			productID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
				return
			}
			params.ProductID = productID
		}

		suggestion, created, err := svc.Ingest(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, opsSuggestionResponse{SuggestionID: suggestion.ID, Created: created})
	}
}
