package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shoplens/shoplens-backend/api/middleware"
	"github.com/shoplens/shoplens-backend/api/responses"
	"github.com/shoplens/shoplens-backend/api/validators"
	"github.com/shoplens/shoplens-backend/internal/audit"
	"github.com/shoplens/shoplens-backend/internal/competitors"
	"github.com/shoplens/shoplens-backend/pkg/enums"
	pkgerrors "github.com/shoplens/shoplens-backend/pkg/errors"
	"github.com/shoplens/shoplens-backend/pkg/logger"
)

// ListSuggestions returns the shop's competitor suggestions with
// optional product and status filters.
func ListSuggestions(svc competitors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "competitors service unavailable"))
			return
		}

		shopID, _, err := sessionScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := competitors.ListParams{ShopID: shopID}

		if raw := strings.TrimSpace(r.URL.Query().Get("productId")); raw != "" {
			productID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
				return
			}
			params.ProductID = productID
		}
		if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
			params.Status = status
		}
		if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
			value, err := strconv.Atoi(limitStr)
			if err != nil || value <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			params.Limit = value
		}
		if cursor := strings.TrimSpace(r.URL.Query().Get("cursor")); cursor != "" {
			params.Cursor = cursor
		}

		resp, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

type reviewSuggestionRequest struct {
	Status string `json:"status" validate:"required"`
}

// ReviewSuggestion records the merchant's approve/ignore decision.
func ReviewSuggestion(svc competitors.Service, auditSvc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "competitors service unavailable"))
			return
		}

		shopID, sessionID, err := sessionScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		suggestionID, err := uuid.Parse(chi.URLParam(r, "suggestionId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid suggestion id"))
			return
		}

		var body reviewSuggestionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseSuggestionStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		if err := svc.Review(r.Context(), shopID, suggestionID, status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if auditSvc != nil {
			auditSvc.Record(r.Context(), audit.RecordParams{
				ShopID:    shopID,
				SessionID: &sessionID,
				Action:    enums.AuditActionSuggestionReview,
				Detail:    suggestionID.String() + ":" + string(status),
				ClientIP:  middleware.ClientIP(r),
			})
		}

		responses.WriteSuccess(w, map[string]string{"status": string(status)})
	}
}

// SuggestionSummary aggregates review progress and price position.
func SuggestionSummary(svc competitors.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "competitors service unavailable"))
			return
		}

		shopID, _, err := sessionScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Summary(r.Context(), shopID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
