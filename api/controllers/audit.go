package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shoplens/shoplens-backend/api/responses"
	"github.com/shoplens/shoplens-backend/internal/audit"
	pkgerrors "github.com/shoplens/shoplens-backend/pkg/errors"
	"github.com/shoplens/shoplens-backend/pkg/logger"
)

// ListAuditEvents returns the shop's privacy trail. IPs are stored
// hashed, so the raw addresses never appear here.
func ListAuditEvents(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "audit service unavailable"))
			return
		}

		shopID, _, err := sessionScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := audit.ListParams{ShopID: shopID}
		if action := strings.TrimSpace(r.URL.Query().Get("action")); action != "" {
			params.Action = action
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
