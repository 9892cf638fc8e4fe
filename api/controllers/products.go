package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shoplens/shoplens-backend/api/responses"
	"github.com/shoplens/shoplens-backend/api/validators"
	"github.com/shoplens/shoplens-backend/internal/products"
	"github.com/shoplens/shoplens-backend/internal/shops"
	pkgerrors "github.com/shoplens/shoplens-backend/pkg/errors"
	"github.com/shoplens/shoplens-backend/pkg/logger"
)

// ListProducts returns the shop's synced catalog snapshot.
func ListProducts(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "products service unavailable"))
			return
		}

		shopID, _, err := sessionScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := products.ListParams{ShopID: shopID}
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

type opsProductItem struct {
	ExternalID string `json:"external_id" validate:"required"`
	Title      string `json:"title" validate:"required"`
	Price      string `json:"price" validate:"required"`
	Currency   string `json:"currency"`
}

type opsSyncProductsRequest struct {
	opsShopRef
	Items []opsProductItem `json:"items" validate:"required,min=1,dive"`
}

// OpsSyncProducts upserts a batch of catalog rows reported by the
// storefront sync. Known external ids refresh in place.
func OpsSyncProducts(svc products.Service, shopSvc shops.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || shopSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ops services unavailable"))
			return
		}

		var body opsSyncProductsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shopID, err := resolveShop(r, shopSvc, body.opsShopRef)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]products.SyncItem, 0, len(body.Items))
		for _, item := range body.Items {
			price, err := decimal.NewFromString(strings.TrimSpace(item.Price))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price for "+item.ExternalID))
				return
			}
			items = append(items, products.SyncItem{
				ExternalID: item.ExternalID,
				Title:      item.Title,
				Price:      price,
				Currency:   item.Currency,
			})
		}

		synced, err := svc.Sync(r.Context(), shopID, items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{"synced": synced})
	}
}
