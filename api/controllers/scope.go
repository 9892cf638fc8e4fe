package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/shoplens/shoplens-backend/api/middleware"
	pkgerrors "github.com/shoplens/shoplens-backend/pkg/errors"
)

// sessionScope resolves the authenticated shop and session identifiers
// seeded into the request context by the session middleware.
func sessionScope(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	rawShop := middleware.ShopIDFromContext(r.Context())
	if rawShop == "" {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "shop context missing")
	}
	shopID, err := uuid.Parse(rawShop)
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shop id")
	}

	rawSession := middleware.SessionIDFromContext(r.Context())
	if rawSession == "" {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "session context missing")
	}
	sessionID, err := uuid.Parse(rawSession)
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid session id")
	}

	return shopID, sessionID, nil
}
