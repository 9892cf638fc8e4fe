package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionTokenPayload carries the values minted into the session cookie.
type SessionTokenPayload struct {
	ShopID     uuid.UUID
	ShopDomain string
	// SessionID becomes the JWT jti and keys the server-side session row.
	SessionID string
}

// SessionTokenClaims is the typed claim set carried by the session cookie.
type SessionTokenClaims struct {
	ShopID     uuid.UUID `json:"shop_id"`
	ShopDomain string    `json:"shop_domain"`
	jwt.RegisteredClaims
}
