package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a synced snapshot of a catalog item, the anchor for competitor
// suggestions and price-position analytics.
type Product struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID     uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_products_shop_external"`
	ExternalID string          `gorm:"type:text;not null;uniqueIndex:idx_products_shop_external"`
	Title      string          `gorm:"type:text;not null"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Currency   string          `gorm:"type:text;not null;default:'USD'"`
	CreatedAt  time.Time       `gorm:"type:timestamptz;default:now()"`
	UpdatedAt  time.Time       `gorm:"type:timestamptz;default:now()"`
}
