package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shoplens/shoplens-backend/pkg/enums"
)

// CompetitorSuggestion links a catalog product to a competitor listing we
// believe sells the same item. Rows are unique per (product, url).
type CompetitorSuggestion struct {
	ID           uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID       uuid.UUID              `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_suggestion_product_url"`
	SuggestedURL string                 `gorm:"type:text;not null;uniqueIndex:idx_suggestion_product_url"`
	Price        decimal.Decimal        `gorm:"type:numeric(12,2);not null"`
	Currency     string                 `gorm:"type:text;not null;default:'USD'"`
	Source       enums.SuggestionSource `gorm:"type:suggestion_source;not null"`
	Status       enums.SuggestionStatus `gorm:"type:suggestion_status;not null;default:'new'"`
	CreatedAt    time.Time              `gorm:"type:timestamptz;default:now()"`
	UpdatedAt    time.Time              `gorm:"type:timestamptz;default:now()"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
