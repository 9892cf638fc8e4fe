package models

import (
	"time"

	"github.com/google/uuid"
)

// Shop is an installed merchant store identified by its unique domain.
type Shop struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Domain      string    `gorm:"type:text;not null;uniqueIndex"`
	AccessToken string    `gorm:"type:text;not null"`
	AppURL      *string   `gorm:"type:text"`
	Active      bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time `gorm:"type:timestamptz;default:now()"`
	UpdatedAt   time.Time `gorm:"type:timestamptz;default:now()"`

	Sessions []ShopSession `gorm:"foreignKey:ShopID"`
}
