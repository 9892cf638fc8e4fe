package models

import (
	"time"

	"github.com/google/uuid"
)

// ShopSession is one browser login for a shop. Each device carries its own
// access token, so rotating one session never disturbs its siblings.
type ShopSession struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	AccessToken    string     `gorm:"type:text;not null"`
	UserAgent      string     `gorm:"type:text"`
	IPHash         string     `gorm:"type:text"`
	IsActive       bool       `gorm:"not null;default:true;index"`
	ExpiresAt      time.Time  `gorm:"type:timestamptz;not null"`
	LastAccessedAt time.Time  `gorm:"type:timestamptz;not null"`
	CreatedAt      time.Time  `gorm:"type:timestamptz;default:now()"`
	DeactivatedAt  *time.Time `gorm:"type:timestamptz"`

	Shop *Shop `gorm:"foreignKey:ShopID"`
}
