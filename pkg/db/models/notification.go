package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/shoplens/shoplens-backend/pkg/enums"
)

// Notification stores in-app messages scoped to a shop. A nil SessionID means
// shop-wide: every session of the shop sees it. Deletion is always soft so the
// audit history survives.
type Notification struct {
	ID        uuid.UUID                  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID    uuid.UUID                  `gorm:"type:uuid;not null;index"`
	SessionID *uuid.UUID                 `gorm:"type:uuid;index"`
	Title     string                     `gorm:"type:text;not null"`
	Message   string                     `gorm:"type:text;not null"`
	Type      enums.NotificationType     `gorm:"type:notification_type;not null"`
	Category  enums.NotificationCategory `gorm:"type:notification_category;not null;default:'general'"`
	Scope     enums.NotificationScope    `gorm:"type:notification_scope;not null;default:'inbox'"`
	ReadAt    *time.Time                 `gorm:"type:timestamptz"`
	Deleted   bool                       `gorm:"not null;default:false;index"`
	DeletedAt *time.Time                 `gorm:"type:timestamptz"`
	CreatedAt time.Time                  `gorm:"type:timestamptz;default:now()"`
}
