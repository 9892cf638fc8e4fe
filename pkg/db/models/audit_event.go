package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/shoplens/shoplens-backend/pkg/enums"
)

// AuditEvent is one row of the privacy trail. IPs arrive pre-hashed; the raw
// address never reaches this table.
type AuditEvent struct {
	ID        uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	SessionID *uuid.UUID        `gorm:"type:uuid"`
	Action    enums.AuditAction `gorm:"type:audit_action;not null"`
	Detail    string            `gorm:"type:text"`
	IPHash    string            `gorm:"type:text"`
	CreatedAt time.Time         `gorm:"type:timestamptz;default:now();index"`
}
