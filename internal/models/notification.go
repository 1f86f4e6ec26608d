package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification types
const (
	NotificationTypeCart   = "cart"
	NotificationTypeEscrow = "escrow"
	NotificationTypeSystem = "system"
	NotificationTypeOther  = "other"
)

type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}
