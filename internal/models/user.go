package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `json:"id"`
	WalletAddress  string    `json:"wallet_address"`
	Email          *string   `json:"email,omitempty"`
	AvatarURL      *string   `json:"avatar_url,omitempty"`
	Nonce          *string   `json:"-"`
	OrdersCreated  int       `json:"orders_created"`
	OrdersReceived int       `json:"orders_received"`
	IsAdmin        bool      `json:"is_admin"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
