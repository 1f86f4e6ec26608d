package models

import (
	"time"

	"github.com/google/uuid"
)

type Store struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Slogan        *string   `json:"slogan,omitempty"`
	OwnerID       uuid.UUID `json:"owner_id"`
	BannerImage   *string   `json:"banner_image,omitempty"`
	FeaturedImage *string   `json:"featured_image,omitempty"`
	Logo          *string   `json:"logo,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StoreWithOwner embeds Store and adds the owner's wallet for public listings.
type StoreWithOwner struct {
	Store
	OwnerWallet string `json:"owner_wallet"`
}
