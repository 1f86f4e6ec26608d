package models

import (
	"time"

	"github.com/google/uuid"
)

type Collection struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	ShortDescription string    `json:"short_description"`
	StoreID          uuid.UUID `json:"store_id"`
	Description      *string   `json:"description,omitempty"`
	GeneralImage     *string   `json:"general_image,omitempty"`
	OwnerID          uuid.UUID `json:"owner_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CollectionWithRefs adds store name and owner wallet to avoid N+1 queries.
type CollectionWithRefs struct {
	Collection
	StoreName   *string `json:"store_name,omitempty"`
	OwnerWallet *string `json:"owner_wallet,omitempty"`
}
