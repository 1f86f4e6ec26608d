package models

import (
	"time"

	"github.com/google/uuid"
)

// Product categories
const (
	CategoryElectronics  = "Electronics"
	CategorySmartPhones  = "Smart Phones & Tabs"
	CategoryHomesGardens = "Homes & Gardens"
	CategoryFashion      = "Fashion"
	CategoryVehicles     = "Vehicles"
)

var ProductCategories = []string{
	CategoryElectronics,
	CategorySmartPhones,
	CategoryHomesGardens,
	CategoryFashion,
	CategoryVehicles,
}

func IsValidCategory(c string) bool {
	for _, v := range ProductCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Escrow systems a product can be listed under.
const (
	EscrowSystemDeposit   = "Deposit"
	EscrowSystemGuarantor = "Guarantor"
)

func IsValidEscrowSystem(s string) bool {
	return s == EscrowSystemDeposit || s == EscrowSystemGuarantor
}

type Product struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	ShortDescription string     `json:"short_description"`
	StoreID          uuid.UUID  `json:"store_id"`
	Category         string     `json:"category"`
	CollectionID     uuid.UUID  `json:"collection_id"`
	Description      *string    `json:"description,omitempty"`
	Amount           int        `json:"amount"`
	Price            float64    `json:"price"`
	PaymentToken     string     `json:"payment_token"`
	GeneralImage     string     `json:"general_image"`
	EscrowSystem     string     `json:"escrow_system"`
	VendorDeposit    *float64   `json:"vendor_deposit,omitempty"`
	CustomerDeposit  *float64   `json:"customer_deposit,omitempty"`
	OwnerID          uuid.UUID  `json:"owner_id"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ProductWithRefs embeds Product and adds store/collection/owner info
// for list and detail responses.
type ProductWithRefs struct {
	Product
	StoreName        *string `json:"store_name,omitempty"`
	StoreDescription *string `json:"store_description,omitempty"`
	CollectionName   *string `json:"collection_name,omitempty"`
	OwnerWallet      *string `json:"owner_wallet,omitempty"`
}
