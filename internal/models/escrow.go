package models

import (
	"time"

	"github.com/google/uuid"
)

// Escrow statuses
const (
	EscrowStatusPending  = "pending"
	EscrowStatusHeld     = "held"
	EscrowStatusReleased = "released"
	EscrowStatusRefunded = "refunded"
	EscrowStatusDisputed = "disputed"
)

// ContractAddressPending is the sentinel stored until the buyer reports
// the deployed contract address.
const ContractAddressPending = "0xPendingDeployment"

// Payment tokens accepted by the escrow contracts.
const (
	TokenETH  = "ETH"
	TokenUSDT = "USDT"
	TokenUSDC = "USDC"
	TokenDAI  = "DAI"
)

var PaymentTokens = []string{TokenETH, TokenUSDT, TokenUSDC, TokenDAI}

func IsValidPaymentToken(t string) bool {
	for _, v := range PaymentTokens {
		if v == t {
			return true
		}
	}
	return false
}

// Valid state transitions: from -> []to. The disputed status is declared
// in the contract enum but has no inbound edge.
var ValidEscrowTransitions = map[string][]string{
	EscrowStatusPending:  {EscrowStatusHeld},
	EscrowStatusHeld:     {EscrowStatusReleased, EscrowStatusRefunded},
	EscrowStatusReleased: {},
	EscrowStatusRefunded: {},
	EscrowStatusDisputed: {},
}

func IsValidEscrowTransition(from, to string) bool {
	allowed, ok := ValidEscrowTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

func IsTerminalEscrowStatus(status string) bool {
	return status == EscrowStatusReleased || status == EscrowStatusRefunded
}

type Escrow struct {
	ID              uuid.UUID  `json:"id"`
	ProductID       uuid.UUID  `json:"product_id"`
	BuyerID         uuid.UUID  `json:"buyer_id"`
	SellerID        uuid.UUID  `json:"seller_id"`
	Amount          float64    `json:"amount"`
	PaymentToken    string     `json:"payment_token"`
	Quantity        int        `json:"quantity"`
	Status          string     `json:"status"`
	ContractAddress string     `json:"contract_address"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// EscrowWithRefs embeds Escrow and adds product name/price and the seller's
// wallet for the per-user listing.
type EscrowWithRefs struct {
	Escrow
	ProductName  *string  `json:"product_name,omitempty"`
	ProductPrice *float64 `json:"product_price,omitempty"`
	SellerWallet *string  `json:"seller_wallet,omitempty"`
}
