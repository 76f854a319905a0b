package models

import (
	"time"

	"github.com/escrow-marketplace/backend/internal/money"
	"github.com/google/uuid"
)

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCompleted = "completed"
	OrderStatusFailed    = "failed"
)

// Valid state transitions: from -> []to. An order never regresses; completed
// and failed are terminal.
var ValidOrderTransitions = map[string][]string{
	OrderStatusPending:   {OrderStatusPaid, OrderStatusFailed},
	OrderStatusPaid:      {OrderStatusCompleted},
	OrderStatusCompleted: {},
	OrderStatusFailed:    {},
}

func IsValidTransition(from, to string) bool {
	allowed, ok := ValidOrderTransitions[from]
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

// Confirmation parties of an order.
const (
	PartyBuyer  = "buyer"
	PartySeller = "seller"
)

func IsValidParty(p string) bool {
	return p == PartyBuyer || p == PartySeller
}

// Order is the append-only financial record of a purchase held in escrow.
// SellerID is resolved from the product at creation time and cached here.
// Amount always equals ServiceFee + SellerAmount exactly.
type Order struct {
	ID               uuid.UUID   `json:"id"`
	BuyerID          uuid.UUID   `json:"buyer_id"`
	SellerID         uuid.UUID   `json:"seller_id"`
	ProductID        uuid.UUID   `json:"product_id"`
	Amount           money.Money `json:"amount"`
	ServiceFee       money.Money `json:"service_fee"`
	SellerAmount     money.Money `json:"seller_amount"`
	Status           string      `json:"status"`
	BuyerConfirmed   bool        `json:"buyer_confirmed"`
	SellerConfirmed  bool        `json:"seller_confirmed"`
	EscrowReleased   bool        `json:"escrow_released"`
	PaymentReference string      `json:"payment_reference"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// ConfirmedBy reports whether the given party already confirmed.
func (o *Order) ConfirmedBy(party string) bool {
	switch party {
	case PartyBuyer:
		return o.BuyerConfirmed
	case PartySeller:
		return o.SellerConfirmed
	}
	return false
}

// ReleaseEligible is the release guard: both parties confirmed and the escrow
// has not been released yet.
func (o *Order) ReleaseEligible() bool {
	return o.BuyerConfirmed && o.SellerConfirmed && !o.EscrowReleased
}
