package models

import (
	"time"

	"github.com/escrow-marketplace/backend/internal/money"
	"github.com/google/uuid"
)

// Wallet holds a seller's settled balance. The balance only ever grows, and
// only the escrow release path writes to it.
type Wallet struct {
	SellerID  uuid.UUID   `json:"seller_id"`
	Balance   money.Money `json:"balance"`
	UpdatedAt time.Time   `json:"updated_at"`
}
