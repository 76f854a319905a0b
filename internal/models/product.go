package models

import (
	"time"

	"github.com/escrow-marketplace/backend/internal/money"
	"github.com/google/uuid"
)

type Product struct {
	ID          uuid.UUID   `json:"id"`
	SellerID    uuid.UUID   `json:"seller_id"`
	Title       string      `json:"title"`
	Description *string     `json:"description,omitempty"`
	Price       money.Money `json:"price"`
	Active      bool        `json:"active"`
	CreatedAt   time.Time   `json:"created_at"`
}
