package services

import (
	"context"

	"github.com/escrow-marketplace/backend/internal/models"
	"github.com/escrow-marketplace/backend/internal/repositories"
	"github.com/google/uuid"
)

// Store interfaces decouple the services from postgres so tests can run
// against in-memory fakes. The pgx repositories are the production
// implementations.

type OrderStore interface {
	Create(ctx context.Context, o *models.Order) (inserted bool, err error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByPaymentReference(ctx context.Context, reference string) (*models.Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]models.Order, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Order, error)
	SetConfirmation(ctx context.Context, orderID uuid.UUID, party string) error
	// Release atomically flips escrow_released, marks the order completed and
	// credits the seller wallet. Returns false when the guard does not hold.
	Release(ctx context.Context, orderID uuid.UUID) (released bool, err error)
}

type ProductStore interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, limit, offset int) ([]models.Product, error)
}

type WalletStore interface {
	Get(ctx context.Context, sellerID uuid.UUID) (*models.Wallet, error)
}

type AuditStore interface {
	Log(ctx context.Context, entry models.AuditLog) error
	GetByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]models.AuditLog, error)
}

var (
	_ OrderStore   = (*repositories.OrderRepo)(nil)
	_ ProductStore = (*repositories.ProductRepo)(nil)
	_ WalletStore  = (*repositories.WalletRepo)(nil)
	_ AuditStore   = (*repositories.AuditRepo)(nil)
)
