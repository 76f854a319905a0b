package repositories

import (
	"context"
	"errors"

	"github.com/escrow-marketplace/backend/internal/models"
	"github.com/escrow-marketplace/backend/internal/money"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WalletRepo reads seller balances. Credits happen exclusively inside the
// release transaction in OrderRepo.Release; there is no standalone credit
// write here.
type WalletRepo struct {
	pool *pgxpool.Pool
}

func NewWalletRepo(pool *pgxpool.Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

func (r *WalletRepo) Get(ctx context.Context, sellerID uuid.UUID) (*models.Wallet, error) {
	var w models.Wallet
	err := r.pool.QueryRow(ctx, `
		SELECT seller_id, balance, updated_at FROM wallets WHERE seller_id = $1
	`, sellerID).Scan(&w.SellerID, &w.Balance, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// A seller without settled orders has an empty wallet, not an error.
		return &models.Wallet{SellerID: sellerID, Balance: money.Zero()}, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}
