package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/escrow-marketplace/backend/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepo struct {
	pool *pgxpool.Pool
}

func NewOrderRepo(pool *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

const orderColumns = `id, buyer_id, seller_id, product_id, amount, service_fee, seller_amount,
       status, buyer_confirmed, seller_confirmed, escrow_released, payment_reference,
       created_at, updated_at`

func scanOrder(row pgx.Row, o *models.Order) error {
	return row.Scan(&o.ID, &o.BuyerID, &o.SellerID, &o.ProductID, &o.Amount, &o.ServiceFee, &o.SellerAmount,
		&o.Status, &o.BuyerConfirmed, &o.SellerConfirmed, &o.EscrowReleased, &o.PaymentReference,
		&o.CreatedAt, &o.UpdatedAt)
}

// Create persists a new order. The payment reference is unique at the store
// layer; a replayed reference inserts nothing and returns inserted=false.
func (r *OrderRepo) Create(ctx context.Context, o *models.Order) (bool, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO orders (buyer_id, seller_id, product_id, amount, service_fee, seller_amount, status, payment_reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (payment_reference) DO NOTHING
		RETURNING id, created_at, updated_at
	`, o.BuyerID, o.SellerID, o.ProductID, o.Amount, o.ServiceFee, o.SellerAmount, o.Status, o.PaymentReference,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert order: %w", err)
	}
	return true, nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id), &o)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) GetByPaymentReference(ctx context.Context, reference string) (*models.Order, error) {
	var o models.Order
	err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE payment_reference = $1`, reference), &o)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	return r.list(ctx, "buyer_id", buyerID, limit, offset)
}

func (r *OrderRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	return r.list(ctx, "seller_id", sellerID, limit, offset)
}

func (r *OrderRepo) list(ctx context.Context, column string, id uuid.UUID, limit, offset int) ([]models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE `+column+` = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		id, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// SetConfirmation flips one party's confirmation flag. The flag only ever goes
// false -> true, so repeating the call changes nothing.
func (r *OrderRepo) SetConfirmation(ctx context.Context, orderID uuid.UUID, party string) error {
	column := "buyer_confirmed"
	if party == models.PartySeller {
		column = "seller_confirmed"
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET `+column+` = true, updated_at = now() WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("set confirmation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Release performs the settlement as one atomic unit: a guarded update keyed
// on escrow_released flips the order to completed, and the seller wallet is
// credited in the same transaction. Losing the guard (already released, or a
// confirmation missing) returns released=false with no side effect.
func (r *OrderRepo) Release(ctx context.Context, orderID uuid.UUID) (bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var o models.Order
	err = scanOrder(tx.QueryRow(ctx, `
		UPDATE orders
		SET escrow_released = true, status = $2, updated_at = now()
		WHERE id = $1 AND buyer_confirmed AND seller_confirmed AND NOT escrow_released
		RETURNING `+orderColumns,
		orderID, models.OrderStatusCompleted), &o)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, releaseErr(err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO wallets (seller_id, balance, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (seller_id) DO UPDATE SET
			balance = wallets.balance + EXCLUDED.balance,
			updated_at = now()
	`, o.SellerID, o.SellerAmount)
	if err != nil {
		return false, releaseErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, releaseErr(err)
	}
	return true, nil
}

// releaseErr maps transaction contention to ErrConflict so the release engine
// can retry; anything else passes through wrapped.
func releaseErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure / deadlock_detected
		if pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return models.ErrConflict
		}
	}
	return fmt.Errorf("release order: %w", err)
}
