package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/escrow-marketplace/backend/internal/events"
	"github.com/escrow-marketplace/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// releaseMaxAttempts bounds internal retries when the release transaction
// loses to a concurrent confirmation.
const releaseMaxAttempts = 3

// ReleaseOutcome reports whether a release check actually settled the order.
type ReleaseOutcome struct {
	Released bool `json:"released"`
}

// EscrowService records party confirmations and runs the release state
// machine. Release fires at most once per order regardless of how many
// confirmations or release checks race against it; the store's Release
// operation carries the atomicity.
type EscrowService struct {
	orders    OrderStore
	audit     AuditStore
	publisher events.Publisher
	log       *zap.Logger
}

func NewEscrowService(orders OrderStore, audit AuditStore, publisher events.Publisher, log *zap.Logger) *EscrowService {
	return &EscrowService{orders: orders, audit: audit, publisher: publisher, log: log}
}

// Confirm records one party's confirmation on the order and then runs the
// release check synchronously. Confirming twice is a no-op. The actor must be
// the order's buyer (party=buyer) or the product's seller (party=seller);
// anyone else gets a generic not-authorized answer with no state change.
func (s *EscrowService) Confirm(ctx context.Context, orderID, actorID uuid.UUID, party string) (*models.Order, error) {
	if !models.IsValidParty(party) {
		return nil, fmt.Errorf("unknown confirmation party %q", party)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch party {
	case models.PartyBuyer:
		if order.BuyerID != actorID {
			return nil, models.ErrUnauthorized
		}
	case models.PartySeller:
		if order.SellerID != actorID {
			return nil, models.ErrUnauthorized
		}
	}

	if !order.ConfirmedBy(party) {
		if err := s.orders.SetConfirmation(ctx, orderID, party); err != nil {
			return nil, err
		}

		_ = s.audit.Log(ctx, models.AuditLog{
			ActorUserID: &actorID,
			ActorType:   "user",
			Action:      "order_confirmed_" + party,
			EntityType:  "order",
			EntityID:    &orderID,
		})
		_ = s.publisher.Publish(ctx, events.StreamOrders, events.Event{
			Type: events.EventOrderConfirmed,
			Payload: map[string]any{
				"order_id":  orderID.String(),
				"party":     party,
				"buyer_id":  order.BuyerID.String(),
				"seller_id": order.SellerID.String(),
			},
		})
	}

	if _, err := s.TryRelease(ctx, orderID); err != nil {
		return nil, err
	}

	return s.orders.GetByID(ctx, orderID)
}

// TryRelease settles the order if both confirmations are present and the
// escrow has not been released yet. The guard evaluation, the status flip and
// the wallet credit execute as one atomic store operation; contention is
// retried here a bounded number of times. Calling this on an ineligible or
// already-settled order is always safe and returns Released=false.
func (s *EscrowService) TryRelease(ctx context.Context, orderID uuid.UUID) (ReleaseOutcome, error) {
	var released bool
	var err error
	for attempt := 1; attempt <= releaseMaxAttempts; attempt++ {
		released, err = s.orders.Release(ctx, orderID)
		if !errors.Is(err, models.ErrConflict) {
			break
		}
		s.log.Debug("release transaction contention, retrying",
			zap.String("order_id", orderID.String()), zap.Int("attempt", attempt))
	}
	if err != nil {
		return ReleaseOutcome{}, fmt.Errorf("release order %s: %w", orderID, err)
	}
	if !released {
		return ReleaseOutcome{}, nil
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		// The settlement committed; surfacing a read error here would make a
		// successful release look failed.
		s.log.Error("released order re-read failed", zap.String("order_id", orderID.String()), zap.Error(err))
		return ReleaseOutcome{Released: true}, nil
	}

	_ = s.audit.Log(ctx, models.AuditLog{
		ActorType:  "system",
		Action:     "escrow_released",
		EntityType: "order",
		EntityID:   &orderID,
		Meta: map[string]any{
			"seller_id":     order.SellerID.String(),
			"seller_amount": order.SellerAmount.String(),
		},
	})
	_ = s.publisher.Publish(ctx, events.StreamOrders, events.Event{
		Type: events.EventEscrowReleased,
		Payload: map[string]any{
			"order_id":      orderID.String(),
			"buyer_id":      order.BuyerID.String(),
			"seller_id":     order.SellerID.String(),
			"seller_amount": order.SellerAmount.String(),
		},
	})

	s.log.Info("escrow released",
		zap.String("order_id", orderID.String()),
		zap.String("seller_id", order.SellerID.String()),
		zap.String("seller_amount", order.SellerAmount.String()))

	return ReleaseOutcome{Released: true}, nil
}
