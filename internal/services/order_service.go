package services

import (
	"context"
	"fmt"

	"github.com/escrow-marketplace/backend/internal/events"
	"github.com/escrow-marketplace/backend/internal/models"
	"github.com/escrow-marketplace/backend/internal/money"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService is the order ledger: it creates orders from verified payments
// and is the canonical reader of an order's financial state.
type OrderService struct {
	orders    OrderStore
	products  ProductStore
	audit     AuditStore
	verifier  *PaymentVerifier
	publisher events.Publisher
	feeBPS    int
	log       *zap.Logger
}

func NewOrderService(
	orders OrderStore,
	products ProductStore,
	audit AuditStore,
	verifier *PaymentVerifier,
	publisher events.Publisher,
	feeBPS int,
	log *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		products:  products,
		audit:     audit,
		verifier:  verifier,
		publisher: publisher,
		feeBPS:    feeBPS,
		log:       log,
	}
}

// InitiatePayment verifies the payment reference with the gateway and, on
// success, books the order in paid state with the fee split computed up
// front. An unverified payment never leaves an order behind. Replaying an
// already-booked reference returns the existing order with no new financial
// effect.
func (s *OrderService) InitiatePayment(ctx context.Context, buyerID, productID uuid.UUID, reference string, proposed money.Money) (*models.Order, error) {
	outcome := s.verifier.Verify(ctx, reference, proposed)
	if !outcome.Verified {
		return nil, models.ErrVerificationFailed
	}
	if !outcome.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: non-positive amount", models.ErrVerificationFailed)
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("product: %w", err)
	}

	fee, sellerAmount := outcome.Amount.Split(s.feeBPS)
	order := &models.Order{
		BuyerID:          buyerID,
		SellerID:         product.SellerID,
		ProductID:        productID,
		Amount:           outcome.Amount,
		ServiceFee:       fee,
		SellerAmount:     sellerAmount,
		Status:           models.OrderStatusPaid,
		PaymentReference: reference,
	}

	inserted, err := s.orders.Create(ctx, order)
	if err != nil {
		return nil, err
	}
	if !inserted {
		existing, err := s.orders.GetByPaymentReference(ctx, reference)
		if err != nil {
			return nil, err
		}
		s.log.Info("payment reference replayed, returning existing order",
			zap.String("reference", reference), zap.String("order_id", existing.ID.String()))
		return existing, nil
	}

	_ = s.audit.Log(ctx, models.AuditLog{
		ActorUserID: &buyerID,
		ActorType:   "user",
		Action:      "order_created",
		EntityType:  "order",
		EntityID:    &order.ID,
		Meta: map[string]any{
			"amount":        order.Amount.String(),
			"service_fee":   order.ServiceFee.String(),
			"seller_amount": order.SellerAmount.String(),
			"reference":     reference,
		},
	})

	_ = s.publisher.Publish(ctx, events.StreamOrders, events.Event{
		Type: events.EventOrderCreated,
		Payload: map[string]any{
			"order_id":  order.ID.String(),
			"buyer_id":  order.BuyerID.String(),
			"seller_id": order.SellerID.String(),
			"amount":    order.Amount.String(),
		},
	})

	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.orders.GetByID(ctx, id)
}

func (s *OrderService) GetOrdersForBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	return s.orders.ListByBuyer(ctx, buyerID, limit, offset)
}

func (s *OrderService) GetOrdersForSeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	return s.orders.ListBySeller(ctx, sellerID, limit, offset)
}

func (s *OrderService) GetOrderEvents(ctx context.Context, orderID uuid.UUID) ([]models.AuditLog, error) {
	return s.audit.GetByEntity(ctx, "order", orderID, 100, 0)
}
