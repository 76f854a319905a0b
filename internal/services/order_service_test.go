package services

import (
	"context"
	"errors"
	"testing"

	"github.com/escrow-marketplace/backend/internal/gateway"
	"github.com/escrow-marketplace/backend/internal/models"
	"github.com/escrow-marketplace/backend/internal/money"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newOrderService(store *memStore, gw GatewayAPI, sandbox bool) *OrderService {
	log := zap.NewNop()
	verifier := NewPaymentVerifier(gw, sandbox, log)
	return NewOrderService(store, productStoreAdapter{store}, store, verifier, noopPublisher{}, 1000, log)
}

func seedProduct(t *testing.T, store *memStore, sellerID uuid.UUID) uuid.UUID {
	t.Helper()
	p := &models.Product{SellerID: sellerID, Title: "test product", Price: money.MustParse("100.00"), Active: true}
	if err := store.CreateProduct(context.Background(), p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p.ID
}

func TestInitiatePaymentBooksVerifiedOrder(t *testing.T) {
	store := newMemStore()
	sellerID := uuid.New()
	buyerID := uuid.New()
	productID := seedProduct(t, store, sellerID)

	settled := "100.00"
	svc := newOrderService(store, &fakeGateway{
		response: &gateway.PaymentStatus{Status: gateway.StatusSuccess, SettledAmount: &settled},
	}, false)

	order, err := svc.InitiatePayment(context.Background(), buyerID, productID, "ref-1", money.MustParse("100.00"))
	if err != nil {
		t.Fatalf("InitiatePayment: %v", err)
	}

	if order.Status != models.OrderStatusPaid {
		t.Errorf("status = %s, want paid", order.Status)
	}
	if order.SellerID != sellerID {
		t.Errorf("seller_id not resolved from product")
	}
	// 10000 minor units, 10% fee: 1000 fee, 9000 to the seller.
	if got := order.ServiceFee.MinorUnits(); got != 1000 {
		t.Errorf("service_fee = %d minor units, want 1000", got)
	}
	if got := order.SellerAmount.MinorUnits(); got != 9000 {
		t.Errorf("seller_amount = %d minor units, want 9000", got)
	}
	if !order.ServiceFee.Add(order.SellerAmount).Equal(order.Amount) {
		t.Errorf("fee %s + seller %s != amount %s", order.ServiceFee, order.SellerAmount, order.Amount)
	}
	if order.BuyerConfirmed || order.SellerConfirmed || order.EscrowReleased {
		t.Errorf("fresh order must have no confirmations and no release")
	}
}

func TestInitiatePaymentGatewayAmountIsAuthoritative(t *testing.T) {
	store := newMemStore()
	productID := seedProduct(t, store, uuid.New())

	settled := "80.00"
	svc := newOrderService(store, &fakeGateway{
		response: &gateway.PaymentStatus{Status: gateway.StatusSuccess, SettledAmount: &settled},
	}, false)

	// Client proposes 100.00 but the gateway settled 80.00.
	order, err := svc.InitiatePayment(context.Background(), uuid.New(), productID, "ref-2", money.MustParse("100.00"))
	if err != nil {
		t.Fatalf("InitiatePayment: %v", err)
	}
	if !order.Amount.Equal(money.MustParse("80.00")) {
		t.Errorf("amount = %s, want gateway-settled 80.00", order.Amount)
	}
}

func TestInitiatePaymentUnverifiedCreatesNothing(t *testing.T) {
	tests := []struct {
		name string
		gw   *fakeGateway
	}{
		{"gateway declined", &fakeGateway{response: &gateway.PaymentStatus{Status: "declined"}}},
		{"transport failure", &fakeGateway{err: errors.New("connection refused")}},
		{"pending payment", &fakeGateway{response: &gateway.PaymentStatus{Status: "pending"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			productID := seedProduct(t, store, uuid.New())
			svc := newOrderService(store, tt.gw, false)

			_, err := svc.InitiatePayment(context.Background(), uuid.New(), productID, "ref-x", money.MustParse("100.00"))
			if !errors.Is(err, models.ErrVerificationFailed) {
				t.Fatalf("err = %v, want ErrVerificationFailed", err)
			}
			if len(store.orders) != 0 {
				t.Errorf("order persisted from unverified payment")
			}
		})
	}
}

func TestInitiatePaymentMissingProduct(t *testing.T) {
	store := newMemStore()
	svc := newOrderService(store, nil, true)

	_, err := svc.InitiatePayment(context.Background(), uuid.New(), uuid.New(), "ref-3", money.MustParse("100.00"))
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(store.orders) != 0 {
		t.Errorf("order persisted without a product")
	}
}

func TestInitiatePaymentReplayedReferenceIsIdempotent(t *testing.T) {
	store := newMemStore()
	productID := seedProduct(t, store, uuid.New())
	svc := newOrderService(store, nil, true)
	buyerID := uuid.New()

	first, err := svc.InitiatePayment(context.Background(), buyerID, productID, "ref-dup", money.MustParse("100.00"))
	if err != nil {
		t.Fatalf("first InitiatePayment: %v", err)
	}
	second, err := svc.InitiatePayment(context.Background(), buyerID, productID, "ref-dup", money.MustParse("100.00"))
	if err != nil {
		t.Fatalf("replayed InitiatePayment: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("replay created a second order")
	}
	if len(store.orders) != 1 {
		t.Errorf("store holds %d orders, want 1", len(store.orders))
	}
}

func TestInitiatePaymentSandboxUsesProposedAmount(t *testing.T) {
	store := newMemStore()
	productID := seedProduct(t, store, uuid.New())
	svc := newOrderService(store, nil, true)

	order, err := svc.InitiatePayment(context.Background(), uuid.New(), productID, "ref-sbx", money.MustParse("42.00"))
	if err != nil {
		t.Fatalf("InitiatePayment: %v", err)
	}
	if !order.Amount.Equal(money.MustParse("42.00")) {
		t.Errorf("amount = %s, want proposed 42.00", order.Amount)
	}
}

func TestGetOrdersForParties(t *testing.T) {
	store := newMemStore()
	sellerID := uuid.New()
	buyerID := uuid.New()
	productID := seedProduct(t, store, sellerID)
	svc := newOrderService(store, nil, true)

	if _, err := svc.InitiatePayment(context.Background(), buyerID, productID, "ref-l1", money.MustParse("10.00")); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.InitiatePayment(context.Background(), buyerID, productID, "ref-l2", money.MustParse("20.00")); err != nil {
		t.Fatal(err)
	}

	buyerOrders, err := svc.GetOrdersForBuyer(context.Background(), buyerID, 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(buyerOrders) != 2 {
		t.Errorf("buyer orders = %d, want 2", len(buyerOrders))
	}

	sellerOrders, err := svc.GetOrdersForSeller(context.Background(), sellerID, 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(sellerOrders) != 2 {
		t.Errorf("seller orders = %d, want 2", len(sellerOrders))
	}

	other, err := svc.GetOrdersForBuyer(context.Background(), uuid.New(), 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Errorf("stranger sees %d orders, want 0", len(other))
	}
}
