package services

import (
	"context"
	"sync"

	"github.com/escrow-marketplace/backend/internal/events"
	"github.com/escrow-marketplace/backend/internal/gateway"
	"github.com/escrow-marketplace/backend/internal/models"
	"github.com/escrow-marketplace/backend/internal/money"
	"github.com/google/uuid"
)

// memStore is an in-memory order/wallet/audit store. A single mutex stands in for
// the database transaction: Release evaluates the guard and credits the
// wallet while holding it, which mirrors the atomicity the pg repo gets from
// its transaction.
type memStore struct {
	mu       sync.Mutex
	orders   map[uuid.UUID]*models.Order
	byRef    map[string]uuid.UUID
	products map[uuid.UUID]*models.Product
	wallets  map[uuid.UUID]money.Money
	audit    []models.AuditLog

	// conflictsLeft makes the next N Release calls fail with ErrConflict.
	conflictsLeft int
	releaseCalls  int
}

func newMemStore() *memStore {
	return &memStore{
		orders:   make(map[uuid.UUID]*models.Order),
		byRef:    make(map[string]uuid.UUID),
		products: make(map[uuid.UUID]*models.Product),
		wallets:  make(map[uuid.UUID]money.Money),
	}
}

func (m *memStore) Create(_ context.Context, o *models.Order) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byRef[o.PaymentReference]; exists {
		return false, nil
	}
	o.ID = uuid.New()
	cp := *o
	m.orders[o.ID] = &cp
	m.byRef[o.PaymentReference] = o.ID
	return true, nil
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memStore) GetByPaymentReference(_ context.Context, ref string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byRef[ref]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *m.orders[id]
	return &cp, nil
}

func (m *memStore) ListByBuyer(_ context.Context, buyerID uuid.UUID, _, _ int) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		if o.BuyerID == buyerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memStore) ListBySeller(_ context.Context, sellerID uuid.UUID, _, _ int) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		if o.SellerID == sellerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memStore) SetConfirmation(_ context.Context, orderID uuid.UUID, party string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return models.ErrNotFound
	}
	if party == models.PartySeller {
		o.SellerConfirmed = true
	} else {
		o.BuyerConfirmed = true
	}
	return nil
}

func (m *memStore) Release(_ context.Context, orderID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseCalls++
	if m.conflictsLeft > 0 {
		m.conflictsLeft--
		return false, models.ErrConflict
	}
	o, ok := m.orders[orderID]
	if !ok || !o.ReleaseEligible() {
		return false, nil
	}
	o.EscrowReleased = true
	o.Status = models.OrderStatusCompleted
	m.wallets[o.SellerID] = m.wallets[o.SellerID].Add(o.SellerAmount)
	return true, nil
}

func (m *memStore) CreateProduct(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uuid.New()
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

// ProductStore

func (m *memStore) GetProduct(_ context.Context, id uuid.UUID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) Log(_ context.Context, entry models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, entry)
	return nil
}

func (m *memStore) GetByEntity(_ context.Context, entityType string, entityID uuid.UUID, _, _ int) ([]models.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AuditLog
	for _, e := range m.audit {
		if e.EntityType == entityType && e.EntityID != nil && *e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) balance(sellerID uuid.UUID) money.Money {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wallets[sellerID]
}

// productStoreAdapter exposes memStore's product methods under the
// ProductStore method names.
type productStoreAdapter struct{ *memStore }

func (a productStoreAdapter) Create(ctx context.Context, p *models.Product) error {
	return a.CreateProduct(ctx, p)
}

func (a productStoreAdapter) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return a.GetProduct(ctx, id)
}

func (a productStoreAdapter) List(_ context.Context, _, _ int) ([]models.Product, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []models.Product
	for _, p := range a.products {
		out = append(out, *p)
	}
	return out, nil
}

// noopPublisher drops events; service tests assert on store state instead.
type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, events.Event) error { return nil }

// fakeGateway scripts the gateway client's answer per reference.
type fakeGateway struct {
	response *gateway.PaymentStatus
	err      error
}

func (f *fakeGateway) GetPayment(context.Context, string) (*gateway.PaymentStatus, error) {
	return f.response, f.err
}
