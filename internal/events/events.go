package events

import "context"

// Event types
const (
	EventOrderCreated   = "order_created"
	EventOrderConfirmed = "order_confirmed"
	EventEscrowReleased = "escrow_released"
)

// StreamOrders is the pub/sub channel carrying order lifecycle events.
const StreamOrders = "events:order"

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
