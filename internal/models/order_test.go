package models

import "testing"

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		// Happy path
		{OrderStatusPending, OrderStatusPaid, true},
		{OrderStatusPaid, OrderStatusCompleted, true},

		// Verification failure path
		{OrderStatusPending, OrderStatusFailed, true},

		// Never regresses
		{OrderStatusPaid, OrderStatusPending, false},
		{OrderStatusCompleted, OrderStatusPaid, false},
		{OrderStatusCompleted, OrderStatusPending, false},

		// Terminal states
		{OrderStatusCompleted, OrderStatusFailed, false},
		{OrderStatusFailed, OrderStatusPaid, false},
		{OrderStatusFailed, OrderStatusCompleted, false},

		// The engine never fails a paid order
		{OrderStatusPaid, OrderStatusFailed, false},

		{"nonexistent", OrderStatusPaid, false},
		{OrderStatusPending, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestTerminalStatusesHaveNoTransitions(t *testing.T) {
	terminal := []string{OrderStatusCompleted, OrderStatusFailed}
	for _, status := range terminal {
		transitions := ValidOrderTransitions[status]
		if len(transitions) != 0 {
			t.Errorf("terminal status %q should have no transitions, got %v", status, transitions)
		}
	}
}

func TestReleaseEligible(t *testing.T) {
	tests := []struct {
		name     string
		order    Order
		expected bool
	}{
		{"both confirmed", Order{BuyerConfirmed: true, SellerConfirmed: true}, true},
		{"only buyer", Order{BuyerConfirmed: true}, false},
		{"only seller", Order{SellerConfirmed: true}, false},
		{"none", Order{}, false},
		{"already released", Order{BuyerConfirmed: true, SellerConfirmed: true, EscrowReleased: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.order.ReleaseEligible(); got != tt.expected {
				t.Errorf("ReleaseEligible() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConfirmedBy(t *testing.T) {
	o := Order{BuyerConfirmed: true}
	if !o.ConfirmedBy(PartyBuyer) {
		t.Error("ConfirmedBy(buyer) = false, want true")
	}
	if o.ConfirmedBy(PartySeller) {
		t.Error("ConfirmedBy(seller) = true, want false")
	}
	if o.ConfirmedBy("admin") {
		t.Error("ConfirmedBy(admin) = true, want false")
	}
}
