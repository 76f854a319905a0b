package services

import (
	"context"
	"errors"
	"testing"

	"github.com/escrow-marketplace/backend/internal/gateway"
	"github.com/escrow-marketplace/backend/internal/money"
	"go.uber.org/zap"
)

func TestVerify(t *testing.T) {
	settled := "80.00"
	garbage := "not-a-number"

	tests := []struct {
		name       string
		gw         *fakeGateway
		reference  string
		verified   bool
		wantAmount string
	}{
		{
			name:      "empty reference",
			gw:        &fakeGateway{response: &gateway.PaymentStatus{Status: gateway.StatusSuccess}},
			reference: "",
			verified:  false,
		},
		{
			name:       "success without settled amount uses proposed",
			gw:         &fakeGateway{response: &gateway.PaymentStatus{Status: gateway.StatusSuccess}},
			reference:  "ref",
			verified:   true,
			wantAmount: "100.00",
		},
		{
			name:       "settled amount overrides proposed",
			gw:         &fakeGateway{response: &gateway.PaymentStatus{Status: gateway.StatusSuccess, SettledAmount: &settled}},
			reference:  "ref",
			verified:   true,
			wantAmount: "80.00",
		},
		{
			name:      "declined",
			gw:        &fakeGateway{response: &gateway.PaymentStatus{Status: "declined"}},
			reference: "ref",
			verified:  false,
		},
		{
			name:      "transport failure",
			gw:        &fakeGateway{err: errors.New("dial tcp: i/o timeout")},
			reference: "ref",
			verified:  false,
		},
		{
			name:      "unparseable settled amount",
			gw:        &fakeGateway{response: &gateway.PaymentStatus{Status: gateway.StatusSuccess, SettledAmount: &garbage}},
			reference: "ref",
			verified:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewPaymentVerifier(tt.gw, false, zap.NewNop())
			outcome := v.Verify(context.Background(), tt.reference, money.MustParse("100.00"))
			if outcome.Verified != tt.verified {
				t.Fatalf("Verified = %v, want %v", outcome.Verified, tt.verified)
			}
			if tt.verified && !outcome.Amount.Equal(money.MustParse(tt.wantAmount)) {
				t.Errorf("Amount = %s, want %s", outcome.Amount, tt.wantAmount)
			}
		})
	}
}

func TestVerifySandboxNeverCallsGateway(t *testing.T) {
	v := NewPaymentVerifier(nil, true, zap.NewNop())

	outcome := v.Verify(context.Background(), "any-ref", money.MustParse("42.00"))
	if !outcome.Verified {
		t.Fatal("sandbox verification must succeed")
	}
	if !outcome.Amount.Equal(money.MustParse("42.00")) {
		t.Errorf("Amount = %s, want proposed 42.00", outcome.Amount)
	}

	// Even in sandbox mode an empty reference is rejected.
	if out := v.Verify(context.Background(), "", money.MustParse("42.00")); out.Verified {
		t.Error("empty reference verified in sandbox mode")
	}
}
