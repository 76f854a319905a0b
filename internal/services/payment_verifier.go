package services

import (
	"context"

	"github.com/escrow-marketplace/backend/internal/gateway"
	"github.com/escrow-marketplace/backend/internal/money"
	"go.uber.org/zap"
)

// GatewayAPI is the slice of the payment gateway client the verifier needs.
type GatewayAPI interface {
	GetPayment(ctx context.Context, reference string) (*gateway.PaymentStatus, error)
}

// VerificationOutcome is the normalized answer to "did this reference pay".
// Amount is the amount to book: the gateway-settled amount when the gateway
// reports one, otherwise the client-proposed amount.
type VerificationOutcome struct {
	Verified bool
	Amount   money.Money
}

// PaymentVerifier wraps the gateway call. Every failure mode (transport
// error, timeout, non-success status, unparseable amount) comes back as
// Verified=false; Verify never returns an error.
type PaymentVerifier struct {
	api     GatewayAPI
	sandbox bool
	log     *zap.Logger
}

// NewPaymentVerifier builds a verifier. sandbox is the explicit configuration
// flag for running without a real gateway credential; it is never inferred
// from the credential itself.
func NewPaymentVerifier(api GatewayAPI, sandbox bool, log *zap.Logger) *PaymentVerifier {
	if sandbox {
		log.Warn("payment verifier running in SANDBOX mode: every reference verifies using the client-proposed amount")
	}
	return &PaymentVerifier{api: api, sandbox: sandbox, log: log}
}

func (v *PaymentVerifier) Verify(ctx context.Context, reference string, proposed money.Money) VerificationOutcome {
	if reference == "" {
		return VerificationOutcome{}
	}

	if v.sandbox {
		v.log.Info("sandbox verification", zap.String("reference", reference), zap.String("amount", proposed.String()))
		return VerificationOutcome{Verified: true, Amount: proposed}
	}

	status, err := v.api.GetPayment(ctx, reference)
	if err != nil {
		v.log.Warn("payment verification failed", zap.String("reference", reference), zap.Error(err))
		return VerificationOutcome{}
	}
	if status.Status != gateway.StatusSuccess {
		v.log.Info("payment not settled", zap.String("reference", reference), zap.String("status", status.Status))
		return VerificationOutcome{}
	}

	amount := proposed
	if status.SettledAmount != nil {
		// The gateway's settled amount is authoritative; a client-supplied
		// price is never trusted on its own.
		settled, err := money.Parse(*status.SettledAmount)
		if err != nil {
			v.log.Warn("gateway reported unparseable settled amount",
				zap.String("reference", reference), zap.String("settled_amount", *status.SettledAmount))
			return VerificationOutcome{}
		}
		amount = settled
	}

	return VerificationOutcome{Verified: true, Amount: amount}
}
