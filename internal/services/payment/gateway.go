package payment

import (
	"fmt"
	"os"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/paymentintent"
)

// Gateway charges an external payment method and returns the provider's
// reference for the charge.
type Gateway interface {
	Charge(amount float64, method, reference string) (string, error)
}

// StripeGateway charges cards through Stripe. Amounts are converted to
// halalas; SAR is a two-decimal currency.
type StripeGateway struct{}

func NewStripeGateway() *StripeGateway {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")
	return &StripeGateway{}
}

func (g *StripeGateway) Charge(amount float64, method, reference string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(amount * 100)),
		Currency: stripe.String("sar"),
		PaymentMethodTypes: stripe.StringSlice([]string{
			"card",
		}),
		Confirm: stripe.Bool(true),
	}
	params.AddMetadata("reference", reference)
	params.AddMetadata("method", method)

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe charge failed: %w", err)
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return "", fmt.Errorf("stripe charge not completed: status %s", intent.Status)
	}
	return intent.ID, nil
}

// instantGateway approves every charge without an external call; used for
// in-store methods settled outside the platform, and in tests.
type instantGateway struct{}

func (instantGateway) Charge(amount float64, method, reference string) (string, error) {
	return "", nil
}
