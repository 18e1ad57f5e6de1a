package payment

import (
	"context"
	"fmt"
	"math"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// IntentCreator is the single call this system makes to the payment
// provider. The returned client secret is used by the buyer to complete
// payment out-of-band; payment confirmation never flows back through here.
type IntentCreator interface {
	CreateIntent(ctx context.Context, price float64) (clientSecret string, err error)
}

// StripeDelegate implements IntentCreator against the Stripe API.
type StripeDelegate struct {
	api      *client.API
	currency string
}

// NewStripeDelegate creates a delegate with its own API client handle.
func NewStripeDelegate(secretKey, currency string) *StripeDelegate {
	if currency == "" {
		currency = "usd"
	}
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeDelegate{
		api:      api,
		currency: currency,
	}
}

// CreateIntent creates a card payment intent for the given price in major
// currency units.
func (d *StripeDelegate) CreateIntent(ctx context.Context, price float64) (string, error) {
	amount := int64(math.Round(price * 100))

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amount),
		Currency:           stripe.String(d.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	intent, err := d.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create payment intent: %w", err)
	}
	return intent.ClientSecret, nil
}
