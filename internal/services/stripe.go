package services

import (
	"fmt"
	"os"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
)

// InitStripe configures the Stripe client from the environment
func InitStripe() error {
	key := os.Getenv("STRIPE_SECRET_KEY")
	if key == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY not set")
	}
	stripe.Key = key
	return nil
}

// CreatePaymentIntent creates a Stripe PaymentIntent for the given amount in
// minor currency units and returns the client secret
func CreatePaymentIntent(amount int64, currency string) (string, error) {
	if currency == "" {
		currency = "usd"
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{
			"card",
		}),
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create payment intent: %v", err)
	}

	return pi.ClientSecret, nil
}
