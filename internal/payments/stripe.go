package payments

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

// Supported payment methods. Wallet methods and cash resolve as simulated
// success; only "stripe" reaches the card network.
const (
	MethodStripe  = "stripe"
	MethodPaytm   = "paytm"
	MethodPhonePe = "phonepay"
	MethodGPay    = "gpay"
	MethodCash    = "cash"
)

var ErrUnsupportedMethod = fmt.Errorf("unsupported payment method")

// Provider wraps stripe-go for card charges and short-circuits the
// simulated methods. The lifecycle only consumes the boolean outcome.
type Provider struct{}

// NewProvider initializes the stripe client with the given API key.
func NewProvider(apiKey string) *Provider {
	stripe.Key = apiKey
	return &Provider{}
}

// Charge settles the given amount (minor units) with the chosen method
// and reports success or failure.
func (p *Provider) Charge(ctx context.Context, amount int64, currency, method string) (bool, error) {
	switch method {
	case MethodStripe:
		params := &stripe.PaymentIntentParams{
			Amount:   stripe.Int64(amount),
			Currency: stripe.String(currency),
			PaymentMethodTypes: []*string{
				stripe.String("card"),
			},
		}
		if _, err := paymentintent.New(params); err != nil {
			return false, err
		}
		return true, nil
	case MethodPaytm, MethodPhonePe, MethodGPay, MethodCash:
		// Simulated gateways always confirm.
		return true, nil
	default:
		return false, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}
}
