package payments

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/diagnosis/stayvista-server/internal/domain"
	"github.com/diagnosis/stayvista-server/pkg/config"
	"github.com/diagnosis/stayvista-server/pkg/logger"
	"github.com/diagnosis/stayvista-server/pkg/metrics"
)

type Service interface {
	// CreateIntent returns the client secret of a new payment intent for price (in major units).
	CreateIntent(ctx context.Context, price float64) (string, error)
}

// intentAPI is the subset of the Stripe client used here.
type intentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type stripeService struct {
	intents  intentAPI
	currency string
	breaker  *gobreaker.CircuitBreaker[string]
}

func NewStripeService(cfg config.StripeConfig) Service {
	var intents intentAPI
	if cfg.SecretKey != "" {
		sc := &client.API{}
		sc.Init(cfg.SecretKey, nil)
		intents = sc.PaymentIntents
	} else {
		logger.Warn("Payments disabled: STRIPE_SECRET_KEY not set")
	}
	return newStripeService(intents, cfg)
}

func newStripeService(intents intentAPI, cfg config.StripeConfig) *stripeService {
	threshold := cfg.BreakerThreshold
	if threshold == 0 {
		threshold = 5
	}
	currency := cfg.Currency
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	settings := gobreaker.Settings{
		Name:    "stripe",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.PaymentBreakerState.Set(float64(to))
			logger.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		// card errors are the caller's problem, not an outage
		IsSuccessful: func(err error) bool {
			var serr *stripe.Error
			if errors.As(err, &serr) {
				return serr.Type == stripe.ErrorTypeCard || serr.Type == stripe.ErrorTypeInvalidRequest
			}
			return err == nil
		},
	}

	return &stripeService{
		intents:  intents,
		currency: currency,
		breaker:  gobreaker.NewCircuitBreaker[string](settings),
	}
}

// AmountInCents converts a price to the smallest currency unit.
func AmountInCents(price float64) (int64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, fmt.Errorf("%w: price must be greater than 0", domain.ErrInvalidInput)
	}
	cents := int64(math.Round(price * 100))
	if cents < 1 {
		return 0, fmt.Errorf("%w: amount must be at least 1 cent", domain.ErrInvalidInput)
	}
	return cents, nil
}

func (s *stripeService) CreateIntent(ctx context.Context, price float64) (string, error) {
	amount, err := AmountInCents(price)
	if err != nil {
		return "", err
	}
	if s.intents == nil {
		return "", fmt.Errorf("%w: payments are not configured", domain.ErrUpstream)
	}

	secret, err := s.breaker.Execute(func() (string, error) {
		params := &stripe.PaymentIntentParams{
			Amount:   stripe.Int64(amount),
			Currency: stripe.String(s.currency),
			AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
				Enabled: stripe.Bool(true),
			},
		}
		params.Context = ctx

		pi, err := s.intents.New(params)
		if err != nil {
			return "", err
		}
		return pi.ClientSecret, nil
	})
	metrics.RecordPaymentIntent(err)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create payment intent", "error", err, "amount", amount)
		return "", fmt.Errorf("%w: create payment intent: %v", domain.ErrUpstream, err)
	}
	return secret, nil
}
