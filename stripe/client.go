package stripe

import (
	"context"
	"errors"
	"net/http"
	"time"

	stripeapi "github.com/stripe/stripe-go/v82"
	stripecheckoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	stripecustomer "github.com/stripe/stripe-go/v82/customer"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"
	"github.com/vocdoni/donations-backend/donation"
	"go.vocdoni.io/dvote/log"
)

const (
	oneOffLineItemName = "One-off donation"
	paymentMethodCard  = "card"
)

// Client wraps the Stripe API client with additional functionality. It is
// bound to its own backend and API key, so it never touches the stripe-go
// package level configuration and is safe to share between requests.
type Client struct {
	config    *Config
	sessions  *stripecheckoutsession.Client
	customers *stripecustomer.Client
}

// NewClient creates a new Stripe client with the given configuration. The
// SDK automatic retries are disabled, a failed call fails the request.
func NewClient(config *Config) *Client {
	backendConfig := &stripeapi.BackendConfig{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		LeveledLogger:     leveledLogger{},
		MaxNetworkRetries: stripeapi.Int64(0),
	}
	if config.APIURL != "" {
		backendConfig.URL = stripeapi.String(config.APIURL)
	}
	backend := stripeapi.GetBackendWithConfig(stripeapi.APIBackend, backendConfig)

	return &Client{
		config:    config,
		sessions:  &stripecheckoutsession.Client{B: backend, Key: config.APIKey},
		customers: &stripecustomer.Client{B: backend, Key: config.APIKey},
	}
}

// Config returns the configuration of the client.
func (c *Client) Config() *Config {
	return c.config
}

// ValidateWebhookEvent validates and parses a webhook event. API version
// mismatches are tolerated, only the signature is enforced.
func (c *Client) ValidateWebhookEvent(payload []byte, signatureHeader string) (*stripeapi.Event, error) {
	event, err := stripewebhook.ConstructEventWithOptions(payload, signatureHeader, c.config.WebhookSecret,
		stripewebhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, NewStripeError(CodeWebhookValidation, "webhook signature validation failed", err)
	}
	if c.config.APIVersion != "" && event.APIVersion != c.config.APIVersion {
		log.Warnw("stripe webhook: event API version mismatch",
			"event", event.ID, "eventVersion", event.APIVersion, "expectedVersion", c.config.APIVersion)
	}
	return &event, nil
}

// GetCustomer retrieves a customer by ID. Unknown and deleted customers
// return an error matching ErrCustomerNotFound.
func (c *Client) GetCustomer(ctx context.Context, customerID string) (*stripeapi.Customer, error) {
	params := &stripeapi.CustomerParams{}
	params.Context = ctx
	customer, err := c.customers.Get(customerID, params)
	if err != nil {
		var apiErr *stripeapi.Error
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusNotFound {
			return nil, NewStripeError(ErrCustomerNotFound.Code, "customer "+customerID+" not found", err)
		}
		return nil, NewStripeError(CodeAPICallFailed, "failed to get customer", err)
	}
	if customer.Deleted {
		return nil, NewStripeError(ErrCustomerNotFound.Code, "customer "+customerID+" was deleted", nil)
	}
	return customer, nil
}

// CheckoutSessionParams shapes the checkout session creation request for a
// donation. Monthly donations subscribe the donor to the configured plan
// using the amount as quantity, since the plan bills quantity times its unit
// price. One-off donations carry the amount and currency in the line item.
// The donation metadata goes to the subscription or to the payment intent
// respectively, which are the objects referenced by later webhook events.
// One-off sessions always create a customer, subscriptions always have one.
func (c *Client) CheckoutSessionParams(d *donation.Donation) *stripeapi.CheckoutSessionParams {
	params := &stripeapi.CheckoutSessionParams{
		SuccessURL:         stripeapi.String(d.SuccessURL),
		CancelURL:          stripeapi.String(d.CancelURL),
		PaymentMethodTypes: stripeapi.StringSlice([]string{paymentMethodCard}),
	}
	metadata := d.Metadata.Encode()
	if d.IsMonthly() {
		params.Mode = stripeapi.String(string(stripeapi.CheckoutSessionModeSubscription))
		params.LineItems = []*stripeapi.CheckoutSessionLineItemParams{
			{
				Price:    stripeapi.String(c.config.MonthlyPlanID),
				Quantity: stripeapi.Int64(d.Amount),
			},
		}
		params.SubscriptionData = &stripeapi.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		}
		return params
	}
	params.Mode = stripeapi.String(string(stripeapi.CheckoutSessionModePayment))
	params.SubmitType = stripeapi.String(string(stripeapi.CheckoutSessionSubmitTypeDonate))
	// payment mode sessions only create a customer on request, the charge
	// event needs one to resolve the donor email
	params.CustomerCreation = stripeapi.String(string(stripeapi.CheckoutSessionCustomerCreationAlways))
	params.LineItems = []*stripeapi.CheckoutSessionLineItemParams{
		{
			PriceData: &stripeapi.CheckoutSessionLineItemPriceDataParams{
				Currency: stripeapi.String(c.config.Currency),
				ProductData: &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripeapi.String(oneOffLineItemName),
				},
				UnitAmount: stripeapi.Int64(d.Amount),
			},
			Quantity: stripeapi.Int64(1),
		},
	}
	params.PaymentIntentData = &stripeapi.CheckoutSessionPaymentIntentDataParams{
		Metadata: metadata,
	}
	return params
}

// CreateCheckoutSession creates a new checkout session for the donation.
// Overview of stripe checkout mechanics: https://docs.stripe.com/payments/checkout
// API description https://docs.stripe.com/api/checkout/sessions
func (c *Client) CreateCheckoutSession(ctx context.Context, d *donation.Donation) (*stripeapi.CheckoutSession, error) {
	params := c.CheckoutSessionParams(d)
	params.Context = ctx
	session, err := c.sessions.New(params)
	if err != nil {
		return nil, NewStripeError(CodeAPICallFailed, "failed to create checkout session", err)
	}
	log.Infow("stripe checkout session created", "session", session.ID, "interval", d.Interval, "amount", d.Amount)
	return session, nil
}

// leveledLogger routes the stripe-go SDK logs to the service logger.
type leveledLogger struct{}

func (leveledLogger) Debugf(format string, v ...any) { log.Debugf(format, v...) }
func (leveledLogger) Infof(format string, v ...any)  { log.Debugf(format, v...) }
func (leveledLogger) Warnf(format string, v ...any)  { log.Warnf(format, v...) }
func (leveledLogger) Errorf(format string, v ...any) { log.Errorf(format, v...) }
