package stripe

import (
	"bytes"
	"context"
	"encoding/json"

	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/vocdoni/donations-backend/donation"
	"github.com/vocdoni/donations-backend/errors"
	"github.com/vocdoni/donations-backend/internal"
	"github.com/vocdoni/donations-backend/notifications/mailtemplates"
	"go.vocdoni.io/dvote/log"
)

// donationObject is the part of a charge or subscription event payload used
// to acknowledge a donation. Metadata values are kept untyped so that both
// string and boolean representations can be decoded.
type donationObject struct {
	ID       string              `json:"id"`
	Customer *stripeapi.Customer `json:"customer"`
	Invoice  json.RawMessage     `json:"invoice"`
	Metadata map[string]any      `json:"metadata"`
}

// hasInvoice returns true when the object references an invoice, which for
// charges means it is a renewal payment of a subscription.
func (o *donationObject) hasInvoice() bool {
	raw := bytes.TrimSpace(o.Invoice)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null")) && !bytes.Equal(raw, []byte(`""`))
}

// HandleWebhookEvent validates the signature of the payload and processes the
// event. A signature failure is returned as a StripeError with code
// CodeWebhookValidation before anything in the payload is looked at. Any
// other error happened after the event was accepted and must not be reported
// back to Stripe as a failure.
func (s *Service) HandleWebhookEvent(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := s.client.ValidateWebhookEvent(payload, signatureHeader)
	if err != nil {
		return err
	}
	return s.HandleEvent(ctx, event)
}

// HandleEvent processes an already validated event. Only successful one-off
// charges and newly created subscriptions carrying donation metadata are
// acknowledged, every other event is ignored.
func (s *Service) HandleEvent(ctx context.Context, event *stripeapi.Event) error {
	switch event.Type {
	case stripeapi.EventTypeChargeSucceeded:
		obj, err := parseDonationObject(event)
		if err != nil {
			return err
		}
		// a charge with an invoice is the 2nd+ payment of a subscription
		if obj.hasInvoice() {
			log.Debugw("stripe webhook: skipping subscription renewal charge", "event", event.ID, "charge", obj.ID)
			return nil
		}
		return s.acknowledge(ctx, event, obj, false)
	case stripeapi.EventTypeCustomerSubscriptionCreated:
		obj, err := parseDonationObject(event)
		if err != nil {
			return err
		}
		return s.acknowledge(ctx, event, obj, true)
	default:
		log.Debugf("stripe webhook: received unhandled event type %s (id %s)", event.Type, event.ID)
		return nil
	}
}

// acknowledge resolves the customer email and sends the thank you email for
// objects that carry donation metadata.
func (s *Service) acknowledge(ctx context.Context, event *stripeapi.Event, obj *donationObject, monthly bool) error {
	metadata, ok := donation.DecodeMetadata(obj.Metadata)
	if !ok {
		log.Debugw("stripe webhook: object without donation metadata", "event", event.ID, "object", obj.ID)
		return nil
	}
	if obj.Customer == nil || obj.Customer.ID == "" {
		return errors.ErrCustomerLookupFailed.Withf("object %s has no customer", obj.ID)
	}
	customer, err := s.client.GetCustomer(ctx, obj.Customer.ID)
	if err != nil {
		return errors.ErrCustomerLookupFailed.WithErr(err)
	}
	email := internal.NormalizeEmail(customer.Email)
	if !internal.ValidEmail(email) {
		return errors.ErrCustomerLookupFailed.Withf("customer %s has no valid email", customer.ID)
	}
	opts := mailtemplates.EmailOptions{
		Email:      email,
		Name:       metadata.Name,
		ShowOnList: metadata.ShowOnList,
		IsMonthly:  monthly,
	}
	notification, err := mailtemplates.ThankYou(opts)
	if err != nil {
		return errors.ErrMailDeliveryFailed.WithErr(err)
	}
	if s.mail == nil {
		log.Warnw("stripe webhook: no mail service configured, acknowledgement not sent",
			"event", event.ID, "customer", customer.ID)
		return nil
	}
	if err := s.mail.SendNotification(ctx, notification); err != nil {
		return errors.ErrMailDeliveryFailed.WithErr(err)
	}
	log.Infow("stripe webhook: acknowledgement sent",
		"event", event.ID, "customer", customer.ID, "monthly", monthly, "showOnList", metadata.ShowOnList)
	return nil
}

// parseDonationObject extracts the event data object.
func parseDonationObject(event *stripeapi.Event) (*donationObject, error) {
	if event.Data == nil {
		return nil, errors.ErrMalformedWebhookEvent.Withf("event %s has no data", event.ID)
	}
	var obj donationObject
	if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
		return nil, errors.ErrMalformedWebhookEvent.WithErr(err)
	}
	return &obj, nil
}
