package api

import (
	"bytes"
	"fmt"
	"net/http"
	"testing"

	qt "github.com/frankban/quicktest"
	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/vocdoni/donations-backend/test"
)

func chargeEvent(metadata map[string]any) []byte {
	return test.StripeEventPayload("evt_test", stripeapi.EventTypeChargeSucceeded, map[string]any{
		"id":       "ch_test",
		"object":   "charge",
		"customer": "cus_ada",
		"invoice":  nil,
		"metadata": metadata,
	})
}

func signedHeader(payload []byte, secret string) http.Header {
	return http.Header{stripeSignatureHeader: []string{test.SignStripePayload(payload, secret)}}
}

func TestStripeWebhook(t *testing.T) {
	c := qt.New(t)

	c.Run("Acknowledged", func(c *qt.C) {
		env := newTestEnv(c)
		payload := chargeEvent(map[string]any{"name": "Ada", "showOnList": "true"})
		resp, body := env.request(c, http.MethodPost, stripeWebhookEndpoint, payload,
			signedHeader(payload, test.StripeTestWebhookSecret))
		c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
		c.Assert(string(body), qt.Equals, "success")
		sent := env.mail.Sent()
		c.Assert(sent, qt.HasLen, 1)
		c.Assert(sent[0].ToAddress, qt.Equals, "ada@example.com")
		c.Assert(sent[0].PlainBody, qt.Contains, "Dear Ada,")
	})

	c.Run("InvalidSignature", func(c *qt.C) {
		env := newTestEnv(c)
		payload := chargeEvent(map[string]any{"name": "Ada", "showOnList": "true"})
		resp, body := env.request(c, http.MethodPost, stripeWebhookEndpoint, payload,
			signedHeader(payload, "whsec_wrong"))
		c.Assert(resp.StatusCode, qt.Equals, http.StatusBadRequest)
		c.Assert(string(body), qt.Equals, "Invalid signature")
		c.Assert(env.stripe.Requests(), qt.Equals, 0)
		c.Assert(env.mail.Sent(), qt.HasLen, 0)
	})

	c.Run("MissingSignature", func(c *qt.C) {
		env := newTestEnv(c)
		resp, body := env.request(c, http.MethodPost, stripeWebhookEndpoint,
			chargeEvent(map[string]any{"showOnList": "true"}), nil)
		c.Assert(resp.StatusCode, qt.Equals, http.StatusBadRequest)
		c.Assert(string(body), qt.Equals, "Invalid signature")
		c.Assert(env.stripe.Requests(), qt.Equals, 0)
	})

	c.Run("TamperedPayload", func(c *qt.C) {
		env := newTestEnv(c)
		payload := chargeEvent(map[string]any{"name": "Ada", "showOnList": "true"})
		header := signedHeader(payload, test.StripeTestWebhookSecret)
		tampered := bytes.Replace(payload, []byte("cus_ada"), []byte("cus_eve"), 1)
		resp, _ := env.request(c, http.MethodPost, stripeWebhookEndpoint, tampered, header)
		c.Assert(resp.StatusCode, qt.Equals, http.StatusBadRequest)
		c.Assert(env.mail.Sent(), qt.HasLen, 0)
	})

	c.Run("PayloadTooLarge", func(c *qt.C) {
		env := newTestEnv(c)
		payload := chargeEvent(map[string]any{"padding": string(bytes.Repeat([]byte("x"), int(MaxBodyBytes)))})
		resp, _ := env.request(c, http.MethodPost, stripeWebhookEndpoint, payload,
			signedHeader(payload, test.StripeTestWebhookSecret))
		c.Assert(resp.StatusCode, qt.Equals, http.StatusBadRequest)
		c.Assert(env.stripe.Requests(), qt.Equals, 0)
	})

	c.Run("MailFailureStillSucceeds", func(c *qt.C) {
		env := newTestEnv(c)
		env.mail.fail = fmt.Errorf("relay unavailable")
		payload := chargeEvent(map[string]any{"name": "Ada", "showOnList": true})
		resp, body := env.request(c, http.MethodPost, stripeWebhookEndpoint, payload,
			signedHeader(payload, test.StripeTestWebhookSecret))
		c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
		c.Assert(string(body), qt.Equals, "success")
		c.Assert(env.stripe.CustomerLookups(), qt.DeepEquals, []string{"cus_ada"})
	})

	c.Run("UnknownCustomerStillSucceeds", func(c *qt.C) {
		env := newTestEnv(c)
		payload := test.StripeEventPayload("evt_test", stripeapi.EventTypeCustomerSubscriptionCreated, map[string]any{
			"id":       "sub_test",
			"object":   "subscription",
			"customer": "cus_unknown",
			"metadata": map[string]any{"name": "Ada", "showOnList": "false"},
		})
		resp, _ := env.request(c, http.MethodPost, stripeWebhookEndpoint, payload,
			signedHeader(payload, test.StripeTestWebhookSecret))
		c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
		c.Assert(env.mail.Sent(), qt.HasLen, 0)
	})

	c.Run("IgnoredEvent", func(c *qt.C) {
		env := newTestEnv(c)
		payload := test.StripeEventPayload("evt_test", stripeapi.EventTypeInvoicePaymentSucceeded,
			map[string]any{"id": "in_test", "object": "invoice"})
		resp, body := env.request(c, http.MethodPost, stripeWebhookEndpoint, payload,
			signedHeader(payload, test.StripeTestWebhookSecret))
		c.Assert(resp.StatusCode, qt.Equals, http.StatusOK)
		c.Assert(string(body), qt.Equals, "success")
		c.Assert(env.stripe.Requests(), qt.Equals, 0)
	})
}
