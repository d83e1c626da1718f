package api

const (
	// GET /ping to check the service is alive
	pingEndpoint = "/ping"

	// donation routes

	// POST /donate to create a checkout session for a donation, OPTIONS for
	// the CORS preflight
	donateEndpoint = "/donate"

	// stripe routes

	// POST /webhooks/stripe to receive the Stripe events
	stripeWebhookEndpoint = "/webhooks/stripe"
)
