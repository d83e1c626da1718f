package stripe

import (
	"fmt"
	"strings"
)

// DefaultCurrency is used when no currency is configured.
const DefaultCurrency = "usd"

// Config holds the complete Stripe configuration
type Config struct {
	APIKey        string `yaml:"api_key" json:"api_key"`
	WebhookSecret string `yaml:"webhook_secret" json:"webhook_secret"`
	// MonthlyPlanID is the recurring plan (or price) billed for monthly
	// donations. Its unit price is one minor currency unit, so the donation
	// amount is used as the subscription quantity.
	MonthlyPlanID string `yaml:"monthly_plan_id" json:"monthly_plan_id"`
	Currency      string `yaml:"currency" json:"currency"`
	// APIVersion is the API version the webhook endpoint is expected to be
	// configured with. Events with a different version are processed anyway
	// and a warning is logged.
	APIVersion string `yaml:"api_version" json:"api_version"`
	// APIURL overrides the Stripe API base URL.
	APIURL string `yaml:"api_url" json:"api_url"`
	// SuccessURL and CancelURL are used when the donation request does not
	// provide its own redirect URLs.
	SuccessURL string `yaml:"success_url" json:"success_url"`
	CancelURL  string `yaml:"cancel_url" json:"cancel_url"`
}

// Validate checks that the required values are present and normalises the
// currency code.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("stripe secret key is required")
	}
	if c.WebhookSecret == "" {
		return fmt.Errorf("stripe webhook secret is required")
	}
	if c.MonthlyPlanID == "" {
		return fmt.Errorf("stripe monthly plan id is required")
	}
	c.Currency = strings.ToLower(strings.TrimSpace(c.Currency))
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	return nil
}
