package stripe

import (
	"errors"
	"fmt"

	stripeapi "github.com/stripe/stripe-go/v82"
)

// StripeError represents a Stripe-specific error
type StripeError struct {
	Code    string
	Message string
	Err     error
}

func (e *StripeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stripe error [%s]: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("stripe error [%s]: %s", e.Code, e.Message)
}

func (e *StripeError) Unwrap() error {
	return e.Err
}

// ProcessorMessage returns the message reported by the Stripe API for the
// wrapped error, falling back to the wrapped error text.
func (e *StripeError) ProcessorMessage() string {
	var apiErr *stripeapi.Error
	if errors.As(e.Err, &apiErr) && apiErr.Msg != "" {
		return apiErr.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Common Stripe error codes
const (
	CodeWebhookValidation = "webhook_validation"
	CodeAPICallFailed     = "api_call_failed"
	CodeCustomerNotFound  = "customer_not_found"
)

// Common Stripe errors
var (
	ErrCustomerNotFound  = &StripeError{Code: CodeCustomerNotFound, Message: "stripe customer not found"}
	ErrAPICallFailed     = &StripeError{Code: CodeAPICallFailed, Message: "stripe API call failed"}
	ErrWebhookValidation = &StripeError{Code: CodeWebhookValidation, Message: "webhook signature validation failed"}
)

// NewStripeError creates a new StripeError with the given code, message, and underlying error
func NewStripeError(code, message string, err error) *StripeError {
	return &StripeError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Is matches StripeErrors by code.
func (e *StripeError) Is(target error) bool {
	t, ok := target.(*StripeError)
	return ok && t.Code == e.Code
}

// IsSignatureError reports whether err is a webhook signature validation
// failure.
func IsSignatureError(err error) bool {
	return errors.Is(err, ErrWebhookValidation)
}
