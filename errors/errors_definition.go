// Package errors provides custom error types and definitions for the application.
//
//nolint:lll
package errors

import (
	"fmt"
	"net/http"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error, which is sent
// back to the donation form as is.
//
// Error codes in the 40001-49999 range are the user's fault,
// and they return HTTP Status 400.
//
// Error codes 50001-59999 are the server's fault or the fault of an upstream
// provider, and they return HTTP Status 500.
//
// NEVER change any of the current error codes, only append new errors after the current last 4XXX or 5XXX
var (
	// Validation errors (400)
	ErrMalformedBody         = Error{Code: 40001, Kind: KindValidation, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("Invalid JSON request body")}
	ErrAmountRequired        = Error{Code: 40002, Kind: KindValidation, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("Please specify an amount")}
	ErrIntervalRequired      = Error{Code: 40003, Kind: KindValidation, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("Please specify an interval")}
	ErrRedirectURLsRequired  = Error{Code: 40004, Kind: KindValidation, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("Please specify a successUrl and cancelUrl")}
	ErrAmountOutOfBounds     = Error{Code: 40005, Kind: KindValidation, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("You can only donate between $1 and $100,000 USD")}
	ErrChallengeFailed       = Error{Code: 40006, Kind: KindValidation, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("The CAPTCHA challenge failed, please try submitting the form again."), LogLevel: "info"}
	ErrInvalidSignature      = Error{Code: 40007, Kind: KindSignature, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("Invalid signature"), LogLevel: "warn"}
	ErrMalformedWebhookEvent = Error{Code: 40008, Kind: KindValidation, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed webhook event")}

	// Server errors (500)
	ErrPaymentsProcessor          = Error{Code: 50001, Kind: KindUpstream, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("Error from our payments processor"), LogLevel: "error"}
	ErrGenericInternalServerError = Error{Code: 50002, Kind: KindUpstream, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: operation failed"), LogLevel: "error"}
	ErrCustomerLookupFailed       = Error{Code: 50003, Kind: KindUpstream, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("could not resolve the customer email"), LogLevel: "error"}
	ErrMailDeliveryFailed         = Error{Code: 50004, Kind: KindDelivery, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("mail delivery failed"), LogLevel: "error"}
)
