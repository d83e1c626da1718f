package test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"

	stripeapi "github.com/stripe/stripe-go/v82"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"
)

const (
	// StripeTestKey is a secret key accepted by the fake Stripe API.
	StripeTestKey = "sk_test_donations"
	// StripeTestWebhookSecret is the webhook secret used to sign test events.
	StripeTestWebhookSecret = "whsec_donations"
	// StripeTestSessionID is the id of every checkout session created by the
	// fake Stripe API.
	StripeTestSessionID = "cs_test_donation"
)

// StripeServer is a fake of the Stripe API endpoints used by the service:
// checkout session creation and customer retrieval. It records every request
// so tests can check how they were shaped.
type StripeServer struct {
	*httptest.Server

	mu              sync.Mutex
	sessionForms    []url.Values
	customerLookups []string
	customers       map[string]string
	deleted         map[string]bool
	sessionError    string
}

// NewStripeServer starts a fake Stripe API. Close it when done.
func NewStripeServer() *StripeServer {
	s := &StripeServer{customers: map[string]string{}, deleted: map[string]bool{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/checkout/sessions", s.handleCheckoutSession)
	mux.HandleFunc("/v1/customers/", s.handleCustomer)
	s.Server = httptest.NewServer(mux)
	return s
}

// SetCustomer registers a customer and its email.
func (s *StripeServer) SetCustomer(id, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[id] = email
}

// DeleteCustomer marks a customer as deleted, it is still returned by the
// API as a deleted object.
func (s *StripeServer) DeleteCustomer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted[id] = true
}

// FailSessions makes every following checkout session creation fail with an
// invalid request error carrying msg. An empty msg restores the default.
func (s *StripeServer) FailSessions(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionError = msg
}

// SessionForms returns the form of every checkout session creation request.
func (s *StripeServer) SessionForms() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]url.Values(nil), s.sessionForms...)
}

// CustomerLookups returns the ids of every customer retrieved.
func (s *StripeServer) CustomerLookups() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.customerLookups...)
}

// Requests returns the number of requests received by the fake.
func (s *StripeServer) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessionForms) + len(s.customerLookups)
}

func (s *StripeServer) handleCheckoutSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeStripeError(w, http.StatusMethodNotAllowed, "invalid_request_error", "", "method not allowed")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeStripeError(w, http.StatusBadRequest, "invalid_request_error", "", err.Error())
		return
	}
	s.mu.Lock()
	s.sessionForms = append(s.sessionForms, r.PostForm)
	sessionError := s.sessionError
	s.mu.Unlock()

	if sessionError != "" {
		writeStripeError(w, http.StatusBadRequest, "invalid_request_error", "resource_missing", sessionError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":          StripeTestSessionID,
		"object":      "checkout.session",
		"mode":        r.PostForm.Get("mode"),
		"success_url": r.PostForm.Get("success_url"),
		"cancel_url":  r.PostForm.Get("cancel_url"),
		"url":         "https://checkout.stripe.com/c/pay/" + StripeTestSessionID,
		"livemode":    false,
	})
}

func (s *StripeServer) handleCustomer(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/customers/")
	s.mu.Lock()
	s.customerLookups = append(s.customerLookups, id)
	email, ok := s.customers[id]
	deleted := s.deleted[id]
	s.mu.Unlock()

	if deleted {
		writeJSON(w, http.StatusOK, map[string]any{
			"id":      id,
			"object":  "customer",
			"deleted": true,
		})
		return
	}
	if !ok {
		writeStripeError(w, http.StatusNotFound, "invalid_request_error", "resource_missing",
			fmt.Sprintf("No such customer: '%s'", id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":     id,
		"object": "customer",
		"email":  email,
	})
}

func writeStripeError(w http.ResponseWriter, status int, errType, code, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"type":    errType,
			"code":    code,
			"message": msg,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Request-Id", "req_test")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// StripeEventPayload builds the JSON payload of a webhook event wrapping the
// given data object.
func StripeEventPayload(id string, eventType stripeapi.EventType, object any) []byte {
	payload, err := json.Marshal(map[string]any{
		"id":          id,
		"object":      "event",
		"type":        eventType,
		"api_version": stripeapi.APIVersion,
		"created":     time.Now().Unix(),
		"livemode":    false,
		"data": map[string]any{
			"object": object,
		},
	})
	if err != nil {
		panic(err)
	}
	return payload
}

// SignStripePayload returns the Stripe-Signature header value for the payload
// signed with secret.
func SignStripePayload(payload []byte, secret string) string {
	signed := stripewebhook.GenerateTestSignedPayload(&stripewebhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})
	return signed.Header
}
