// Package api provides the HTTP API of the donations backend: the donation
// intake endpoint used by the donation form and the Stripe webhook endpoint.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vocdoni/donations-backend/captcha"
	"github.com/vocdoni/donations-backend/stripe"
	"go.vocdoni.io/dvote/log"
)

const (
	// maxConcurrentRequests is the number of requests processed at once,
	// the rest wait in a backlog of maxBacklogRequests.
	maxConcurrentRequests = 100
	maxBacklogRequests    = 5000
	backlogTimeout        = 60 * time.Second
	// requestTimeout bounds the whole request, outbound calls included.
	requestTimeout = 45 * time.Second
)

// Config holds the dependencies of the API. Stripe is required, Captcha is
// optional and enables the bot challenge on donations when set.
type Config struct {
	Host    string
	Port    int
	Stripe  *stripe.Service
	Captcha *captcha.Verifier
}

// API type represents the API HTTP server.
type API struct {
	host    string
	port    int
	router  *chi.Mux
	stripe  *stripe.Service
	captcha *captcha.Verifier
}

// New creates a new API HTTP server. It does not start the server. Use Start() for that.
func New(conf *Config) *API {
	if conf == nil || conf.Stripe == nil {
		return nil
	}
	a := &API{
		host:    conf.Host,
		port:    conf.Port,
		stripe:  conf.Stripe,
		captcha: conf.Captcha,
	}
	a.router = a.initRouter()
	return a
}

// Router returns the HTTP handler with all the routes and middleware.
func (a *API) Router() http.Handler {
	return a.router
}

// Start starts the API HTTP server (non blocking).
func (a *API) Start() {
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", a.host, a.port), a.router); err != nil {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() *chi.Mux {
	// Create the router with a basic middleware stack
	r := chi.NewRouter()
	r.Use(corsHeaders)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.ThrottleBacklog(maxConcurrentRequests, maxBacklogRequests, backlogTimeout))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get(pingEndpoint, func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte(".")); err != nil {
			log.Warnw("failed to write ping response", "error", err)
		}
	})
	// donation intake, any method other than POST is a preflight
	log.Infow("new route", "method", "POST", "path", donateEndpoint)
	r.HandleFunc(donateEndpoint, a.donateHandler)
	// handle stripe webhook
	log.Infow("new route", "method", "POST", "path", stripeWebhookEndpoint)
	r.Post(stripeWebhookEndpoint, a.stripeWebhookHandler)
	return r
}
