package api

import (
	"encoding/json"
	goerrors "errors"
	"net/http"

	"github.com/vocdoni/donations-backend/donation"
	"github.com/vocdoni/donations-backend/errors"
	"github.com/vocdoni/donations-backend/stripe"
	"go.vocdoni.io/dvote/log"
)

// maxDonationBodyBytes caps the donation request body.
const maxDonationBodyBytes = int64(16384)

// donateHandler godoc
//
//	@Summary		Create a donation checkout session
//	@Description	Validate the donation form, verify the bot challenge and create a Stripe checkout
//	@Description	session. The session object is returned as received from Stripe. Any method other
//	@Description	than POST is answered as a CORS preflight.
//	@Tags			donations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		donation.Request	true	"Donation form"
//	@Success		200		{object}	object				"Stripe checkout session"
//	@Failure		400		{object}	errors.Error		"Invalid input data or challenge failed"
//	@Failure		500		{object}	errors.Error		"Payments processor error"
//	@Router			/donate [post]
func (a *API) donateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusOK)
		return
	}
	req := &donation.Request{}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDonationBodyBytes)).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	// fall back to the configured redirect URLs
	conf := a.stripe.Client().Config()
	if req.SuccessURL == "" {
		req.SuccessURL = conf.SuccessURL
	}
	if req.CancelURL == "" {
		req.CancelURL = conf.CancelURL
	}
	d, err := req.Validate()
	if err != nil {
		httpWriteError(w, err)
		return
	}
	if a.captcha != nil {
		ok, err := a.captcha.Verify(r.Context(), req.CaptchaToken, remoteIP(r))
		if err != nil {
			log.Warnw("captcha verification failed", "error", err)
		}
		if !ok {
			errors.ErrChallengeFailed.Write(w)
			return
		}
	}
	session, err := a.stripe.Client().CreateCheckoutSession(r.Context(), d)
	if err != nil {
		msg := err.Error()
		var stripeErr *stripe.StripeError
		if goerrors.As(err, &stripeErr) {
			msg = stripeErr.ProcessorMessage()
		}
		errors.ErrPaymentsProcessor.With(msg).Write(w)
		return
	}
	// the session is forwarded as received from Stripe
	if session.LastResponse != nil && len(session.LastResponse.RawJSON) > 0 {
		httpWriteRawJSON(w, session.LastResponse.RawJSON)
		return
	}
	httpWriteJSON(w, session)
}
