package api

import (
	"io"
	"net/http"

	"github.com/vocdoni/donations-backend/errors"
	"github.com/vocdoni/donations-backend/stripe"
	"go.vocdoni.io/dvote/log"
)

const (
	// MaxBodyBytes caps the webhook payload.
	MaxBodyBytes = int64(65536) //revive:disable:unexported-naming

	stripeSignatureHeader = "Stripe-Signature"

	webhookSuccessBody = "success"
)

// stripeWebhookHandler godoc
//
//	@Summary		Handle Stripe webhook events
//	@Description	Verify the event signature and acknowledge completed donations with a thank-you
//	@Description	email. Once the signature is valid the event is always answered with 200, failures
//	@Description	looking up the donor or delivering the email are only logged.
//	@Tags			donations
//	@Accept			json
//	@Produce		plain
//	@Param			body	body		string	true	"Stripe webhook payload"
//	@Success		200		{string}	string	"success"
//	@Failure		400		{string}	string	"Invalid signature"
//	@Router			/webhooks/stripe [post]
func (a *API) stripeWebhookHandler(w http.ResponseWriter, r *http.Request) {
	// Read and validate the request body
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Warnw("stripe webhook: error reading request body", "error", err)
		httpWriteText(w, http.StatusBadRequest, errors.ErrInvalidSignature.Error())
		return
	}

	err = a.stripe.HandleWebhookEvent(r.Context(), payload, r.Header.Get(stripeSignatureHeader))
	if stripe.IsSignatureError(err) {
		log.Warnw("stripe webhook: rejected event", "error", err)
		httpWriteText(w, http.StatusBadRequest, errors.ErrInvalidSignature.Error())
		return
	}
	if err != nil {
		// the event is not retried, the failure is only reported
		log.Errorw(err, "stripe webhook: event not acknowledged")
	}
	httpWriteText(w, http.StatusOK, webhookSuccessBody)
}
