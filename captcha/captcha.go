// Package captcha verifies the bot challenge tokens produced by the client
// side reCAPTCHA widget of the donation form.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.vocdoni.io/dvote/log"
)

// DefaultVerifyURL is the reCAPTCHA siteverify endpoint.
const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// maxResponseBytes caps the verification response body.
const maxResponseBytes = int64(16384)

// Config holds the verification service settings. An empty SecretKey
// disables the verification.
type Config struct {
	SecretKey  string
	VerifyURL  string
	HTTPClient *http.Client
}

// Verifier submits challenge tokens to the verification service. It holds
// no mutable state and is safe for concurrent use.
type Verifier struct {
	secret    string
	verifyURL string
	client    *http.Client
}

// Response represents the verification service response.
type Response struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// New returns a Verifier for the configuration, or nil when no secret key is
// configured, meaning donations are accepted without a bot challenge.
func New(conf *Config) *Verifier {
	if conf == nil || conf.SecretKey == "" {
		return nil
	}
	v := &Verifier{
		secret:    conf.SecretKey,
		verifyURL: conf.VerifyURL,
		client:    conf.HTTPClient,
	}
	if v.verifyURL == "" {
		v.verifyURL = DefaultVerifyURL
	}
	if v.client == nil {
		v.client = &http.Client{Timeout: 10 * time.Second}
	}
	return v
}

// Verify submits the token to the verification service. It returns true only
// when the service confirmed the challenge. An empty token is rejected
// without calling the service. remoteIP is optional.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if strings.TrimSpace(token) == "" {
		return false, nil
	}
	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("could not reach verification service: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	var result Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&result); err != nil {
		return false, fmt.Errorf("could not decode response: %w", err)
	}
	if !result.Success {
		log.Debugw("captcha verification rejected", "errorCodes", result.ErrorCodes, "hostname", result.Hostname)
	}
	return result.Success, nil
}
