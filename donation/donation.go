// Package donation holds the donation request submitted by the donation form,
// its validation rules and the metadata stored along with the payment on the
// payments processor side.
package donation

import (
	"math"

	"github.com/vocdoni/donations-backend/errors"
)

// Interval is the recurrence of a donation.
type Interval string

const (
	// IntervalOnce is a one-off donation.
	IntervalOnce Interval = "once"
	// IntervalMonthly is a recurring monthly donation.
	IntervalMonthly Interval = "monthly"
)

// Valid returns true if the interval is one of the supported values.
func (i Interval) Valid() bool {
	return i == IntervalOnce || i == IntervalMonthly
}

const (
	// MinAmount is the minimum donation in minor currency units ($1).
	MinAmount int64 = 100
	// MaxAmount is the maximum donation in minor currency units ($100,000).
	MaxAmount int64 = 10_000_000
)

// Request is the donation submitted by the donation form. Amount is expressed
// in minor currency units and may carry decimals, it is truncated before
// being checked.
type Request struct {
	Name         string   `json:"name"`
	ShowOnList   bool     `json:"showOnList"`
	Amount       *float64 `json:"amount"`
	Interval     Interval `json:"interval"`
	SuccessURL   string   `json:"successUrl"`
	CancelURL    string   `json:"cancelUrl"`
	CaptchaToken string   `json:"captchaToken"`
}

// Donation is a validated Request ready to be sent to the payments processor.
type Donation struct {
	Amount     int64
	Interval   Interval
	SuccessURL string
	CancelURL  string
	Metadata   Metadata
}

// Validate checks the request and returns the Donation it describes. The
// returned error is always an errors.Error with a message that can be shown
// to the donor.
func (r *Request) Validate() (*Donation, error) {
	if r.Amount == nil {
		return nil, errors.ErrAmountRequired
	}
	if !r.Interval.Valid() {
		return nil, errors.ErrIntervalRequired
	}
	if r.SuccessURL == "" || r.CancelURL == "" {
		return nil, errors.ErrRedirectURLsRequired
	}
	amount := math.Floor(*r.Amount)
	if math.IsNaN(amount) || amount < float64(MinAmount) || amount > float64(MaxAmount) {
		return nil, errors.ErrAmountOutOfBounds
	}
	return &Donation{
		Amount:     int64(amount),
		Interval:   r.Interval,
		SuccessURL: r.SuccessURL,
		CancelURL:  r.CancelURL,
		Metadata: Metadata{
			Name:       r.Name,
			ShowOnList: r.ShowOnList,
		},
	}, nil
}

// IsMonthly returns true for recurring donations.
func (d *Donation) IsMonthly() bool {
	return d.Interval == IntervalMonthly
}
