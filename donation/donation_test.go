package donation

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/vocdoni/donations-backend/errors"
)

func amount(a float64) *float64 { return &a }

func validRequest() *Request {
	return &Request{
		Name:       "Ada",
		ShowOnList: true,
		Amount:     amount(500),
		Interval:   IntervalOnce,
		SuccessURL: "https://example.org/thanks",
		CancelURL:  "https://example.org/donate",
	}
}

func TestValidate(t *testing.T) {
	c := qt.New(t)

	d, err := validRequest().Validate()
	c.Assert(err, qt.IsNil)
	c.Assert(d.Amount, qt.Equals, int64(500))
	c.Assert(d.IsMonthly(), qt.IsFalse)
	c.Assert(d.Metadata, qt.Equals, Metadata{Name: "Ada", ShowOnList: true})

	tests := []struct {
		name   string
		modify func(*Request)
		err    errors.Error
	}{
		{"missing amount", func(r *Request) { r.Amount = nil }, errors.ErrAmountRequired},
		{"missing interval", func(r *Request) { r.Interval = "" }, errors.ErrIntervalRequired},
		{"unknown interval", func(r *Request) { r.Interval = "yearly" }, errors.ErrIntervalRequired},
		{"missing success url", func(r *Request) { r.SuccessURL = "" }, errors.ErrRedirectURLsRequired},
		{"missing cancel url", func(r *Request) { r.CancelURL = "" }, errors.ErrRedirectURLsRequired},
		{"below minimum", func(r *Request) { r.Amount = amount(99) }, errors.ErrAmountOutOfBounds},
		{"below minimum after truncation", func(r *Request) { r.Amount = amount(99.99) }, errors.ErrAmountOutOfBounds},
		{"above maximum", func(r *Request) { r.Amount = amount(10_000_001) }, errors.ErrAmountOutOfBounds},
		{"negative", func(r *Request) { r.Amount = amount(-500) }, errors.ErrAmountOutOfBounds},
	}
	for _, tt := range tests {
		c.Run(tt.name, func(c *qt.C) {
			r := validRequest()
			tt.modify(r)
			_, err := r.Validate()
			c.Assert(err, qt.ErrorIs, tt.err)
		})
	}
}

func TestValidateBounds(t *testing.T) {
	c := qt.New(t)

	for _, a := range []float64{100, 100.9, 10_000_000, 10_000_000.5} {
		r := validRequest()
		r.Amount = amount(a)
		d, err := r.Validate()
		c.Assert(err, qt.IsNil, qt.Commentf("amount %v", a))
		c.Assert(d.Amount >= MinAmount && d.Amount <= MaxAmount, qt.IsTrue)
	}

	r := validRequest()
	r.Amount = amount(1500.7)
	r.Interval = IntervalMonthly
	d, err := r.Validate()
	c.Assert(err, qt.IsNil)
	c.Assert(d.Amount, qt.Equals, int64(1500))
	c.Assert(d.IsMonthly(), qt.IsTrue)
}
