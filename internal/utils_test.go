package internal

import (
	"testing"

	"github.com/frankban/quicktest"
)

func TestValidEmail(t *testing.T) {
	c := quicktest.New(t)

	tests := []struct {
		email string
		want  bool
	}{
		{email: "user@example.com", want: true},
		{email: "first.last+donations@mail.example.org", want: true},
		{email: "user@localhost", want: false},
		{email: "user.example.com", want: false},
		{email: "", want: false},
		{email: "user@exa mple.com", want: false},
	}
	for _, tt := range tests {
		c.Assert(ValidEmail(tt.email), quicktest.Equals, tt.want, quicktest.Commentf("email %q", tt.email))
	}
}

func TestNormalizeEmail(t *testing.T) {
	c := quicktest.New(t)
	c.Assert(NormalizeEmail("  Ada@Example.COM "), quicktest.Equals, "Ada@example.com")
	c.Assert(NormalizeEmail("nobody"), quicktest.Equals, "nobody")
}
