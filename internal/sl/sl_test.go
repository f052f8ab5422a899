package sl_test

import (
	"testing"

	"github.com/studentversedubai-rgb/website-backend/internal/sl"
)

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"alice@example.com": "al***@example.com",
		"ab@example.com":    "***@example.com",
		"not-an-email":      "not-a***",
		"":                  "?",
	}
	for in, want := range cases {
		if got := sl.MaskEmail(in); got != want {
			t.Errorf("MaskEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSecret(t *testing.T) {
	if got := sl.Secret("key", "re_abcdef123").Value.String(); got != "re_ab***" {
		t.Errorf("Secret = %q", got)
	}
	if got := sl.Secret("key", "abc").Value.String(); got != "***" {
		t.Errorf("Secret short = %q", got)
	}
}
