// Package sl holds slog attribute helpers shared by every component.
package sl

import (
	"log/slog"
	"strings"
)

func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Email masks the local part of an address: "alice@x.com" -> "al***@x.com".
func Email(email string) slog.Attr {
	return slog.String("email", MaskEmail(email))
}

func MaskEmail(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return Mask(email)
	}
	local, domain := email[:at], email[at:]
	if len(local) <= 2 {
		return "***" + domain
	}
	return local[:2] + "***" + domain
}

// Mask keeps the first few characters of a secret-ish value.
func Mask(value string) string {
	switch {
	case value == "":
		return "?"
	case len(value) > 5:
		return value[:5] + "***"
	default:
		return "***"
	}
}

func Secret(key, value string) slog.Attr {
	return slog.String(key, Mask(value))
}
