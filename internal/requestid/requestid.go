package requestid

import (
	"context"

	"github.com/google/uuid"
)

const maxLen = 64

type ctxKey struct{}

func New() string {
	return uuid.NewString()
}

// Sanitize returns id if it is a short token of [A-Za-z0-9._-], else "".
func Sanitize(id string) string {
	if id == "" || len(id) > maxLen {
		return ""
	}
	for i := 0; i < len(id); i++ {
		switch c := id[i]; {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
		default:
			return ""
		}
	}
	return id
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns "" if absent.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
