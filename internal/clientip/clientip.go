// Package clientip resolves the caller address used for per-IP rate limits.
package clientip

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// Unknown is used when no address can be determined. All such callers
// share one rate-limit bucket.
const Unknown = "unknown"

type ctxKey struct{}

// Resolve prefers the first X-Forwarded-For entry, then X-Real-Ip, then the
// host part of RemoteAddr.
func Resolve(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-Ip")); ip != "" {
		return ip
	}
	if r.RemoteAddr == "" {
		return Unknown
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	if host == "" {
		return Unknown
	}
	return host
}

func WithIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKey{}, ip)
}

// FromContext returns the address stored by WithIP, or Unknown.
func FromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(ctxKey{}).(string); ok && ip != "" {
		return ip
	}
	return Unknown
}

// Lookup reports whether ctx carries an address set by WithIP.
func Lookup(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(ctxKey{}).(string)
	return ip, ok && ip != ""
}
