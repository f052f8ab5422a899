package clientip

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_XForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", " 1.2.3.4 , 5.6.7.8")
	assert.Equal(t, "1.2.3.4", Resolve(req))
}

func TestResolve_XRealIP_Fallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-Ip", "9.10.11.12")
	assert.Equal(t, "9.10.11.12", Resolve(req))
}

func TestResolve_RemoteAddr_Fallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.1:54321"
	assert.Equal(t, "192.168.1.1", Resolve(req))
}

func TestResolve_XForwardedFor_TakesPrecedenceOverXRealIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "1.1.1.1")
	req.Header.Set("X-Real-Ip", "2.2.2.2")
	assert.Equal(t, "1.1.1.1", Resolve(req))
}

func TestResolve_NoAddress(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ""
	assert.Equal(t, Unknown, Resolve(req))
}

func TestContext_RoundTrip(t *testing.T) {
	assert.Equal(t, Unknown, FromContext(context.Background()))
	assert.Equal(t, "3.3.3.3", FromContext(WithIP(context.Background(), "3.3.3.3")))
}
