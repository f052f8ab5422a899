package requestid

import (
	"context"
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"abc-123_x.y", "abc-123_x.y"},
		{"", ""},
		{"has space", ""},
		{"line\nbreak", ""},
		{strings.Repeat("a", 65), ""},
		{strings.Repeat("a", 64), strings.Repeat("a", 64)},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestContext(t *testing.T) {
	if FromContext(context.Background()) != "" {
		t.Error("expected empty id")
	}
	id := New()
	if got := FromContext(WithRequestID(context.Background(), id)); got != id {
		t.Errorf("got %q, want %q", got, id)
	}
}
