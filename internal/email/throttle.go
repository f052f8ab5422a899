package email

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Throttled caps the provider send rate. Callers block until a token is
// available or ctx is done.
type Throttled struct {
	next    Sender
	limiter *rate.Limiter
}

// NewThrottled allows perSecond sends with a burst of the same size,
// minimum one.
func NewThrottled(next Sender, perSecond float64) *Throttled {
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &Throttled{next: next, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (t *Throttled) Send(ctx context.Context, msg Message) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for send slot: %w", err)
	}
	return t.next.Send(ctx, msg)
}

func (t *Throttled) Provider() string { return t.next.Provider() }
