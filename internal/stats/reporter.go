// Package stats refreshes waitlist gauges on a cron schedule.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/studentversedubai-rgb/website-backend/internal/sl"
)

type Refresher interface {
	Refresh(ctx context.Context) error
}

type Reporter struct {
	cron      *cron.Cron
	refresher Refresher
	timeout   time.Duration
	logger    *slog.Logger
}

// NewReporter accepts standard five-field specs and descriptors such
// as "@every 1m".
func NewReporter(spec string, refresher Refresher, logger *slog.Logger) (*Reporter, error) {
	r := &Reporter{
		cron:      cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor))),
		refresher: refresher,
		timeout:   10 * time.Second,
		logger:    logger.With("component", "stats"),
	}
	if _, err := r.cron.AddFunc(spec, r.run); err != nil {
		return nil, fmt.Errorf("parse stats schedule %q: %w", spec, err)
	}
	return r, nil
}

// Start refreshes once immediately, then on schedule until ctx is done.
func (r *Reporter) Start(ctx context.Context) {
	r.run()
	r.cron.Start()
	r.logger.Info("stats reporter started", "entries", len(r.cron.Entries()))

	<-ctx.Done()
	<-r.cron.Stop().Done()
	r.logger.Info("stats reporter stopped")
}

func (r *Reporter) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.refresher.Refresh(ctx); err != nil {
		r.logger.Error("refresh waitlist stats", sl.Err(err))
	}
}
