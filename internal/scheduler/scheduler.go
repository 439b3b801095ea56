// Package scheduler periodically requests the feed so the preview image
// cache is warm before readers arrive.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/TobiSchelling/contextapi/internal/logging"
	"github.com/TobiSchelling/contextapi/internal/news"
)

// Feeder serves feed pages.
type Feeder interface {
	Feed(ctx context.Context, p news.FeedParams) (*news.FeedPage, error)
}

// DefaultPeriods are warmed when none are given.
var DefaultPeriods = []string{"today"}

// Warmer runs feed requests on a cron schedule.
type Warmer struct {
	cron    *cron.Cron
	feed    Feeder
	periods []string
	timeout time.Duration
}

// New schedules warm-ups with a standard five-field cron expression or a
// descriptor such as "@every 15m".
func New(spec string, feed Feeder, periods []string, timeout time.Duration) (*Warmer, error) {
	if feed == nil {
		return nil, errors.New("feeder must not be nil")
	}
	if len(periods) == 0 {
		periods = DefaultPeriods
	}
	if timeout <= 0 {
		timeout = time.Minute
	}

	logger := cron.PrintfLogger(log.New(logging.Writer(), "cron: ", log.LstdFlags))
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	w := &Warmer{cron: c, feed: feed, periods: periods, timeout: timeout}
	if _, err := c.AddFunc(spec, w.run); err != nil {
		return nil, fmt.Errorf("invalid warm schedule %q: %w", spec, err)
	}
	return w, nil
}

// Start begins cron execution.
func (w *Warmer) Start() {
	w.cron.Start()
}

// Stop stops the schedule and waits for a running warm-up to finish.
func (w *Warmer) Stop() {
	<-w.cron.Stop().Done()
}

func (w *Warmer) run() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	w.Warm(ctx)
}

// Warm requests the first feed page of every period. It returns the number
// of cards loaded; failures are logged and skipped.
func (w *Warmer) Warm(ctx context.Context) int {
	start := time.Now()
	total := 0
	for _, period := range w.periods {
		page, err := w.feed.Feed(ctx, news.FeedParams{Period: period})
		if err != nil {
			logging.Warnf("warming %s feed: %v", period, err)
			continue
		}
		total += len(page.Items)
	}
	logging.Infof("warmed %d feed cards in %s", total, time.Since(start).Round(time.Millisecond))
	return total
}
