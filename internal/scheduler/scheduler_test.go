package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/TobiSchelling/contextapi/internal/news"
)

type fakeFeeder struct {
	mu      sync.Mutex
	periods []string
	fail    map[string]bool
}

func (f *fakeFeeder) Feed(ctx context.Context, p news.FeedParams) (*news.FeedPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.periods = append(f.periods, p.Period)
	if f.fail[p.Period] {
		return nil, errors.New("boom")
	}
	return &news.FeedPage{Items: []news.StoryCard{{StoryID: "a"}, {StoryID: "b"}}}, nil
}

func (f *fakeFeeder) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.periods...)
}

func TestNewRejectsBadSchedule(t *testing.T) {
	if _, err := New("not a schedule", &fakeFeeder{}, nil, 0); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
	if _, err := New("@every 1m", nil, nil, 0); err == nil {
		t.Fatal("expected error for nil feeder")
	}
}

func TestWarmRequestsEveryPeriod(t *testing.T) {
	feeder := &fakeFeeder{}
	w, err := New("*/5 * * * *", feeder, []string{"today", "week"}, time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := w.Warm(context.Background()); got != 4 {
		t.Errorf("expected 4 cards, got %d", got)
	}
	calls := feeder.calls()
	if len(calls) != 2 || calls[0] != "today" || calls[1] != "week" {
		t.Errorf("unexpected periods %v", calls)
	}
}

func TestWarmDefaultsToToday(t *testing.T) {
	feeder := &fakeFeeder{}
	w, err := New("@daily", feeder, nil, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.Warm(context.Background())
	if calls := feeder.calls(); len(calls) != 1 || calls[0] != "today" {
		t.Errorf("unexpected periods %v", calls)
	}
}

func TestWarmSkipsFailures(t *testing.T) {
	feeder := &fakeFeeder{fail: map[string]bool{"today": true}}
	w, err := New("@hourly", feeder, []string{"today", "month"}, time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := w.Warm(context.Background()); got != 2 {
		t.Errorf("expected the month page to count, got %d", got)
	}
	if calls := feeder.calls(); len(calls) != 2 {
		t.Errorf("expected both periods to be tried, got %v", calls)
	}
}

func TestScheduledRun(t *testing.T) {
	feeder := &fakeFeeder{}
	w, err := New("@every 1s", feeder, []string{"today"}, time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.Start()

	deadline := time.Now().Add(3 * time.Second)
	for len(feeder.calls()) == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	w.Stop()

	if len(feeder.calls()) == 0 {
		t.Fatal("expected the schedule to fire")
	}
}
