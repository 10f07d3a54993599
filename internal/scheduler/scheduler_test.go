package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/i474232898/prayer-times-aggregation/internal/prayer"
)

type recordingRefresher struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]bool
}

func (r *recordingRefresher) Refresh(_ context.Context, cityCode, selector string) (prayer.Resolution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, cityCode+"/"+selector)
	if r.fail[cityCode] {
		return prayer.Resolution{}, errors.New("upstream down")
	}
	return prayer.Resolution{Provider: prayer.DiyanetProvider}, nil
}

func (r *recordingRefresher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func TestRunOnce(t *testing.T) {
	r := &recordingRefresher{fail: map[string]bool{"10604": true}}
	s := New([]string{"9541", "10604", "11001"}, time.Hour, r, zerolog.Nop())

	if ok := s.RunOnce(context.Background()); ok != 2 {
		t.Fatalf("expected 2 successful refreshes, got %d", ok)
	}
	want := []string{"9541/auto", "10604/auto", "11001/auto"}
	for i, c := range want {
		if r.calls[i] != c {
			t.Fatalf("call %d: expected %s, got %s", i, c, r.calls[i])
		}
	}
}

func TestRunOnceStopsOnCancelledContext(t *testing.T) {
	r := &recordingRefresher{}
	s := New([]string{"9541", "10604"}, time.Hour, r, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if ok := s.RunOnce(ctx); ok != 0 || r.count() != 0 {
		t.Fatalf("expected no refreshes, got ok=%d calls=%d", ok, r.count())
	}
}

func TestStartRunsImmediately(t *testing.T) {
	r := &recordingRefresher{}
	s := New([]string{"9541"}, time.Hour, r, zerolog.Nop())
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for r.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if r.count() == 0 {
		t.Fatal("expected the first warm run to start right away")
	}
}

func TestStartWithoutCities(t *testing.T) {
	s := New(nil, time.Hour, &recordingRefresher{}, zerolog.Nop())
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Stop()
}
