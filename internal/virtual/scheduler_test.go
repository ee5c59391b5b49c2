package virtual

import (
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/tuireact/internal/experiment"
)

func TestAdvanceFiresInDueOrder(t *testing.T) {
	s := New()
	var got []string
	s.After(300*time.Millisecond, func(error) { got = append(got, "c") })
	s.After(100*time.Millisecond, func(error) { got = append(got, "a") })
	s.After(100*time.Millisecond, func(error) { got = append(got, "b") })

	s.Advance(250 * time.Millisecond)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected order after 250ms: %v", got)
	}
	if s.NowMs() != 250 {
		t.Fatalf("expected clock at 250, got %d", s.NowMs())
	}
	s.Advance(50 * time.Millisecond)
	if len(got) != 3 || got[2] != "c" {
		t.Fatalf("expected c to fire at 300ms: %v", got)
	}
}

func TestCallbackSeesDueTime(t *testing.T) {
	s := New()
	var at int64
	s.After(40*time.Millisecond, func(error) { at = s.NowMs() })
	s.Advance(time.Second)
	if at != 40 {
		t.Fatalf("expected callback at 40ms, got %d", at)
	}
}

func TestStopCancels(t *testing.T) {
	s := New()
	fired := false
	tm := s.After(10*time.Millisecond, func(error) { fired = true })
	if !tm.Stop() {
		t.Fatalf("expected Stop to report pending timer")
	}
	if tm.Stop() {
		t.Fatalf("expected second Stop to report false")
	}
	s.Advance(time.Second)
	if fired {
		t.Fatalf("stopped timer fired")
	}
}

func TestInterruptPassesError(t *testing.T) {
	s := New()
	var errs []error
	s.After(10*time.Millisecond, func(err error) { errs = append(errs, err) })
	s.After(5*time.Millisecond, func(err error) { errs = append(errs, err) })
	s.Interrupt()
	if len(errs) != 2 {
		t.Fatalf("expected 2 interrupted callbacks, got %d", len(errs))
	}
	for _, err := range errs {
		if !errors.Is(err, experiment.ErrTimerInterrupted) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if s.Pending() != 0 {
		t.Fatalf("expected no pending timers")
	}
}
