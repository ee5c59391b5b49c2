// Package virtual provides a single-threaded scheduler running on simulated time.
package virtual

import (
	"sort"
	"time"

	"github.com/verte-zerg/tuireact/internal/experiment"
)

type entry struct {
	id  int
	due int64
	fn  func(error)
}

// Scheduler is both an experiment.Clock and an experiment.Scheduler. Time only
// moves when Advance is called; due callbacks run inside Advance on the caller's goroutine.
type Scheduler struct {
	nowMs   int64
	nextID  int
	pending []*entry
}

// New returns a scheduler whose clock starts at 0.
func New() *Scheduler {
	return &Scheduler{}
}

// NowMs implements experiment.Clock.
func (s *Scheduler) NowMs() int64 {
	return s.nowMs
}

// After implements experiment.Scheduler.
func (s *Scheduler) After(d time.Duration, fn func(error)) experiment.Timer {
	s.nextID++
	e := &entry{id: s.nextID, due: s.nowMs + d.Milliseconds(), fn: fn}
	s.pending = append(s.pending, e)
	return &timer{s: s, id: e.id}
}

// Pending returns the number of callbacks that have not fired or been stopped.
func (s *Scheduler) Pending() int {
	return len(s.pending)
}

// NextDue returns the delay until the earliest pending callback.
func (s *Scheduler) NextDue() (time.Duration, bool) {
	e := s.earliest()
	if e == nil {
		return 0, false
	}
	return time.Duration(e.due-s.nowMs) * time.Millisecond, true
}

// Advance moves the clock forward by d, firing every callback that falls due
// in order of due time, then scheduling order.
func (s *Scheduler) Advance(d time.Duration) {
	target := s.nowMs + d.Milliseconds()
	for {
		e := s.earliest()
		if e == nil || e.due > target {
			break
		}
		s.remove(e.id)
		if e.due > s.nowMs {
			s.nowMs = e.due
		}
		e.fn(nil)
	}
	s.nowMs = target
}

// Interrupt tears down every pending timer, passing experiment.ErrTimerInterrupted to each callback.
func (s *Scheduler) Interrupt() {
	entries := append([]*entry(nil), s.pending...)
	s.pending = nil
	sortEntries(entries)
	for _, e := range entries {
		e.fn(experiment.ErrTimerInterrupted)
	}
}

func (s *Scheduler) earliest() *entry {
	var best *entry
	for _, e := range s.pending {
		if best == nil || e.due < best.due || (e.due == best.due && e.id < best.id) {
			best = e
		}
	}
	return best
}

func (s *Scheduler) remove(id int) bool {
	for i, e := range s.pending {
		if e.id == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return true
		}
	}
	return false
}

func sortEntries(entries []*entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].due == entries[j].due {
			return entries[i].id < entries[j].id
		}
		return entries[i].due < entries[j].due
	})
}

type timer struct {
	s  *Scheduler
	id int
}

func (t *timer) Stop() bool {
	return t.s.remove(t.id)
}
