package tui

import (
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuireact/internal/experiment"
)

// timerFiredMsg is delivered by the tick command of a scheduled callback.
type timerFiredMsg struct {
	id int
}

// teaScheduler turns scheduled callbacks into tea.Tick commands. Callbacks run
// from Update, so they share the program's single update loop with key handling.
type teaScheduler struct {
	nextID  int
	pending map[int]func(error)
	cmds    []tea.Cmd
}

func newTeaScheduler() *teaScheduler {
	return &teaScheduler{pending: map[int]func(error){}}
}

// After implements experiment.Scheduler.
func (s *teaScheduler) After(d time.Duration, fn func(error)) experiment.Timer {
	s.nextID++
	id := s.nextID
	s.pending[id] = fn
	s.cmds = append(s.cmds, tea.Tick(d, func(time.Time) tea.Msg {
		return timerFiredMsg{id: id}
	}))
	return &teaTimer{s: s, id: id}
}

// fire runs the callback for id unless it was stopped. Ticks for stopped timers are dropped.
func (s *teaScheduler) fire(id int) {
	fn, ok := s.pending[id]
	if !ok {
		return
	}
	delete(s.pending, id)
	fn(nil)
}

// interrupt tears down every pending timer, oldest first.
func (s *teaScheduler) interrupt() {
	ids := make([]int, 0, len(s.pending))
	for id := range s.pending {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		fn, ok := s.pending[id]
		if !ok {
			continue
		}
		delete(s.pending, id)
		fn(experiment.ErrTimerInterrupted)
	}
}

// drain returns the tick commands queued since the last call.
func (s *teaScheduler) drain() tea.Cmd {
	if len(s.cmds) == 0 {
		return nil
	}
	cmds := s.cmds
	s.cmds = nil
	return tea.Batch(cmds...)
}

type teaTimer struct {
	s  *teaScheduler
	id int
}

func (t *teaTimer) Stop() bool {
	if _, ok := t.s.pending[t.id]; !ok {
		return false
	}
	delete(t.s.pending, t.id)
	return true
}
