package tui

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/verte-zerg/tuireact/internal/experiment"
	"github.com/verte-zerg/tuireact/internal/model"
	"github.com/verte-zerg/tuireact/internal/store"
	"github.com/verte-zerg/tuireact/internal/virtual"
)

type fixedDelays time.Duration

func (f fixedDelays) Next() time.Duration { return time.Duration(f) }

const testDelay = 1500 * time.Millisecond

func newTestModel(t *testing.T, st *store.Store) (*Model, *virtual.Scheduler) {
	t.Helper()
	clock := virtual.New()
	m := NewModel(model.Config{}, st, zap.NewNop(), clock, fixedDelays(testDelay), 3)
	return m, clock
}

func press(m *Model) {
	m.Update(tea.KeyMsg{Type: tea.KeySpace})
}

// fireAll delivers the tick message of every pending timer.
func fireAll(m *Model) {
	ids := make([]int, 0, len(m.sched.pending))
	for id := range m.sched.pending {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		m.Update(timerFiredMsg{id: id})
	}
}

func TestInitialView(t *testing.T) {
	m, _ := newTestModel(t, nil)
	out := m.View()
	if !strings.Contains(out, experiment.ButtonStart) {
		t.Fatalf("expected start button in view:\n%s", out)
	}
	if m.Init() != nil {
		t.Fatalf("expected no initial commands")
	}
}

func TestPressSchedulesReenable(t *testing.T) {
	m, _ := newTestModel(t, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected a tick command for the re-enable timer")
	}
	if m.buttonEnabled {
		t.Fatalf("expected button disabled after first press")
	}
	if !strings.Contains(m.View(), "Instructions go here.") {
		t.Fatalf("expected instructions in view")
	}
	fireAll(m)
	if !m.buttonEnabled {
		t.Fatalf("expected button enabled after timer")
	}
}

func TestStaleTickIgnored(t *testing.T) {
	m, _ := newTestModel(t, nil)
	press(m)
	m.Update(timerFiredMsg{id: 99})
	if m.buttonEnabled {
		t.Fatalf("unknown timer id must not enable the button")
	}
}

func TestResumeInterruptsTimers(t *testing.T) {
	m, _ := newTestModel(t, nil)
	press(m)
	m.Update(tea.ResumeMsg{})
	if !m.buttonEnabled {
		t.Fatalf("expected button force-enabled after interruption")
	}
	if len(m.sched.pending) != 0 {
		t.Fatalf("expected no pending timers")
	}
}

func TestResumeDuringColorTrialMeasuresFromStimulus(t *testing.T) {
	m, clock := newTestModel(t, nil)
	press(m)
	fireAll(m)
	press(m)
	for i := 0; i < experiment.TrialCount; i++ {
		fireAll(m)
		clock.Advance(400 * time.Millisecond)
		press(m)
	}
	if m.state.Phase() != experiment.PhaseColorTrial {
		t.Fatalf("expected color trial, got %v", m.state.Phase())
	}

	m.Update(tea.ResumeMsg{})
	if m.stimulus != experiment.StimulusActive {
		t.Fatalf("expected active stimulus after interruption")
	}
	clock.Advance(150 * time.Millisecond)
	press(m)

	results := experiment.Results(m.state)
	last := results[len(results)-1]
	if last.Kind != model.TrialColor || last.LatencyMs != 150 {
		t.Fatalf("expected color latency 150ms, got %+v", last)
	}
}

func TestQuitStopsTimers(t *testing.T) {
	m, _ := newTestModel(t, nil)
	press(m)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if len(m.sched.pending) != 0 {
		t.Fatalf("expected pending timers stopped on quit")
	}
}

func TestFullRunIsSaved(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "tuireact.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	m, clock := newTestModel(t, st)

	press(m)
	fireAll(m)
	press(m)
	for i := 0; i < experiment.TrialCount; i++ {
		fireAll(m)
		clock.Advance(400 * time.Millisecond)
		press(m)
	}
	if m.stimulus != experiment.StimulusNeutral {
		t.Fatalf("expected neutral stimulus at color trial start, got %v", m.stimulus)
	}
	press(m)
	for i := 0; i < experiment.TrialCount; i++ {
		clock.Advance(testDelay)
		fireAll(m)
		if m.stimulus != experiment.StimulusActive {
			t.Fatalf("expected active stimulus")
		}
		clock.Advance(200 * time.Millisecond)
		press(m)
	}
	if m.state.Phase() != experiment.PhaseFinished {
		t.Fatalf("expected finished, got %v", m.state.Phase())
	}
	if !strings.Contains(m.View(), "Errors 1") {
		t.Fatalf("expected summary in footer:\n%s", m.View())
	}

	runs, err := st.ListRuns(context.Background(), model.StatsConfig{})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 saved run, got %d", len(runs))
	}
	r := runs[0]
	if r.ErrorCount != 1 || r.UUID == "" {
		t.Fatalf("unexpected run: %+v", r)
	}
	if r.PromptMeanMs != 400 || r.ColorMeanMs != 200 || r.PromptTrials != 6 || r.ColorTrials != 6 {
		t.Fatalf("unexpected aggregates: %+v", r)
	}

	press(m)
	runs, _ = st.ListRuns(context.Background(), model.StatsConfig{})
	if len(runs) != 1 {
		t.Fatalf("run saved twice")
	}
}
