// Package experiment implements the reaction-time experiment state and its controller.
package experiment

import (
	"fmt"
	"time"
)

// Phase is one state of the experiment's top-level state machine.
type Phase int

const (
	PhaseUnstarted Phase = iota
	PhaseInstructions
	PhasePromptTrial
	PhaseColorTrial
	PhaseFinished
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseUnstarted:
		return "unstarted"
	case PhaseInstructions:
		return "instructions"
	case PhasePromptTrial:
		return "prompt-trial"
	case PhaseColorTrial:
		return "color-trial"
	case PhaseFinished:
		return "finished"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Valid reports whether p is one of the defined phases.
func (p Phase) Valid() bool {
	return p >= PhaseUnstarted && p <= PhaseFinished
}

// Stimulus is the state of the color panel.
type Stimulus int

const (
	// StimulusHidden means the panel has not been created yet.
	StimulusHidden Stimulus = iota
	StimulusNeutral
	StimulusActive
)

// String implements fmt.Stringer.
func (s Stimulus) String() string {
	switch s {
	case StimulusHidden:
		return "hidden"
	case StimulusNeutral:
		return "neutral"
	case StimulusActive:
		return "active"
	default:
		return fmt.Sprintf("stimulus(%d)", int(s))
	}
}

const (
	// TrialCount is the number of trials in each trial block.
	TrialCount = 6

	InitialPrompt = "Press the button when it tells you to."
	ColorPrompt   = "Press the button when the color changes."
	InitMessage   = "Instructions go here.  Button will appear after a delay.  Press to continue."
	EndMessage    = "Task Complete."
)

// Clock reads a monotonic millisecond counter.
type Clock interface {
	NowMs() int64
}

// SystemClock measures milliseconds since its creation using the monotonic clock.
type SystemClock struct {
	origin time.Time
}

// NewSystemClock returns a clock anchored at the current instant.
func NewSystemClock() *SystemClock {
	return &SystemClock{origin: time.Now()}
}

// NowMs implements Clock.
func (c *SystemClock) NowMs() int64 {
	return time.Since(c.origin).Milliseconds()
}

// ChangeKind names the field a notification is about.
type ChangeKind int

const (
	ChangePhase ChangeKind = iota
	ChangeTrialIndex
	ChangePrompt
	ChangeTimestamp
	ChangeErrorCount
	ChangeButton
	ChangeStimulus
	ChangeResults
)

// Change is the payload delivered to subscribers after every mutation.
type Change struct {
	Kind  ChangeKind
	Phase Phase
}

// Subscription identifies a registered listener.
type Subscription int

type listener struct {
	id Subscription
	fn func(Change)
}

// State holds all experiment data and notifies subscribers on every mutation.
type State struct {
	clock Clock

	phase      Phase
	trialIndex int
	trialCount int
	promptText string

	startMs     int64
	stopMs      int64
	stopPending bool

	errorCount int

	buttonEnabled bool
	stimulus      Stimulus

	results []TrialRecord

	listeners []listener
	nextID    Subscription
}

// TrialRecord is a completed trial as kept by the state.
type TrialRecord struct {
	Phase     Phase
	Index     int
	Prompt    string
	ElapsedMs int64
}

// NewState creates a state in PhaseUnstarted with the fixed trial count.
func NewState(clock Clock) *State {
	return newState(clock, TrialCount)
}

func newState(clock Clock, trialCount int) *State {
	if trialCount <= 0 {
		panic("experiment: trial count must be positive")
	}
	return &State{
		clock:         clock,
		phase:         PhaseUnstarted,
		trialCount:    trialCount,
		promptText:    InitialPrompt,
		buttonEnabled: true,
	}
}

// Subscribe registers fn to be called after every mutation. Listeners run in
// registration order.
func (s *State) Subscribe(fn func(Change)) Subscription {
	s.nextID++
	s.listeners = append(s.listeners, listener{id: s.nextID, fn: fn})
	return s.nextID
}

// Unsubscribe removes a listener. Unknown handles are ignored.
func (s *State) Unsubscribe(id Subscription) {
	for i, l := range s.listeners {
		if l.id == id {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return
		}
	}
}

func (s *State) notify(kind ChangeKind) {
	change := Change{Kind: kind, Phase: s.phase}
	// Snapshot so a listener that unsubscribes does not disturb this round.
	current := append([]listener(nil), s.listeners...)
	for _, l := range current {
		l.fn(change)
	}
}

// Phase returns the current phase.
func (s *State) Phase() Phase { return s.phase }

// TrialIndex returns the 0-based index of the current trial.
func (s *State) TrialIndex() int { return s.trialIndex }

// TrialCount returns the number of trials per block.
func (s *State) TrialCount() int { return s.trialCount }

// PromptText returns the current prompt.
func (s *State) PromptText() string { return s.promptText }

// StartMs returns the recorded start timestamp.
func (s *State) StartMs() int64 { return s.startMs }

// StopMs returns the recorded stop timestamp.
func (s *State) StopMs() int64 { return s.stopMs }

// ErrorCount returns the number of premature presses.
func (s *State) ErrorCount() int { return s.errorCount }

// ButtonEnabled reports whether the response button accepts presses.
func (s *State) ButtonEnabled() bool { return s.buttonEnabled }

// Stimulus returns the color panel state.
func (s *State) Stimulus() Stimulus { return s.stimulus }

// Results returns a copy of the completed trials in completion order.
func (s *State) Results() []TrialRecord {
	out := make([]TrialRecord, len(s.results))
	copy(out, s.results)
	return out
}

// AdvancePhase sets the phase. Transition legality is the caller's concern.
func (s *State) AdvancePhase(next Phase) {
	if !next.Valid() {
		panic(fmt.Sprintf("experiment: invalid phase %d", int(next)))
	}
	s.phase = next
	s.notify(ChangePhase)
}

// ResetTrialIndex sets the trial index to 0.
func (s *State) ResetTrialIndex() {
	s.trialIndex = 0
	s.notify(ChangeTrialIndex)
}

// NextTrial increments the trial index.
func (s *State) NextTrial() {
	s.trialIndex++
	s.notify(ChangeTrialIndex)
}

// HasMoreTrials is true strictly before the last trial of the block.
func (s *State) HasMoreTrials() bool {
	return s.trialIndex < s.trialCount-1
}

// PromptPosition renders the 1-based position of the current trial, e.g. "(Prompt 2/6): ".
func (s *State) PromptPosition() string {
	return fmt.Sprintf("(Prompt %d/%d): ", s.trialIndex+1, s.trialCount)
}

// SetPromptText overwrites the current prompt.
func (s *State) SetPromptText(text string) {
	s.promptText = text
	s.notify(ChangePrompt)
}

// RecordStart captures the current time as the trial start.
func (s *State) RecordStart() {
	s.RecordStartOffset(0)
}

// RecordStartOffset captures the current time shifted forward by offsetMs.
func (s *State) RecordStartOffset(offsetMs int64) {
	s.startMs = s.clock.NowMs() + offsetMs
	s.stopPending = true
	s.notify(ChangeTimestamp)
}

// RecordStop captures the current time as the trial stop.
func (s *State) RecordStop() {
	s.stopMs = s.clock.NowMs()
	s.stopPending = false
	s.notify(ChangeTimestamp)
}

// ElapsedMs returns stop minus start. It panics unless RecordStop followed the
// latest RecordStart.
func (s *State) ElapsedMs() int64 {
	if s.stopPending {
		panic("experiment: ElapsedMs called before RecordStop")
	}
	return s.stopMs - s.startMs
}

// RecordTrial appends the just-completed trial to the results.
func (s *State) RecordTrial() TrialRecord {
	rec := TrialRecord{
		Phase:     s.phase,
		Index:     s.trialIndex,
		Prompt:    s.promptText,
		ElapsedMs: s.ElapsedMs(),
	}
	s.results = append(s.results, rec)
	s.notify(ChangeResults)
	return rec
}

// IncrementErrorCount counts one premature press.
func (s *State) IncrementErrorCount() {
	s.errorCount++
	s.notify(ChangeErrorCount)
}

// ResetErrorCount sets the error count to 0.
func (s *State) ResetErrorCount() {
	s.errorCount = 0
	s.notify(ChangeErrorCount)
}

// SetButtonEnabled enables or disables the response button.
func (s *State) SetButtonEnabled(enabled bool) {
	s.buttonEnabled = enabled
	s.notify(ChangeButton)
}

// SetStimulus sets the color panel state.
func (s *State) SetStimulus(stimulus Stimulus) {
	s.stimulus = stimulus
	s.notify(ChangeStimulus)
}
