package experiment

import (
	"errors"
	"time"
)

// ReenableDelay is how long the button stays disabled after an instruction or prompt is shown.
const ReenableDelay = 500 * time.Millisecond

// ErrTimerInterrupted is passed to a scheduled callback whose timer was torn
// down before it could fire.
var ErrTimerInterrupted = errors.New("timer interrupted")

// Timer is a handle to a pending scheduled callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the callback was still pending.
	Stop() bool
}

// Scheduler runs a callback once after a delay on the same thread as every other mutation.
type Scheduler interface {
	After(d time.Duration, fn func(err error)) Timer
}

// Display is the widget surface the controller renders into.
type Display interface {
	SetText(content string)
	SetButton(text string, enabled bool)
	SetStimulus(stimulus Stimulus)
}

// Reporter receives trial latencies and the final error count.
type Reporter interface {
	Report(label string, value int64)
}

// DelaySource yields the randomized wait before each color stimulus.
type DelaySource interface {
	Next() time.Duration
}

// Report labels that are not prompt texts.
const (
	LabelErrors           = "errors"
	LabelTimerInterrupted = "timer interrupted"
)

// Controller drives State from button presses and renders it into a Display.
type Controller struct {
	state     *State
	display   Display
	scheduler Scheduler
	reporter  Reporter
	delays    DelaySource

	pending Timer
	sub     Subscription
}

// NewController subscribes to state changes and renders the initial view.
func NewController(state *State, display Display, scheduler Scheduler, reporter Reporter, delays DelaySource) *Controller {
	c := &Controller{
		state:     state,
		display:   display,
		scheduler: scheduler,
		reporter:  reporter,
		delays:    delays,
	}
	c.sub = state.Subscribe(func(Change) { c.render() })
	c.render()
	return c
}

// Close cancels any pending timer and stops listening to the state.
func (c *Controller) Close() {
	c.cancelPending()
	c.state.Unsubscribe(c.sub)
}

// Press handles one button press.
func (c *Controller) Press() {
	if !c.state.ButtonEnabled() {
		return
	}
	switch c.state.Phase() {
	case PhaseUnstarted:
		c.state.SetButtonEnabled(false)
		c.state.AdvancePhase(PhaseInstructions)
		c.enableAfter(ReenableDelay)
	case PhaseInstructions:
		c.state.ResetTrialIndex()
		c.beginPromptTrial()
	case PhasePromptTrial:
		c.completeTrial()
		if c.state.HasMoreTrials() {
			c.state.NextTrial()
			c.beginPromptTrial()
			return
		}
		c.state.ResetTrialIndex()
		c.state.ResetErrorCount()
		c.state.SetPromptText(ColorPrompt)
		c.beginColorTrial()
	case PhaseColorTrial:
		if c.state.Stimulus() != StimulusActive {
			c.state.IncrementErrorCount()
			return
		}
		c.completeTrial()
		if c.state.HasMoreTrials() {
			c.state.NextTrial()
			c.beginColorTrial()
			return
		}
		c.cancelPending()
		c.state.SetButtonEnabled(false)
		c.state.AdvancePhase(PhaseFinished)
		c.reporter.Report(LabelErrors, int64(c.state.ErrorCount()))
	case PhaseFinished:
	}
}

func (c *Controller) beginPromptTrial() {
	c.state.SetButtonEnabled(false)
	c.state.RecordStart()
	c.state.AdvancePhase(PhasePromptTrial)
	c.enableAfter(ReenableDelay)
}

func (c *Controller) beginColorTrial() {
	c.state.SetStimulus(StimulusNeutral)
	c.state.SetButtonEnabled(true)
	delay := c.delays.Next()
	c.schedule(delay, func(err error) {
		if err != nil {
			c.recoverFromInterrupt()
			// The stimulus shows now rather than at the planned offset.
			c.state.RecordStart()
		}
		c.state.SetStimulus(StimulusActive)
	})
	c.state.RecordStartOffset(delay.Milliseconds())
	c.state.AdvancePhase(PhaseColorTrial)
}

func (c *Controller) completeTrial() {
	c.state.RecordStop()
	rec := c.state.RecordTrial()
	c.reporter.Report(rec.Prompt, rec.ElapsedMs)
}

func (c *Controller) enableAfter(d time.Duration) {
	c.schedule(d, func(err error) {
		if err != nil {
			c.recoverFromInterrupt()
			return
		}
		c.state.SetButtonEnabled(true)
	})
}

// recoverFromInterrupt keeps the button usable when a timer never fired.
func (c *Controller) recoverFromInterrupt() {
	c.reporter.Report(LabelTimerInterrupted, int64(c.state.Phase()))
	if !c.state.ButtonEnabled() {
		c.state.SetButtonEnabled(true)
	}
}

// schedule replaces any outstanding timer so a stale callback cannot fire into a later phase.
func (c *Controller) schedule(d time.Duration, fn func(err error)) {
	c.cancelPending()
	var t Timer
	t = c.scheduler.After(d, func(err error) {
		if c.pending == t {
			c.pending = nil
		}
		fn(err)
	})
	c.pending = t
}

func (c *Controller) cancelPending() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

func (c *Controller) render() {
	v := Render(c.state)
	c.display.SetText(v.Text)
	c.display.SetButton(v.ButtonText, v.ButtonEnabled)
	c.display.SetStimulus(v.Stimulus)
}
