// Package simulate runs the experiment headless against a scripted participant.
package simulate

import (
	"fmt"
	"time"

	"github.com/verte-zerg/tuireact/internal/experiment"
	"github.com/verte-zerg/tuireact/internal/virtual"
)

// maxSteps bounds a run; a full run needs well under a hundred presses.
const maxSteps = 10000

// Participant describes the scripted responder.
type Participant struct {
	// Reaction is the delay between the button or stimulus becoming ready and the press.
	Reaction time.Duration
	// Premature is the probability of pressing once before each color stimulus.
	Premature float64
}

// Random supplies the participant's coin flips.
type Random interface {
	Float64() float64
}

type nullDisplay struct{}

func (nullDisplay) SetText(string)                 {}
func (nullDisplay) SetButton(string, bool)         {}
func (nullDisplay) SetStimulus(experiment.Stimulus) {}

// Result is the outcome of a simulated run.
type Result struct {
	State     *experiment.State
	ElapsedMs int64
}

// Run drives a full experiment in virtual time.
func Run(p Participant, delays experiment.DelaySource, rnd Random, reporter experiment.Reporter) (Result, error) {
	if p.Reaction < 0 {
		return Result{}, fmt.Errorf("reaction must be >= 0")
	}
	if p.Premature < 0 || p.Premature > 1 {
		return Result{}, fmt.Errorf("premature must be between 0 and 1")
	}
	sched := virtual.New()
	state := experiment.NewState(sched)
	ctrl := experiment.NewController(state, nullDisplay{}, sched, reporter, delays)
	defer ctrl.Close()

	prematureDone := -1
	for step := 0; state.Phase() != experiment.PhaseFinished; step++ {
		if step >= maxSteps {
			return Result{}, fmt.Errorf("run did not finish after %d steps (phase %s)", maxSteps, state.Phase())
		}
		if !state.ButtonEnabled() {
			if !advanceToNext(sched) {
				return Result{}, fmt.Errorf("button disabled with nothing scheduled in phase %s", state.Phase())
			}
			continue
		}
		if state.Phase() == experiment.PhaseColorTrial && state.Stimulus() != experiment.StimulusActive {
			if prematureDone != state.TrialIndex() {
				prematureDone = state.TrialIndex()
				if rnd.Float64() < p.Premature {
					if due, ok := sched.NextDue(); ok {
						sched.Advance(due / 2)
					}
					ctrl.Press()
					continue
				}
			}
			if !advanceToNext(sched) {
				return Result{}, fmt.Errorf("stimulus never scheduled")
			}
			continue
		}
		sched.Advance(p.Reaction)
		ctrl.Press()
	}
	return Result{State: state, ElapsedMs: sched.NowMs()}, nil
}

func advanceToNext(sched *virtual.Scheduler) bool {
	due, ok := sched.NextDue()
	if !ok {
		return false
	}
	sched.Advance(due)
	return true
}
