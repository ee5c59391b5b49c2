package simulate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/verte-zerg/tuireact/internal/experiment"
	"github.com/verte-zerg/tuireact/internal/generator"
	"github.com/verte-zerg/tuireact/internal/report"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixedDelays time.Duration

func (f fixedDelays) Next() time.Duration { return time.Duration(f) }

type constRandom float64

func (c constRandom) Float64() float64 { return float64(c) }

func TestRunCompletesWithoutErrors(t *testing.T) {
	buf := &report.Buffer{}
	res, err := Run(Participant{Reaction: 300 * time.Millisecond}, fixedDelays(2*time.Second), constRandom(0.5), buf)
	require.NoError(t, err)

	require.Equal(t, experiment.PhaseFinished, res.State.Phase())
	require.Equal(t, 0, res.State.ErrorCount())
	require.EqualValues(t, 19700, res.ElapsedMs)

	records := res.State.Results()
	require.Len(t, records, 12)
	for _, rec := range records[:6] {
		require.Equal(t, experiment.PhasePromptTrial, rec.Phase)
		require.EqualValues(t, 800, rec.ElapsedMs)
	}
	for _, rec := range records[6:] {
		require.Equal(t, experiment.PhaseColorTrial, rec.Phase)
		require.EqualValues(t, 300, rec.ElapsedMs)
	}

	require.Len(t, buf.Entries, 13)
	last := buf.Entries[len(buf.Entries)-1]
	require.Equal(t, report.Entry{Label: experiment.LabelErrors, Value: 0}, last)
}

func TestRunCountsPrematurePresses(t *testing.T) {
	buf := &report.Buffer{}
	res, err := Run(Participant{Reaction: 250 * time.Millisecond, Premature: 1}, fixedDelays(2*time.Second), constRandom(0.5), buf)
	require.NoError(t, err)

	require.Equal(t, 6, res.State.ErrorCount())
	for _, rec := range res.State.Results()[6:] {
		require.EqualValues(t, 250, rec.ElapsedMs)
	}
	last := buf.Entries[len(buf.Entries)-1]
	require.Equal(t, report.Entry{Label: experiment.LabelErrors, Value: 6}, last)
}

func TestRunWithSeededGeneratorIsRepeatable(t *testing.T) {
	p := Participant{Reaction: 200 * time.Millisecond, Premature: 0.5}
	run := func() Result {
		g := generator.NewSeeded(99)
		res, err := Run(p, g, g, &report.Buffer{})
		require.NoError(t, err)
		return res
	}
	a, b := run(), run()
	require.Equal(t, a.ElapsedMs, b.ElapsedMs)
	require.Equal(t, a.State.ErrorCount(), b.State.ErrorCount())
	require.Equal(t, a.State.Results(), b.State.Results())
}

func TestRunRejectsBadParticipant(t *testing.T) {
	_, err := Run(Participant{Reaction: -time.Millisecond}, fixedDelays(time.Second), constRandom(0), &report.Buffer{})
	require.Error(t, err)
	_, err = Run(Participant{Premature: 1.5}, fixedDelays(time.Second), constRandom(0), &report.Buffer{})
	require.Error(t, err)
}
