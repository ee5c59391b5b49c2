package stats

import (
	"testing"

	"github.com/verte-zerg/tuireact/internal/model"
)

func stored(run int64, kind model.TrialKind, index int, latency int64) model.StoredTrial {
	return model.StoredTrial{RunID: run, TrialResult: model.TrialResult{Kind: kind, Index: index, LatencyMs: latency}}
}

func TestSlowestTrials(t *testing.T) {
	trials := []model.StoredTrial{
		stored(1, model.TrialColor, 0, 300),
		stored(1, model.TrialPrompt, 0, 900),
		stored(1, model.TrialColor, 1, 450),
		stored(2, model.TrialColor, 0, 450),
		stored(2, model.TrialColor, 1, 200),
	}
	top := SlowestTrials(trials, model.TrialColor, 3)
	if len(top) != 3 {
		t.Fatalf("expected 3 trials, got %d", len(top))
	}
	if top[0].RunID != 1 || top[0].Index != 1 || top[1].RunID != 2 || top[2].LatencyMs != 300 {
		t.Fatalf("unexpected order: %+v", top)
	}
	if got := SlowestTrials(trials, model.TrialPrompt, 10); len(got) != 1 {
		t.Fatalf("expected 1 prompt trial, got %d", len(got))
	}
}
