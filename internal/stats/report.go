package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/verte-zerg/tuireact/internal/model"
	"github.com/verte-zerg/tuireact/internal/store"
)

const slowestCount = 5

// Report contains precomputed data for stats rendering.
type Report struct {
	Runs   []model.RunAggregate
	Trials []model.StoredTrial
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	runs, err := st.ListRuns(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(runs) > cfg.Last {
		runs = runs[len(runs)-cfg.Last:]
	}
	trials, err := st.ListTrialsForRuns(ctx, runIDs(runs))
	if err != nil {
		return Report{}, err
	}
	return Report{Runs: runs, Trials: trials}, nil
}

// Render prints the full stats report.
func (r Report) Render(w io.Writer, window, width int) error {
	if err := RenderSummary(w, r.Runs); err != nil {
		return err
	}
	if len(r.Runs) == 0 {
		return nil
	}
	if err := RenderRunTable(w, r.Runs); err != nil {
		return err
	}
	if err := RenderCurve(w, r.Runs, window, width); err != nil {
		return err
	}
	slowest := SlowestTrials(r.Trials, model.TrialColor, slowestCount)
	if len(slowest) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Slowest color trials"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(slowest))
	for _, tr := range slowest {
		rows = append(rows, []string{
			fmt.Sprintf("%d", tr.RunID),
			fmt.Sprintf("%d", tr.Index+1),
			fmt.Sprintf("%d", tr.LatencyMs),
		})
	}
	for _, line := range formatTable([]string{"Run", "Trial", "Latency (ms)"}, rows, map[int]bool{0: true, 1: true, 2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func runIDs(runs []model.RunAggregate) []int64 {
	ids := make([]int64, len(runs))
	for i, r := range runs {
		ids[i] = r.RunID
	}
	return ids
}
