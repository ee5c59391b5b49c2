package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tuireact/internal/model"
	"github.com/verte-zerg/tuireact/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "tuireact.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		run := model.RunStats{
			StartedAt:  start,
			EndedAt:    start.Add(30 * time.Second),
			ErrorCount: i,
		}
		trials := []model.TrialResult{
			{Kind: model.TrialPrompt, Index: 0, Prompt: "p", LatencyMs: 600},
			{Kind: model.TrialColor, Index: 0, Prompt: "c", LatencyMs: int64(300 + 100*i)},
		}
		id, err := st.InsertRun(ctx, run, trials)
		if err != nil {
			t.Fatalf("insert run: %v", err)
		}
		ids = append(ids, id)
	}

	report, err := BuildReport(ctx, st, model.StatsConfig{Last: 2, CurveWindow: 2})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(report.Runs))
	}
	if report.Runs[0].RunID != ids[1] || report.Runs[1].RunID != ids[2] {
		t.Fatalf("unexpected run ids: %+v", report.Runs)
	}
	if len(report.Trials) != 4 {
		t.Fatalf("expected 4 trials, got %d", len(report.Trials))
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, 2, 80); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Runs: 2", "Avg color latency: 450.0 ms", "Best color latency: 400.0 ms", "Slowest color trials", "Color latency "} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "No runs found.\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
