// Package stats contains latency calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/tuireact/internal/model"
)

const (
	sparkChars          = " .:-=+*#%@"
	curveLabel          = "Color latency "
	terminalWidthBackup = 80
	minCurveWidth       = 10
)

// Summary describes a set of latencies.
type Summary struct {
	Count    int
	MeanMs   float64
	MedianMs float64
	MinMs    int64
	MaxMs    int64
}

// Summarize computes count, mean, median, min and max of latencies.
func Summarize(latencies []int64) Summary {
	if len(latencies) == 0 {
		return Summary{}
	}
	sorted := make([]int64, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum int64
	for _, v := range sorted {
		sum += v
	}
	mid := len(sorted) / 2
	median := float64(sorted[mid])
	if len(sorted)%2 == 0 {
		median = float64(sorted[mid-1]+sorted[mid]) / 2
	}
	return Summary{
		Count:    len(sorted),
		MeanMs:   float64(sum) / float64(len(sorted)),
		MedianMs: median,
		MinMs:    sorted[0],
		MaxMs:    sorted[len(sorted)-1],
	}
}

// LatenciesByKind splits trial latencies by block.
func LatenciesByKind(trials []model.TrialResult) map[model.TrialKind][]int64 {
	out := map[model.TrialKind][]int64{}
	for _, tr := range trials {
		out[tr.Kind] = append(out[tr.Kind], tr.LatencyMs)
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// TerminalWidth returns the width of stdout, or a fallback when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// RenderRun prints the trials of a single run followed by per-block summaries.
func RenderRun(w io.Writer, trials []model.TrialResult, errorCount int) error {
	headers := []string{"Block", "Trial", "Prompt", "Latency (ms)"}
	rows := make([][]string, 0, len(trials))
	for _, tr := range trials {
		rows = append(rows, []string{
			string(tr.Kind),
			fmt.Sprintf("%d", tr.Index+1),
			tr.Prompt,
			fmt.Sprintf("%d", tr.LatencyMs),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	byKind := LatenciesByKind(trials)
	for _, kind := range []model.TrialKind{model.TrialPrompt, model.TrialColor} {
		s := Summarize(byKind[kind])
		if s.Count == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s: mean %.1f ms, median %.1f ms, best %d ms, worst %d ms\n",
			kind, s.MeanMs, s.MedianMs, s.MinMs, s.MaxMs); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "Premature presses: %d\n", errorCount)
	return err
}

// RenderSummary prints a summary across runs.
func RenderSummary(w io.Writer, runs []model.RunAggregate) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	var totalPrompt, totalColor float64
	var totalErrors int
	bestColor := math.Inf(1)
	for _, r := range runs {
		totalPrompt += r.PromptMeanMs
		totalColor += r.ColorMeanMs
		totalErrors += r.ErrorCount
		if r.ColorTrials > 0 && r.ColorMeanMs < bestColor {
			bestColor = r.ColorMeanMs
		}
	}
	if math.IsInf(bestColor, 1) {
		bestColor = 0
	}
	count := float64(len(runs))
	lines := []string{
		"Summary",
		fmt.Sprintf("Runs: %d", len(runs)),
		fmt.Sprintf("Avg prompt latency: %.1f ms", totalPrompt/count),
		fmt.Sprintf("Avg color latency: %.1f ms", totalColor/count),
		fmt.Sprintf("Best color latency: %.1f ms", bestColor),
		fmt.Sprintf("Avg premature presses: %.2f", float64(totalErrors)/count),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderRunTable prints one row per run.
func RenderRunTable(w io.Writer, runs []model.RunAggregate) error {
	if len(runs) == 0 {
		return nil
	}
	headers := []string{"Ended", "Prompt (ms)", "Color (ms)", "Errors"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%.1f", r.PromptMeanMs),
			fmt.Sprintf("%.1f", r.ColorMeanMs),
			fmt.Sprintf("%d", r.ErrorCount),
		})
	}
	if _, err := fmt.Fprintln(w, "Runs"); err != nil {
		return err
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCurve prints the moving average of color latency per run as a sparkline
// trimmed to the most recent runs that fit in width.
func RenderCurve(w io.Writer, runs []model.RunAggregate, window, width int) error {
	values := make([]float64, 0, len(runs))
	for _, r := range runs {
		if r.ColorTrials > 0 {
			values = append(values, r.ColorMeanMs)
		}
	}
	if len(values) == 0 {
		return nil
	}
	values = MovingAverage(values, window)
	available := width - displayWidth(curveLabel)
	if available < minCurveWidth {
		available = minCurveWidth
	}
	if len(values) > available {
		values = values[len(values)-available:]
	}
	_, err := fmt.Fprintf(w, "%s%s\n\n", curveLabel, Sparkline(values))
	return err
}
