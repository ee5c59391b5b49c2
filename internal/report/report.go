// Package report provides reporting sinks for experiment results.
package report

import (
	"go.uber.org/zap"

	"github.com/verte-zerg/tuireact/internal/experiment"
)

// Log reports through a zap logger.
type Log struct {
	logger *zap.Logger
}

// NewLog wraps logger as an experiment.Reporter.
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

// Report implements experiment.Reporter.
func (l *Log) Report(label string, value int64) {
	switch label {
	case experiment.LabelErrors:
		l.logger.Info("run finished", zap.Int64("errors", value))
	case experiment.LabelTimerInterrupted:
		l.logger.Warn("timer interrupted; button re-enabled", zap.String("phase", experiment.Phase(value).String()))
	default:
		l.logger.Info("trial complete", zap.String("prompt", label), zap.Int64("elapsed_ms", value))
	}
}

// Entry is one recorded report.
type Entry struct {
	Label string
	Value int64
}

// Tee forwards each report to every sink in order.
type Tee []experiment.Reporter

// Report implements experiment.Reporter.
func (t Tee) Report(label string, value int64) {
	for _, r := range t {
		r.Report(label, value)
	}
}

// Buffer keeps reports in memory, for printing after a headless run.
type Buffer struct {
	Entries []Entry
}

// Report implements experiment.Reporter.
func (b *Buffer) Report(label string, value int64) {
	b.Entries = append(b.Entries, Entry{Label: label, Value: value})
}
