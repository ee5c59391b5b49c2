// Package model defines shared data structures.
package model

import "time"

// TrialKind identifies which block of the experiment a trial belongs to.
type TrialKind string

const (
	TrialPrompt TrialKind = "prompt"
	TrialColor  TrialKind = "color"
)

// Config defines run settings.
type Config struct {
	Save         bool
	Seed         int64
	LogLevel     string
	LogFile      string
	NeutralColor string
	ActiveColor  string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
}

// TrialResult captures one completed trial.
type TrialResult struct {
	Kind      TrialKind
	Index     int
	Prompt    string
	LatencyMs int64
}

// RunStats captures a completed experiment run.
type RunStats struct {
	UUID       string
	StartedAt  time.Time
	EndedAt    time.Time
	Seed       int64
	ErrorCount int
}

// RunAggregate summarizes a stored run for reporting.
type RunAggregate struct {
	RunID        int64
	UUID         string
	EndedAt      time.Time
	ErrorCount   int
	PromptMeanMs float64
	ColorMeanMs  float64
	PromptTrials int
	ColorTrials  int
}

// StoredTrial is a trial loaded back from the store.
type StoredTrial struct {
	RunID int64
	TrialResult
}
