package experiment

import "github.com/verte-zerg/tuireact/internal/model"

// Results converts the completed trials into storable results.
func Results(s *State) []model.TrialResult {
	records := s.Results()
	out := make([]model.TrialResult, 0, len(records))
	for _, rec := range records {
		kind := model.TrialPrompt
		if rec.Phase == PhaseColorTrial {
			kind = model.TrialColor
		}
		out = append(out, model.TrialResult{
			Kind:      kind,
			Index:     rec.Index,
			Prompt:    rec.Prompt,
			LatencyMs: rec.ElapsedMs,
		})
	}
	return out
}
