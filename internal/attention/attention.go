package attention

import "math"

// Level buckets a learner's attention for the adaptive planner.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Session is one complete viewing of a resource with a derived distraction
// percentage. Level is always derived server-side, never learner-supplied.
type Session struct {
	ID               string  `json:"id"`
	LearnerID        string  `json:"learner_id"`
	ResourceID       string  `json:"resource_id"`
	TotalDurationSec int     `json:"total_duration_sec"`
	DistractedSec    int     `json:"distracted_sec"`
	AttentionPct     float64 `json:"attention_pct"`
	Level            Level   `json:"level"`
	CreatedAt        int64   `json:"created_at"`
}

// Detail is one second of a session's chronological record. Ordering by
// SecondOffset is significant for playback.
type Detail struct {
	SecondOffset int  `json:"second_offset"`
	Distracted   bool `json:"distracted"`
}

// Summary is the reduction of a learner's recent sessions consumed by the
// adaptive-evaluation planner.
type Summary struct {
	Level    Level   `json:"level"`
	Average  float64 `json:"average"`
	Sessions int     `json:"sessions"`
}

// recentWindow is how many sessions the aggregator looks back over.
const recentWindow = 5

// LevelForPercentage classifies a single session at record time.
func LevelForPercentage(pct float64) Level {
	switch {
	case pct >= 85:
		return LevelHigh
	case pct >= 60:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Classify maps a windowed average to a level. The cutoffs differ from the
// per-session ones on purpose: a sustained 75% average already signals high
// attention even if no single session reached 85.
func Classify(avg float64) Level {
	switch {
	case avg >= 75:
		return LevelHigh
	case avg >= 50:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Summarize reduces the given session percentages (most recent first) into a
// Summary. No sessions yields the designed default of medium/50.0, not an
// error.
func Summarize(pcts []float64) Summary {
	if len(pcts) == 0 {
		return Summary{Level: LevelMedium, Average: 50.0}
	}
	sum := 0.0
	for _, p := range pcts {
		sum += p
	}
	avg := round2(sum / float64(len(pcts)))
	return Summary{Level: Classify(avg), Average: avg, Sessions: len(pcts)}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
