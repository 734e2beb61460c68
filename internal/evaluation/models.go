// Package evaluation generates, stores and scores adaptive multiple-choice
// evaluations. Generation prefers the external text model and always falls
// back to a deterministic local generator, so a generate call never fails
// because the model is down.
package evaluation

import (
	"github.com/aulavision/aulavision-lms/internal/attention"
	"github.com/aulavision/aulavision-lms/internal/d2r"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// PassThreshold is the minimum percentage counted as approved.
const PassThreshold = 70.0

type Question struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Correct string   `json:"correct"`
}

// AttentionContext is the attention snapshot frozen into an evaluation at
// generation time. Submissions read the level from here, never from live data.
type AttentionContext struct {
	Level    attention.Level `json:"level"`
	Average  float64         `json:"average"`
	Sessions int             `json:"sessions"`
	Message  string          `json:"message,omitempty"`
}

type Evaluation struct {
	ID               string           `json:"id"`
	ResourceID       string           `json:"resource_id"`
	Difficulty       string           `json:"difficulty"`
	Questions        []Question       `json:"questions"`
	GeneratedFor     string           `json:"generated_for"`
	D2RContext       *d2r.Context     `json:"d2r_context,omitempty"`
	AttentionContext AttentionContext `json:"attention_context"`
	GeneratedAt      int64            `json:"generated_at"`
}

type Result struct {
	ID            string   `json:"id"`
	EvaluationID  string   `json:"evaluation_id"`
	LearnerID     string   `json:"learner_id"`
	Answers       []string `json:"answers"`
	Score         int      `json:"score"`
	TimeSpentSec  int      `json:"time_spent_sec"`
	Analysis      string   `json:"analysis,omitempty"`
	AttemptNumber int      `json:"attempt_number"`
	CreatedAt     int64    `json:"created_at"`
}

// Plan maps an attention level to evaluation shape. Low attention gets more
// and harder questions, a compensatory policy: the struggling learner is the
// one who needs the thorough check.
func Plan(level attention.Level) (difficulty string, count int) {
	switch level {
	case attention.LevelLow:
		return DifficultyHard, 15
	case attention.LevelHigh:
		return DifficultyEasy, 5
	default:
		return DifficultyMedium, 10
	}
}
