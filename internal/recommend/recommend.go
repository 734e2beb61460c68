// Package recommend fans out remediation resources after a failed evaluation
// and surfaces study-pattern insights for the learner profile.
package recommend

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/aulavision/aulavision-lms/internal/attention"
)

const (
	KindVideo    = "video"
	KindPDF      = "pdf"
	KindArticle  = "article"
	KindExercise = "exercise"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

type Resource struct {
	ID               string `json:"id"`
	LearnerID        string `json:"learner_id"`
	SourceResourceID string `json:"source_resource_id"`
	Kind             string `json:"kind"`
	Priority         string `json:"priority"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	URL              string `json:"url"`
	Reason           string `json:"reason,omitempty"`
	GeneratedByAI    bool   `json:"generated_by_ai"`
	Seen             bool   `json:"seen"`
	CreatedAt        int64  `json:"created_at"`
}

// CountForLevel determines how many remediation resources a failed learner
// receives: the less attentive, the more material.
func CountForLevel(level attention.Level) int {
	switch level {
	case attention.LevelLow:
		return 5
	case attention.LevelHigh:
		return 2
	default:
		return 3
	}
}

// Field width limits applied before persisting.
const (
	maxTitle       = 199
	maxDescription = 500
	maxKind        = 20
	maxPriority    = 10
	maxReason      = 500
)

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// SanitizeURL replaces useless links with synthesized search URLs. Models
// love to suggest "https://youtube.com" with no query; a bare homepage helps
// nobody, so it becomes a search for the suggestion's title instead.
func SanitizeURL(raw, kind, title string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		if (u.Path != "" && u.Path != "/") || u.RawQuery != "" {
			return u.String()
		}
	}
	return SearchURL(kind, title)
}

// SearchURL builds a platform search link for the given title terms.
func SearchURL(kind, title string) string {
	q := url.QueryEscape(strings.TrimSpace(title))
	if kind == KindVideo {
		return "https://www.youtube.com/results?search_query=" + q
	}
	return "https://www.google.com/search?q=" + q
}
