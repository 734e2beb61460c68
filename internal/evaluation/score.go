package evaluation

import (
	"math"
	"strings"
)

// NormalizeLetter maps a raw answer value onto one of A–D. Accepted forms:
// a 0–3 digit index, or a leading A–D letter optionally followed by
// punctuation or words ("b", "C)", "A. porque..."). Anything else is invalid.
func NormalizeLetter(v string) (string, bool) {
	s := strings.TrimSpace(v)
	if s == "" {
		return "", false
	}
	switch s {
	case "0":
		return "A", true
	case "1":
		return "B", true
	case "2":
		return "C", true
	case "3":
		return "D", true
	}
	c := strings.ToUpper(s[:1])
	if c >= "A" && c <= "D" {
		return c, true
	}
	return "", false
}

// StripOptionPrefix removes a leading "A) " / "b. " style label from an
// option string, so models adding labels despite instructions still validate.
func StripOptionPrefix(opt string) string {
	s := strings.TrimSpace(opt)
	if len(s) >= 2 {
		c := strings.ToUpper(s[:1])
		if c >= "A" && c <= "D" && (s[1] == ')' || s[1] == '.') {
			return strings.TrimSpace(s[2:])
		}
	}
	return s
}

// Scoring is the outcome of comparing submitted answers to the answer key.
type Scoring struct {
	Matches    int     `json:"matches"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Passed     bool    `json:"passed"`
}

// Score compares answers to questions index by index. Positions missing on
// either side simply do not match.
func Score(submitted []string, questions []Question) Scoring {
	sc := Scoring{Total: len(questions)}
	for i, q := range questions {
		if i >= len(submitted) {
			break
		}
		got, ok1 := NormalizeLetter(submitted[i])
		want, ok2 := NormalizeLetter(q.Correct)
		if ok1 && ok2 && got == want {
			sc.Matches++
		}
	}
	if sc.Total > 0 {
		sc.Percentage = round2(100 * float64(sc.Matches) / float64(sc.Total))
	}
	sc.Passed = sc.Percentage >= PassThreshold
	return sc
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
