package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/aulavision/aulavision-lms/internal/attention"
	"github.com/aulavision/aulavision-lms/internal/d2r"
	"github.com/aulavision/aulavision-lms/internal/genai"
)

// generateAttempts bounds the generate→extract→validate cycle before the
// deterministic fallback takes over.
const generateAttempts = 3

type Generator struct {
	client genai.Client
}

// NewGenerator wraps a text model client. client may be nil, in which case
// every generation uses the local fallback.
func NewGenerator(client genai.Client) *Generator { return &Generator{client: client} }

// Generated is what the pipeline gets back: the validated question set, the
// motivational message and whether the external model produced it.
type Generated struct {
	Questions []Question
	Message   string
	FromModel bool
}

// Generate produces exactly count questions for the topic. It never returns
// an error: validation failures and model outages downgrade to the fallback.
func (g *Generator) Generate(ctx context.Context, topic, difficulty string, count int, attn AttentionContext, dc *d2r.Context) Generated {
	if g.client != nil && g.client.Available() {
		prompt := buildPrompt(topic, difficulty, count, attn, dc)
		for attempt := 1; attempt <= generateAttempts; attempt++ {
			qs, msg, err := g.generateOnce(ctx, prompt, count)
			if err == nil {
				return Generated{Questions: qs, Message: msg, FromModel: true}
			}
			log.Printf("evaluation: generation attempt %d/%d failed: %v", attempt, generateAttempts, err)
		}
		log.Printf("evaluation: falling back to local generation for %q", topic)
	}
	qs, msg := Fallback(topic, difficulty, count)
	return Generated{Questions: qs, Message: msg}
}

func (g *Generator) generateOnce(ctx context.Context, prompt string, count int) ([]Question, string, error) {
	text, err := g.client.GenerateText(ctx, prompt)
	if err != nil {
		return nil, "", err
	}
	raw, ok := genai.ExtractJSON(text)
	if !ok {
		return nil, "", fmt.Errorf("no json in model output")
	}
	var payload struct {
		Message   string `json:"message"`
		Questions []struct {
			Text    string   `json:"text"`
			Options []string `json:"options"`
			Correct string   `json:"correct"`
		} `json:"questions"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, "", fmt.Errorf("decode payload: %w", err)
	}
	if len(payload.Questions) != count {
		return nil, "", fmt.Errorf("got %d questions, want %d", len(payload.Questions), count)
	}

	seen := map[string]bool{}
	out := make([]Question, 0, count)
	for i, q := range payload.Questions {
		text := strings.TrimSpace(q.Text)
		if len(text) < 8 {
			return nil, "", fmt.Errorf("question %d: text too short", i)
		}
		if seen[text] {
			return nil, "", fmt.Errorf("question %d: duplicate text", i)
		}
		seen[text] = true
		if len(q.Options) != 4 {
			return nil, "", fmt.Errorf("question %d: %d options", i, len(q.Options))
		}
		opts := make([]string, 4)
		for j, o := range q.Options {
			o = StripOptionPrefix(o)
			if o == "" {
				return nil, "", fmt.Errorf("question %d: empty option %d", i, j)
			}
			opts[j] = o
		}
		letter, ok := NormalizeLetter(q.Correct)
		if !ok {
			return nil, "", fmt.Errorf("question %d: bad correct letter %q", i, q.Correct)
		}
		out = append(out, Question{Text: text, Options: opts, Correct: letter})
	}
	return out, strings.TrimSpace(payload.Message), nil
}

func buildPrompt(topic, difficulty string, count int, attn AttentionContext, dc *d2r.Context) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a tutor creating a quiz about %q at %s difficulty.\n", topic, difficulty)
	fmt.Fprintf(&sb, "Create exactly %d multiple-choice questions.\n", count)

	switch attn.Level {
	case attention.LevelLow:
		sb.WriteString("The learner has trouble staying focused (recent attention ")
		fmt.Fprintf(&sb, "%.1f%%): use short, simple, concrete wording.\n", attn.Average)
	case attention.LevelHigh:
		sb.WriteString("The learner is highly focused (recent attention ")
		fmt.Fprintf(&sb, "%.1f%%): use analytical questions that require reasoning.\n", attn.Average)
	default:
		fmt.Fprintf(&sb, "The learner's recent attention averages %.1f%%: balanced wording.\n", attn.Average)
	}
	if dc != nil {
		fmt.Fprintf(&sb, "Concentration-test profile: CON=%.0f TOT=%d VAR=%.0f.\n", dc.Con, dc.Tot, dc.Var)
	}

	sb.WriteString("Respond with a single JSON object, no extra prose:\n")
	sb.WriteString(`{"message": "<one short motivational sentence>", "questions": [`)
	sb.WriteString(`{"text": "...", "options": ["...", "...", "...", "..."], "correct": "A"}]}` + "\n")
	sb.WriteString("Rules: each question has exactly 4 options without leading \"A) \" labels, ")
	sb.WriteString("\"correct\" is a single letter A-D, and no two question texts repeat.")
	return sb.String()
}
