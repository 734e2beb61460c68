package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/aulavision/aulavision-lms/internal/attention"
	"github.com/aulavision/aulavision-lms/internal/genai"
)

// fanoutAttempts bounds the AI path before the deterministic fallback.
const fanoutAttempts = 3

// maxAIEntries caps how many suggestions from one model response are kept.
const maxAIEntries = 8

type Fanout struct {
	client genai.Client
	store  *Store
}

// NewFanout wraps the model client and the persistence store. client may be
// nil; everything then comes from the deterministic path.
func NewFanout(client genai.Client, store *Store) *Fanout {
	return &Fanout{client: client, store: store}
}

// Generate builds and persists remediation resources for a learner who failed
// an evaluation on the given source resource. The count follows the attention
// level frozen into the evaluation. Never returns an error for model trouble;
// only persistence failures propagate.
func (f *Fanout) Generate(ctx context.Context, learnerID, sourceResourceID, topic string, level attention.Level) ([]Resource, error) {
	count := CountForLevel(level)

	if f.client != nil && f.client.Available() {
		prompt := buildFanoutPrompt(topic, count)
		for attempt := 1; attempt <= fanoutAttempts; attempt++ {
			items, err := f.generateOnce(ctx, prompt)
			if err == nil {
				return f.persist(ctx, learnerID, sourceResourceID, items, true)
			}
			log.Printf("recommend: fan-out attempt %d/%d failed: %v", attempt, fanoutAttempts, err)
		}
		log.Printf("recommend: falling back to local recommendations for %q", topic)
	}
	return f.persist(ctx, learnerID, sourceResourceID, FallbackItems(topic, count), false)
}

// Item is one suggestion before persistence.
type Item struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
	Priority    string `json:"priority"`
	URL         string `json:"url"`
	Reason      string `json:"reason"`
}

func (f *Fanout) generateOnce(ctx context.Context, prompt string) ([]Item, error) {
	text, err := f.client.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}
	raw, ok := genai.ExtractJSON(text)
	if !ok {
		return nil, fmt.Errorf("no json in model output")
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode array: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("empty suggestion array")
	}
	if len(items) > maxAIEntries {
		items = items[:maxAIEntries]
	}
	return items, nil
}

func (f *Fanout) persist(ctx context.Context, learnerID, sourceResourceID string, items []Item, fromModel bool) ([]Resource, error) {
	batch := make([]Resource, 0, len(items))
	for _, it := range items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			title = "Review material"
		}
		kind := strings.ToLower(strings.TrimSpace(it.Kind))
		if kind == "" {
			kind = KindArticle
		}
		priority := strings.ToLower(strings.TrimSpace(it.Priority))
		if priority == "" {
			priority = PriorityMedium
		}
		batch = append(batch, Resource{
			LearnerID:        learnerID,
			SourceResourceID: sourceResourceID,
			Kind:             truncate(kind, maxKind),
			Priority:         truncate(priority, maxPriority),
			Title:            truncate(title, maxTitle),
			Description:      truncate(strings.TrimSpace(it.Description), maxDescription),
			URL:              SanitizeURL(it.URL, kind, title),
			Reason:           truncate(strings.TrimSpace(it.Reason), maxReason),
			GeneratedByAI:    fromModel,
		})
	}
	return f.store.CreateBatch(ctx, batch)
}

// Query templates cycled by the deterministic path.
var fallbackQueries = []string{
	"tutorial %s",
	"practical examples %s",
	"exercises %s step by step",
	"introduction to %s",
	"common mistakes %s",
}

// FallbackItems synthesizes count suggestions without the model: alternating
// video/article searches, the first two marked high priority.
func FallbackItems(topic string, count int) []Item {
	out := make([]Item, 0, count)
	for i := 0; i < count; i++ {
		query := fmt.Sprintf(fallbackQueries[i%len(fallbackQueries)], topic)
		kind := KindVideo
		if i%2 == 1 {
			kind = KindArticle
		}
		priority := PriorityMedium
		if i < 2 {
			priority = PriorityHigh
		}
		out = append(out, Item{
			Title:       query,
			Description: fmt.Sprintf("Suggested material to reinforce %s.", topic),
			Kind:        kind,
			Priority:    priority,
			URL:         SearchURL(kind, query),
			Reason:      "Generated after a failed evaluation on this topic.",
		})
	}
	return out
}

func buildFanoutPrompt(topic string, count int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "A learner just failed a quiz about %q and needs remediation material.\n", topic)
	fmt.Fprintf(&sb, "Suggest exactly %d study resources.\n", count)
	sb.WriteString("Respond with a single JSON array, no extra prose:\n")
	sb.WriteString(`[{"title": "...", "description": "...", "kind": "video|pdf|article|exercise", `)
	sb.WriteString(`"priority": "high|medium|low", "url": "...", "reason": "..."}]` + "\n")
	sb.WriteString("Use concrete URLs that point at real searchable content, never a bare site homepage.")
	return sb.String()
}
