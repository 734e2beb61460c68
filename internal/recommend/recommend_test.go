package recommend_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/aulavision/aulavision-lms/internal/attention"
	"github.com/aulavision/aulavision-lms/internal/d2r"
	"github.com/aulavision/aulavision-lms/internal/db"
	"github.com/aulavision/aulavision-lms/internal/recommend"
)

func TestCountForLevel(t *testing.T) {
	cases := []struct {
		level attention.Level
		want  int
	}{
		{attention.LevelLow, 5},
		{attention.LevelMedium, 3},
		{attention.LevelHigh, 2},
	}
	for _, c := range cases {
		if got := recommend.CountForLevel(c.level); got != c.want {
			t.Errorf("CountForLevel(%s) = %d, want %d", c.level, got, c.want)
		}
	}
}

func TestSanitizeURL(t *testing.T) {
	// bare homepage for a video suggestion → youtube search with the title terms
	got := recommend.SanitizeURL("https://youtube.com", recommend.KindVideo, "linear equations")
	if !strings.HasPrefix(got, "https://www.youtube.com/results?search_query=") {
		t.Fatalf("bare homepage not replaced: %q", got)
	}
	if !strings.Contains(got, "linear+equations") {
		t.Fatalf("title terms missing from %q", got)
	}

	// bare homepage for a non-video suggestion → web search
	got = recommend.SanitizeURL("https://example.com/", recommend.KindArticle, "fractions")
	if !strings.HasPrefix(got, "https://www.google.com/search?q=") {
		t.Fatalf("article homepage not replaced: %q", got)
	}

	// concrete URLs pass through untouched
	keep := "https://www.youtube.com/watch?v=abc123"
	if got := recommend.SanitizeURL(keep, recommend.KindVideo, "x"); got != keep {
		t.Fatalf("concrete url mangled: %q", got)
	}
	keep = "https://es.khanacademy.org/math/algebra"
	if got := recommend.SanitizeURL(keep, recommend.KindArticle, "x"); got != keep {
		t.Fatalf("concrete url mangled: %q", got)
	}

	// garbage is replaced too
	if got := recommend.SanitizeURL("not a url", recommend.KindArticle, "fractions"); !strings.Contains(got, "google.com/search") {
		t.Fatalf("garbage url kept: %q", got)
	}
}

func TestFallbackItems(t *testing.T) {
	items := recommend.FallbackItems("fractions", 5)
	if len(items) != 5 {
		t.Fatalf("got %d items", len(items))
	}
	for i, it := range items {
		wantKind := recommend.KindVideo
		if i%2 == 1 {
			wantKind = recommend.KindArticle
		}
		if it.Kind != wantKind {
			t.Errorf("item %d kind = %s, want %s", i, it.Kind, wantKind)
		}
		wantPriority := recommend.PriorityMedium
		if i < 2 {
			wantPriority = recommend.PriorityHigh
		}
		if it.Priority != wantPriority {
			t.Errorf("item %d priority = %s, want %s", i, it.Priority, wantPriority)
		}
		if it.URL == "" || it.Title == "" {
			t.Errorf("item %d missing url/title", i)
		}
	}
}

func openTestStore(t *testing.T, name string) *recommend.Store {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	return recommend.NewStore(dbh)
}

type fakeClient struct {
	response string
	err      error
	calls    int
}

func (f *fakeClient) Available() bool { return true }

func (f *fakeClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.response, f.err
}

func TestFanoutModelPath(t *testing.T) {
	store := openTestStore(t, "rec_model")
	fake := &fakeClient{response: `[
	  {"title": "Fractions crash course", "description": "a video", "kind": "Video",
	   "priority": "HIGH", "url": "https://youtube.com", "reason": "weak on basics"}
	]`}
	fan := recommend.NewFanout(fake, store)

	got, err := fan.Generate(context.Background(), "u1", "r1", "fractions", attention.LevelHigh)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(got) != 1 || fake.calls != 1 {
		t.Fatalf("items=%d calls=%d", len(got), fake.calls)
	}
	r := got[0]
	if !r.GeneratedByAI || r.Kind != "video" || r.Priority != "high" {
		t.Fatalf("persisted = %+v", r)
	}
	if !strings.Contains(r.URL, "youtube.com/results?search_query=") {
		t.Fatalf("bare homepage survived sanitation: %q", r.URL)
	}
}

func TestFanoutFallsBack(t *testing.T) {
	store := openTestStore(t, "rec_fallback")
	fake := &fakeClient{response: "sorry, I cannot help with that"}
	fan := recommend.NewFanout(fake, store)

	got, err := fan.Generate(context.Background(), "u1", "r1", "fractions", attention.LevelLow)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("low attention should yield 5 items, got %d", len(got))
	}
	if fake.calls != 3 {
		t.Fatalf("model calls = %d, want 3", fake.calls)
	}
	for _, r := range got {
		if r.GeneratedByAI {
			t.Fatalf("fallback item flagged as AI: %+v", r)
		}
	}
}

func TestListUnseenAndMarkSeen(t *testing.T) {
	store := openTestStore(t, "rec_seen")
	ctx := context.Background()

	batch, err := store.CreateBatch(ctx, []recommend.Resource{
		{LearnerID: "u1", SourceResourceID: "r1", Kind: "article", Priority: "medium", Title: "m", Description: "d"},
		{LearnerID: "u1", SourceResourceID: "r1", Kind: "video", Priority: "high", Title: "h", Description: "d"},
	})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}

	list, err := store.ListUnseen(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Priority != "high" {
		t.Fatalf("unseen = %+v", list)
	}

	if err := store.MarkSeen(ctx, "u1", batch[1].ID); err != nil {
		t.Fatalf("mark seen: %v", err)
	}
	list, err = store.ListUnseen(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Title != "m" {
		t.Fatalf("after mark seen = %+v", list)
	}

	if err := store.MarkSeen(ctx, "intruder", batch[0].ID); err != recommend.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDetectPattern(t *testing.T) {
	cases := []struct {
		name string
		dc   *d2r.Context
		attn attention.Summary
		want string
	}{
		{"nothing", nil, attention.Summary{}, "no_data"},
		{"only attention", nil, attention.Summary{Sessions: 3, Average: 80}, "no_concentration_data"},
		{"only d2r", &d2r.Context{Con: 120}, attention.Summary{}, "no_attention_data"},
		{"both high", &d2r.Context{Con: 120}, attention.Summary{Sessions: 3, Average: 80}, "high_concentration_high_attention"},
		{"con only", &d2r.Context{Con: 120}, attention.Summary{Sessions: 3, Average: 60}, "high_concentration_low_attention"},
		{"attention only", &d2r.Context{Con: 80}, attention.Summary{Sessions: 3, Average: 90}, "low_concentration_high_attention"},
		{"both low", &d2r.Context{Con: 80}, attention.Summary{Sessions: 3, Average: 40}, "low_concentration_low_attention"},
	}
	for _, c := range cases {
		if got := recommend.DetectPattern(c.dc, c.attn); got.Key != c.want {
			t.Errorf("%s: pattern = %s, want %s", c.name, got.Key, c.want)
		}
	}
}

func TestFanoutTruncatesOnRuneBoundary(t *testing.T) {
	store := openTestStore(t, "rec_truncate")

	// 150 two-byte runes: 300 bytes, and the 199-byte limit lands mid-rune
	title := strings.Repeat("ñ", 150)
	fake := &fakeClient{response: fmt.Sprintf(
		`[{"title": %q, "description": %q, "kind": "article", "priority": "medium", "url": "", "reason": ""}]`,
		title, strings.Repeat("é", 300))}
	fan := recommend.NewFanout(fake, store)

	got, err := fan.Generate(context.Background(), "u1", "r1", "fractions", attention.LevelHigh)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("items = %d", len(got))
	}
	r := got[0]
	if len(r.Title) > 199 || len(r.Description) > 500 {
		t.Fatalf("limits exceeded: title=%d desc=%d", len(r.Title), len(r.Description))
	}
	if !utf8.ValidString(r.Title) || !utf8.ValidString(r.Description) {
		t.Fatal("truncation split a rune")
	}
}
