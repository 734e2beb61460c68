package evaluation_test

import (
	"context"
	"testing"

	"github.com/aulavision/aulavision-lms/internal/attention"
	"github.com/aulavision/aulavision-lms/internal/evaluation"
)

func TestNormalizeLetter(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"A", "A", true},
		{"b", "B", true},
		{" C) ", "C", true},
		{"D. because of the definition", "D", true},
		{"0", "A", true},
		{"3", "D", true},
		{"4", "", false},
		{"E", "", false},
		{"", "", false},
		{"  ", "", false},
	}
	for _, c := range cases {
		got, ok := evaluation.NormalizeLetter(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("NormalizeLetter(%q) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestStripOptionPrefix(t *testing.T) {
	if got := evaluation.StripOptionPrefix("A) the heap"); got != "the heap" {
		t.Fatalf("got %q", got)
	}
	if got := evaluation.StripOptionPrefix("b. the stack"); got != "the stack" {
		t.Fatalf("got %q", got)
	}
	if got := evaluation.StripOptionPrefix("Plain option"); got != "Plain option" {
		t.Fatalf("got %q", got)
	}
}

func TestScoreHalfRight(t *testing.T) {
	questions := []evaluation.Question{
		{Text: "q1", Options: []string{"w", "x", "y", "z"}, Correct: "A"},
		{Text: "q2", Options: []string{"w", "x", "y", "z"}, Correct: "B"},
	}
	sc := evaluation.Score([]string{"A", "C"}, questions)
	if sc.Matches != 1 || sc.Percentage != 50.0 || sc.Passed {
		t.Fatalf("scoring = %+v", sc)
	}
}

func TestScoreEmpty(t *testing.T) {
	sc := evaluation.Score(nil, nil)
	if sc.Percentage != 0.0 || sc.Passed {
		t.Fatalf("scoring = %+v", sc)
	}
}

func TestScorePassBoundary(t *testing.T) {
	qs := make([]evaluation.Question, 10)
	answers := make([]string, 10)
	for i := range qs {
		qs[i] = evaluation.Question{Correct: "A"}
		if i < 7 {
			answers[i] = "A"
		} else {
			answers[i] = "B"
		}
	}
	sc := evaluation.Score(answers, qs)
	if sc.Percentage != 70.0 || !sc.Passed {
		t.Fatalf("7/10 = %+v, want 70.0 passed", sc)
	}
}

func TestPlan(t *testing.T) {
	cases := []struct {
		level attention.Level
		diff  string
		count int
	}{
		{attention.LevelLow, evaluation.DifficultyHard, 15},
		{attention.LevelMedium, evaluation.DifficultyMedium, 10},
		{attention.LevelHigh, evaluation.DifficultyEasy, 5},
	}
	for _, c := range cases {
		diff, count := evaluation.Plan(c.level)
		if diff != c.diff || count != c.count {
			t.Errorf("Plan(%s) = %s, %d; want %s, %d", c.level, diff, count, c.diff, c.count)
		}
	}
}

func TestFallbackShape(t *testing.T) {
	for _, count := range []int{5, 10, 15} {
		qs, msg := evaluation.Fallback("linear equations", evaluation.DifficultyHard, count)
		if len(qs) != count {
			t.Fatalf("got %d questions, want %d", len(qs), count)
		}
		if msg == "" {
			t.Fatal("empty message")
		}
		seen := map[string]bool{}
		for i, q := range qs {
			if seen[q.Text] {
				t.Fatalf("duplicate text at %d: %q", i, q.Text)
			}
			seen[q.Text] = true
			if len(q.Options) != 4 {
				t.Fatalf("question %d has %d options", i, len(q.Options))
			}
			if _, ok := evaluation.NormalizeLetter(q.Correct); !ok {
				t.Fatalf("question %d correct letter %q", i, q.Correct)
			}
		}
	}
}

type fakeClient struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeClient) Available() bool { return true }

func (f *fakeClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", nil
}

const goodTwo = `{"message": "you got this", "questions": [
  {"text": "What is a slope?", "options": ["rate of change", "an intercept", "a root", "a constant"], "correct": "A"},
  {"text": "What is an intercept?", "options": ["a crossing point", "a slope", "a root", "a limit"], "correct": "a) "}
]}`

func TestGenerateFromModel(t *testing.T) {
	g := evaluation.NewGenerator(&fakeClient{responses: []string{"```json\n" + goodTwo + "\n```"}})
	got := g.Generate(context.Background(), "algebra", evaluation.DifficultyMedium, 2,
		evaluation.AttentionContext{Level: attention.LevelMedium, Average: 60}, nil)
	if !got.FromModel {
		t.Fatal("expected model-generated questions")
	}
	if len(got.Questions) != 2 || got.Message != "you got this" {
		t.Fatalf("generated = %+v", got)
	}
	if got.Questions[1].Correct != "A" {
		t.Fatalf("correct letter not normalized: %q", got.Questions[1].Correct)
	}
}

func TestGenerateRetriesThenSucceeds(t *testing.T) {
	fake := &fakeClient{responses: []string{"no json here at all", goodTwo}}
	g := evaluation.NewGenerator(fake)
	got := g.Generate(context.Background(), "algebra", evaluation.DifficultyMedium, 2,
		evaluation.AttentionContext{Level: attention.LevelLow, Average: 30}, nil)
	if !got.FromModel || fake.calls != 2 {
		t.Fatalf("fromModel=%v calls=%d", got.FromModel, fake.calls)
	}
}

func TestGenerateFallsBack(t *testing.T) {
	// count mismatch on every attempt forces the local generator
	fake := &fakeClient{responses: []string{goodTwo, goodTwo, goodTwo}}
	g := evaluation.NewGenerator(fake)
	got := g.Generate(context.Background(), "algebra", evaluation.DifficultyMedium, 5,
		evaluation.AttentionContext{Level: attention.LevelMedium, Average: 55}, nil)
	if got.FromModel {
		t.Fatal("expected fallback questions")
	}
	if len(got.Questions) != 5 || fake.calls != 3 {
		t.Fatalf("questions=%d calls=%d", len(got.Questions), fake.calls)
	}
}

func TestGenerateNilClient(t *testing.T) {
	g := evaluation.NewGenerator(nil)
	got := g.Generate(context.Background(), "algebra", evaluation.DifficultyEasy, 5,
		evaluation.AttentionContext{Level: attention.LevelHigh, Average: 90}, nil)
	if got.FromModel || len(got.Questions) != 5 {
		t.Fatalf("generated = %+v", got)
	}
}
