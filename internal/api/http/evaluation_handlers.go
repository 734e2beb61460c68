package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aulavision/aulavision-lms/internal/attention"
	"github.com/aulavision/aulavision-lms/internal/catalog"
	"github.com/aulavision/aulavision-lms/internal/d2r"
	"github.com/aulavision/aulavision-lms/internal/evaluation"
	"github.com/aulavision/aulavision-lms/internal/rbac"
	"github.com/aulavision/aulavision-lms/internal/recommend"
)

// EvaluationDeps bundles everything the adaptive pipeline touches.
type EvaluationDeps struct {
	Catalog     *catalog.Store
	Attention   *attention.Store
	D2R         *d2r.Store
	Evaluations *evaluation.Store
	Generator   *evaluation.Generator
	Fanout      *recommend.Fanout
}

// GenerateEvaluationHandler sequences the pipeline: resolve resource →
// aggregate attention → read the psychometric context → plan shape →
// generate questions → persist with frozen snapshots. As long as a resource
// exists this succeeds, whatever the state of the generation service.
func GenerateEvaluationHandler(deps EvaluationDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		learner := rbac.SubjectFromContext(ctx)
		var req struct {
			ResourceID string `json:"resource_id"`
		}
		if r.Body != nil {
			// body optional: an empty generate request targets the last
			// watched resource
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		res, err := resolveResource(r, deps, learner, req.ResourceID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				http.Error(w, "no resource available to evaluate", 404)
				return
			}
			http.Error(w, err.Error(), 500)
			return
		}

		sum, err := deps.Attention.Summarize(ctx, learner)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		var d2rCtx *d2r.Context
		if c, ok, err := deps.D2R.Latest(ctx, learner); err != nil {
			http.Error(w, err.Error(), 500)
			return
		} else if ok {
			d2rCtx = &c
		}

		difficulty, count := evaluation.Plan(sum.Level)
		attnCtx := evaluation.AttentionContext{
			Level:    sum.Level,
			Average:  sum.Average,
			Sessions: sum.Sessions,
		}
		gen := deps.Generator.Generate(ctx, res.Title, difficulty, count, attnCtx, d2rCtx)
		attnCtx.Message = gen.Message

		ev, err := deps.Evaluations.Create(ctx, evaluation.Evaluation{
			ResourceID:       res.ID,
			Difficulty:       difficulty,
			Questions:        gen.Questions,
			GeneratedFor:     learner,
			D2RContext:       d2rCtx,
			AttentionContext: attnCtx,
		})
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		log.Printf("evaluation %s generated for %s: %s/%d questions, model=%v",
			ev.ID, learner, difficulty, len(ev.Questions), gen.FromModel)
		writeJSON(w, 201, map[string]any{
			"evaluation": ev,
			"from_model": gen.FromModel,
			"resource":   res,
		})
	}
}

// resolveResource picks the evaluation target: explicit id, else the last
// watched resource, else the first resource in the catalog.
func resolveResource(r *http.Request, deps EvaluationDeps, learner, explicit string) (catalog.Resource, error) {
	ctx := r.Context()
	if explicit != "" {
		return deps.Catalog.GetResource(ctx, explicit)
	}
	last, err := deps.Attention.LastResourceID(ctx, learner)
	if err != nil {
		return catalog.Resource{}, err
	}
	if last != "" {
		res, err := deps.Catalog.GetResource(ctx, last)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, catalog.ErrNotFound) {
			return catalog.Resource{}, err
		}
	}
	return deps.Catalog.FirstResource(ctx)
}

// SubmitEvaluationHandler scores a submission, assigns the attempt number and
// fans out remediation resources on failure, using the attention level frozen
// into the evaluation at generation time.
func SubmitEvaluationHandler(deps EvaluationDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		learner := rbac.SubjectFromContext(ctx)
		id := chi.URLParam(r, "evaluationID")

		var req struct {
			Answers      []string `json:"answers"`
			TimeSpentSec int      `json:"time_spent_sec"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if len(req.Answers) == 0 {
			http.Error(w, "answers required", 400)
			return
		}

		ev, err := deps.Evaluations.Get(ctx, learner, id)
		if err != nil {
			if errors.Is(err, evaluation.ErrNotFound) {
				http.Error(w, "evaluation not found", 404)
				return
			}
			http.Error(w, err.Error(), 500)
			return
		}

		sc := evaluation.Score(req.Answers, ev.Questions)
		result, err := deps.Evaluations.CreateResult(ctx, evaluation.Result{
			EvaluationID: ev.ID,
			LearnerID:    learner,
			Answers:      req.Answers,
			Score:        sc.Matches,
			TimeSpentSec: req.TimeSpentSec,
			Analysis:     fmt.Sprintf("%d/%d correct (%.2f%%)", sc.Matches, sc.Total, sc.Percentage),
		})
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}

		var recs []recommend.Resource
		if !sc.Passed {
			topic := resourceTitle(ctx, deps.Catalog, ev.ResourceID)
			recs, err = deps.Fanout.Generate(ctx, learner, ev.ResourceID, topic, ev.AttentionContext.Level)
			if err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
		}
		writeJSON(w, 200, map[string]any{
			"result":          result,
			"scoring":         sc,
			"recommendations": recs,
		})
	}
}

func resourceTitle(ctx context.Context, cat *catalog.Store, id string) string {
	res, err := cat.GetResource(ctx, id)
	if err != nil {
		return "the evaluated topic"
	}
	return res.Title
}

// EvaluationHistoryHandler lists the learner's results with the derived
// percentage and pass flag.
func EvaluationHistoryHandler(store *evaluation.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		learner := rbac.SubjectFromContext(ctx)
		results, err := store.History(ctx, learner)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		type entry struct {
			evaluation.HistoryEntry
			Percentage float64 `json:"percentage"`
			Passed     bool    `json:"passed"`
		}
		out := make([]entry, 0, len(results))
		for _, res := range results {
			pct := 0.0
			if res.Total > 0 {
				pct = math.Round(float64(res.Score)/float64(res.Total)*10000) / 100
			}
			out = append(out, entry{
				HistoryEntry: res,
				Percentage:   pct,
				Passed:       pct >= evaluation.PassThreshold,
			})
		}
		writeJSON(w, 200, out)
	}
}

func GetEvaluationHandler(store *evaluation.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learner := rbac.SubjectFromContext(r.Context())
		id := chi.URLParam(r, "evaluationID")
		ev, err := store.Get(r.Context(), learner, id)
		if err != nil {
			if errors.Is(err, evaluation.ErrNotFound) {
				http.Error(w, "evaluation not found", 404)
				return
			}
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, 200, ev)
	}
}
