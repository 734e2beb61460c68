package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aulavision/aulavision-lms/internal/attention"
	"github.com/aulavision/aulavision-lms/internal/d2r"
	"github.com/aulavision/aulavision-lms/internal/rbac"
	"github.com/aulavision/aulavision-lms/internal/recommend"
)

func ListRecommendationsHandler(store *recommend.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learner := rbac.SubjectFromContext(r.Context())
		list, err := store.ListUnseen(r.Context(), learner)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, 200, list)
	}
}

func MarkRecommendationSeenHandler(store *recommend.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learner := rbac.SubjectFromContext(r.Context())
		id := chi.URLParam(r, "recommendationID")
		if err := store.MarkSeen(r.Context(), learner, id); err != nil {
			if errors.Is(err, recommend.ErrNotFound) {
				http.Error(w, "recommendation not found", 404)
				return
			}
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, 200, map[string]any{"seen": true})
	}
}

// ProfileInsightsHandler combines the concentration test, the recent
// attention window and the derived study pattern into one profile view.
func ProfileInsightsHandler(d2rStore *d2r.Store, attnStore *attention.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		learner := rbac.SubjectFromContext(ctx)

		sum, err := attnStore.Summarize(ctx, learner)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		var d2rCtx *d2r.Context
		if c, ok, err := d2rStore.Latest(ctx, learner); err != nil {
			http.Error(w, err.Error(), 500)
			return
		} else if ok {
			d2rCtx = &c
		}

		writeJSON(w, 200, map[string]any{
			"attention": sum,
			"d2r":       d2rCtx,
			"pattern":   recommend.DetectPattern(d2rCtx, sum),
		})
	}
}
