package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aulavision/aulavision-lms/internal/d2r"
	"github.com/aulavision/aulavision-lms/internal/rbac"
)

func CreateD2RResultHandler(store *d2r.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learner := rbac.SubjectFromContext(r.Context())
		var req struct {
			CourseID       string    `json:"course_id"`
			ResourceID     string    `json:"resource_id"`
			Rows           []d2r.Row `json:"rows"`
			Interpretation string    `json:"interpretation"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if len(req.Rows) == 0 {
			http.Error(w, "rows required", 400)
			return
		}
		for _, row := range req.Rows {
			if row.TR < 0 || row.TA < 0 || row.EO < 0 || row.EC < 0 {
				http.Error(w, "negative counts", 400)
				return
			}
			if row.TA > row.TR {
				http.Error(w, "row has more marks than targets", 400)
				return
			}
		}
		res, err := store.Create(r.Context(), d2r.Result{
			LearnerID:      learner,
			CourseID:       req.CourseID,
			ResourceID:     req.ResourceID,
			Rows:           req.Rows,
			Interpretation: req.Interpretation,
		})
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, 201, res)
	}
}

func ListD2RResultsHandler(store *d2r.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learner := rbac.SubjectFromContext(r.Context())
		results, err := store.List(r.Context(), learner)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, 200, results)
	}
}

func GetD2RResultHandler(store *d2r.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learner := rbac.SubjectFromContext(r.Context())
		id := chi.URLParam(r, "resultID")
		res, err := store.Get(r.Context(), learner, id)
		if err != nil {
			if errors.Is(err, d2r.ErrNotFound) {
				http.Error(w, "result not found", 404)
				return
			}
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, 200, res)
	}
}
