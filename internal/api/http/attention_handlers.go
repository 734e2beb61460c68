package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aulavision/aulavision-lms/internal/attention"
	"github.com/aulavision/aulavision-lms/internal/catalog"
	"github.com/aulavision/aulavision-lms/internal/rbac"
)

func RecordAttentionSessionHandler(store *attention.Store, cat *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learner := rbac.SubjectFromContext(r.Context())
		var req struct {
			ResourceID       string             `json:"resource_id"`
			TotalDurationSec int                `json:"total_duration_sec"`
			DistractedSec    int                `json:"distracted_sec"`
			AttentionPct     float64            `json:"attention_pct"`
			Details          []attention.Detail `json:"details"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.ResourceID == "" {
			http.Error(w, "resource_id required", 400)
			return
		}
		if req.TotalDurationSec <= 0 || req.AttentionPct < 0 || req.AttentionPct > 100 {
			http.Error(w, "invalid session figures", 400)
			return
		}
		if _, err := cat.GetResource(r.Context(), req.ResourceID); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				http.Error(w, "resource not found", 404)
				return
			}
			http.Error(w, err.Error(), 500)
			return
		}

		sess, saved, err := store.Record(r.Context(), attention.Session{
			LearnerID:        learner,
			ResourceID:       req.ResourceID,
			TotalDurationSec: req.TotalDurationSec,
			DistractedSec:    req.DistractedSec,
			AttentionPct:     req.AttentionPct,
		}, req.Details)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, 201, map[string]any{
			"session":       sess,
			"details_saved": saved,
		})
	}
}

func ListAttentionSessionsHandler(store *attention.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learner := rbac.SubjectFromContext(r.Context())
		sessions, err := store.ListSessions(r.Context(), learner)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, 200, sessions)
	}
}

func GetAttentionSessionHandler(store *attention.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learner := rbac.SubjectFromContext(r.Context())
		id := chi.URLParam(r, "sessionID")
		sess, details, err := store.GetSession(r.Context(), learner, id)
		if err != nil {
			if errors.Is(err, attention.ErrNotFound) {
				http.Error(w, "session not found", 404)
				return
			}
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, 200, map[string]any{
			"session": sess,
			"details": details,
		})
	}
}

func AttentionSummaryHandler(store *attention.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learner := rbac.SubjectFromContext(r.Context())
		sum, err := store.Summarize(r.Context(), learner)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, 200, sum)
	}
}
