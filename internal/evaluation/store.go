package evaluation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/aulavision/aulavision-lms/internal/d2r"
)

var ErrNotFound = errors.New("evaluation: not found")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Create persists an evaluation with its question set and frozen context
// snapshots.
func (s *Store) Create(ctx context.Context, ev Evaluation) (Evaluation, error) {
	ev.ID = uuid.NewString()
	ev.GeneratedAt = time.Now().Unix()

	questions, err := json.Marshal(ev.Questions)
	if err != nil {
		return Evaluation{}, err
	}
	d2rCtx := []byte("{}")
	if ev.D2RContext != nil {
		if d2rCtx, err = json.Marshal(ev.D2RContext); err != nil {
			return Evaluation{}, err
		}
	}
	attnCtx, err := json.Marshal(ev.AttentionContext)
	if err != nil {
		return Evaluation{}, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO adaptive_evaluations
		   (id, resource_id, difficulty, questions_json, generated_for, d2r_context_json, attention_context_json, generated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ev.ID, ev.ResourceID, ev.Difficulty, string(questions), ev.GeneratedFor,
		string(d2rCtx), string(attnCtx), ev.GeneratedAt)
	if err != nil {
		return Evaluation{}, err
	}
	return ev, nil
}

// Get loads an evaluation scoped to the learner it was generated for.
func (s *Store) Get(ctx context.Context, learnerID, id string) (Evaluation, error) {
	var ev Evaluation
	var questions, d2rCtx, attnCtx string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, resource_id, difficulty, questions_json, generated_for, d2r_context_json, attention_context_json, generated_at
		   FROM adaptive_evaluations WHERE id = $1 AND generated_for = $2`, id, learnerID).
		Scan(&ev.ID, &ev.ResourceID, &ev.Difficulty, &questions, &ev.GeneratedFor,
			&d2rCtx, &attnCtx, &ev.GeneratedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Evaluation{}, ErrNotFound
	}
	if err != nil {
		return Evaluation{}, err
	}
	if err := json.Unmarshal([]byte(questions), &ev.Questions); err != nil {
		return Evaluation{}, err
	}
	if d2rCtx != "" && d2rCtx != "{}" {
		var c d2r.Context
		if err := json.Unmarshal([]byte(d2rCtx), &c); err != nil {
			return Evaluation{}, err
		}
		ev.D2RContext = &c
	}
	if attnCtx != "" {
		if err := json.Unmarshal([]byte(attnCtx), &ev.AttentionContext); err != nil {
			return Evaluation{}, err
		}
	}
	return ev, nil
}

// attemptRetries bounds how often CreateResult replays the read-max-then-
// insert transaction when a concurrent submission took the same number.
const attemptRetries = 3

// CreateResult persists one submission. The attempt number is assigned inside
// the transaction that inserts the row; the unique index on (evaluation_id,
// learner_id, attempt_number) turns a lost race into an insert failure, which
// is replayed with a fresh read of the prior maximum.
func (s *Store) CreateResult(ctx context.Context, res Result) (Result, error) {
	var lastErr error
	for i := 0; i < attemptRetries; i++ {
		saved, err := s.createResultOnce(ctx, res)
		if err == nil {
			return saved, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return Result{}, lastErr
}

func (s *Store) createResultOnce(ctx context.Context, res Result) (Result, error) {
	res.ID = uuid.NewString()
	res.CreatedAt = time.Now().Unix()

	answers, err := json.Marshal(res.Answers)
	if err != nil {
		return Result{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, err
	}
	defer tx.Rollback()

	var prior int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(attempt_number), 0) FROM evaluation_results
		  WHERE evaluation_id = $1 AND learner_id = $2`,
		res.EvaluationID, res.LearnerID).Scan(&prior)
	if err != nil {
		return Result{}, err
	}
	res.AttemptNumber = prior + 1

	_, err = tx.ExecContext(ctx,
		`INSERT INTO evaluation_results
		   (id, evaluation_id, learner_id, answers_json, score, time_spent_sec, analysis, attempt_number, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		res.ID, res.EvaluationID, res.LearnerID, string(answers),
		res.Score, res.TimeSpentSec, res.Analysis, res.AttemptNumber, res.CreatedAt)
	if err != nil {
		return Result{}, err
	}
	if err := tx.Commit(); err != nil {
		return Result{}, err
	}
	return res, nil
}

// HistoryEntry pairs a result with its evaluation's question count, so
// callers can derive the percentage without loading each evaluation.
type HistoryEntry struct {
	Result
	Total int `json:"total"`
}

// History returns the learner's results, newest first, in one joined query.
func (s *Store) History(ctx context.Context, learnerID string) ([]HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.evaluation_id, r.learner_id, r.answers_json, r.score,
		        r.time_spent_sec, r.analysis, r.attempt_number, r.created_at,
		        e.questions_json
		   FROM evaluation_results r
		   JOIN adaptive_evaluations e ON e.id = r.evaluation_id
		  WHERE r.learner_id = $1
		  ORDER BY r.created_at DESC`, learnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []HistoryEntry{}
	for rows.Next() {
		var h HistoryEntry
		var answers, questions string
		if err := rows.Scan(&h.ID, &h.EvaluationID, &h.LearnerID, &answers,
			&h.Score, &h.TimeSpentSec, &h.Analysis, &h.AttemptNumber, &h.CreatedAt,
			&questions); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(answers), &h.Answers); err != nil {
			return nil, err
		}
		var qs []Question
		if err := json.Unmarshal([]byte(questions), &qs); err != nil {
			return nil, err
		}
		h.Total = len(qs)
		out = append(out, h)
	}
	return out, rows.Err()
}
