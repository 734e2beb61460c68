package recommend

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("recommend: resource not found")

// unseenLimit caps the learner-facing list.
const unseenLimit = 10

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// CreateBatch persists the fan-out output in one transaction and returns the
// rows with their assigned ids.
func (s *Store) CreateBatch(ctx context.Context, batch []Resource) ([]Resource, error) {
	if len(batch) == 0 {
		return []Resource{}, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for i := range batch {
		batch[i].ID = uuid.NewString()
		batch[i].CreatedAt = now
		batch[i].Seen = false
		r := batch[i]
		_, err := tx.ExecContext(ctx,
			`INSERT INTO recommended_resources
			   (id, learner_id, source_resource_id, kind, priority, title, description, url, reason, generated_by_ai, seen, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			r.ID, r.LearnerID, r.SourceResourceID, r.Kind, r.Priority,
			r.Title, r.Description, r.URL, r.Reason, r.GeneratedByAI, r.Seen, r.CreatedAt)
		if err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return batch, nil
}

// ListUnseen returns the learner's pending recommendations, high priority
// first, then newest.
func (s *Store) ListUnseen(ctx context.Context, learnerID string) ([]Resource, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, learner_id, source_resource_id, kind, priority, title, description, url, reason, generated_by_ai, seen, created_at
		   FROM recommended_resources
		  WHERE learner_id = $1 AND seen = FALSE
		  ORDER BY CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END, created_at DESC
		  LIMIT $2`, learnerID, unseenLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Resource{}
	for rows.Next() {
		var r Resource
		if err := rows.Scan(&r.ID, &r.LearnerID, &r.SourceResourceID, &r.Kind, &r.Priority,
			&r.Title, &r.Description, &r.URL, &r.Reason, &r.GeneratedByAI, &r.Seen, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MarkSeen acknowledges one recommendation, scoped to its owner.
func (s *Store) MarkSeen(ctx context.Context, learnerID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE recommended_resources SET seen = TRUE
		  WHERE id = $1 AND learner_id = $2`, id, learnerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
