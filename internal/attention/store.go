package attention

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("attention: session not found")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Record derives the session level, inserts the session row and bulk-inserts
// its per-second details.
func (s *Store) Record(ctx context.Context, sess Session, details []Detail) (Session, int, error) {
	sess.ID = uuid.NewString()
	sess.Level = LevelForPercentage(sess.AttentionPct)
	sess.CreatedAt = time.Now().Unix()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attention_sessions
		   (id, learner_id, resource_id, total_duration_sec, distracted_sec, attention_pct, level, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sess.ID, sess.LearnerID, sess.ResourceID, sess.TotalDurationSec,
		sess.DistractedSec, sess.AttentionPct, sess.Level, sess.CreatedAt)
	if err != nil {
		return Session{}, 0, err
	}

	saved, err := s.insertDetails(ctx, sess.ID, details)
	if err != nil {
		return Session{}, 0, err
	}
	return sess, saved, nil
}

// insertDetails batches the chronological rows in one multi-row INSERT.
func (s *Store) insertDetails(ctx context.Context, sessionID string, details []Detail) (int, error) {
	if len(details) == 0 {
		return 0, nil
	}
	const chunk = 200
	total := 0
	for start := 0; start < len(details); start += chunk {
		end := start + chunk
		if end > len(details) {
			end = len(details)
		}
		var sb strings.Builder
		sb.WriteString(`INSERT INTO attention_details (session_id, second_offset, distracted) VALUES `)
		args := make([]any, 0, (end-start)*3)
		for i, d := range details[start:end] {
			if i > 0 {
				sb.WriteString(", ")
			}
			n := len(args)
			fmt.Fprintf(&sb, "($%d, $%d, $%d)", n+1, n+2, n+3)
			args = append(args, sessionID, d.SecondOffset, d.Distracted)
		}
		if _, err := s.db.ExecContext(ctx, sb.String(), args...); err != nil {
			return total, err
		}
		total += end - start
	}
	return total, nil
}

// RecentPercentages returns attention percentages of the learner's most
// recent sessions, newest first, capped at the aggregation window.
func (s *Store) RecentPercentages(ctx context.Context, learnerID string) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT attention_pct FROM attention_sessions
		  WHERE learner_id=$1 ORDER BY created_at DESC LIMIT $2`,
		learnerID, recentWindow)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Summarize is the attention aggregator: a pure read over the recent window.
func (s *Store) Summarize(ctx context.Context, learnerID string) (Summary, error) {
	pcts, err := s.RecentPercentages(ctx, learnerID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(pcts), nil
}

// LastResourceID returns the resource of the learner's most recent session,
// or "" when there is none.
func (s *Store) LastResourceID(ctx context.Context, learnerID string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT resource_id FROM attention_sessions
		  WHERE learner_id=$1 ORDER BY created_at DESC LIMIT 1`, learnerID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ListSessions(ctx context.Context, learnerID string) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, learner_id, resource_id, total_duration_sec, distracted_sec, attention_pct, level, created_at
		   FROM attention_sessions WHERE learner_id=$1 ORDER BY created_at DESC`, learnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Session{}
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.LearnerID, &sess.ResourceID, &sess.TotalDurationSec,
			&sess.DistractedSec, &sess.AttentionPct, &sess.Level, &sess.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// GetSession returns a learner-owned session with its details ordered by
// second offset.
func (s *Store) GetSession(ctx context.Context, learnerID, sessionID string) (Session, []Detail, error) {
	var sess Session
	err := s.db.QueryRowContext(ctx,
		`SELECT id, learner_id, resource_id, total_duration_sec, distracted_sec, attention_pct, level, created_at
		   FROM attention_sessions WHERE id=$1 AND learner_id=$2`, sessionID, learnerID).
		Scan(&sess.ID, &sess.LearnerID, &sess.ResourceID, &sess.TotalDurationSec,
			&sess.DistractedSec, &sess.AttentionPct, &sess.Level, &sess.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, nil, ErrNotFound
	}
	if err != nil {
		return Session{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT second_offset, distracted FROM attention_details
		  WHERE session_id=$1 ORDER BY second_offset`, sessionID)
	if err != nil {
		return Session{}, nil, err
	}
	defer rows.Close()

	details := []Detail{}
	for rows.Next() {
		var d Detail
		if err := rows.Scan(&d.SecondOffset, &d.Distracted); err != nil {
			return Session{}, nil, err
		}
		details = append(details, d)
	}
	return sess, details, rows.Err()
}
