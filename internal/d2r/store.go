package d2r

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("d2r: result not found")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Create persists a result. All aggregate fields on the input are replaced by
// values recomputed from the rows, so clients cannot submit inconsistent
// totals.
func (s *Store) Create(ctx context.Context, res Result) (Result, error) {
	res.ID = uuid.NewString()
	res.CreatedAt = time.Now().Unix()
	res.TRTotal, res.TATotal, res.EOTotal, res.ECTotal, res.Tot, res.Con, res.Var = Recompute(res.Rows)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO d2r_results
		   (id, learner_id, course_id, resource_id, tr_total, ta_total, eo_total, ec_total, tot, con, var, interpretation, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		res.ID, res.LearnerID, res.CourseID, res.ResourceID,
		res.TRTotal, res.TATotal, res.EOTotal, res.ECTotal,
		res.Tot, res.Con, res.Var, res.Interpretation, res.CreatedAt)
	if err != nil {
		return Result{}, err
	}
	for i, r := range res.Rows {
		if r.RowNumber == 0 {
			r.RowNumber = i + 1
			res.Rows[i] = r
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO d2r_rows (result_id, row_number, tr, ta, eo, ec)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			res.ID, r.RowNumber, r.TR, r.TA, r.EO, r.EC)
		if err != nil {
			return Result{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return Result{}, err
	}
	return res, nil
}

// Latest returns the learner's most recent result as a pipeline context
// snapshot. ok is false when the learner has no results yet.
func (s *Store) Latest(ctx context.Context, learnerID string) (Context, bool, error) {
	var c Context
	err := s.db.QueryRowContext(ctx,
		`SELECT con, tot, var, tr_total, ta_total, eo_total, ec_total, created_at
		   FROM d2r_results WHERE learner_id = $1
		  ORDER BY created_at DESC LIMIT 1`, learnerID).
		Scan(&c.Con, &c.Tot, &c.Var, &c.TRTotal, &c.TATotal, &c.EOTotal, &c.ECTotal, &c.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return Context{}, false, nil
	}
	if err != nil {
		return Context{}, false, err
	}
	return c, true, nil
}

// List returns the learner's results newest first, without row detail.
func (s *Store) List(ctx context.Context, learnerID string) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, learner_id, course_id, resource_id, tr_total, ta_total, eo_total, ec_total, tot, con, var, interpretation, created_at
		   FROM d2r_results WHERE learner_id = $1
		  ORDER BY created_at DESC`, learnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Result{}
	for rows.Next() {
		var r Result
		var courseID, resourceID sql.NullString
		if err := rows.Scan(&r.ID, &r.LearnerID, &courseID, &resourceID,
			&r.TRTotal, &r.TATotal, &r.EOTotal, &r.ECTotal,
			&r.Tot, &r.Con, &r.Var, &r.Interpretation, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.CourseID, r.ResourceID = courseID.String, resourceID.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get returns one result with its rows, scoped to the owning learner.
func (s *Store) Get(ctx context.Context, learnerID, id string) (Result, error) {
	var r Result
	var courseID, resourceID sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, learner_id, course_id, resource_id, tr_total, ta_total, eo_total, ec_total, tot, con, var, interpretation, created_at
		   FROM d2r_results WHERE id = $1 AND learner_id = $2`, id, learnerID).
		Scan(&r.ID, &r.LearnerID, &courseID, &resourceID,
			&r.TRTotal, &r.TATotal, &r.EOTotal, &r.ECTotal,
			&r.Tot, &r.Con, &r.Var, &r.Interpretation, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, ErrNotFound
	}
	if err != nil {
		return Result{}, err
	}
	r.CourseID, r.ResourceID = courseID.String, resourceID.String

	rows, err := s.db.QueryContext(ctx,
		`SELECT row_number, tr, ta, eo, ec FROM d2r_rows
		  WHERE result_id = $1 ORDER BY row_number`, r.ID)
	if err != nil {
		return Result{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.RowNumber, &row.TR, &row.TA, &row.EO, &row.EC); err != nil {
			return Result{}, err
		}
		r.Rows = append(r.Rows, row)
	}
	return r, rows.Err()
}
