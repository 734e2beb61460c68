package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("catalog: not found")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) CreateCourse(ctx context.Context, c Course) (Course, error) {
	c.ID = uuid.NewString()
	c.Active = true
	c.CreatedAt = time.Now().Unix()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO courses (id, name, description, teacher_id, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Name, c.Description, c.TeacherID, c.Active, c.CreatedAt)
	if err != nil {
		return Course{}, err
	}
	return c, nil
}

// ListCourses returns active courses; teacherID narrows to one teacher's own.
func (s *Store) ListCourses(ctx context.Context, teacherID string) ([]Course, error) {
	q := `SELECT id, name, description, COALESCE(teacher_id,''), active, created_at
	        FROM courses WHERE active = $1`
	args := []any{true}
	if teacherID != "" {
		q += ` AND teacher_id = $2`
		args = append(args, teacherID)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Course{}
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.TeacherID, &c.Active, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CreateModule(ctx context.Context, m Module) (Module, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM courses WHERE id=$1`, m.CourseID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return Module{}, ErrNotFound
	}
	if err != nil {
		return Module{}, err
	}
	m.ID = uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO course_modules (id, course_id, name, position) VALUES ($1, $2, $3, $4)`,
		m.ID, m.CourseID, m.Name, m.Position)
	if err != nil {
		return Module{}, err
	}
	return m, nil
}

func (s *Store) ListModules(ctx context.Context, courseID string) ([]Module, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, course_id, name, position FROM course_modules
		  WHERE course_id=$1 ORDER BY position, name`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Module{}
	for rows.Next() {
		var m Module
		if err := rows.Scan(&m.ID, &m.CourseID, &m.Name, &m.Position); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) CreateResource(ctx context.Context, r Resource) (Resource, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM course_modules WHERE id=$1`, r.ModuleID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return Resource{}, ErrNotFound
	}
	if err != nil {
		return Resource{}, err
	}
	r.ID = uuid.NewString()
	r.CreatedAt = time.Now().Unix()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO resources (id, module_id, title, kind, content_url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.ModuleID, r.Title, r.Kind, r.ContentURL, r.CreatedAt)
	if err != nil {
		return Resource{}, err
	}
	return r, nil
}

// GetResource is the resource-catalog contract consumed by the adaptive
// pipeline.
func (s *Store) GetResource(ctx context.Context, id string) (Resource, error) {
	var r Resource
	err := s.db.QueryRowContext(ctx,
		`SELECT id, module_id, title, kind, COALESCE(content_url,''), created_at
		   FROM resources WHERE id=$1`, id).
		Scan(&r.ID, &r.ModuleID, &r.Title, &r.Kind, &r.ContentURL, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Resource{}, ErrNotFound
	}
	if err != nil {
		return Resource{}, err
	}
	return r, nil
}

// FirstResource returns the oldest resource, used when a learner asks for an
// evaluation without naming one and has no attention history either.
func (s *Store) FirstResource(ctx context.Context) (Resource, error) {
	var r Resource
	err := s.db.QueryRowContext(ctx,
		`SELECT id, module_id, title, kind, COALESCE(content_url,''), created_at
		   FROM resources ORDER BY created_at LIMIT 1`).
		Scan(&r.ID, &r.ModuleID, &r.Title, &r.Kind, &r.ContentURL, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Resource{}, ErrNotFound
	}
	if err != nil {
		return Resource{}, err
	}
	return r, nil
}

// ListResources lists all resources, or one module's when moduleID is set.
func (s *Store) ListResources(ctx context.Context, moduleID string) ([]Resource, error) {
	q := `SELECT id, module_id, title, kind, COALESCE(content_url,''), created_at
	        FROM resources`
	args := []any{}
	if moduleID != "" {
		q += ` WHERE module_id=$1`
		args = append(args, moduleID)
	}
	q += ` ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Resource{}
	for rows.Next() {
		var r Resource
		if err := rows.Scan(&r.ID, &r.ModuleID, &r.Title, &r.Kind, &r.ContentURL, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) DeleteResource(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM resources WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
