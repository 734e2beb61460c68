package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:aulavision.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/aulavision?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'student',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS courses (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  teacher_id TEXT,
  active INTEGER NOT NULL DEFAULT 1,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS course_modules (
  id TEXT PRIMARY KEY,
  course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  position INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS resources (
  id TEXT PRIMARY KEY,
  module_id TEXT NOT NULL REFERENCES course_modules(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  kind TEXT NOT NULL,
  content_url TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS attention_sessions (
  id TEXT PRIMARY KEY,
  learner_id TEXT NOT NULL,
  resource_id TEXT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
  total_duration_sec INTEGER NOT NULL,
  distracted_sec INTEGER NOT NULL,
  attention_pct REAL NOT NULL,
  level TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS attention_details (
  session_id TEXT NOT NULL REFERENCES attention_sessions(id) ON DELETE CASCADE,
  second_offset INTEGER NOT NULL,
  distracted INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS d2r_results (
  id TEXT PRIMARY KEY,
  learner_id TEXT NOT NULL,
  course_id TEXT,
  resource_id TEXT,
  tr_total INTEGER NOT NULL,
  ta_total INTEGER NOT NULL,
  eo_total INTEGER NOT NULL,
  ec_total INTEGER NOT NULL,
  tot INTEGER NOT NULL,
  con REAL NOT NULL,
  var REAL NOT NULL,
  interpretation TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS d2r_rows (
  result_id TEXT NOT NULL REFERENCES d2r_results(id) ON DELETE CASCADE,
  row_number INTEGER NOT NULL,
  tr INTEGER NOT NULL,
  ta INTEGER NOT NULL,
  eo INTEGER NOT NULL,
  ec INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS adaptive_evaluations (
  id TEXT PRIMARY KEY,
  resource_id TEXT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
  difficulty TEXT NOT NULL,
  questions_json TEXT NOT NULL,
  generated_for TEXT NOT NULL,
  d2r_context_json TEXT NOT NULL DEFAULT '{}',
  attention_context_json TEXT NOT NULL DEFAULT '{}',
  generated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS evaluation_results (
  id TEXT PRIMARY KEY,
  evaluation_id TEXT NOT NULL REFERENCES adaptive_evaluations(id) ON DELETE CASCADE,
  learner_id TEXT NOT NULL,
  answers_json TEXT NOT NULL,
  score INTEGER NOT NULL,
  time_spent_sec INTEGER NOT NULL DEFAULT 0,
  analysis TEXT NOT NULL DEFAULT '',
  attempt_number INTEGER NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS evaluation_results_attempt_uq
  ON evaluation_results (evaluation_id, learner_id, attempt_number);

CREATE TABLE IF NOT EXISTS recommended_resources (
  id TEXT PRIMARY KEY,
  learner_id TEXT NOT NULL,
  source_resource_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  priority TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  url TEXT NOT NULL DEFAULT '',
  reason TEXT NOT NULL DEFAULT '',
  generated_by_ai INTEGER NOT NULL DEFAULT 1,
  seen INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'student',
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS courses (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  teacher_id TEXT,
  active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS course_modules (
  id TEXT PRIMARY KEY,
  course_id TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  position INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS resources (
  id TEXT PRIMARY KEY,
  module_id TEXT NOT NULL REFERENCES course_modules(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  kind TEXT NOT NULL,
  content_url TEXT NOT NULL DEFAULT '',
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS attention_sessions (
  id TEXT PRIMARY KEY,
  learner_id TEXT NOT NULL,
  resource_id TEXT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
  total_duration_sec INTEGER NOT NULL,
  distracted_sec INTEGER NOT NULL,
  attention_pct DOUBLE PRECISION NOT NULL,
  level TEXT NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS attention_details (
  session_id TEXT NOT NULL REFERENCES attention_sessions(id) ON DELETE CASCADE,
  second_offset INTEGER NOT NULL,
  distracted BOOLEAN NOT NULL
);

CREATE TABLE IF NOT EXISTS d2r_results (
  id TEXT PRIMARY KEY,
  learner_id TEXT NOT NULL,
  course_id TEXT,
  resource_id TEXT,
  tr_total INTEGER NOT NULL,
  ta_total INTEGER NOT NULL,
  eo_total INTEGER NOT NULL,
  ec_total INTEGER NOT NULL,
  tot INTEGER NOT NULL,
  con DOUBLE PRECISION NOT NULL,
  var DOUBLE PRECISION NOT NULL,
  interpretation TEXT NOT NULL DEFAULT '',
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS d2r_rows (
  result_id TEXT NOT NULL REFERENCES d2r_results(id) ON DELETE CASCADE,
  row_number INTEGER NOT NULL,
  tr INTEGER NOT NULL,
  ta INTEGER NOT NULL,
  eo INTEGER NOT NULL,
  ec INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS adaptive_evaluations (
  id TEXT PRIMARY KEY,
  resource_id TEXT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
  difficulty TEXT NOT NULL,
  questions_json TEXT NOT NULL,
  generated_for TEXT NOT NULL,
  d2r_context_json TEXT NOT NULL DEFAULT '{}',
  attention_context_json TEXT NOT NULL DEFAULT '{}',
  generated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS evaluation_results (
  id TEXT PRIMARY KEY,
  evaluation_id TEXT NOT NULL REFERENCES adaptive_evaluations(id) ON DELETE CASCADE,
  learner_id TEXT NOT NULL,
  answers_json TEXT NOT NULL,
  score INTEGER NOT NULL,
  time_spent_sec INTEGER NOT NULL DEFAULT 0,
  analysis TEXT NOT NULL DEFAULT '',
  attempt_number INTEGER NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS evaluation_results_attempt_uq
  ON evaluation_results (evaluation_id, learner_id, attempt_number);

CREATE TABLE IF NOT EXISTS recommended_resources (
  id TEXT PRIMARY KEY,
  learner_id TEXT NOT NULL,
  source_resource_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  priority TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  url TEXT NOT NULL DEFAULT '',
  reason TEXT NOT NULL DEFAULT '',
  generated_by_ai BOOLEAN NOT NULL DEFAULT TRUE,
  seen BOOLEAN NOT NULL DEFAULT FALSE,
  created_at BIGINT NOT NULL
);
`
