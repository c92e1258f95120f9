package db

import (
	"context"
	"database/sql"
	"fmt"
)

// baseSchema is the current shape of the database. Fresh databases are
// created directly in this form; databases from earlier releases are
// brought up to it by the migration steps in migrate.go.
const baseSchema = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY DEFAULT 1,
    full_name TEXT NOT NULL,
    email TEXT NOT NULL,
    phone TEXT,
    location TEXT,
    linkedin_url TEXT,
    summary TEXT,
    photo TEXT,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
    CHECK (id = 1)
);

CREATE TABLE IF NOT EXISTS work_experiences (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    company TEXT NOT NULL,
    title TEXT NOT NULL,
    start_date TEXT NOT NULL,
    end_date TEXT,
    is_current INTEGER DEFAULT 0,
    description TEXT,
    location TEXT,
    user_id INTEGER DEFAULT 1,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS education (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    institution TEXT NOT NULL,
    degree TEXT NOT NULL,
    field_of_study TEXT,
    graduation_year INTEGER,
    gpa REAL,
    notes TEXT,
    user_id INTEGER DEFAULT 1,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS skills (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    user_id INTEGER DEFAULT 1,
    UNIQUE (user_id, name)
);

CREATE TABLE IF NOT EXISTS projects (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    description TEXT,
    technologies TEXT,
    url TEXT,
    start_date TEXT,
    end_date TEXT,
    user_id INTEGER DEFAULT 1,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS languages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    level TEXT NOT NULL,
    display_order INTEGER DEFAULT 0,
    user_id INTEGER DEFAULT 1,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS jobs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL DEFAULT 'Untitled Job',
    company_name TEXT,
    original_text TEXT NOT NULL,
    parsed_data TEXT,
    is_saved INTEGER DEFAULT 1,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS job_versions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    job_id INTEGER NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
    original_text TEXT NOT NULL,
    version_number INTEGER NOT NULL,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS generated_resumes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    job_id INTEGER REFERENCES jobs(id) ON DELETE CASCADE,
    job_title TEXT,
    company_name TEXT,
    match_score REAL,
    resume_content TEXT,
    job_analysis TEXT,
    language TEXT DEFAULT 'en',
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);

`

// baseIndexes are created only after the migration steps have run. On a
// legacy database the indexed tables still carry their old names and
// columns when the base schema is applied, so creating indexes up front
// would fail before any step gets the chance to bring the tables forward.
const baseIndexes = `
CREATE INDEX IF NOT EXISTS idx_job_versions_job_id ON job_versions(job_id);
CREATE INDEX IF NOT EXISTS idx_generated_resumes_job_id ON generated_resumes(job_id);
`

func createBaseSchema(ctx context.Context, database *sql.DB) error {
	if _, err := database.ExecContext(ctx, baseSchema); err != nil {
		return fmt.Errorf("create base schema: %w", err)
	}
	return nil
}

func createBaseIndexes(ctx context.Context, database *sql.DB) error {
	if _, err := database.ExecContext(ctx, baseIndexes); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	return nil
}
