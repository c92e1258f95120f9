package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := Open(context.Background(), ":memory:", DefaultOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

// legacySchema is the oldest shape the migration history must recover
// from: singleton personal_info, job_descriptions with raw_text, and a
// generated_resumes foreign key without ON DELETE CASCADE.
const legacySchema = `
CREATE TABLE personal_info (
    id INTEGER PRIMARY KEY DEFAULT 1,
    full_name TEXT NOT NULL,
    email TEXT NOT NULL,
    phone TEXT,
    location TEXT,
    linkedin_url TEXT,
    summary TEXT,
    updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
    CHECK (id = 1)
);

CREATE TABLE work_experiences (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    company TEXT NOT NULL,
    title TEXT NOT NULL,
    start_date TEXT NOT NULL,
    end_date TEXT,
    is_current INTEGER DEFAULT 0,
    description TEXT,
    location TEXT,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE education (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    institution TEXT NOT NULL,
    degree TEXT NOT NULL,
    field_of_study TEXT,
    graduation_year INTEGER,
    gpa REAL,
    notes TEXT,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE skills (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE projects (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    description TEXT,
    technologies TEXT,
    url TEXT,
    start_date TEXT,
    end_date TEXT,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE job_descriptions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL DEFAULT 'Untitled Job',
    raw_text TEXT NOT NULL,
    parsed_data TEXT,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE job_description_versions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    job_description_id INTEGER NOT NULL REFERENCES job_descriptions(id) ON DELETE CASCADE,
    raw_text TEXT NOT NULL,
    version_number INTEGER NOT NULL,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE generated_resumes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    job_description_id INTEGER REFERENCES job_descriptions(id),
    job_title TEXT,
    company_name TEXT,
    match_score REAL,
    resume_content TEXT,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
`

func seedLegacy(t *testing.T, database *sql.DB) {
	t.Helper()
	ctx := context.Background()
	if _, err := database.ExecContext(ctx, legacySchema); err != nil {
		t.Fatalf("create legacy schema: %v", err)
	}
	stmts := []string{
		`INSERT INTO personal_info (id, full_name, email) VALUES (1, 'Ada Lovelace', 'ada@example.com')`,
		`INSERT INTO job_descriptions (id, title, raw_text, parsed_data) VALUES (1, 'Backend Engineer at Acme', 'legacy job text', '{"required_skills":[]}')`,
		`INSERT INTO job_description_versions (job_description_id, raw_text, version_number) VALUES (1, 'older text', 1)`,
		`INSERT INTO generated_resumes (job_description_id, job_title, company_name, match_score, resume_content) VALUES (1, 'Backend Engineer', 'Acme', 82.5, '{}')`,
	}
	for _, stmt := range stmts {
		if _, err := database.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("seed legacy: %v", err)
		}
	}
}

func TestMigrateFreshDatabase(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	if err := Migrate(ctx, database); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	for _, table := range []string{"users", "work_experiences", "education", "skills", "projects", "languages", "jobs", "job_versions", "generated_resumes"} {
		exists, err := tableExists(ctx, database, table)
		if err != nil {
			t.Fatalf("tableExists(%s): %v", table, err)
		}
		if !exists {
			t.Fatalf("expected table %s after migrate", table)
		}
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := Migrate(ctx, database); err != nil {
			t.Fatalf("Migrate run %d: %v", i+1, err)
		}
	}

	cols, err := tableColumns(ctx, database, "generated_resumes")
	if err != nil {
		t.Fatalf("tableColumns: %v", err)
	}
	for _, col := range []string{"job_id", "job_analysis", "language", "updated_at"} {
		if !cols[col] {
			t.Fatalf("expected generated_resumes.%s after repeated migrate", col)
		}
	}
	if cols["job_description_id"] {
		t.Fatalf("legacy column job_description_id should not exist")
	}
}

func TestMigrateLegacyDatabase(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	seedLegacy(t, database)
	if err := Migrate(ctx, database); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// Renames preserved the data.
	var fullName string
	if err := database.QueryRowContext(ctx, "SELECT full_name FROM users WHERE id = 1").Scan(&fullName); err != nil {
		t.Fatalf("users row: %v", err)
	}
	if fullName != "Ada Lovelace" {
		t.Fatalf("unexpected full_name %q", fullName)
	}

	var text string
	if err := database.QueryRowContext(ctx, "SELECT original_text FROM jobs WHERE id = 1").Scan(&text); err != nil {
		t.Fatalf("jobs row: %v", err)
	}
	if text != "legacy job text" {
		t.Fatalf("unexpected original_text %q", text)
	}

	var versionText string
	var versionNumber int
	if err := database.QueryRowContext(ctx, "SELECT original_text, version_number FROM job_versions WHERE job_id = 1").Scan(&versionText, &versionNumber); err != nil {
		t.Fatalf("job_versions row: %v", err)
	}
	if versionText != "older text" || versionNumber != 1 {
		t.Fatalf("unexpected version row %q %d", versionText, versionNumber)
	}

	// The rebuilt resume table carries the renamed foreign key and the
	// backfilled analysis copy.
	var jobID int64
	var analysis sql.NullString
	if err := database.QueryRowContext(ctx, "SELECT job_id, job_analysis FROM generated_resumes WHERE id = 1").Scan(&jobID, &analysis); err != nil {
		t.Fatalf("generated_resumes row: %v", err)
	}
	if jobID != 1 {
		t.Fatalf("unexpected job_id %d", jobID)
	}
	if !analysis.Valid || analysis.String != `{"required_skills":[]}` {
		t.Fatalf("expected backfilled job_analysis, got %+v", analysis)
	}

	ddl, found, err := tableSQL(ctx, database, "generated_resumes")
	if err != nil || !found {
		t.Fatalf("tableSQL: %v found=%v", err, found)
	}
	if !strings.Contains(strings.ToUpper(ddl), "ON DELETE CASCADE") {
		t.Fatalf("expected cascading foreign key, got DDL: %s", ddl)
	}

	// Legacy tables are gone.
	for _, table := range []string{"personal_info", "job_descriptions", "job_description_versions", "generated_resumes_new"} {
		exists, err := tableExists(ctx, database, table)
		if err != nil {
			t.Fatalf("tableExists(%s): %v", table, err)
		}
		if exists {
			t.Fatalf("expected %s to be gone after migrate", table)
		}
	}
}

func TestMigrateLegacyThenRerun(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	seedLegacy(t, database)
	if err := Migrate(ctx, database); err != nil {
		t.Fatalf("first Migrate: %v", err)
	}
	if err := Migrate(ctx, database); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	count, err := rowCount(ctx, database, "generated_resumes")
	if err != nil {
		t.Fatalf("rowCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 resume after re-run, got %d", count)
	}
}

func TestMigrateCascadeAfterRebuild(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	seedLegacy(t, database)
	if err := Migrate(ctx, database); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	if _, err := database.ExecContext(ctx, "DELETE FROM jobs WHERE id = 1"); err != nil {
		t.Fatalf("delete job: %v", err)
	}
	for _, table := range []string{"generated_resumes", "job_versions"} {
		count, err := rowCount(ctx, database, table)
		if err != nil {
			t.Fatalf("rowCount(%s): %v", table, err)
		}
		if count != 0 {
			t.Fatalf("expected cascade to empty %s, got %d rows", table, count)
		}
	}
}

func TestMigrateCrashBetweenDropAndRename(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	// Simulate a historical run that dropped the old resume table but
	// never renamed the rebuilt one into place.
	if err := Migrate(ctx, database); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	stmts := []string{
		`INSERT INTO jobs (id, title, original_text) VALUES (1, 'T', 'some job text')`,
		`ALTER TABLE generated_resumes RENAME TO generated_resumes_new`,
		`INSERT INTO generated_resumes_new (job_id, job_title) VALUES (1, 'Kept')`,
	}
	for _, stmt := range stmts {
		if _, err := database.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	if err := Migrate(ctx, database); err != nil {
		t.Fatalf("recovery Migrate: %v", err)
	}

	var title string
	if err := database.QueryRowContext(ctx, "SELECT job_title FROM generated_resumes WHERE job_id = 1").Scan(&title); err != nil {
		t.Fatalf("rebuilt row: %v", err)
	}
	if title != "Kept" {
		t.Fatalf("expected row to survive swap completion, got %q", title)
	}
}

func TestMigrateLegacyCreatesIndexes(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	// Indexes must not be created until the steps have renamed the
	// legacy tables and columns into their current shape.
	seedLegacy(t, database)
	if err := Migrate(ctx, database); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	for _, idx := range []string{"idx_job_versions_job_id", "idx_generated_resumes_job_id"} {
		var name string
		err := database.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type = 'index' AND name = ?", idx).Scan(&name)
		if err != nil {
			t.Fatalf("expected index %s after migrate: %v", idx, err)
		}
	}
}

func TestMigrateRebuildScaffoldingConflictFailsLoudly(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	if err := Migrate(ctx, database); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	// Both the final table and the rebuild scaffolding hold rows; no
	// mechanical reconciliation is possible.
	stmts := []string{
		`INSERT INTO generated_resumes (job_title) VALUES ('Live')`,
		`CREATE TABLE generated_resumes_new (id INTEGER PRIMARY KEY AUTOINCREMENT, job_id INTEGER, job_title TEXT)`,
		`INSERT INTO generated_resumes_new (job_title) VALUES ('Stray')`,
	}
	for _, stmt := range stmts {
		if _, err := database.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	err := Migrate(ctx, database)
	if !errors.Is(err, ErrInconsistentSchema) {
		t.Fatalf("expected ErrInconsistentSchema, got %v", err)
	}
}

func TestMigrateBothTablesWithDataFailsLoudly(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	if err := Migrate(ctx, database); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	stmts := []string{
		`CREATE TABLE job_descriptions (id INTEGER PRIMARY KEY AUTOINCREMENT, title TEXT, raw_text TEXT NOT NULL)`,
		`INSERT INTO job_descriptions (title, raw_text) VALUES ('Old', 'old text')`,
		`INSERT INTO jobs (title, original_text) VALUES ('New', 'new text')`,
	}
	for _, stmt := range stmts {
		if _, err := database.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}

	err := Migrate(ctx, database)
	if !errors.Is(err, ErrInconsistentSchema) {
		t.Fatalf("expected ErrInconsistentSchema, got %v", err)
	}
}

func TestMigrateCrashedRenameEmptyNewTable(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	seedLegacy(t, database)
	// A crashed earlier run already created an empty jobs table next to
	// the populated legacy one; the populated side must win.
	if _, err := database.ExecContext(ctx, `CREATE TABLE jobs (id INTEGER PRIMARY KEY AUTOINCREMENT, title TEXT, original_text TEXT NOT NULL)`); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := Migrate(ctx, database); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	var text string
	if err := database.QueryRowContext(ctx, "SELECT original_text FROM jobs WHERE id = 1").Scan(&text); err != nil {
		t.Fatalf("jobs row: %v", err)
	}
	if text != "legacy job text" {
		t.Fatalf("expected legacy data to win, got %q", text)
	}
}
