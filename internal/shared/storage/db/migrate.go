package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"mycv-backend/internal/shared/telemetry"
)

// ErrInconsistentSchema is returned when a migration step finds the live
// schema in a state it cannot classify. Startup must abort rather than
// guess; the next run retries naturally because every step is idempotent.
var ErrInconsistentSchema = errors.New("db: cannot determine schema state")

type stepKind int

const (
	kindAddColumn stepKind = iota
	kindBackfill
	kindRenameColumn
	kindRenameTable
	kindRebuildTable
)

// step is a data-described schema transformation. Each step inspects the
// live schema to decide whether it has already been applied, so the whole
// sequence can be re-run on every process start, including against a
// database left mid-way by a crashed earlier run.
type step struct {
	name   string
	kind   stepKind
	table  string
	column string // addColumn, backfill, renameColumn (new name)
	decl   string // addColumn: full column declaration
	from   string // renameColumn/renameTable: old name
	fill   string // backfill: SQL expression for the new value

	rebuild *rebuildSpec
}

// rebuildSpec describes a table swap for constraint changes SQLite cannot
// express as in-place ALTERs: create the target shape under a temporary
// name, copy rows once, drop the old table and rename the new one in.
type rebuildSpec struct {
	tempName  string
	createSQL string
	// wantSQL are substrings that must all appear in the live table DDL
	// once the rebuild is done (e.g. the new constraint text).
	wantSQL []string
	// renameMap maps legacy column names to their replacements; source
	// columns are always resolved against the live schema, never assumed.
	renameMap map[string]string
	indexes   []string
}

// steps returns the ordered migration history. Order matters: tables are
// renamed before their columns evolve, and the generated_resumes rebuild
// runs after the jobs rename so its foreign key resolves against the
// current parent name.
func steps() []step {
	return []step{
		{name: "rename personal_info to users", kind: kindRenameTable, from: "personal_info", table: "users"},
		{name: "add users.photo", kind: kindAddColumn, table: "users", column: "photo", decl: "photo TEXT"},
		{name: "add users.created_at", kind: kindAddColumn, table: "users", column: "created_at", decl: "created_at TEXT"},
		{name: "add work_experiences.user_id", kind: kindAddColumn, table: "work_experiences", column: "user_id", decl: "user_id INTEGER DEFAULT 1"},
		{name: "add education.user_id", kind: kindAddColumn, table: "education", column: "user_id", decl: "user_id INTEGER DEFAULT 1"},
		{name: "add skills.user_id", kind: kindAddColumn, table: "skills", column: "user_id", decl: "user_id INTEGER DEFAULT 1"},
		{name: "add projects.user_id", kind: kindAddColumn, table: "projects", column: "user_id", decl: "user_id INTEGER DEFAULT 1"},

		{name: "rename job_descriptions to jobs", kind: kindRenameTable, from: "job_descriptions", table: "jobs"},
		{name: "rename jobs.raw_text to original_text", kind: kindRenameColumn, table: "jobs", from: "raw_text", column: "original_text"},
		{name: "add jobs.company_name", kind: kindAddColumn, table: "jobs", column: "company_name", decl: "company_name TEXT"},
		{name: "add jobs.parsed_data", kind: kindAddColumn, table: "jobs", column: "parsed_data", decl: "parsed_data TEXT"},
		{name: "add jobs.is_saved", kind: kindAddColumn, table: "jobs", column: "is_saved", decl: "is_saved INTEGER DEFAULT 1"},

		{name: "rename job_description_versions to job_versions", kind: kindRenameTable, from: "job_description_versions", table: "job_versions"},
		{name: "rename job_versions.job_description_id to job_id", kind: kindRenameColumn, table: "job_versions", from: "job_description_id", column: "job_id"},
		{name: "rename job_versions.raw_text to original_text", kind: kindRenameColumn, table: "job_versions", from: "raw_text", column: "original_text"},

		{
			name:  "rebuild generated_resumes with cascading job foreign key",
			kind:  kindRebuildTable,
			table: "generated_resumes",
			rebuild: &rebuildSpec{
				tempName: "generated_resumes_new",
				createSQL: `CREATE TABLE IF NOT EXISTS generated_resumes_new (
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
)`,
				wantSQL:   []string{"ON DELETE CASCADE"},
				renameMap: map[string]string{"job_description_id": "job_id"},
				indexes: []string{
					"CREATE INDEX IF NOT EXISTS idx_generated_resumes_job_id ON generated_resumes(job_id)",
				},
			},
		},

		{name: "add generated_resumes.job_analysis", kind: kindAddColumn, table: "generated_resumes", column: "job_analysis", decl: "job_analysis TEXT"},
		{name: "add generated_resumes.language", kind: kindAddColumn, table: "generated_resumes", column: "language", decl: "language TEXT DEFAULT 'en'"},
		{name: "add generated_resumes.updated_at", kind: kindAddColumn, table: "generated_resumes", column: "updated_at", decl: "updated_at TEXT"},
		{
			name: "backfill generated_resumes.job_analysis from owning job", kind: kindBackfill,
			table: "generated_resumes", column: "job_analysis",
			fill: "(SELECT parsed_data FROM jobs WHERE jobs.id = generated_resumes.job_id)",
		},
	}
}

// Migrate brings the database up to the current schema. It is safe to run
// on every process start: fresh databases get the base schema, old ones
// are walked forward step by step, and already-migrated ones are no-ops.
func Migrate(ctx context.Context, database *sql.DB) error {
	if err := createBaseSchema(ctx, database); err != nil {
		return err
	}
	for _, s := range steps() {
		if err := runStep(ctx, database, s); err != nil {
			return fmt.Errorf("migration %q: %w", s.name, err)
		}
	}
	return createBaseIndexes(ctx, database)
}

// runStep applies one step inside its own transaction so a crash leaves
// the database either before or after the step, never inside it.
func runStep(ctx context.Context, database *sql.DB, s step) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	switch s.kind {
	case kindAddColumn:
		err = applyAddColumn(ctx, tx, s)
	case kindBackfill:
		err = applyBackfill(ctx, tx, s)
	case kindRenameColumn:
		err = applyRenameColumn(ctx, tx, s)
	case kindRenameTable:
		err = applyRenameTable(ctx, tx, s)
	case kindRebuildTable:
		err = applyRebuildTable(ctx, tx, s)
	default:
		err = fmt.Errorf("unknown step kind %d", s.kind)
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}

// applyAddColumn adds a column, treating "already exists" as success.
func applyAddColumn(ctx context.Context, tx *sql.Tx, s step) error {
	cols, err := tableColumns(ctx, tx, s.table)
	if err != nil {
		return err
	}
	if cols == nil {
		return fmt.Errorf("%w: table %s missing", ErrInconsistentSchema, s.table)
	}
	if cols[s.column] {
		return nil
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", s.table, s.decl)); err != nil {
		if strings.Contains(err.Error(), "duplicate column name") {
			return nil
		}
		return err
	}
	return nil
}

// applyBackfill populates a column only where it is currently unset, so a
// re-run touches nothing.
func applyBackfill(ctx context.Context, tx *sql.Tx, s step) error {
	query := fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s IS NULL", s.table, s.column, s.fill, s.column)
	_, err := tx.ExecContext(ctx, query)
	return err
}

// applyRenameColumn handles the three possible live states: only the old
// column (rename it), both (merge and drop the old one), only the new one
// (done). Anything else means the table never matched either generation.
func applyRenameColumn(ctx context.Context, tx *sql.Tx, s step) error {
	cols, err := tableColumns(ctx, tx, s.table)
	if err != nil {
		return err
	}
	if cols == nil {
		return fmt.Errorf("%w: table %s missing", ErrInconsistentSchema, s.table)
	}
	hasOld, hasNew := cols[s.from], cols[s.column]
	switch {
	case !hasOld && hasNew:
		return nil
	case hasOld && !hasNew:
		_, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s", s.table, s.from, s.column))
		return err
	case hasOld && hasNew:
		// A partially applied earlier run copied the column but did not
		// drop the source. Finish the copy, then drop.
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s IS NULL", s.table, s.column, s.from, s.column)); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", s.table, s.from))
		return err
	default:
		return fmt.Errorf("%w: table %s has neither column %s nor %s", ErrInconsistentSchema, s.table, s.from, s.column)
	}
}

// applyRenameTable handles the three possible live states for a rename:
// only the old table, only the new table, or both after a crash. When
// both exist they are reconciled by row count: whichever holds data wins
// and the empty one is dropped. Two non-empty tables cannot be merged
// mechanically and abort startup.
func applyRenameTable(ctx context.Context, tx *sql.Tx, s step) error {
	oldExists, err := tableExists(ctx, tx, s.from)
	if err != nil {
		return err
	}
	newExists, err := tableExists(ctx, tx, s.table)
	if err != nil {
		return err
	}

	switch {
	case !oldExists && newExists:
		return nil
	case oldExists && !newExists:
		_, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s RENAME TO %s", s.from, s.table))
		return err
	case !oldExists && !newExists:
		return fmt.Errorf("%w: neither %s nor %s exists", ErrInconsistentSchema, s.from, s.table)
	}

	oldCount, err := rowCount(ctx, tx, s.from)
	if err != nil {
		return err
	}
	newCount, err := rowCount(ctx, tx, s.table)
	if err != nil {
		return err
	}
	switch {
	case oldCount > 0 && newCount > 0:
		return fmt.Errorf("%w: both %s (%d rows) and %s (%d rows) hold data", ErrInconsistentSchema, s.from, oldCount, s.table, newCount)
	case oldCount > 0:
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s", s.table)); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s RENAME TO %s", s.from, s.table))
		return err
	default:
		// Old table is empty; the new one wins whether it has rows or not.
		_, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s", s.from))
		return err
	}
}

// applyRebuildTable swaps a table for one with the target constraints.
// SQLite cannot alter constraints in place, so the target shape is built
// under a temporary name, rows are copied only while the destination is
// empty (guarding against a double copy on re-run), the old table is
// dropped and the new one renamed into place. Every source column is
// resolved against the live schema at copy time.
func applyRebuildTable(ctx context.Context, tx *sql.Tx, s step) error {
	spec := s.rebuild

	liveSQL, tableFound, err := tableSQL(ctx, tx, s.table)
	if err != nil {
		return err
	}
	tempExists, err := tableExists(ctx, tx, spec.tempName)
	if err != nil {
		return err
	}

	if tableFound && rebuildApplied(liveSQL, spec) {
		if tempExists {
			// The temp table may be leftover scaffolding from a completed
			// run, or it may hold the only copy of the rows after a crash
			// between the drop and the rename (the base schema recreates
			// the final table empty on the next start). Reconcile by row
			// count the same way table renames do.
			tempCount, err := rowCount(ctx, tx, spec.tempName)
			if err != nil {
				return err
			}
			liveCount, err := rowCount(ctx, tx, s.table)
			if err != nil {
				return err
			}
			switch {
			case tempCount > 0 && liveCount > 0:
				return fmt.Errorf("%w: both %s (%d rows) and %s (%d rows) hold data", ErrInconsistentSchema, s.table, liveCount, spec.tempName, tempCount)
			case tempCount > 0:
				if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s", s.table)); err != nil {
					return err
				}
				if _, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s RENAME TO %s", spec.tempName, s.table)); err != nil {
					return err
				}
			default:
				if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s", spec.tempName)); err != nil {
					return err
				}
			}
		}
		return recreateIndexes(ctx, tx, spec)
	}

	if !tableFound {
		if !tempExists {
			return fmt.Errorf("%w: neither %s nor %s exists", ErrInconsistentSchema, s.table, spec.tempName)
		}
		// A crashed run dropped the old table already; finish the swap.
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s RENAME TO %s", spec.tempName, s.table)); err != nil {
			return err
		}
		return recreateIndexes(ctx, tx, spec)
	}

	if _, err := tx.ExecContext(ctx, spec.createSQL); err != nil {
		return err
	}

	tempCount, err := rowCount(ctx, tx, spec.tempName)
	if err != nil {
		return err
	}
	if tempCount == 0 {
		if err := copyRows(ctx, tx, s.table, spec); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s", s.table)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s RENAME TO %s", spec.tempName, s.table)); err != nil {
		return err
	}
	return recreateIndexes(ctx, tx, spec)
}

func rebuildApplied(liveSQL string, spec *rebuildSpec) bool {
	upper := strings.ToUpper(liveSQL)
	for _, want := range spec.wantSQL {
		if !strings.Contains(upper, strings.ToUpper(want)) {
			return false
		}
	}
	for legacy := range spec.renameMap {
		if strings.Contains(liveSQL, legacy) {
			return false
		}
	}
	return true
}

// copyRows inserts the old table's rows into the rebuilt one, mapping
// renamed columns and copying only columns both shapes share.
func copyRows(ctx context.Context, tx *sql.Tx, table string, spec *rebuildSpec) error {
	srcCols, err := tableColumns(ctx, tx, table)
	if err != nil {
		return err
	}
	dstCols, err := tableColumns(ctx, tx, spec.tempName)
	if err != nil {
		return err
	}

	var src, dst []string
	for col := range srcCols {
		target := col
		if renamed, ok := spec.renameMap[col]; ok {
			target = renamed
		}
		if dstCols[target] {
			src = append(src, col)
			dst = append(dst, target)
		}
	}
	if len(src) == 0 {
		return fmt.Errorf("%w: no copyable columns between %s and %s", ErrInconsistentSchema, table, spec.tempName)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM %s",
		spec.tempName, strings.Join(dst, ", "), strings.Join(src, ", "), table,
	)
	res, err := tx.ExecContext(ctx, query)
	if err != nil {
		return err
	}
	if copied, err := res.RowsAffected(); err == nil && copied > 0 {
		telemetry.Info("migration.copied_rows", map[string]any{"table": table, "rows": copied})
	}
	return nil
}

func recreateIndexes(ctx context.Context, tx *sql.Tx, spec *rebuildSpec) error {
	for _, idx := range spec.indexes {
		if _, err := tx.ExecContext(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}
