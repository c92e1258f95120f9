package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// querier lets introspection run against either *sql.DB or *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func tableExists(ctx context.Context, q querier, name string) (bool, error) {
	var found string
	err := q.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", name,
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("inspect table %s: %w", name, err)
	}
	return true, nil
}

// tableSQL returns the live CREATE TABLE statement for a table, which is
// the only place SQLite exposes constraint text.
func tableSQL(ctx context.Context, q querier, name string) (string, bool, error) {
	var ddl sql.NullString
	err := q.QueryRowContext(ctx,
		"SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", name,
	).Scan(&ddl)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("inspect table sql %s: %w", name, err)
	}
	return ddl.String, true, nil
}

// tableColumns returns the live column set of a table, or nil when the
// table does not exist. PRAGMA arguments cannot be bound; table names
// here only ever come from the migration step list.
func tableColumns(ctx context.Context, q querier, table string) (map[string]bool, error) {
	exists, err := tableExists(ctx, q, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	rows, err := q.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("table_info %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return nil, fmt.Errorf("table_info %s: %w", table, err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

func rowCount(ctx context.Context, q querier, table string) (int64, error) {
	var count int64
	err := q.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return count, nil
}
