package resumes

import (
	"context"
	"database/sql"
	"errors"
)

// SQLiteRepo implements Repo on the shared sqlite pool.
type SQLiteRepo struct {
	DB *sql.DB
}

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{DB: db}
}

func (r *SQLiteRepo) Insert(ctx context.Context, row Row) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
INSERT INTO generated_resumes
    (job_id, job_title, company_name, match_score, resume_content, job_analysis, language)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		row.JobID, row.JobTitle, row.CompanyName, row.MatchScore,
		string(row.ContentJSON), nullableJSON(row.AnalysisJSON), row.Language)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) Get(ctx context.Context, id int64) (*Row, error) {
	var row Row
	var title, company, content, analysis sql.NullString
	var score sql.NullFloat64
	err := r.DB.QueryRowContext(ctx, `
SELECT id, job_id, job_title, company_name, match_score, resume_content, job_analysis, language, created_at
FROM generated_resumes
WHERE id = ?`, id).Scan(&row.ID, &row.JobID, &title, &company, &score, &content, &analysis, &row.Language, &row.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if title.Valid {
		row.JobTitle = &title.String
	}
	if company.Valid {
		row.CompanyName = &company.String
	}
	if score.Valid {
		row.MatchScore = &score.Float64
	}
	if content.Valid {
		row.ContentJSON = []byte(content.String)
	}
	if analysis.Valid {
		row.AnalysisJSON = []byte(analysis.String)
	}
	return &row, nil
}

func (r *SQLiteRepo) History(ctx context.Context) ([]HistoryItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT id, job_title, company_name, match_score, created_at
FROM generated_resumes
ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]HistoryItem, 0)
	for rows.Next() {
		var item HistoryItem
		var title, company sql.NullString
		var score sql.NullFloat64
		if err := rows.Scan(&item.ID, &title, &company, &score, &item.CreatedAt); err != nil {
			return nil, err
		}
		if title.Valid {
			item.JobTitle = &title.String
		}
		if company.Valid {
			item.CompanyName = &company.String
		}
		if score.Valid {
			item.MatchScore = &score.Float64
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *SQLiteRepo) UpdateContent(ctx context.Context, id int64, contentJSON []byte) error {
	res, err := r.DB.ExecContext(ctx, `
UPDATE generated_resumes
SET resume_content = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`, string(contentJSON), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes only the resume. The owning job stays; it may have
// other resumes or be kept on its own.
func (r *SQLiteRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM generated_resumes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

var _ Repo = (*SQLiteRepo)(nil)
