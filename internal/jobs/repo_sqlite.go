package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQLiteRepo implements Repo on the shared sqlite pool.
type SQLiteRepo struct {
	DB *sql.DB
}

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{DB: db}
}

const jobColumns = `
    j.id, j.title, j.company_name, j.original_text,
    j.created_at, j.updated_at,
    COUNT(gr.id) AS resume_count`

func (r *SQLiteRepo) List(ctx context.Context) ([]ListItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT`+jobColumns+`
FROM jobs j
LEFT JOIN generated_resumes gr ON j.id = gr.job_id
WHERE j.is_saved = 1
GROUP BY j.id
ORDER BY j.updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]ListItem, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, ListItem{
			ID:          job.ID,
			Title:       job.Title,
			CompanyName: job.CompanyName,
			TextPreview: preview(job.OriginalText, 200),
			ResumeCount: job.ResumeCount,
			CreatedAt:   job.CreatedAt,
			UpdatedAt:   job.UpdatedAt,
		})
	}
	return items, rows.Err()
}

func (r *SQLiteRepo) Get(ctx context.Context, id int64) (*Job, error) {
	return scanJob(r.DB.QueryRowContext(ctx, `
SELECT`+jobColumns+`
FROM jobs j
LEFT JOIN generated_resumes gr ON j.id = gr.job_id
WHERE j.id = ?
GROUP BY j.id`, id))
}

func (r *SQLiteRepo) Create(ctx context.Context, originalText string) (*Job, error) {
	res, err := r.DB.ExecContext(ctx, `
INSERT INTO jobs (original_text, title, updated_at, is_saved)
VALUES (?, ?, CURRENT_TIMESTAMP, 1)`, originalText, DefaultTitle)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Update applies a partial update. When the text actually changes, the
// PREVIOUS text is captured as a new version in the same transaction, so
// a crash can never leave the job updated but unversioned.
func (r *SQLiteRepo) Update(ctx context.Context, id int64, in UpdateInput) (*Job, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var currentText string
	err = tx.QueryRowContext(ctx, `SELECT original_text FROM jobs WHERE id = ?`, id).Scan(&currentText)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if in.OriginalText != nil && *in.OriginalText != currentText {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO job_versions (job_id, original_text, version_number)
VALUES (?, ?, (SELECT COALESCE(MAX(version_number), 0) + 1 FROM job_versions WHERE job_id = ?))`,
			id, currentText, id); err != nil {
			return nil, err
		}
	}

	sets := make([]string, 0, 3)
	args := make([]any, 0, 3)
	if in.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *in.Title)
	}
	if in.OriginalText != nil {
		sets = append(sets, "original_text = ?")
		args = append(args, *in.OriginalText)
	}
	if len(sets) > 0 {
		sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
		args = append(args, id)
		query := fmt.Sprintf(`UPDATE jobs SET %s WHERE id = ?`, strings.Join(sets, ", "))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *SQLiteRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
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

func (r *SQLiteRepo) Versions(ctx context.Context, jobID int64) ([]Version, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT id, version_number, original_text, created_at
FROM job_versions
WHERE job_id = ?
ORDER BY version_number DESC`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	versions := make([]Version, 0)
	for rows.Next() {
		var v Version
		if err := rows.Scan(&v.ID, &v.VersionNumber, &v.OriginalText, &v.CreatedAt); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (r *SQLiteRepo) GetVersion(ctx context.Context, jobID, versionID int64) (*Version, error) {
	var v Version
	err := r.DB.QueryRowContext(ctx, `
SELECT id, version_number, original_text, created_at
FROM job_versions
WHERE id = ? AND job_id = ?`, versionID, jobID).Scan(&v.ID, &v.VersionNumber, &v.OriginalText, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *SQLiteRepo) Resumes(ctx context.Context, jobID int64) ([]ResumeSummary, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT id, job_title, company_name, match_score, created_at
FROM generated_resumes
WHERE job_id = ?
ORDER BY created_at DESC`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resumes := make([]ResumeSummary, 0)
	for rows.Next() {
		var s ResumeSummary
		var title, company sql.NullString
		var score sql.NullFloat64
		if err := rows.Scan(&s.ID, &title, &company, &score, &s.CreatedAt); err != nil {
			return nil, err
		}
		if title.Valid {
			s.JobTitle = &title.String
		}
		if company.Valid {
			s.CompanyName = &company.String
		}
		if score.Valid {
			s.MatchScore = &score.Float64
		}
		resumes = append(resumes, s)
	}
	return resumes, rows.Err()
}

// SaveAnalysis is the single write path for job analyses. Without a job
// id it creates a saved job carrying text, title, company and analysis.
// With one it refreshes the analysis, and claims the title and company
// only while the stored title is still the default placeholder, so a
// user-chosen title is never overwritten.
func (r *SQLiteRepo) SaveAnalysis(ctx context.Context, analysisJSON []byte, title, companyName string, originalText *string, jobID *int64) (int64, error) {
	var analysis any
	if len(analysisJSON) > 0 {
		analysis = string(analysisJSON)
	}

	if jobID == nil {
		res, err := r.DB.ExecContext(ctx, `
INSERT INTO jobs (original_text, parsed_data, title, company_name, updated_at, is_saved)
VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP, 1)`, originalText, analysis, title, companyName)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}

	var existingTitle string
	err := r.DB.QueryRowContext(ctx, `SELECT title FROM jobs WHERE id = ?`, *jobID).Scan(&existingTitle)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	if existingTitle == DefaultTitle {
		_, err = r.DB.ExecContext(ctx, `
UPDATE jobs
SET title = ?, company_name = ?, parsed_data = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`, title, companyName, analysis, *jobID)
	} else {
		_, err = r.DB.ExecContext(ctx, `
UPDATE jobs SET parsed_data = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, analysis, *jobID)
	}
	if err != nil {
		return 0, err
	}
	return *jobID, nil
}

func scanJob(row interface{ Scan(dest ...any) error }) (*Job, error) {
	var job Job
	var company sql.NullString
	err := row.Scan(&job.ID, &job.Title, &company, &job.OriginalText, &job.CreatedAt, &job.UpdatedAt, &job.ResumeCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if company.Valid {
		job.CompanyName = &company.String
	}
	return &job, nil
}

func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

var _ Repo = (*SQLiteRepo)(nil)
