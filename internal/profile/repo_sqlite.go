package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// The app serves a single candidate; every row belongs to user 1.
const userID = 1

// SQLiteRepo implements Repo on the shared sqlite pool.
type SQLiteRepo struct {
	DB *sql.DB
}

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{DB: db}
}

func (r *SQLiteRepo) GetPersonalInfo(ctx context.Context) (*PersonalInfo, error) {
	return scanPersonalInfo(r.DB.QueryRowContext(ctx, `
SELECT id, full_name, email, phone, location, linkedin_url, summary, photo, created_at, updated_at
FROM users WHERE id = ?`, userID))
}

func (r *SQLiteRepo) UpsertPersonalInfo(ctx context.Context, in PersonalInfoInput) (*PersonalInfo, error) {
	_, err := r.DB.ExecContext(ctx, `
INSERT INTO users (id, full_name, email, phone, location, linkedin_url, summary)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    full_name = excluded.full_name,
    email = excluded.email,
    phone = excluded.phone,
    location = excluded.location,
    linkedin_url = excluded.linkedin_url,
    summary = excluded.summary,
    updated_at = CURRENT_TIMESTAMP`,
		userID, in.FullName, in.Email, in.Phone, in.Location, in.LinkedinURL, in.Summary)
	if err != nil {
		return nil, err
	}
	return r.GetPersonalInfo(ctx)
}

func (r *SQLiteRepo) ListWorkExperiences(ctx context.Context) ([]WorkExperience, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT id, company, title, start_date, end_date, is_current, description, location, created_at, updated_at
FROM work_experiences
ORDER BY is_current DESC, start_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exps := make([]WorkExperience, 0)
	for rows.Next() {
		exp, err := scanWorkExperience(rows)
		if err != nil {
			return nil, err
		}
		exps = append(exps, *exp)
	}
	return exps, rows.Err()
}

func (r *SQLiteRepo) GetWorkExperience(ctx context.Context, id int64) (*WorkExperience, error) {
	return scanWorkExperience(r.DB.QueryRowContext(ctx, `
SELECT id, company, title, start_date, end_date, is_current, description, location, created_at, updated_at
FROM work_experiences WHERE id = ?`, id))
}

func (r *SQLiteRepo) CreateWorkExperience(ctx context.Context, in WorkExperienceInput) (*WorkExperience, error) {
	res, err := r.DB.ExecContext(ctx, `
INSERT INTO work_experiences (company, title, start_date, end_date, is_current, description, location, user_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Company, in.Title, in.StartDate, in.EndDate, boolToInt(in.IsCurrent), in.Description, in.Location, userID)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetWorkExperience(ctx, id)
}

func (r *SQLiteRepo) UpdateWorkExperience(ctx context.Context, id int64, in WorkExperienceInput) (*WorkExperience, error) {
	res, err := r.DB.ExecContext(ctx, `
UPDATE work_experiences SET
    company = ?, title = ?, start_date = ?, end_date = ?, is_current = ?,
    description = ?, location = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`,
		in.Company, in.Title, in.StartDate, in.EndDate, boolToInt(in.IsCurrent), in.Description, in.Location, id)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return r.GetWorkExperience(ctx, id)
}

func (r *SQLiteRepo) DeleteWorkExperience(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.DB, "work_experiences", id)
}

func (r *SQLiteRepo) ListEducation(ctx context.Context) ([]Education, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT id, institution, degree, field_of_study, graduation_year, gpa, notes, created_at, updated_at
FROM education
ORDER BY graduation_year DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Education, 0)
	for rows.Next() {
		edu, err := scanEducation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *edu)
	}
	return items, rows.Err()
}

func (r *SQLiteRepo) GetEducation(ctx context.Context, id int64) (*Education, error) {
	return scanEducation(r.DB.QueryRowContext(ctx, `
SELECT id, institution, degree, field_of_study, graduation_year, gpa, notes, created_at, updated_at
FROM education WHERE id = ?`, id))
}

func (r *SQLiteRepo) CreateEducation(ctx context.Context, in EducationInput) (*Education, error) {
	res, err := r.DB.ExecContext(ctx, `
INSERT INTO education (institution, degree, field_of_study, graduation_year, gpa, notes, user_id)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.Institution, in.Degree, in.FieldOfStudy, in.GraduationYear, in.GPA, in.Notes, userID)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetEducation(ctx, id)
}

func (r *SQLiteRepo) UpdateEducation(ctx context.Context, id int64, in EducationInput) (*Education, error) {
	res, err := r.DB.ExecContext(ctx, `
UPDATE education SET
    institution = ?, degree = ?, field_of_study = ?, graduation_year = ?,
    gpa = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`,
		in.Institution, in.Degree, in.FieldOfStudy, in.GraduationYear, in.GPA, in.Notes, id)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return r.GetEducation(ctx, id)
}

func (r *SQLiteRepo) DeleteEducation(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.DB, "education", id)
}

func (r *SQLiteRepo) ListSkills(ctx context.Context) ([]Skill, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name FROM skills ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	skills := make([]Skill, 0)
	for rows.Next() {
		var s Skill
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}

// AddSkills inserts the given names, reusing rows that already exist so
// repeated submissions stay duplicate-free.
func (r *SQLiteRepo) AddSkills(ctx context.Context, names []string) ([]Skill, error) {
	skills := make([]Skill, 0, len(names))
	for _, name := range names {
		var s Skill
		err := r.DB.QueryRowContext(ctx, `SELECT id, name FROM skills WHERE name = ?`, name).Scan(&s.ID, &s.Name)
		if err == nil {
			skills = append(skills, s)
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		res, err := r.DB.ExecContext(ctx, `INSERT INTO skills (name, user_id) VALUES (?, ?)`, name, userID)
		if err != nil {
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		skills = append(skills, Skill{ID: id, Name: name})
	}
	return skills, nil
}

func (r *SQLiteRepo) DeleteSkill(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.DB, "skills", id)
}

func (r *SQLiteRepo) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT id, name, description, technologies, url, start_date, end_date, created_at, updated_at
FROM projects
ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (r *SQLiteRepo) GetProject(ctx context.Context, id int64) (*Project, error) {
	return scanProject(r.DB.QueryRowContext(ctx, `
SELECT id, name, description, technologies, url, start_date, end_date, created_at, updated_at
FROM projects WHERE id = ?`, id))
}

func (r *SQLiteRepo) CreateProject(ctx context.Context, in ProjectInput) (*Project, error) {
	res, err := r.DB.ExecContext(ctx, `
INSERT INTO projects (name, description, technologies, url, start_date, end_date, user_id)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.Name, in.Description, in.Technologies, in.URL, in.StartDate, in.EndDate, userID)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetProject(ctx, id)
}

func (r *SQLiteRepo) UpdateProject(ctx context.Context, id int64, in ProjectInput) (*Project, error) {
	res, err := r.DB.ExecContext(ctx, `
UPDATE projects SET
    name = ?, description = ?, technologies = ?, url = ?,
    start_date = ?, end_date = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`,
		in.Name, in.Description, in.Technologies, in.URL, in.StartDate, in.EndDate, id)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return r.GetProject(ctx, id)
}

func (r *SQLiteRepo) DeleteProject(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.DB, "projects", id)
}

func (r *SQLiteRepo) ListLanguages(ctx context.Context) ([]Language, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT id, name, level, display_order, created_at, updated_at
FROM languages
ORDER BY display_order ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	langs := make([]Language, 0)
	for rows.Next() {
		l, err := scanLanguage(rows)
		if err != nil {
			return nil, err
		}
		langs = append(langs, *l)
	}
	return langs, rows.Err()
}

func (r *SQLiteRepo) GetLanguage(ctx context.Context, id int64) (*Language, error) {
	return scanLanguage(r.DB.QueryRowContext(ctx, `
SELECT id, name, level, display_order, created_at, updated_at
FROM languages WHERE id = ?`, id))
}

func (r *SQLiteRepo) CreateLanguage(ctx context.Context, in LanguageInput) (*Language, error) {
	res, err := r.DB.ExecContext(ctx, `
INSERT INTO languages (name, level, display_order, user_id)
VALUES (?, ?, (SELECT COALESCE(MAX(display_order), -1) + 1 FROM languages), ?)`,
		in.Name, in.Level, userID)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetLanguage(ctx, id)
}

func (r *SQLiteRepo) UpdateLanguage(ctx context.Context, id int64, in LanguageInput) (*Language, error) {
	res, err := r.DB.ExecContext(ctx, `
UPDATE languages SET name = ?, level = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		in.Name, in.Level, id)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return r.GetLanguage(ctx, id)
}

func (r *SQLiteRepo) ReorderLanguages(ctx context.Context, items []ReorderItem) ([]Language, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	for _, item := range items {
		if _, err := tx.ExecContext(ctx, `
UPDATE languages SET display_order = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			item.DisplayOrder, item.ID); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.ListLanguages(ctx)
}

func (r *SQLiteRepo) DeleteLanguage(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.DB, "languages", id)
}

func (r *SQLiteRepo) GetPhoto(ctx context.Context) (*string, error) {
	var photo sql.NullString
	err := r.DB.QueryRowContext(ctx, `SELECT photo FROM users WHERE id = ?`, userID).Scan(&photo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !photo.Valid {
		return nil, nil
	}
	return &photo.String, nil
}

func (r *SQLiteRepo) SetPhoto(ctx context.Context, photo *string) error {
	res, err := r.DB.ExecContext(ctx, `
UPDATE users SET photo = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, photo, userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ReplaceAll swaps the whole profile in one transaction. The stored photo
// survives the replacement.
func (r *SQLiteRepo) ReplaceAll(ctx context.Context, in Import) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"work_experiences", "education", "skills", "projects", "languages"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE user_id = ?`, table), userID); err != nil {
			return err
		}
	}

	pi := in.PersonalInfo
	if _, err := tx.ExecContext(ctx, `
INSERT INTO users (id, full_name, email, phone, location, linkedin_url, summary)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    full_name = excluded.full_name,
    email = excluded.email,
    phone = excluded.phone,
    location = excluded.location,
    linkedin_url = excluded.linkedin_url,
    summary = excluded.summary,
    updated_at = CURRENT_TIMESTAMP`,
		userID, pi.FullName, pi.Email, pi.Phone, pi.Location, pi.LinkedinURL, pi.Summary); err != nil {
		return err
	}

	for _, exp := range in.WorkExperiences {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO work_experiences (company, title, start_date, end_date, is_current, description, location, user_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			exp.Company, exp.Title, exp.StartDate, exp.EndDate, boolToInt(exp.IsCurrent), exp.Description, exp.Location, userID); err != nil {
			return err
		}
	}
	for _, edu := range in.Education {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO education (institution, degree, field_of_study, graduation_year, gpa, notes, user_id)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
			edu.Institution, edu.Degree, edu.FieldOfStudy, edu.GraduationYear, edu.GPA, edu.Notes, userID); err != nil {
			return err
		}
	}
	for _, skill := range in.Skills {
		name := strings.TrimSpace(skill.Name)
		if name == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO skills (name, user_id) VALUES (?, ?)`, name, userID); err != nil {
			return err
		}
	}
	for _, proj := range in.Projects {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO projects (name, description, technologies, url, start_date, end_date, user_id)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
			proj.Name, proj.Description, proj.Technologies, proj.URL, proj.StartDate, proj.EndDate, userID); err != nil {
			return err
		}
	}
	for idx, lang := range in.Languages {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO languages (name, level, display_order, user_id) VALUES (?, ?, ?, ?)`,
			lang.Name, lang.Level, idx, userID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepo) Complete(ctx context.Context) (*Complete, error) {
	complete := &Complete{}

	info, err := r.GetPersonalInfo(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	complete.PersonalInfo = info

	if complete.WorkExperiences, err = r.ListWorkExperiences(ctx); err != nil {
		return nil, err
	}
	if complete.Education, err = r.ListEducation(ctx); err != nil {
		return nil, err
	}
	if complete.Skills, err = r.ListSkills(ctx); err != nil {
		return nil, err
	}
	if complete.Projects, err = r.ListProjects(ctx); err != nil {
		return nil, err
	}
	if complete.Languages, err = r.ListLanguages(ctx); err != nil {
		return nil, err
	}
	return complete, nil
}

func (r *SQLiteRepo) HasWorkExperience(ctx context.Context) (bool, error) {
	var count int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM work_experiences`).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPersonalInfo(row rowScanner) (*PersonalInfo, error) {
	var info PersonalInfo
	var phone, location, linkedin, summary, photo, createdAt, updatedAt sql.NullString
	err := row.Scan(&info.ID, &info.FullName, &info.Email, &phone, &location, &linkedin, &summary, &photo, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	info.Phone = nullablePtr(phone)
	info.Location = nullablePtr(location)
	info.LinkedinURL = nullablePtr(linkedin)
	info.Summary = nullablePtr(summary)
	info.Photo = nullablePtr(photo)
	info.CreatedAt = createdAt.String
	info.UpdatedAt = updatedAt.String
	return &info, nil
}

func scanWorkExperience(row rowScanner) (*WorkExperience, error) {
	var exp WorkExperience
	var endDate, description, location, createdAt, updatedAt sql.NullString
	var isCurrent int
	err := row.Scan(&exp.ID, &exp.Company, &exp.Title, &exp.StartDate, &endDate, &isCurrent, &description, &location, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	exp.EndDate = nullablePtr(endDate)
	exp.IsCurrent = isCurrent != 0
	exp.Description = nullablePtr(description)
	exp.Location = nullablePtr(location)
	exp.CreatedAt = createdAt.String
	exp.UpdatedAt = updatedAt.String
	return &exp, nil
}

func scanEducation(row rowScanner) (*Education, error) {
	var edu Education
	var fieldOfStudy, notes, createdAt, updatedAt sql.NullString
	var year sql.NullInt64
	var gpa sql.NullFloat64
	err := row.Scan(&edu.ID, &edu.Institution, &edu.Degree, &fieldOfStudy, &year, &gpa, &notes, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	edu.FieldOfStudy = nullablePtr(fieldOfStudy)
	if year.Valid {
		y := int(year.Int64)
		edu.GraduationYear = &y
	}
	if gpa.Valid {
		edu.GPA = &gpa.Float64
	}
	edu.Notes = nullablePtr(notes)
	edu.CreatedAt = createdAt.String
	edu.UpdatedAt = updatedAt.String
	return &edu, nil
}

func scanProject(row rowScanner) (*Project, error) {
	var p Project
	var description, technologies, url, startDate, endDate, createdAt, updatedAt sql.NullString
	err := row.Scan(&p.ID, &p.Name, &description, &technologies, &url, &startDate, &endDate, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Description = nullablePtr(description)
	p.Technologies = nullablePtr(technologies)
	p.URL = nullablePtr(url)
	p.StartDate = nullablePtr(startDate)
	p.EndDate = nullablePtr(endDate)
	p.CreatedAt = createdAt.String
	p.UpdatedAt = updatedAt.String
	return &p, nil
}

func scanLanguage(row rowScanner) (*Language, error) {
	var l Language
	var createdAt, updatedAt sql.NullString
	err := row.Scan(&l.ID, &l.Name, &l.Level, &l.DisplayOrder, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	l.CreatedAt = createdAt.String
	l.UpdatedAt = updatedAt.String
	return &l, nil
}

func nullablePtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, db *sql.DB, table string, id int64) error {
	res, err := db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

var _ Repo = (*SQLiteRepo)(nil)
