package jobs

import (
	"context"
	"errors"
	"strings"
	"testing"

	"mycv-backend/internal/shared/storage/db"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(ctx, ":memory:", db.DefaultOptions())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := db.Migrate(ctx, database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(NewSQLiteRepo(database))
}

func jobText(marker string) string {
	return marker + " " + strings.Repeat("Looking for an engineer to build data pipelines. ", 5)
}

func TestCreateJob(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	job, err := svc.Create(ctx, "  "+jobText("backend")+"  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if job.Title != DefaultTitle {
		t.Fatalf("title = %q, want %q", job.Title, DefaultTitle)
	}
	if strings.HasPrefix(job.OriginalText, " ") {
		t.Fatal("text should be stored trimmed")
	}
	if job.ResumeCount != 0 {
		t.Fatalf("resume_count = %d", job.ResumeCount)
	}
}

func TestCreateJobRejectsShortText(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), "too short")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}

	// 99 significant characters padded with whitespace still fails.
	padded := strings.Repeat("x", 99) + "   "
	if _, err := svc.Create(context.Background(), padded); !errors.Is(err, ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestUpdateTitleOnlyCreatesNoVersion(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	job, err := svc.Create(ctx, jobText("v0"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	title := "Backend Engineer"
	updated, err := svc.Update(ctx, job.ID, UpdateInput{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != title {
		t.Fatalf("title = %q", updated.Title)
	}

	versions, err := svc.Versions(ctx, job.ID)
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	if len(versions) != 0 {
		t.Fatalf("title-only update created %d versions", len(versions))
	}
}

func TestUpdateTextCapturesPreviousVersion(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	job, err := svc.Create(ctx, jobText("v0"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	originalText := job.OriginalText

	textV1 := jobText("v1")
	if _, err := svc.Update(ctx, job.ID, UpdateInput{OriginalText: &textV1}); err != nil {
		t.Fatalf("update: %v", err)
	}

	// Re-submitting identical text must not version again.
	trimmedV1 := strings.TrimSpace(textV1)
	if _, err := svc.Update(ctx, job.ID, UpdateInput{OriginalText: &trimmedV1}); err != nil {
		t.Fatalf("idempotent update: %v", err)
	}

	textV2 := jobText("v2")
	if _, err := svc.Update(ctx, job.ID, UpdateInput{OriginalText: &textV2}); err != nil {
		t.Fatalf("second update: %v", err)
	}

	versions, err := svc.Versions(ctx, job.ID)
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("got %d versions, want 2", len(versions))
	}
	// Newest first.
	if versions[0].VersionNumber != 2 || versions[1].VersionNumber != 1 {
		t.Fatalf("version order = %d, %d", versions[0].VersionNumber, versions[1].VersionNumber)
	}
	if versions[1].OriginalText != originalText {
		t.Fatal("version 1 should hold the pre-edit text")
	}
	if !strings.HasPrefix(versions[0].OriginalText, "v1") {
		t.Fatalf("version 2 text = %q...", versions[0].OriginalText[:8])
	}
}

func TestRestoreCapturesPreRestoreText(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	job, err := svc.Create(ctx, jobText("v0"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	textV0 := job.OriginalText

	textV1 := jobText("v1")
	if _, err := svc.Update(ctx, job.ID, UpdateInput{OriginalText: &textV1}); err != nil {
		t.Fatalf("update: %v", err)
	}

	versions, _ := svc.Versions(ctx, job.ID)
	if len(versions) != 1 {
		t.Fatalf("got %d versions", len(versions))
	}

	restored, err := svc.Restore(ctx, job.ID, versions[0].ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.OriginalText != textV0 {
		t.Fatal("restore should put the snapshot text back on the job")
	}

	versions, _ = svc.Versions(ctx, job.ID)
	if len(versions) != 2 {
		t.Fatalf("restore should create a version, got %d", len(versions))
	}
	if versions[0].OriginalText != strings.TrimSpace(textV1) {
		t.Fatal("newest version should hold the pre-restore text")
	}

	if _, err := svc.Restore(ctx, job.ID, 99999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("restore of unknown version = %v, want ErrNotFound", err)
	}
}

func TestSaveAnalysis(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	analysis := []byte(`{"required_skills":[{"name":"Go","matched":true}]}`)

	// No job id: creates a saved job.
	text := jobText("new")
	id, err := svc.SaveAnalysis(ctx, analysis, "Platform Engineer", "Initech", &text, nil)
	if err != nil {
		t.Fatalf("save (create): %v", err)
	}
	job, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if job.Title != "Platform Engineer" || job.CompanyName == nil || *job.CompanyName != "Initech" {
		t.Fatalf("job = %+v", job)
	}

	// Existing job with the default title: analysis claims title and company.
	untitled, err := svc.Create(ctx, jobText("untitled"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.SaveAnalysis(ctx, analysis, "Data Engineer", "Globex", nil, &untitled.ID); err != nil {
		t.Fatalf("save (claim): %v", err)
	}
	claimed, _ := svc.Get(ctx, untitled.ID)
	if claimed.Title != "Data Engineer" {
		t.Fatalf("title = %q, want claimed title", claimed.Title)
	}

	// A user-chosen title survives re-analysis.
	custom := "My Dream Job"
	if _, err := svc.Update(ctx, claimed.ID, UpdateInput{Title: &custom}); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, err := svc.SaveAnalysis(ctx, analysis, "Totally Different", "Elsewhere", nil, &claimed.ID); err != nil {
		t.Fatalf("save (re-analyze): %v", err)
	}
	kept, _ := svc.Get(ctx, claimed.ID)
	if kept.Title != custom {
		t.Fatalf("title = %q, want %q", kept.Title, custom)
	}

	// Unknown job id fails loudly.
	missing := int64(99999)
	if _, err := svc.SaveAnalysis(ctx, analysis, "X", "Y", nil, &missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("save on missing job = %v, want ErrNotFound", err)
	}
}

func TestListShowsPreviewAndResumeCount(t *testing.T) {
	svc := newTestService(t)
	repo := svc.Repo.(*SQLiteRepo)
	ctx := context.Background()

	longer := strings.Repeat("An exceedingly detailed description of the role and the team and the stack. ", 5)
	job, err := svc.Create(ctx, longer)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := repo.DB.ExecContext(ctx, `
INSERT INTO generated_resumes (job_id, job_title, resume_content) VALUES (?, 'r1', '{}'), (?, 'r2', '{}')`,
		job.ID, job.ID); err != nil {
		t.Fatalf("seed resumes: %v", err)
	}

	items, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items", len(items))
	}
	if got := len([]rune(items[0].TextPreview)); got != 200 {
		t.Fatalf("preview length = %d, want 200", got)
	}
	if items[0].ResumeCount != 2 {
		t.Fatalf("resume_count = %d, want 2", items[0].ResumeCount)
	}
}

func TestDeleteCascades(t *testing.T) {
	svc := newTestService(t)
	repo := svc.Repo.(*SQLiteRepo)
	ctx := context.Background()

	job, err := svc.Create(ctx, jobText("doomed"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	newText := jobText("edited")
	if _, err := svc.Update(ctx, job.ID, UpdateInput{OriginalText: &newText}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := repo.DB.ExecContext(ctx, `
INSERT INTO generated_resumes (job_id, job_title, resume_content) VALUES (?, 'r', '{}')`, job.ID); err != nil {
		t.Fatalf("seed resume: %v", err)
	}

	if err := svc.Delete(ctx, job.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, job.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete = %v, want ErrNotFound", err)
	}

	for _, table := range []string{"job_versions", "generated_resumes"} {
		var count int
		if err := repo.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&count); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 0 {
			t.Fatalf("%s still has %d rows after job delete", table, count)
		}
	}
}
