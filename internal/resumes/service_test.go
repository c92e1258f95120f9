package resumes

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"mycv-backend/internal/jobs"
	"mycv-backend/internal/llm"
	"mycv-backend/internal/profile"
	"mycv-backend/internal/shared/storage/db"
)

type fakeProvider struct {
	calls       int
	lastPrompt  string
	lastProfile []byte
	lastLang    string
	result      *llm.Result
	err         error
}

func (f *fakeProvider) Analyze(ctx context.Context, jobText string, prof any, language string) (*llm.Result, error) {
	f.calls++
	f.lastPrompt = jobText
	f.lastLang = language
	f.lastProfile, _ = json.Marshal(prof)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func analysisResult(title, company string, score float64) *llm.Result {
	return &llm.Result{
		JobTitle:    title,
		CompanyName: company,
		MatchScore:  &score,
		JobAnalysis: llm.JobAnalysis{
			RequiredSkills: []llm.SkillMatch{{Name: "Go", Matched: true}},
		},
		Resume: llm.ResumeDraft{
			Summary: "A tailored summary.",
			Skills:  []llm.Skill{{Name: "Go", Matched: true, Included: true}},
		},
	}
}

type testEnv struct {
	svc      *Service
	jobs     *jobs.Service
	profiles *profile.Service
	provider *fakeProvider
}

func photoData() string { return "data:image/png;base64,cGhvdG8=" }

func newTestEnv(t *testing.T, seedProfile bool) *testEnv {
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

	profiles := profile.NewService(profile.NewSQLiteRepo(database))
	jobsSvc := jobs.NewService(jobs.NewSQLiteRepo(database))
	provider := &fakeProvider{result: analysisResult("Go Developer", "Initech", 82.5)}
	svc := NewService(NewSQLiteRepo(database), jobsSvc, profiles, provider)

	if seedProfile {
		if _, err := profiles.UpdatePersonalInfo(ctx, profile.PersonalInfoInput{
			FullName: "Ada Lovelace", Email: "ada@example.com",
		}); err != nil {
			t.Fatalf("seed personal info: %v", err)
		}
		if err := profiles.UploadPhoto(ctx, photoData()); err != nil {
			t.Fatalf("seed photo: %v", err)
		}
		if _, err := profiles.CreateWorkExperience(ctx, profile.WorkExperienceInput{
			Company: "Analytical Engines Ltd", Title: "Programmer", StartDate: "1843-01",
		}); err != nil {
			t.Fatalf("seed work experience: %v", err)
		}
		if _, err := profiles.CreateLanguage(ctx, profile.LanguageInput{Name: "English", Level: "C2"}); err != nil {
			t.Fatalf("seed language: %v", err)
		}
	}
	return &testEnv{svc: svc, jobs: jobsSvc, profiles: profiles, provider: provider}
}

func generationText(marker string) string {
	return marker + " " + strings.Repeat("We are hiring a Go developer to build backend services. ", 4)
}

func TestGenerateCreatesJobAndResume(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	resume, err := env.svc.Generate(ctx, generationText("gen"), "en", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resume.JobTitle == nil || *resume.JobTitle != "Go Developer" {
		t.Fatalf("job_title = %v", resume.JobTitle)
	}
	if resume.MatchScore == nil || *resume.MatchScore != 82.5 {
		t.Fatalf("match_score = %v", resume.MatchScore)
	}
	if resume.JobAnalysis == nil || len(resume.JobAnalysis.RequiredSkills) != 1 {
		t.Fatalf("job_analysis = %+v", resume.JobAnalysis)
	}

	// The job was created through the analysis write path with the
	// derived title.
	jobList, err := env.jobs.List(ctx)
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	if len(jobList) != 1 {
		t.Fatalf("got %d jobs, want 1", len(jobList))
	}
	if jobList[0].Title != "Go Developer at Initech" {
		t.Fatalf("job title = %q", jobList[0].Title)
	}
	if jobList[0].ResumeCount != 1 {
		t.Fatalf("resume_count = %d", jobList[0].ResumeCount)
	}

	// Profile sections the provider does not own are attached.
	if resume.Resume.PersonalInfo == nil || resume.Resume.PersonalInfo.FullName != "Ada Lovelace" {
		t.Fatalf("personal_info = %+v", resume.Resume.PersonalInfo)
	}
	if len(resume.Resume.Languages) != 1 || !resume.Resume.Languages[0].Included {
		t.Fatalf("languages = %+v", resume.Resume.Languages)
	}
}

func TestGeneratePhotoStrippedFromProviderRestoredInContent(t *testing.T) {
	env := newTestEnv(t, true)

	resume, err := env.svc.Generate(context.Background(), generationText("photo"), "en", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if strings.Contains(string(env.provider.lastProfile), photoData()) {
		t.Fatal("the provider should never receive the photo")
	}
	if resume.Resume.PersonalInfo.Photo == nil || *resume.Resume.PersonalInfo.Photo != photoData() {
		t.Fatal("the stored resume should carry the photo")
	}
}

func TestGenerateIncompleteProfile(t *testing.T) {
	env := newTestEnv(t, false)

	_, err := env.svc.Generate(context.Background(), generationText("none"), "en", nil)
	if !errors.Is(err, ErrProfileIncomplete) {
		t.Fatalf("error = %v, want ErrProfileIncomplete", err)
	}
	if env.provider.calls != 0 {
		t.Fatal("provider must not be called when the profile is incomplete")
	}

	jobList, _ := env.jobs.List(context.Background())
	if len(jobList) != 0 {
		t.Fatal("no job may be created when generation is refused")
	}
}

func TestGenerateValidation(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	if _, err := env.svc.Generate(ctx, "too short", "en", nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("short text = %v, want ErrValidation", err)
	}
	if _, err := env.svc.Generate(ctx, generationText("x"), "de", nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad language = %v, want ErrValidation", err)
	}
	if env.provider.calls != 0 {
		t.Fatal("provider must not be called on invalid input")
	}

	missing := int64(4242)
	if _, err := env.svc.Generate(ctx, generationText("x"), "en", &missing); !errors.Is(err, jobs.ErrNotFound) {
		t.Fatalf("unknown job id = %v, want jobs.ErrNotFound", err)
	}
}

func TestGenerateProviderFailureLeavesNoJob(t *testing.T) {
	env := newTestEnv(t, true)
	env.provider.err = llm.ErrOverloaded

	_, err := env.svc.Generate(context.Background(), generationText("fail"), "en", nil)
	if !errors.Is(err, llm.ErrOverloaded) {
		t.Fatalf("error = %v, want ErrOverloaded", err)
	}

	jobList, _ := env.jobs.List(context.Background())
	if len(jobList) != 0 {
		t.Fatal("a failed provider call must not create a job")
	}
	history, _ := env.svc.History(context.Background())
	if len(history) != 0 {
		t.Fatal("a failed provider call must not create a resume")
	}
}

func TestResumeKeepsItsOwnAnalysisCopy(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	first, err := env.svc.Generate(ctx, generationText("first"), "en", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	jobList, _ := env.jobs.List(ctx)
	jobID := jobList[0].ID

	// Re-analyze the same job with a different outcome.
	env.provider.result = analysisResult("Staff Engineer", "Globex", 40)
	env.provider.result.JobAnalysis.RequiredSkills = []llm.SkillMatch{
		{Name: "Rust", Matched: false},
		{Name: "Kubernetes", Matched: false},
	}
	if _, err := env.svc.Generate(ctx, generationText("second"), "en", &jobID); err != nil {
		t.Fatalf("second generate: %v", err)
	}

	reread, err := env.svc.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("get first resume: %v", err)
	}
	if len(reread.JobAnalysis.RequiredSkills) != 1 || reread.JobAnalysis.RequiredSkills[0].Name != "Go" {
		t.Fatalf("first resume's analysis changed: %+v", reread.JobAnalysis)
	}
}

func TestUpdatePreservesStoredPersonalInfo(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	resume, err := env.svc.Generate(ctx, generationText("upd"), "en", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	tampered := resume.Resume
	tampered.Summary = "An edited summary."
	tampered.PersonalInfo = &profile.PersonalInfo{FullName: "Someone Else", Email: "evil@example.com"}

	updated, err := env.svc.Update(ctx, resume.ID, tampered)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Resume.Summary != "An edited summary." {
		t.Fatalf("summary = %q", updated.Resume.Summary)
	}
	if updated.Resume.PersonalInfo.FullName != "Ada Lovelace" {
		t.Fatalf("personal_info was overwritten: %+v", updated.Resume.PersonalInfo)
	}
}

func TestDeleteResumeKeepsJob(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	resume, err := env.svc.Generate(ctx, generationText("del"), "en", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if err := env.svc.Delete(ctx, resume.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := env.svc.Delete(ctx, resume.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete = %v, want ErrNotFound", err)
	}

	jobList, _ := env.jobs.List(ctx)
	if len(jobList) != 1 {
		t.Fatal("deleting a resume must not delete the job")
	}
}
