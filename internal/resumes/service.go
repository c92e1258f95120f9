package resumes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"mycv-backend/internal/jobs"
	"mycv-backend/internal/llm"
	"mycv-backend/internal/profile"
	"mycv-backend/internal/shared/telemetry"
)

const minTextLength = 100

var supportedLanguages = map[string]struct{}{
	"en": {}, "fr": {}, "nl": {},
}

// Service orchestrates resume generation: profile snapshot, provider
// call, job analysis write and resume persistence.
type Service struct {
	Repo     Repo
	Jobs     *jobs.Service
	Profiles *profile.Service
	Provider llm.Provider
}

func NewService(repo Repo, jobsSvc *jobs.Service, profiles *profile.Service, provider llm.Provider) *Service {
	return &Service{Repo: repo, Jobs: jobsSvc, Profiles: profiles, Provider: provider}
}

// Generate runs one analysis. The profile precondition is checked before
// the provider is called, so an incomplete profile never costs tokens and
// never creates a job. The provider never sees the photo; it is stripped
// from the snapshot and restored before the content is composed.
func (s *Service) Generate(ctx context.Context, jobText, language string, jobID *int64) (*Resume, error) {
	text := strings.TrimSpace(jobText)
	if len([]rune(text)) < minTextLength {
		return nil, fmt.Errorf("%w: job description must be at least %d characters", ErrValidation, minTextLength)
	}
	if language == "" {
		language = "en"
	}
	if _, ok := supportedLanguages[language]; !ok {
		return nil, fmt.Errorf("%w: language must be en, fr, or nl", ErrValidation)
	}

	has, err := s.Profiles.HasWorkExperience(ctx)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, ErrProfileIncomplete
	}

	snapshot, err := s.Profiles.Complete(ctx)
	if err != nil {
		return nil, err
	}

	var savedPhoto *string
	if snapshot.PersonalInfo != nil {
		savedPhoto = snapshot.PersonalInfo.Photo
		snapshot.PersonalInfo.Photo = nil
	}

	result, err := s.Provider.Analyze(ctx, text, snapshot, language)
	if err != nil {
		return nil, err
	}

	if snapshot.PersonalInfo != nil {
		snapshot.PersonalInfo.Photo = savedPhoto
	}

	jobTitle := result.JobTitle
	if jobTitle == "" {
		jobTitle = "Untitled"
	}
	companyName := result.CompanyName
	if companyName == "" {
		companyName = "Unknown Company"
	}
	title := fmt.Sprintf("%s at %s", jobTitle, companyName)

	analysisJSON, err := json.Marshal(result.JobAnalysis)
	if err != nil {
		return nil, err
	}

	savedJobID, err := s.Jobs.SaveAnalysis(ctx, analysisJSON, title, companyName, &text, jobID)
	if err != nil {
		return nil, err
	}

	content := Content{
		PersonalInfo:    snapshot.PersonalInfo,
		Summary:         result.Resume.Summary,
		WorkExperiences: result.Resume.WorkExperiences,
		Skills:          result.Resume.Skills,
		Education:       result.Resume.Education,
		Projects:        result.Resume.Projects,
		Languages:       make([]Language, 0, len(snapshot.Languages)),
	}
	for _, lang := range snapshot.Languages {
		content.Languages = append(content.Languages, Language{
			ID: lang.ID, Name: lang.Name, Level: lang.Level, Included: true,
		})
	}

	contentJSON, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}

	row := Row{
		JobID:        savedJobID,
		MatchScore:   result.MatchScore,
		ContentJSON:  contentJSON,
		AnalysisJSON: analysisJSON,
		Language:     language,
	}
	if result.JobTitle != "" {
		row.JobTitle = &result.JobTitle
	}
	if result.CompanyName != "" {
		row.CompanyName = &result.CompanyName
	}

	id, err := s.Repo.Insert(ctx, row)
	if err != nil {
		return nil, err
	}

	telemetry.Info("resume.generated", map[string]any{
		"resume_id": id,
		"job_id":    savedJobID,
		"language":  language,
	})
	return s.Get(ctx, id)
}

// Get reads one resume. The analysis comes from the resume's own stored
// copy, not from the owning job, so re-analyzing the job later leaves
// existing resumes untouched.
func (s *Service) Get(ctx context.Context, id int64) (*Resume, error) {
	row, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResume(ctx, row)
}

func (s *Service) History(ctx context.Context) ([]HistoryItem, error) {
	return s.Repo.History(ctx)
}

// Update replaces the editable content. Personal info is profile-owned;
// whatever the caller sends, the stored block wins.
func (s *Service) Update(ctx context.Context, id int64, content Content) (*Resume, error) {
	existing, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var existingContent Content
	if len(existing.ContentJSON) > 0 {
		if err := json.Unmarshal(existing.ContentJSON, &existingContent); err != nil {
			return nil, fmt.Errorf("decode stored resume content: %w", err)
		}
	}
	if existingContent.PersonalInfo != nil {
		content.PersonalInfo = existingContent.PersonalInfo
	}

	contentJSON, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateContent(ctx, id, contentJSON); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.Repo.Delete(ctx, id)
}

func (s *Service) toResume(ctx context.Context, row *Row) (*Resume, error) {
	resume := &Resume{
		ID:          row.ID,
		JobTitle:    row.JobTitle,
		CompanyName: row.CompanyName,
		MatchScore:  row.MatchScore,
		Language:    row.Language,
		CreatedAt:   row.CreatedAt,
	}

	if len(row.ContentJSON) > 0 {
		if err := json.Unmarshal(row.ContentJSON, &resume.Resume); err != nil {
			return nil, fmt.Errorf("decode stored resume content: %w", err)
		}
	}
	if len(row.AnalysisJSON) > 0 {
		var analysis llm.JobAnalysis
		if err := json.Unmarshal(row.AnalysisJSON, &analysis); err != nil {
			return nil, fmt.Errorf("decode stored job analysis: %w", err)
		}
		resume.JobAnalysis = &analysis
	}

	// Older rows predate the photo column; backfill from the live
	// profile so photo templates keep working.
	if resume.Resume.PersonalInfo != nil && resume.Resume.PersonalInfo.Photo == nil {
		if photo, err := s.Profiles.GetPhoto(ctx); err == nil && photo != nil {
			resume.Resume.PersonalInfo.Photo = photo
		}
	}
	return resume, nil
}
