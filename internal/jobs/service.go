package jobs

import (
	"context"
	"fmt"
	"strings"
)

const (
	minTextLength  = 100
	maxTitleLength = 100
)

// Service validates job writes and owns the versioning rules.
type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

func (s *Service) List(ctx context.Context) ([]ListItem, error) {
	return s.Repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Job, error) {
	return s.Repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, originalText string) (*Job, error) {
	text, err := validText(originalText)
	if err != nil {
		return nil, err
	}
	return s.Repo.Create(ctx, text)
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Job, error) {
	if in.Title != nil {
		if len([]rune(*in.Title)) > maxTitleLength {
			return nil, fmt.Errorf("%w: title must be at most %d characters", ErrValidation, maxTitleLength)
		}
	}
	if in.OriginalText != nil {
		text, err := validText(*in.OriginalText)
		if err != nil {
			return nil, err
		}
		in.OriginalText = &text
	}
	return s.Repo.Update(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.Repo.Delete(ctx, id)
}

func (s *Service) Versions(ctx context.Context, jobID int64) ([]Version, error) {
	if _, err := s.Repo.Get(ctx, jobID); err != nil {
		return nil, err
	}
	return s.Repo.Versions(ctx, jobID)
}

// Restore puts a snapshot's text back on the job through the normal
// update path, so the current text is itself captured as a new version
// before being replaced.
func (s *Service) Restore(ctx context.Context, jobID, versionID int64) (*Job, error) {
	version, err := s.Repo.GetVersion(ctx, jobID, versionID)
	if err != nil {
		return nil, err
	}
	return s.Repo.Update(ctx, jobID, UpdateInput{OriginalText: &version.OriginalText})
}

func (s *Service) Resumes(ctx context.Context, jobID int64) ([]ResumeSummary, error) {
	if _, err := s.Repo.Get(ctx, jobID); err != nil {
		return nil, err
	}
	return s.Repo.Resumes(ctx, jobID)
}

// SaveAnalysis forwards to the repo's single analysis write path.
func (s *Service) SaveAnalysis(ctx context.Context, analysisJSON []byte, title, companyName string, originalText *string, jobID *int64) (int64, error) {
	return s.Repo.SaveAnalysis(ctx, analysisJSON, title, companyName, originalText, jobID)
}

func validText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) < minTextLength {
		return "", fmt.Errorf("%w: job description must be at least %d characters", ErrValidation, minTextLength)
	}
	return trimmed, nil
}
