package profile

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)
	datePattern  = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)
	photoPattern = regexp.MustCompile(`^data:image/(jpeg|png|webp);base64,[A-Za-z0-9+/=]+$`)
)

// A 10MB image grows to roughly 13.3MB as base64; 15MB leaves headroom.
const maxPhotoBytes = 15_000_000

var cefrLevels = map[string]struct{}{
	"A1": {}, "A2": {}, "B1": {}, "B2": {}, "C1": {}, "C2": {},
}

// Service validates profile writes and delegates persistence to the repo.
type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

func (s *Service) GetPersonalInfo(ctx context.Context) (*PersonalInfo, error) {
	return s.Repo.GetPersonalInfo(ctx)
}

func (s *Service) UpdatePersonalInfo(ctx context.Context, in PersonalInfoInput) (*PersonalInfo, error) {
	if err := validatePersonalInfo(in); err != nil {
		return nil, err
	}
	return s.Repo.UpsertPersonalInfo(ctx, in)
}

func (s *Service) ListWorkExperiences(ctx context.Context) ([]WorkExperience, error) {
	return s.Repo.ListWorkExperiences(ctx)
}

func (s *Service) GetWorkExperience(ctx context.Context, id int64) (*WorkExperience, error) {
	return s.Repo.GetWorkExperience(ctx, id)
}

func (s *Service) CreateWorkExperience(ctx context.Context, in WorkExperienceInput) (*WorkExperience, error) {
	if err := validateWorkExperience(in); err != nil {
		return nil, err
	}
	return s.Repo.CreateWorkExperience(ctx, in)
}

func (s *Service) UpdateWorkExperience(ctx context.Context, id int64, in WorkExperienceInput) (*WorkExperience, error) {
	if err := validateWorkExperience(in); err != nil {
		return nil, err
	}
	return s.Repo.UpdateWorkExperience(ctx, id, in)
}

func (s *Service) DeleteWorkExperience(ctx context.Context, id int64) error {
	return s.Repo.DeleteWorkExperience(ctx, id)
}

func (s *Service) ListEducation(ctx context.Context) ([]Education, error) {
	return s.Repo.ListEducation(ctx)
}

func (s *Service) GetEducation(ctx context.Context, id int64) (*Education, error) {
	return s.Repo.GetEducation(ctx, id)
}

func (s *Service) CreateEducation(ctx context.Context, in EducationInput) (*Education, error) {
	if err := validateEducation(in); err != nil {
		return nil, err
	}
	return s.Repo.CreateEducation(ctx, in)
}

func (s *Service) UpdateEducation(ctx context.Context, id int64, in EducationInput) (*Education, error) {
	if err := validateEducation(in); err != nil {
		return nil, err
	}
	return s.Repo.UpdateEducation(ctx, id, in)
}

func (s *Service) DeleteEducation(ctx context.Context, id int64) error {
	return s.Repo.DeleteEducation(ctx, id)
}

func (s *Service) ListSkills(ctx context.Context) ([]Skill, error) {
	return s.Repo.ListSkills(ctx)
}

// AddSkills splits a comma-separated list into individual skills.
func (s *Service) AddSkills(ctx context.Context, names string) ([]Skill, error) {
	parts := strings.Split(names, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("%w: at least one skill name is required", ErrValidation)
	}
	return s.Repo.AddSkills(ctx, cleaned)
}

func (s *Service) DeleteSkill(ctx context.Context, id int64) error {
	return s.Repo.DeleteSkill(ctx, id)
}

func (s *Service) ListProjects(ctx context.Context) ([]Project, error) {
	return s.Repo.ListProjects(ctx)
}

func (s *Service) GetProject(ctx context.Context, id int64) (*Project, error) {
	return s.Repo.GetProject(ctx, id)
}

func (s *Service) CreateProject(ctx context.Context, in ProjectInput) (*Project, error) {
	if err := validateProject(in); err != nil {
		return nil, err
	}
	return s.Repo.CreateProject(ctx, in)
}

func (s *Service) UpdateProject(ctx context.Context, id int64, in ProjectInput) (*Project, error) {
	if err := validateProject(in); err != nil {
		return nil, err
	}
	return s.Repo.UpdateProject(ctx, id, in)
}

func (s *Service) DeleteProject(ctx context.Context, id int64) error {
	return s.Repo.DeleteProject(ctx, id)
}

func (s *Service) ListLanguages(ctx context.Context) ([]Language, error) {
	return s.Repo.ListLanguages(ctx)
}

func (s *Service) GetLanguage(ctx context.Context, id int64) (*Language, error) {
	return s.Repo.GetLanguage(ctx, id)
}

func (s *Service) CreateLanguage(ctx context.Context, in LanguageInput) (*Language, error) {
	if err := validateLanguage(in); err != nil {
		return nil, err
	}
	return s.Repo.CreateLanguage(ctx, in)
}

func (s *Service) UpdateLanguage(ctx context.Context, id int64, in LanguageInput) (*Language, error) {
	if err := validateLanguage(in); err != nil {
		return nil, err
	}
	return s.Repo.UpdateLanguage(ctx, id, in)
}

func (s *Service) ReorderLanguages(ctx context.Context, items []ReorderItem) ([]Language, error) {
	return s.Repo.ReorderLanguages(ctx, items)
}

func (s *Service) DeleteLanguage(ctx context.Context, id int64) error {
	return s.Repo.DeleteLanguage(ctx, id)
}

func (s *Service) GetPhoto(ctx context.Context) (*string, error) {
	return s.Repo.GetPhoto(ctx)
}

func (s *Service) UploadPhoto(ctx context.Context, imageData string) error {
	if !photoPattern.MatchString(imageData) {
		return fmt.Errorf("%w: invalid image data format", ErrValidation)
	}
	if len(imageData) > maxPhotoBytes {
		return fmt.Errorf("%w: image data too large", ErrValidation)
	}
	return s.Repo.SetPhoto(ctx, &imageData)
}

func (s *Service) DeletePhoto(ctx context.Context) error {
	photo, err := s.Repo.GetPhoto(ctx)
	if err != nil {
		return err
	}
	if photo == nil {
		return fmt.Errorf("%w: photo", ErrNotFound)
	}
	return s.Repo.SetPhoto(ctx, nil)
}

// Import replaces the whole profile. The stored photo is preserved.
func (s *Service) Import(ctx context.Context, in Import) error {
	if err := validatePersonalInfo(in.PersonalInfo); err != nil {
		return err
	}
	for _, exp := range in.WorkExperiences {
		if err := validateWorkExperience(exp); err != nil {
			return err
		}
	}
	for _, edu := range in.Education {
		if err := validateEducation(edu); err != nil {
			return err
		}
	}
	for _, proj := range in.Projects {
		if err := validateProject(proj); err != nil {
			return err
		}
	}
	for _, lang := range in.Languages {
		if err := validateLanguage(lang); err != nil {
			return err
		}
	}
	return s.Repo.ReplaceAll(ctx, in)
}

func (s *Service) Complete(ctx context.Context) (*Complete, error) {
	return s.Repo.Complete(ctx)
}

func (s *Service) HasWorkExperience(ctx context.Context) (bool, error) {
	return s.Repo.HasWorkExperience(ctx)
}

func validatePersonalInfo(in PersonalInfoInput) error {
	if strings.TrimSpace(in.FullName) == "" {
		return fmt.Errorf("%w: full_name is required", ErrValidation)
	}
	if !emailPattern.MatchString(in.Email) {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	return nil
}

func validateWorkExperience(in WorkExperienceInput) error {
	if strings.TrimSpace(in.Company) == "" || strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: company and title are required", ErrValidation)
	}
	if !datePattern.MatchString(in.StartDate) {
		return fmt.Errorf("%w: invalid date format, use YYYY-MM", ErrValidation)
	}
	if in.EndDate != nil && !datePattern.MatchString(*in.EndDate) {
		return fmt.Errorf("%w: invalid date format, use YYYY-MM", ErrValidation)
	}
	return nil
}

func validateEducation(in EducationInput) error {
	if strings.TrimSpace(in.Institution) == "" || strings.TrimSpace(in.Degree) == "" {
		return fmt.Errorf("%w: institution and degree are required", ErrValidation)
	}
	if in.GraduationYear != nil && (*in.GraduationYear < 1900 || *in.GraduationYear > 2100) {
		return fmt.Errorf("%w: graduation year must be between 1900 and 2100", ErrValidation)
	}
	return nil
}

func validateProject(in ProjectInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	for _, date := range []*string{in.StartDate, in.EndDate} {
		if date != nil && !datePattern.MatchString(*date) {
			return fmt.Errorf("%w: invalid date format, use YYYY-MM", ErrValidation)
		}
	}
	return nil
}

func validateLanguage(in LanguageInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if _, ok := cefrLevels[in.Level]; !ok {
		return fmt.Errorf("%w: level must be a CEFR code (A1-C2)", ErrValidation)
	}
	return nil
}
