package profile

import "context"

// Repo is the persistence boundary for the candidate profile.
type Repo interface {
	GetPersonalInfo(ctx context.Context) (*PersonalInfo, error)
	UpsertPersonalInfo(ctx context.Context, in PersonalInfoInput) (*PersonalInfo, error)

	ListWorkExperiences(ctx context.Context) ([]WorkExperience, error)
	GetWorkExperience(ctx context.Context, id int64) (*WorkExperience, error)
	CreateWorkExperience(ctx context.Context, in WorkExperienceInput) (*WorkExperience, error)
	UpdateWorkExperience(ctx context.Context, id int64, in WorkExperienceInput) (*WorkExperience, error)
	DeleteWorkExperience(ctx context.Context, id int64) error

	ListEducation(ctx context.Context) ([]Education, error)
	GetEducation(ctx context.Context, id int64) (*Education, error)
	CreateEducation(ctx context.Context, in EducationInput) (*Education, error)
	UpdateEducation(ctx context.Context, id int64, in EducationInput) (*Education, error)
	DeleteEducation(ctx context.Context, id int64) error

	ListSkills(ctx context.Context) ([]Skill, error)
	AddSkills(ctx context.Context, names []string) ([]Skill, error)
	DeleteSkill(ctx context.Context, id int64) error

	ListProjects(ctx context.Context) ([]Project, error)
	GetProject(ctx context.Context, id int64) (*Project, error)
	CreateProject(ctx context.Context, in ProjectInput) (*Project, error)
	UpdateProject(ctx context.Context, id int64, in ProjectInput) (*Project, error)
	DeleteProject(ctx context.Context, id int64) error

	ListLanguages(ctx context.Context) ([]Language, error)
	GetLanguage(ctx context.Context, id int64) (*Language, error)
	CreateLanguage(ctx context.Context, in LanguageInput) (*Language, error)
	UpdateLanguage(ctx context.Context, id int64, in LanguageInput) (*Language, error)
	ReorderLanguages(ctx context.Context, items []ReorderItem) ([]Language, error)
	DeleteLanguage(ctx context.Context, id int64) error

	GetPhoto(ctx context.Context) (*string, error)
	SetPhoto(ctx context.Context, photo *string) error

	ReplaceAll(ctx context.Context, in Import) error
	Complete(ctx context.Context) (*Complete, error)
	HasWorkExperience(ctx context.Context) (bool, error)
}
