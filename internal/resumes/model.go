package resumes

import (
	"mycv-backend/internal/llm"
	"mycv-backend/internal/profile"
)

// Language is one profile language carried into a resume. All profile
// languages are attached on generation with included set.
type Language struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Level    string `json:"level"`
	Included bool   `json:"included"`
}

// Content is the editable resume document stored per generated resume:
// the provider-authored sections plus profile-owned personal info and
// languages.
type Content struct {
	PersonalInfo    *profile.PersonalInfo `json:"personal_info"`
	Summary         string                `json:"summary"`
	WorkExperiences []llm.WorkExperience  `json:"work_experiences"`
	Skills          []llm.Skill           `json:"skills"`
	Education       []llm.Education       `json:"education"`
	Projects        []llm.Project         `json:"projects"`
	Languages       []Language            `json:"languages"`
}

// Resume is one generated resume. JobAnalysis is this resume's own copy,
// frozen at generation time; later re-analyses of the job never change it.
type Resume struct {
	ID          int64            `json:"id"`
	JobTitle    *string          `json:"job_title"`
	CompanyName *string          `json:"company_name"`
	MatchScore  *float64         `json:"match_score"`
	JobAnalysis *llm.JobAnalysis `json:"job_analysis"`
	Resume      Content          `json:"resume"`
	Language    string           `json:"language"`
	CreatedAt   string           `json:"created_at"`
}

// HistoryItem is the list view of a generated resume.
type HistoryItem struct {
	ID          int64    `json:"id"`
	JobTitle    *string  `json:"job_title"`
	CompanyName *string  `json:"company_name"`
	MatchScore  *float64 `json:"match_score"`
	CreatedAt   string   `json:"created_at"`
}
