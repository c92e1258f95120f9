// Package llm abstracts the external analysis providers that turn a job
// posting and a candidate profile into a tailored resume. Providers are
// interchangeable behind the Provider interface and selected once, at
// construction time, by the factory in New.
package llm

import "context"

// Provider is the capability every analysis backend implements.
// The profile value is serialized as-is into the prompt.
type Provider interface {
	Analyze(ctx context.Context, jobText string, profile any, language string) (*Result, error)
}

// SkillMatch reports whether the candidate covers one extracted skill.
type SkillMatch struct {
	Name    string `json:"name"`
	Matched bool   `json:"matched"`
}

// JobAnalysis is the provider's structured reading of a job posting.
type JobAnalysis struct {
	RequiredSkills  []SkillMatch   `json:"required_skills"`
	PreferredSkills []SkillMatch   `json:"preferred_skills"`
	ExperienceYears map[string]any `json:"experience_years,omitempty"`
	Education       map[string]any `json:"education,omitempty"`
}

// WorkExperience is one tailored work-experience entry. IDs refer back to
// the profile rows the provider was given.
type WorkExperience struct {
	ID           int64    `json:"id"`
	Company      string   `json:"company"`
	Title        string   `json:"title"`
	StartDate    string   `json:"start_date"`
	EndDate      *string  `json:"end_date"`
	Description  *string  `json:"description"`
	MatchReasons []string `json:"match_reasons"`
	Included     bool     `json:"included"`
	Order        int      `json:"order"`
}

// Skill is one tailored skill entry.
type Skill struct {
	Name     string `json:"name"`
	Matched  bool   `json:"matched"`
	Included bool   `json:"included"`
}

// Education is one tailored education entry.
type Education struct {
	ID             int64   `json:"id"`
	Institution    string  `json:"institution"`
	Degree         string  `json:"degree"`
	FieldOfStudy   *string `json:"field_of_study"`
	GraduationYear *int    `json:"graduation_year"`
	Included       bool    `json:"included"`
}

// Project is one tailored project entry. Projects default to excluded.
type Project struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Technologies *string `json:"technologies"`
	Included     bool    `json:"included"`
}

// ResumeDraft holds the provider-authored resume sections. Personal info
// and languages are profile-owned and attached downstream, never here.
type ResumeDraft struct {
	Summary         string           `json:"summary"`
	WorkExperiences []WorkExperience `json:"work_experiences"`
	Skills          []Skill          `json:"skills"`
	Education       []Education      `json:"education"`
	Projects        []Project        `json:"projects"`
}

// Result is the full provider output for one analysis run.
type Result struct {
	JobTitle    string      `json:"job_title"`
	CompanyName string      `json:"company_name"`
	MatchScore  *float64    `json:"match_score"`
	JobAnalysis JobAnalysis `json:"job_analysis"`
	Resume      ResumeDraft `json:"resume"`
}
