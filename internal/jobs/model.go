package jobs

// DefaultTitle marks a job whose title was never set by an analysis or
// by the user. SaveAnalysis only overwrites titles that still carry it.
const DefaultTitle = "Untitled Job"

// Job is one stored job description.
type Job struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	CompanyName  *string `json:"company_name"`
	OriginalText string  `json:"original_text"`
	ResumeCount  int     `json:"resume_count"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

// ListItem is the list view of a job: full text replaced by a preview.
type ListItem struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	CompanyName *string `json:"company_name"`
	TextPreview string  `json:"text_preview"`
	ResumeCount int     `json:"resume_count"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// Version is one captured snapshot of a job's text. Snapshots hold the
// text as it was BEFORE the edit that created them.
type Version struct {
	ID            int64  `json:"id"`
	VersionNumber int    `json:"version_number"`
	OriginalText  string `json:"original_text"`
	CreatedAt     string `json:"created_at"`
}

// ResumeSummary is the per-job view of a generated resume.
type ResumeSummary struct {
	ID          int64    `json:"id"`
	JobTitle    *string  `json:"job_title"`
	CompanyName *string  `json:"company_name"`
	MatchScore  *float64 `json:"match_score"`
	CreatedAt   string   `json:"created_at"`
}

// UpdateInput carries a partial job update; nil fields stay untouched.
type UpdateInput struct {
	Title        *string `json:"title"`
	OriginalText *string `json:"original_text"`
}
