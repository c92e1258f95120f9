package profile

// PersonalInfo is the single candidate's contact block, stored as the
// singleton users row with id 1.
type PersonalInfo struct {
	ID          int64   `json:"id"`
	FullName    string  `json:"full_name"`
	Email       string  `json:"email"`
	Phone       *string `json:"phone"`
	Location    *string `json:"location"`
	LinkedinURL *string `json:"linkedin_url"`
	Summary     *string `json:"summary"`
	Photo       *string `json:"photo,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"`
	UpdatedAt   string  `json:"updated_at,omitempty"`
}

// PersonalInfoInput is the writable subset of PersonalInfo. The photo is
// managed through the photo endpoints and never written here.
type PersonalInfoInput struct {
	FullName    string  `json:"full_name"`
	Email       string  `json:"email"`
	Phone       *string `json:"phone"`
	Location    *string `json:"location"`
	LinkedinURL *string `json:"linkedin_url"`
	Summary     *string `json:"summary"`
}

type WorkExperience struct {
	ID          int64   `json:"id"`
	Company     string  `json:"company"`
	Title       string  `json:"title"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date"`
	IsCurrent   bool    `json:"is_current"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	CreatedAt   string  `json:"created_at,omitempty"`
	UpdatedAt   string  `json:"updated_at,omitempty"`
}

type WorkExperienceInput struct {
	Company     string  `json:"company"`
	Title       string  `json:"title"`
	StartDate   string  `json:"start_date"`
	EndDate     *string `json:"end_date"`
	IsCurrent   bool    `json:"is_current"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
}

type Education struct {
	ID             int64    `json:"id"`
	Institution    string   `json:"institution"`
	Degree         string   `json:"degree"`
	FieldOfStudy   *string  `json:"field_of_study"`
	GraduationYear *int     `json:"graduation_year"`
	GPA            *float64 `json:"gpa"`
	Notes          *string  `json:"notes"`
	CreatedAt      string   `json:"created_at,omitempty"`
	UpdatedAt      string   `json:"updated_at,omitempty"`
}

type EducationInput struct {
	Institution    string   `json:"institution"`
	Degree         string   `json:"degree"`
	FieldOfStudy   *string  `json:"field_of_study"`
	GraduationYear *int     `json:"graduation_year"`
	GPA            *float64 `json:"gpa"`
	Notes          *string  `json:"notes"`
}

type Skill struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Project struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Technologies *string `json:"technologies"`
	URL          *string `json:"url"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
	CreatedAt    string  `json:"created_at,omitempty"`
	UpdatedAt    string  `json:"updated_at,omitempty"`
}

type ProjectInput struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Technologies *string `json:"technologies"`
	URL          *string `json:"url"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
}

// Language is one spoken language with a CEFR level. Display order is
// assigned on create and changed only through Reorder.
type Language struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Level        string `json:"level"`
	DisplayOrder int    `json:"display_order"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

type LanguageInput struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

// ReorderItem assigns one language its new display position.
type ReorderItem struct {
	ID           int64 `json:"id"`
	DisplayOrder int   `json:"display_order"`
}

// Complete is the whole profile in one payload, the shape handed to the
// analysis provider and to whole-profile export.
type Complete struct {
	PersonalInfo    *PersonalInfo    `json:"personal_info"`
	WorkExperiences []WorkExperience `json:"work_experiences"`
	Education       []Education      `json:"education"`
	Skills          []Skill          `json:"skills"`
	Projects        []Project        `json:"projects"`
	Languages       []Language       `json:"languages"`
}

// Import is a whole-profile replacement payload. Everything except the
// stored photo is overwritten.
type Import struct {
	PersonalInfo    PersonalInfoInput     `json:"personal_info"`
	WorkExperiences []WorkExperienceInput `json:"work_experiences"`
	Education       []EducationInput      `json:"education"`
	Skills          []Skill               `json:"skills"`
	Projects        []ProjectInput        `json:"projects"`
	Languages       []LanguageInput       `json:"languages"`
}
