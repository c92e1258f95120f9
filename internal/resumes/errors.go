package resumes

import "errors"

var (
	ErrNotFound   = errors.New("resume not found")
	ErrValidation = errors.New("validation error")

	// ErrProfileIncomplete blocks generation until the profile has at
	// least one work experience. Checked before any provider call.
	ErrProfileIncomplete = errors.New("your profile needs work experience before you can generate a tailored resume")
)
