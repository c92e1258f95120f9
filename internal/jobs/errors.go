package jobs

import "errors"

var (
	ErrNotFound   = errors.New("job not found")
	ErrValidation = errors.New("validation error")
)
