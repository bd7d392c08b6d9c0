package employee

import "errors"

var (
	ErrNotFound      = errors.New("employee: not found")
	ErrDuplicateName = errors.New("employee: name already exists")
	ErrMissingField  = errors.New("employee: required field missing")
)
