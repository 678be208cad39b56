package access

import "errors"

var (
	ErrNotFound        = errors.New("access: subject not found")
	ErrUnknownRole     = errors.New("access: unknown role")
	ErrSubjectDisabled = errors.New("access: subject is disabled")
	ErrScopeUnresolved = errors.New("access: required scope could not be resolved")
)
