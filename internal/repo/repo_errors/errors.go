package repo_errors

import "errors"

var (
	ErrNotFound        = errors.New("record not found")
	ErrAlreadyExists   = errors.New("record already exists")
	ErrConditionFailed = errors.New("conditional update matched no rows")
)
