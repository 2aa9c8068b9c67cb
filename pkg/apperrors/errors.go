package apperrors

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrNoCollections  = errors.New("no collections found for business")
	ErrUnknownTable   = errors.New("unknown target table")
	ErrNoModelsConfig = errors.New("no completion models configured")
)
