package services

import "errors"

// ErrInvalidSelection wraps a selection request that failed validation.
var ErrInvalidSelection = errors.New("invalid selection")
