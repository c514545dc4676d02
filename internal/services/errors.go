package services

import (
	"errors"

	"finextract/internal/validation"
)

// Extraction service errors
var (
	// ErrNilEngine is returned by constructors given no extraction engine.
	ErrNilEngine = errors.New("extraction engine is required")

	// Input errors, matched with errors.Is against service results.
	ErrTooManyFiles = validation.ErrTooManyFiles
	ErrFileTooLarge = validation.ErrFileTooLarge
)
