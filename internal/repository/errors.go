package repository

import "errors"

var (
	// ErrInvalidReference indicates an image reference the configured source cannot resolve
	ErrInvalidReference = errors.New("invalid image reference")

	// ErrAnalysisNotFound indicates the analysis result was not found
	ErrAnalysisNotFound = errors.New("analysis result not found")

	// ErrRepositoryUnavailable indicates the repository is unavailable
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)
