package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every *ValidationError through errors.Is.
	ErrValidation = errors.New("validation failed")
	// ErrCatalogInvalid indicates catalog content broke a structural rule.
	ErrCatalogInvalid = errors.New("catalog invalid")
	// ErrCourseNotFound indicates a course id is not part of the catalog.
	ErrCourseNotFound = errors.New("course not found")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrCatalogNotFound is returned by loaders whose backing store holds no catalog document.
	ErrCatalogNotFound = errors.New("catalog document not found")
)

// ValidationError reports bad command input. It is meant for display, not for aborting.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
