package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every input validation failure.
var ErrValidation = errors.New("validation failed")

var (
	// ErrEmptyInput: no usable documents were supplied.
	ErrEmptyInput = &validationError{msg: "please provide at least one document"}
	// ErrDegenerateVocabulary: every document reduced to nothing after normalization.
	ErrDegenerateVocabulary = &validationError{msg: "no usable terms remain after removing punctuation and stop words"}
)

type validationError struct{ msg string }

func (e *validationError) Error() string        { return e.msg }
func (e *validationError) Is(target error) bool { return target == ErrValidation }

// InsufficientDocumentsError reports fewer documents than requested clusters.
type InsufficientDocumentsError struct {
	DocCount   int
	KRequested int
}

func (e *InsufficientDocumentsError) Error() string {
	return fmt.Sprintf("number of documents (%d) must be greater than or equal to the number of clusters (%d)", e.DocCount, e.KRequested)
}

func (e *InsufficientDocumentsError) Is(target error) bool { return target == ErrValidation }

// InvalidClusterCountError is returned under the strict cluster count policy.
type InvalidClusterCountError struct {
	Raw string
}

func (e *InvalidClusterCountError) Error() string {
	return fmt.Sprintf("cluster count %q is not a positive integer", e.Raw)
}

func (e *InvalidClusterCountError) Is(target error) bool { return target == ErrValidation }
