package document

import "errors"

var (
	// ErrNotFound indicates a missing root directory or source file.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguous indicates a directory-form document with more than one candidate primary file.
	ErrAmbiguous = errors.New("ambiguous document")
	// ErrNotRegular indicates a source path that is not a plain file.
	ErrNotRegular = errors.New("not a plain file")
)
