// Package errors provides the classified error primitives used across docpub.
//
// Every failure in a publishing run falls into one category of the taxonomy:
//   - not_found: a missing source/output root (fatal) or a missing document (skipped)
//   - ambiguous: a directory-form document with more than one candidate primary file
//   - precheck: a required tool or file is missing, the document build is skipped
//   - step: an external tool exited non-zero or timed out, the document build stops
//   - publish: the rename swap failed, the working directory is left for a retry
//
// Example usage:
//
//	err := errors.StepError("step failed").
//		WithContext("stem", stem).
//		WithContext("step", name).
//		WithCause(runErr).
//		Build()
package errors
