// Package document models the two kinds of documents a publishing run reconciles: source
// documents found under one or more source roots, and output directories found under the
// publication root. Both are keyed by stem.
package document
