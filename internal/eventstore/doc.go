// Package eventstore is the build journal: an append-only SQLite log of run
// and document events, with a projection that folds a document's events into
// its build history.
package eventstore
