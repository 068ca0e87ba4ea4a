// Package driver turns an inventory into work: it selects documents, builds each one
// through its doctype's graph, optionally publishes the result and reports the outcome
// of the whole run.
package driver
