// Package workspace manages the build root holding per-document working directories,
// grouped by document type, supporting both ephemeral (timestamped) and persistent
// (configured) modes.
//
// Ephemeral roots are hidden directories (e.g. .docpub-20251214-122336-1a2b3c4d) created
// inside the publication root so working directories can be renamed into place, and are
// removed after the run. Persistent roots are the configured build directory and keep failed
// working directories around for inspection.
package workspace
