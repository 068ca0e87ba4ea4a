// Package build turns the statically declared build steps of a document type into an
// ordered, fail-fast execution.
//
// A Graph is validated when it is constructed and yields one topological order. A Runner
// walks that order for a Job, handing each step's commands to a Sink: ExecSink runs them as
// subprocesses with captured output, ScriptSink prints them as a shell script. Both sinks
// consume the same Command values, so the dry-run script always matches what would run.
package build
