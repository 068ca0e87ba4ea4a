package build

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/docpub/internal/document"
)

// Job is everything a step needs to template its commands for one document.
type Job struct {
	Stem    string
	Doctype string
	// Source is the absolute path of the primary source file.
	Source    string
	SourceDir string
	// OutputDir is the directory the artifacts are built in; commands run there.
	OutputDir string
	// LogDir receives captured tool output and the rendered step scripts.
	LogDir string
	Tools  map[string]string
	// Verify, when set, checks the output directory after every step succeeded in build
	// mode. An error fails the build and keeps the log directory.
	Verify func() error
}

// NewJob prepares a job that builds src into outputDir.
func NewJob(src *document.Source, outputDir string, tools map[string]string) *Job {
	return &Job{
		Stem:      src.Stem,
		Doctype:   src.Doctype,
		Source:    src.Filename,
		SourceDir: src.Dirname,
		OutputDir: outputDir,
		LogDir:    filepath.Join(outputDir, "logs"),
		Tools:     tools,
	}
}

// Tool returns the configured path of a tool key, falling back to the key itself.
func (j *Job) Tool(key string) string {
	if p := j.Tools[key]; p != "" {
		return p
	}
	return key
}

// Artifacts returns the artifact file names relative to the output directory.
func (j *Job) Artifacts() document.Artifacts { return document.ArtifactsFor("", j.Stem) }

// File names a per-document file in the output directory, e.g. File(".fo").
func (j *Job) File(suffix string) string { return j.Stem + suffix }

func (j *Job) String() string { return fmt.Sprintf("%s (%s)", j.Stem, j.Doctype) }
