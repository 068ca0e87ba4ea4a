package doctype

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docpub/internal/build"
)

// Step names shared by the document types.
const (
	StepResources = "resources"
	StepHTMLS     = "htmls"
	StepTXT       = "txt"
	StepPDF       = "pdf"
	StepHTML      = "html"
	StepIndex     = "index"
)

// resourceDirs are copied next to the artifacts of directory-form documents.
var resourceDirs = []string{"images", "resources"}

func exe(key, def string) build.Requirement {
	return build.Requirement{Key: key, Default: def, Check: build.Executable}
}

func file(key, def string) build.Requirement {
	return build.Requirement{Key: key, Default: def, Check: build.ReadableFile}
}

// resourcesStep copies the image and resource directories of a directory-form document into
// the output directory. Single-file documents have nothing to copy.
func resourcesStep() *build.Step {
	return &build.Step{
		Name: StepResources,
		Commands: func(j *build.Job) []build.Command {
			if filepath.Base(j.SourceDir) != j.Stem {
				return nil
			}
			var cmds []build.Command
			for _, d := range resourceDirs {
				src := filepath.Join(j.SourceDir, d)
				if fi, err := os.Stat(src); err == nil && fi.IsDir() {
					cmds = append(cmds, build.Cmd("cp", "-a", "--", src, "."))
				}
			}
			return cmds
		},
	}
}

// html2textStep renders STEM.txt from the single-page HTML.
func html2textStep(key string) *build.Step {
	return &build.Step{
		Name:      StepTXT,
		DependsOn: []string{StepHTMLS},
		Commands: func(j *build.Job) []build.Command {
			return []build.Command{
				build.Cmd(j.Tool(key), "-style", "pretty", "-nobs", j.File("-single.html")).To(j.File(".txt")),
			}
		},
	}
}

// indexLinkStep points index.html at STEM.html.
func indexLinkStep(dependsOn string) *build.Step {
	return &build.Step{
		Name:      StepIndex,
		DependsOn: []string{dependsOn},
		Commands: func(j *build.Job) []build.Command {
			return []build.Command{build.Cmd("ln", "-sf", "--", j.File(".html"), "index.html")}
		},
	}
}
