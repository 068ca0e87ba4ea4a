package build

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/docpub/internal/foundation/errors"
)

// Validator checks one configured tool or file path.
type Validator func(path string) error

// Requirement is a tool key a document type needs before any step can run.
type Requirement struct {
	Key string
	// Default is the command name resolved on PATH when the key is not configured.
	Default string
	Check   Validator
}

// Executable accepts an executable regular file, or a bare command name found on PATH.
func Executable(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	if !filepath.IsAbs(path) && filepath.Base(path) == path {
		if _, err := exec.LookPath(path); err != nil {
			return err
		}
		return nil
	}
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !fi.Mode().IsRegular() || fi.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}

// ReadableFile accepts a regular file that can be opened for reading.
func ReadableFile(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}

// Precheck validates requirements in order against the configured tools and reports the
// first one that fails.
func Precheck(reqs []Requirement, tools map[string]string) error {
	for _, r := range reqs {
		path := tools[r.Key]
		if path == "" {
			path = r.Default
		}
		check := r.Check
		if check == nil {
			check = Executable
		}
		if err := check(path); err != nil {
			return ferrors.PrecheckError(fmt.Sprintf("required tool %s unavailable", r.Key)).
				WithContext("tool", r.Key).
				WithContext("path", path).
				WithCause(fmt.Errorf("%w: %s=%q: %w", ErrPrecheckFailed, r.Key, path, err)).
				Build()
		}
	}
	return nil
}
