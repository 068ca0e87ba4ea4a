package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/docpub/internal/foundation/errors"
	"git.home.luguber.info/inful/docpub/internal/manifest"
)

// Guesser assigns a doctype to a source file. An empty doctype marks the document unbuildable.
type Guesser interface {
	Extensions() []string
	Guess(path string) string
}

// resourceDirs mark a directory-form document that carries its own assets.
var resourceDirs = []string{"images", "resources"}

// Source is a source document: a single file, or a directory named after the stem that
// contains exactly one stem.<ext> file.
type Source struct {
	Stem       string
	Filename   string // absolute path of the primary file
	Dirname    string // directory holding the primary file
	Ext        string
	Doctype    string
	SingleFile bool
	Resources  bool

	// Hashes covers the primary file for single-file documents and the whole
	// directory tree for directory-form documents.
	Hashes manifest.Hashes

	Output  *Output
	Status  Status
	Changed []string // files differing from the last published manifest
}

// NewSource inspects and hashes the document whose primary file is filename.
func NewSource(filename string, g Guesser) (*Source, error) {
	abs, err := filepath.Abs(filename)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.NotFoundError("missing source document").
				WithSeverity(ferrors.SeverityError).
				WithContext("path", abs).
				WithCause(fmt.Errorf("%w: %s", ErrNotFound, abs)).
				Build()
		}
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, ferrors.ValidationError("source document is not a plain file").
			WithSeverity(ferrors.SeverityError).
			WithContext("path", abs).
			WithCause(fmt.Errorf("%w: %s", ErrNotRegular, abs)).
			Build()
	}

	dirname, basename := filepath.Split(abs)
	dirname = filepath.Clean(dirname)
	ext := filepath.Ext(basename)
	s := &Source{
		Stem:       strings.TrimSuffix(basename, ext),
		Filename:   abs,
		Dirname:    dirname,
		Ext:        ext,
		SingleFile: true,
		Status:     StatusSource,
	}

	if filepath.Base(dirname) == s.Stem {
		s.SingleFile = false
		for _, rdir := range resourceDirs {
			if fi, err := os.Stat(filepath.Join(dirname, rdir)); err == nil && fi.IsDir() {
				s.Resources = true
			}
		}
	}

	if s.SingleFile {
		sum, err := manifest.HashFile(abs)
		if err != nil {
			return nil, err
		}
		s.Hashes = manifest.Hashes{basename: sum}
	} else {
		if s.Hashes, err = manifest.HashTree(dirname); err != nil {
			return nil, err
		}
	}

	if g != nil {
		s.Doctype = g.Guess(abs)
	}
	return s, nil
}

// Buildable reports whether a doctype was assigned.
func (s *Source) Buildable() bool { return s.Doctype != "" }

func (s *Source) String() string {
	return fmt.Sprintf("%s (%s, %s)", s.Stem, s.Filename, s.doctypeName())
}

func (s *Source) doctypeName() string {
	if s.Doctype == "" {
		return "unknown doctype"
	}
	return s.Doctype
}

// ResolveDirectory finds the primary file of a directory-form document: dir/<base(dir)><ext>
// for one of the given extensions. It returns "" when there is none and ErrAmbiguous when
// more than one extension matches.
func ResolveDirectory(dir string, exts []string) (string, error) {
	stem := filepath.Base(dir)
	var found []string
	for _, ext := range exts {
		candidate := filepath.Join(dir, stem+ext)
		if fi, err := os.Stat(candidate); err == nil && fi.Mode().IsRegular() {
			found = append(found, candidate)
		}
	}
	switch len(found) {
	case 0:
		return "", nil
	case 1:
		return found[0], nil
	default:
		return "", ferrors.AmbiguousError("directory contains more than one candidate document").
			WithContext("path", dir).
			WithContext("candidates", found).
			WithCause(fmt.Errorf("%w: %s: %s", ErrAmbiguous, dir, strings.Join(found, ", "))).
			Build()
	}
}
