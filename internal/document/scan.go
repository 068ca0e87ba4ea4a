package document

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	ferrors "git.home.luguber.info/inful/docpub/internal/foundation/errors"
	"git.home.luguber.info/inful/docpub/internal/logfields"
)

// ScanSources enumerates the documents below each source root. Stems are unique across all
// roots: the first document found for a stem wins and later ones are discarded with a warning.
// A directory-form document with several candidate files is reported and skipped; a missing
// root fails the whole scan.
func ScanSources(g Guesser, dirs ...string) (SourceCollection, error) {
	roots, err := absRoots(dirs)
	if err != nil {
		return nil, err
	}
	var exts []string
	if g != nil {
		exts = g.Extensions()
	}

	docs := make(SourceCollection)
	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, ferrors.FileSystemError("cannot read source directory").
				WithContext("path", root).WithCause(err).Build()
		}
		found := 0
		for _, entry := range entries {
			src, err := scanSourceEntry(filepath.Join(root, entry.Name()), exts, g)
			if err != nil {
				slog.Error("Skipping source document", logfields.Path(filepath.Join(root, entry.Name())), logfields.Error(err))
				continue
			}
			if src == nil {
				continue
			}
			if prev, dup := docs[src.Stem]; dup {
				slog.Warn("Duplicate stem, keeping first match",
					logfields.Stem(src.Stem),
					slog.String("kept", prev.Filename),
					slog.String("discarded", src.Filename))
				continue
			}
			docs[src.Stem] = src
			found++
		}
		slog.Debug("Scanned source directory", logfields.Path(root), logfields.Count(found))
	}
	slog.Info("Discovered source documents", logfields.Count(len(docs)))
	return docs, nil
}

func scanSourceEntry(path string, exts []string, g Guesser) (*Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	switch {
	case info.Mode().IsRegular():
		if !slices.Contains(exts, filepath.Ext(path)) {
			slog.Debug("Ignoring file with unrecognized extension", logfields.Path(path))
			return nil, nil
		}
		return NewSource(path, g)
	case info.IsDir():
		primary, err := ResolveDirectory(path, exts)
		if err != nil {
			return nil, err
		}
		if primary == "" {
			slog.Debug("Directory holds no document", logfields.Path(path))
			return nil, nil
		}
		return NewSource(primary, g)
	default:
		slog.Debug("Skipping special file", logfields.Path(path), slog.String("mode", info.Mode().String()))
		return nil, nil
	}
}

// ScanOutputs enumerates the publication root: every immediate subdirectory is one output
// directory. Other entries, and dot-directories left by an interrupted publish, are skipped.
func ScanOutputs(pubdir string) (OutputCollection, error) {
	roots, err := absRoots([]string{pubdir})
	if err != nil {
		return nil, err
	}
	root := roots[0]
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, ferrors.FileSystemError("cannot read publication directory").
			WithContext("path", root).WithCause(err).Build()
	}
	outs := make(OutputCollection)
	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())
		if strings.HasPrefix(entry.Name(), ".") {
			slog.Debug("Skipping hidden entry in publication directory", logfields.Path(path))
			continue
		}
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			slog.Debug("Skipping non-directory in publication directory", logfields.Path(path))
			continue
		}
		outs[entry.Name()] = NewOutput(path)
	}
	slog.Info("Discovered output directories", logfields.Count(len(outs)), logfields.Path(root))
	return outs, nil
}

func absRoots(dirs []string) ([]string, error) {
	if len(dirs) == 0 {
		return nil, ferrors.ConfigError("no directories given").Build()
	}
	var missing []string
	roots := make([]string, 0, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, err
		}
		if fi, err := os.Stat(abs); err != nil || !fi.IsDir() {
			slog.Error("Directory does not exist", logfields.Path(abs))
			missing = append(missing, abs)
			continue
		}
		roots = append(roots, abs)
	}
	if len(missing) > 0 {
		return nil, ferrors.NotFoundError("directory does not exist").
			WithContext("paths", missing).
			WithCause(fmt.Errorf("%w: %s", ErrNotFound, strings.Join(missing, ", "))).
			Build()
	}
	return roots, nil
}

// IsNotFound reports whether err concerns a missing root or document.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
