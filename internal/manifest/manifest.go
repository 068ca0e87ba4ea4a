// Package manifest computes content hashes for source documents and reads and writes
// the hash-manifest sidecar recorded next to published artifacts.
//
// The sidecar format is one line per file, "<hash>  <relative-path>", sorted by path.
// Lines starting with '#' are comments and are ignored on read.
package manifest

import (
	"bufio"
	"crypto/md5" //nolint:gosec // content fingerprint, not a security boundary
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FileName is the name of the sidecar inside each published document directory.
const FileName = ".LDP-source-MD5SUMS"

// ErrMalformed indicates a sidecar line that is neither a comment nor a "<hash>  <path>" pair.
var ErrMalformed = errors.New("malformed hash manifest")

// Hashes maps a document-relative, slash-separated file name to its hex content hash.
type Hashes map[string]string

// Names returns the file names in sorted order.
func (h Hashes) Names() []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Equal reports whether both maps record the same files with the same hashes.
func (h Hashes) Equal(other Hashes) bool {
	if len(h) != len(other) {
		return false
	}
	for name, sum := range h {
		if osum, ok := other[name]; !ok || osum != sum {
			return false
		}
	}
	return true
}

// Diff returns the sorted names of files added, removed or changed between old and cur.
func Diff(old, cur Hashes) []string {
	var changed []string
	for name, sum := range cur {
		if osum, ok := old[name]; !ok || osum != sum {
			changed = append(changed, name)
		}
	}
	for name := range old {
		if _, ok := cur[name]; !ok {
			changed = append(changed, name)
		}
	}
	slices.Sort(changed)
	return changed
}

// HashFile returns the hex MD5 of the file contents.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := md5.New() //nolint:gosec // see import
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashTree hashes every regular file below root. Keys are relative to root.
func HashTree(root string) (Hashes, error) {
	hashes := make(Hashes)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		sum, err := HashFile(path)
		if err != nil {
			return err
		}
		hashes[filepath.ToSlash(rel)] = sum
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("hash tree %s: %w", root, err)
	}
	return hashes, nil
}

// Read parses a sidecar stream.
func Read(r io.Reader) (Hashes, error) {
	hashes := make(Hashes)
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sum, name, ok := strings.Cut(line, "  ")
		if !ok || sum == "" || name == "" {
			return nil, fmt.Errorf("%w: line %d: %q", ErrMalformed, lineno, line)
		}
		hashes[name] = sum
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return hashes, nil
}

// ReadFile parses the sidecar at path. A missing file yields an error wrapping fs.ErrNotExist.
func ReadFile(path string) (Hashes, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	hashes, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return hashes, nil
}

// Write renders hashes in sidecar format, preceded by the given comment lines.
func Write(w io.Writer, hashes Hashes, comments ...string) error {
	bw := bufio.NewWriter(w)
	for _, c := range comments {
		if _, err := fmt.Fprintf(bw, "# %s\n", c); err != nil {
			return err
		}
	}
	for _, name := range hashes.Names() {
		if _, err := fmt.Fprintf(bw, "%s  %s\n", hashes[name], name); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes the sidecar atomically: a temporary file in the same directory is renamed
// over path, so readers never see a truncated manifest.
func WriteFile(path string, hashes Hashes, comments ...string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}
	tmpName := tmp.Name()
	if err := Write(tmp, hashes, comments...); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close manifest: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod manifest: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename manifest: %w", err)
	}
	return nil
}
