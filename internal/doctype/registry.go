package doctype

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"sort"

	"git.home.luguber.info/inful/docpub/internal/build"
	ferrors "git.home.luguber.info/inful/docpub/internal/foundation/errors"
	"git.home.luguber.info/inful/docpub/internal/logfields"
)

// Registry is an explicit table of document types. It implements document.Guesser.
type Registry struct {
	types  []*Doctype
	byName map[string]*Doctype
}

// NewRegistry validates every definition and its build graph.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Doctype, len(defs))}
	for _, def := range defs {
		dt, err := newDoctype(def)
		if err != nil {
			return nil, ferrors.ConfigError("invalid document type declaration").
				WithContext("doctype", def.Name).WithCause(err).Build()
		}
		if _, dup := r.byName[dt.Name]; dup {
			return nil, ferrors.ConfigError("duplicate document type").
				WithContext("doctype", dt.Name).Build()
		}
		r.types = append(r.types, dt)
		r.byName[dt.Name] = dt
	}
	return r, nil
}

// Default returns the registry of built-in document types.
func Default() (*Registry, error) {
	return NewRegistry(Linuxdoc(), DocbookSGML(), Docbook4XML(), Docbook5XML(), AsciiDoc(), Markdown(), RestructuredText())
}

// Lookup returns a document type by name.
func (r *Registry) Lookup(name string) (*Doctype, bool) {
	dt, ok := r.byName[name]
	return dt, ok
}

// All returns the document types in registration order.
func (r *Registry) All() []*Doctype { return slices.Clone(r.types) }

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.types))
	for i, dt := range r.types {
		names[i] = dt.Name
	}
	return names
}

// Extensions returns every recognised extension, sorted and unique.
func (r *Registry) Extensions() []string {
	var exts []string
	for _, dt := range r.types {
		for _, e := range dt.Extensions {
			if !slices.Contains(exts, e) {
				exts = append(exts, e)
			}
		}
	}
	sort.Strings(exts)
	return exts
}

// Guess names the document type of path, or "" when it cannot be determined.
//
// Only types declaring the file's extension are candidates. A single candidate wins
// outright; otherwise the first kilobyte of the file is searched for each candidate's
// signatures and the signature found earliest in the file wins.
func (r *Registry) Guess(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	var candidates []*Doctype
	for _, dt := range r.types {
		if dt.HandlesExtension(ext) {
			candidates = append(candidates, dt)
		}
	}
	switch len(candidates) {
	case 0:
		slog.Debug("Unknown extension", logfields.Path(path))
		return ""
	case 1:
		return candidates[0].Name
	}

	head, err := readHead(path)
	if err != nil {
		slog.Warn("Cannot read file for doctype signature", logfields.Path(path), logfields.Error(err))
		return ""
	}
	best, bestIdx := "", -1
	for _, dt := range candidates {
		idx := dt.SignatureIndex(head)
		if idx < 0 {
			continue
		}
		slog.Debug("Doctype signature found", logfields.Path(path), logfields.Doctype(dt.Name), slog.Int("offset", idx))
		if bestIdx < 0 || idx < bestIdx {
			best, bestIdx = dt.Name, idx
		}
	}
	if best == "" {
		slog.Warn("No doctype signature matched", logfields.Path(path))
	}
	return best
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	buf := make([]byte, signatureWindow)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}

// ResolveTools returns the tool path for every requirement key of every type: the configured
// value when present, otherwise the default resolved on PATH, otherwise the bare default.
func (r *Registry) ResolveTools(configured map[string]string) map[string]string {
	tools := make(map[string]string)
	for k, v := range configured {
		tools[k] = v
	}
	for _, dt := range r.types {
		for _, req := range dt.Requirements {
			if tools[req.Key] != "" {
				continue
			}
			tools[req.Key] = resolveDefault(req)
		}
	}
	return tools
}

func resolveDefault(req build.Requirement) string {
	if req.Default == "" || filepath.IsAbs(req.Default) {
		return req.Default
	}
	if p, err := exec.LookPath(req.Default); err == nil {
		return p
	}
	return req.Default
}
