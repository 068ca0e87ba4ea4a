package driver

import (
	"log/slog"
	"os"

	"git.home.luguber.info/inful/docpub/internal/document"
	ferrors "git.home.luguber.info/inful/docpub/internal/foundation/errors"
	"git.home.luguber.info/inful/docpub/internal/inventory"
	"git.home.luguber.info/inful/docpub/internal/logfields"
	"git.home.luguber.info/inful/docpub/internal/util/sets"
)

// Worklist resolves command-line selectors against inv. A selector is a status class
// name, a known stem, or a path to a source document. No selectors means the work class.
// Each document appears once, in selector order. Documents matching a skip filter or
// without a doctype are returned in skipped rather than in docs.
func (d *Driver) Worklist(inv *inventory.Inventory, selectors ...string) (docs []*document.Source, skipped []string, err error) {
	if len(selectors) == 0 {
		selectors = []string{inventory.ClassWork}
	}

	seen := sets.New[string]()
	add := func(src *document.Source) {
		if seen.Has(src.Stem) {
			return
		}
		seen.Add(src.Stem)
		switch {
		case d.skip.Has(src.Stem) || d.skip.Has(src.Doctype):
			slog.Info("Skipping document", logfields.Stem(src.Stem), logfields.Doctype(src.Doctype))
			skipped = append(skipped, src.Stem)
		case !src.Buildable():
			slog.Warn("Skipping document of unknown type", logfields.Stem(src.Stem), logfields.Path(src.Filename))
			skipped = append(skipped, src.Stem)
		default:
			docs = append(docs, src)
		}
	}

	for _, sel := range selectors {
		if _, ok := inventory.CanonicalClass(sel); ok {
			srcs, err := inv.SourcesOf(sel)
			if err != nil {
				return nil, nil, err
			}
			for _, src := range srcs {
				add(src)
			}
			continue
		}
		if src, ok := inv.Sources[sel]; ok {
			add(src)
			continue
		}
		if _, statErr := os.Stat(sel); statErr == nil {
			src, err := d.sourceAt(inv, sel)
			if err != nil {
				return nil, nil, err
			}
			add(src)
			continue
		}
		if _, ok := inv.Orphan[sel]; ok {
			slog.Info("Orphan has no source to build", logfields.Stem(sel))
			continue
		}
		return nil, nil, ferrors.NotFoundError("no document, status class or path matches").
			WithContext("selector", sel).
			WithContext("classes", inventory.SortedClasses()).
			Build()
	}
	return docs, skipped, nil
}

// sourceAt builds a source for a path given on the command line and links it to its
// published output when there is one.
func (d *Driver) sourceAt(inv *inventory.Inventory, path string) (*document.Source, error) {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		resolved, err := document.ResolveDirectory(path, d.registry.Extensions())
		if err != nil {
			return nil, err
		}
		if resolved == "" {
			return nil, ferrors.NotFoundError("directory holds no recognised source document").
				WithContext("path", path).
				Build()
		}
		path = resolved
	}
	src, err := document.NewSource(path, d.registry)
	if err != nil {
		return nil, err
	}
	if known, ok := inv.Sources[src.Stem]; ok && known.Filename == src.Filename {
		return known, nil
	}
	if out, ok := inv.Outputs[src.Stem]; ok {
		src.Output = out
	}
	return src, nil
}
