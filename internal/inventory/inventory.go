// Package inventory reconciles the source tree with the publication tree and classifies
// every document as new, orphan or published, tagging published documents stale or broken.
package inventory

import (
	"fmt"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/docpub/internal/document"
	ferrors "git.home.luguber.info/inful/docpub/internal/foundation/errors"
	"git.home.luguber.info/inful/docpub/internal/logfields"
	"git.home.luguber.info/inful/docpub/internal/manifest"
	"git.home.luguber.info/inful/docpub/internal/util/sets"
)

// Inventory is the classification of one scan. It is never updated in place; scan again
// to observe filesystem changes.
type Inventory struct {
	PubDir     string
	SourceDirs []string

	Sources document.SourceCollection
	Outputs document.OutputCollection

	New       document.SourceCollection
	Orphan    document.OutputCollection
	Published document.SourceCollection
	Stale     document.SourceCollection
	Broken    document.SourceCollection
}

// New scans pubdir and the source directories and classifies the result.
func New(pubdir string, sourcedirs []string, g document.Guesser) (*Inventory, error) {
	outputs, err := document.ScanOutputs(pubdir)
	if err != nil {
		return nil, err
	}
	sources, err := document.ScanSources(g, sourcedirs...)
	if err != nil {
		return nil, err
	}
	inv, err := Classify(sources, outputs)
	if err != nil {
		return nil, err
	}
	inv.PubDir = pubdir
	inv.SourceDirs = sourcedirs
	slog.Info("Inventory classified", slog.String("summary", inv.Summary()))
	return inv, nil
}

// Classify reconciles already scanned collections. Status tags on the documents are reset
// so classifying the same scan twice gives the same result.
func Classify(sources document.SourceCollection, outputs document.OutputCollection) (*Inventory, error) {
	inv := &Inventory{
		Sources:   sources,
		Outputs:   outputs,
		New:       make(document.SourceCollection),
		Orphan:    make(document.OutputCollection),
		Published: make(document.SourceCollection),
		Stale:     make(document.SourceCollection),
		Broken:    make(document.SourceCollection),
	}
	for _, src := range sources {
		src.Status = document.StatusSource
		src.Output = nil
		src.Changed = nil
	}
	for _, out := range outputs {
		out.Status = document.StatusOutput
		out.Source = nil
	}

	s := sets.FromKeys(sources)
	o := sets.FromKeys(outputs)

	for _, stem := range sets.Sorted(o.Difference(s)) {
		out := outputs[stem]
		out.Status = out.Status.With(document.StatusOrphan)
		inv.Orphan[stem] = out
	}
	for _, stem := range sets.Sorted(s.Difference(o)) {
		src := sources[stem]
		src.Status = src.Status.With(document.StatusNew)
		inv.New[stem] = src
	}

	for _, stem := range sets.Sorted(s.Intersection(o)) {
		src, out := sources[stem], outputs[stem]
		src.Output, out.Source = out, src
		src.Status = src.Status.With(document.StatusPublished)
		out.Status = out.Status.With(document.StatusPublished)
		inv.Published[stem] = src

		if !out.IsComplete() {
			slog.Debug("Published document is missing artifacts",
				logfields.Stem(stem), slog.Any("missing", out.Missing()))
			tag(src, document.StatusBroken)
			inv.Broken[stem] = src
		}

		recorded, err := out.Manifest()
		if err != nil {
			return nil, ferrors.FileSystemError("cannot read hash manifest").
				WithContext("stem", stem).
				WithContext("path", out.ManifestPath()).
				WithCause(err).Build()
		}
		if changed := manifest.Diff(recorded, src.Hashes); len(changed) > 0 {
			slog.Debug("Published document has changed sources",
				logfields.Stem(stem), slog.Any("changed", changed))
			src.Changed = changed
			tag(src, document.StatusStale)
			inv.Stale[stem] = src
		}
	}
	return inv, nil
}

func tag(src *document.Source, t document.Status) {
	src.Status = src.Status.With(t)
	src.Output.Status = src.Output.Status.With(t)
}

// Counts returns the number of documents per status type in listing order.
func (inv *Inventory) Counts() []Count {
	return []Count{
		{ClassSources, len(inv.Sources)},
		{ClassOutputs, len(inv.Outputs)},
		{ClassPublished, len(inv.Published)},
		{ClassNew, len(inv.New)},
		{ClassOrphan, len(inv.Orphan)},
		{ClassStale, len(inv.Stale)},
		{ClassBroken, len(inv.Broken)},
	}
}

// Count pairs a status class with its size.
type Count struct {
	Class string
	N     int
}

// Summary renders Counts on one line.
func (inv *Inventory) Summary() string {
	parts := make([]string, 0, 7)
	for _, c := range inv.Counts() {
		parts = append(parts, fmt.Sprintf("%d %s", c.N, c.Class))
	}
	return strings.Join(parts, ", ")
}

func (inv *Inventory) String() string {
	return fmt.Sprintf("inventory of %s: %s", inv.PubDir, inv.Summary())
}
