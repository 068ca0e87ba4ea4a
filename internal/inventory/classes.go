package inventory

import (
	"fmt"
	"sort"

	"git.home.luguber.info/inful/docpub/internal/document"
	ferrors "git.home.luguber.info/inful/docpub/internal/foundation/errors"
	"git.home.luguber.info/inful/docpub/internal/util/sets"
)

// Status class names accepted by Class.
const (
	ClassSources   = "sources"
	ClassOutputs   = "outputs"
	ClassNew       = "new"
	ClassOrphan    = "orphan"
	ClassPublished = "published"
	ClassStale     = "stale"
	ClassBroken    = "broken"
	ClassProblems  = "problems"
	ClassWork      = "work"
	ClassAll       = "all"
)

var classAliases = map[string]string{
	"orphans":  ClassOrphan,
	"orphaned": ClassOrphan,
}

// Classes lists the canonical class names.
func Classes() []string {
	return []string{
		ClassSources, ClassOutputs, ClassNew, ClassOrphan, ClassPublished,
		ClassStale, ClassBroken, ClassProblems, ClassWork, ClassAll,
	}
}

// CanonicalClass resolves aliases; ok is false for unknown names.
func CanonicalClass(name string) (string, bool) {
	if alias, ok := classAliases[name]; ok {
		return alias, true
	}
	for _, c := range Classes() {
		if c == name {
			return c, true
		}
	}
	return "", false
}

// Entry is one listed document. Orphans have no Source.
type Entry struct {
	Stem   string
	Source *document.Source
	Output *document.Output
}

// Status returns the tags of the entry.
func (e Entry) Status() document.Status {
	if e.Source != nil {
		return e.Source.Status
	}
	if e.Output != nil {
		return e.Output.Status
	}
	return 0
}

// Stems returns the stems of a status class in case-insensitive order. Grouped classes are
// unions: problems = orphan+broken+stale, work = new+problems, all = published+work.
func (inv *Inventory) Stems(class string) ([]string, error) {
	canonical, ok := CanonicalClass(class)
	if !ok {
		return nil, ferrors.ValidationError(fmt.Sprintf("unknown status class %q", class)).
			WithContext("valid", Classes()).Build()
	}
	var members sets.Set[string]
	switch canonical {
	case ClassSources:
		members = sets.FromKeys(inv.Sources)
	case ClassOutputs:
		members = sets.FromKeys(inv.Outputs)
	case ClassNew:
		members = sets.FromKeys(inv.New)
	case ClassOrphan:
		members = sets.FromKeys(inv.Orphan)
	case ClassPublished:
		members = sets.FromKeys(inv.Published)
	case ClassStale:
		members = sets.FromKeys(inv.Stale)
	case ClassBroken:
		members = sets.FromKeys(inv.Broken)
	case ClassProblems:
		members = inv.problems()
	case ClassWork:
		members = inv.work()
	case ClassAll:
		members = inv.work().Union(sets.FromKeys(inv.Published))
	}
	stems := sets.Sorted(members)
	document.SortStems(stems)
	return stems, nil
}

func (inv *Inventory) problems() sets.Set[string] {
	return sets.FromKeys(inv.Orphan).Union(sets.FromKeys(inv.Broken)).Union(sets.FromKeys(inv.Stale))
}

func (inv *Inventory) work() sets.Set[string] {
	return sets.FromKeys(inv.New).Union(inv.problems())
}

// Entries resolves the stems of several classes (deduplicated) to listing entries.
func (inv *Inventory) Entries(classes ...string) ([]Entry, error) {
	seen := sets.New[string]()
	for _, class := range classes {
		stems, err := inv.Stems(class)
		if err != nil {
			return nil, err
		}
		for _, s := range stems {
			seen.Add(s)
		}
	}
	stems := sets.Sorted(seen)
	document.SortStems(stems)
	entries := make([]Entry, 0, len(stems))
	for _, stem := range stems {
		entries = append(entries, inv.Entry(stem))
	}
	return entries, nil
}

// Entry returns the listing entry for stem; zero Source and Output when unknown.
func (inv *Inventory) Entry(stem string) Entry {
	return Entry{Stem: stem, Source: inv.Sources[stem], Output: inv.Outputs[stem]}
}

// SourcesOf returns the source documents of a status class; orphans contribute nothing.
func (inv *Inventory) SourcesOf(class string) ([]*document.Source, error) {
	stems, err := inv.Stems(class)
	if err != nil {
		return nil, err
	}
	out := make([]*document.Source, 0, len(stems))
	for _, stem := range stems {
		if src, ok := inv.Sources[stem]; ok {
			out = append(out, src)
		}
	}
	return out, nil
}

// SortedClasses returns the names accepted on the command line, aliases included.
func SortedClasses() []string {
	names := Classes()
	for alias := range classAliases {
		names = append(names, alias)
	}
	sort.Strings(names)
	return names
}
