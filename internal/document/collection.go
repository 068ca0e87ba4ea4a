package document

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Collection is a stem-keyed set of documents.
type Collection[T any] map[string]T

// SourceCollection holds source documents by stem.
type SourceCollection = Collection[*Source]

// OutputCollection holds output directories by stem.
type OutputCollection = Collection[*Output]

// Has reports whether stem is present.
func (c Collection[T]) Has(stem string) bool {
	_, ok := c[stem]
	return ok
}

// Keys returns the stems in case-insensitive order.
func (c Collection[T]) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	SortStems(keys)
	return keys
}

// Values returns the documents ordered by Keys.
func (c Collection[T]) Values() []T {
	keys := c.Keys()
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, c[k])
	}
	return out
}

// SortStems sorts stems case-insensitively (Unicode case folding); stems differing only in
// case keep a stable byte order.
func SortStems(stems []string) {
	fold := cases.Fold()
	slices.SortFunc(stems, func(a, b string) int {
		if c := strings.Compare(fold.String(a), fold.String(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
}
