package document

import "strings"

// Status is a set of lifecycle tags. A classified document carries exactly one of
// new, orphan or published; published documents may additionally carry stale and broken.
type Status uint8

const (
	StatusSource Status = 1 << iota
	StatusOutput
	StatusNew
	StatusOrphan
	StatusPublished
	StatusStale
	StatusBroken
)

var statusNames = []struct {
	tag  Status
	name string
}{
	{StatusSource, "source"},
	{StatusOutput, "output"},
	{StatusNew, "new"},
	{StatusOrphan, "orphan"},
	{StatusPublished, "published"},
	{StatusStale, "stale"},
	{StatusBroken, "broken"},
}

// Has reports whether every tag in t is set.
func (s Status) Has(t Status) bool { return t != 0 && s&t == t }

// With returns s with the tags in t added.
func (s Status) With(t Status) Status { return s | t }

// Tags returns the tag names in declaration order.
func (s Status) Tags() []string {
	var tags []string
	for _, sn := range statusNames {
		if s&sn.tag != 0 {
			tags = append(tags, sn.name)
		}
	}
	return tags
}

func (s Status) String() string {
	if s == 0 {
		return "none"
	}
	return strings.Join(s.Tags(), ",")
}

// ParseStatus maps a single tag name to its Status.
func ParseStatus(name string) (Status, bool) {
	for _, sn := range statusNames {
		if sn.name == name {
			return sn.tag, true
		}
	}
	return 0, false
}
