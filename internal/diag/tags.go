package diag

import "strings"

// Tags is a bitset of diagnostic properties.
type Tags uint8

const (
	TagVerbose Tags = 1 << iota
	TagInternal
	TagFixable
	TagDeprecated
	TagUnnecessary
)

var tagNames = [...]struct {
	tag  Tags
	name string
}{
	{TagVerbose, "verbose"},
	{TagInternal, "internal"},
	{TagFixable, "fixable"},
	{TagDeprecated, "deprecated"},
	{TagUnnecessary, "unnecessary"},
}

func (t Tags) Has(o Tags) bool { return t&o == o }

// Names lists set tags in bit order.
func (t Tags) Names() []string {
	var out []string
	for _, tn := range tagNames {
		if t&tn.tag != 0 {
			out = append(out, tn.name)
		}
	}
	return out
}

func (t Tags) String() string {
	return strings.Join(t.Names(), "|")
}

// ParseTags is the inverse of Names; unknown names are ignored.
func ParseTags(names []string) Tags {
	var t Tags
	for _, n := range names {
		for _, tn := range tagNames {
			if tn.name == n {
				t |= tn.tag
			}
		}
	}
	return t
}
