package naming

import (
	"path"
	"sort"
	"strings"
)

type Variant int

const (
	VariantOriginal Variant = iota
	VariantLinearized
)

func (v Variant) String() string {
	if v == VariantLinearized {
		return "linearized"
	}
	return "original"
}

const (
	DefaultOriginalTag = "original_"
	DefaultLinearTag   = "linear_"
)

// Tags holds the filename prefixes that mark each stored variant.
type Tags struct {
	Original string
	Linear   string
}

func DefaultTags() Tags {
	return Tags{Original: DefaultOriginalTag, Linear: DefaultLinearTag}
}

// Classify decides the variant of a document reference. Only the last path
// element is inspected, so both bare names and /pdf/ URLs work.
func (t Tags) Classify(ref string) Variant {
	name := baseOf(ref)
	if t.Linear != "" && strings.HasPrefix(name, t.Linear) {
		return VariantLinearized
	}
	return VariantOriginal
}

// BaseName strips the recognised tag prefix. Underscores after the prefix
// belong to the base name. Untagged names are returned whole with ok=false.
func (t Tags) BaseName(ref string) (string, bool) {
	name := baseOf(ref)
	switch {
	case t.Linear != "" && strings.HasPrefix(name, t.Linear):
		return strings.TrimPrefix(name, t.Linear), true
	case t.Original != "" && strings.HasPrefix(name, t.Original):
		return strings.TrimPrefix(name, t.Original), true
	default:
		return name, false
	}
}

func (t Tags) Name(v Variant, base string) string {
	if v == VariantLinearized {
		return t.Linear + base
	}
	return t.Original + base
}

// PairName returns the stored name of the other variant of ref.
func (t Tags) PairName(ref string) string {
	base, _ := t.BaseName(ref)
	if t.Classify(ref) == VariantLinearized {
		return t.Name(VariantOriginal, base)
	}
	return t.Name(VariantLinearized, base)
}

type Pair struct {
	Base       string `json:"base_name"`
	Original   string `json:"original,omitempty"`
	Linearized string `json:"linearized,omitempty"`
}

func (p Pair) Complete() bool {
	return p.Original != "" && p.Linearized != ""
}

func (p Pair) Ref(v Variant) string {
	if v == VariantLinearized {
		return p.Linearized
	}
	return p.Original
}

// Group pairs stored names sharing a base name, sorted by base name.
func (t Tags) Group(names []string) []Pair {
	byBase := make(map[string]*Pair, len(names))
	order := make([]string, 0, len(names))
	for _, name := range names {
		base, _ := t.BaseName(name)
		p, ok := byBase[base]
		if !ok {
			p = &Pair{Base: base}
			byBase[base] = p
			order = append(order, base)
		}
		if t.Classify(name) == VariantLinearized {
			p.Linearized = name
		} else {
			p.Original = name
		}
	}
	sort.Strings(order)
	out := make([]Pair, 0, len(order))
	for _, base := range order {
		out = append(out, *byBase[base])
	}
	return out
}

func baseOf(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	return path.Base(ref)
}
