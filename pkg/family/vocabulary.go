package family

import (
	"sort"
	"strings"

	"github.com/agentstation/tablemerge/pkg/constants"
)

// defaultSuffixes are the variant tags recognized out of the box.
var defaultSuffixes = []string{
	"drk", "ep1", "gib", "kcc", "lel", "mem", "shale",
	"str", "val", "vala", "toe", "hrm", "ibmoobs", "gxa",
}

// Vocabulary is a closed set of variant tags. Only a tag in the set turns
// a trailing "_<tag>" into a variant suffix.
type Vocabulary struct {
	tags []string // sorted longest first
}

// DefaultVocabulary returns the built-in variant tags.
func DefaultVocabulary() Vocabulary {
	return NewVocabulary(defaultSuffixes...)
}

// NewVocabulary builds a vocabulary from tags. Blank and duplicate tags are ignored.
func NewVocabulary(tags ...string) Vocabulary {
	seen := make(map[string]bool, len(tags))
	v := Vocabulary{}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		v.tags = append(v.tags, tag)
	}
	sort.SliceStable(v.tags, func(i, j int) bool {
		if len(v.tags[i]) != len(v.tags[j]) {
			return len(v.tags[i]) > len(v.tags[j])
		}
		return v.tags[i] < v.tags[j]
	})
	return v
}

// Tags returns the tags sorted alphabetically.
func (v Vocabulary) Tags() []string {
	out := append([]string(nil), v.tags...)
	sort.Strings(out)
	return out
}

// Contains reports whether tag is in the vocabulary.
func (v Vocabulary) Contains(tag string) bool {
	for _, t := range v.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Len returns the number of tags.
func (v Vocabulary) Len() int { return len(v.tags) }

// Split derives the base name and variant suffix of a file stem. The
// longest matching tag wins. A stem with no known tag, or whose base
// would be empty, is returned whole with ok false.
func (v Vocabulary) Split(stem string) (base, suffix string, ok bool) {
	for _, tag := range v.tags {
		base, found := strings.CutSuffix(stem, constants.SuffixSeparator+tag)
		if found && base != "" {
			return base, tag, true
		}
	}
	return stem, "", false
}
