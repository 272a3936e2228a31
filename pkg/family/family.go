// Package family groups record files into families by naming convention.
//
// A file named "<base>_<tag>.csv" whose tag belongs to the vocabulary is a
// variant of family <base>; any other file is the base member of the
// family named after its whole stem.
package family

import (
	"sort"
	"strings"
)

// Member is one physical file of a family. Suffix is empty for the base file.
type Member struct {
	Path   string `json:"path" yaml:"path"`
	Suffix string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
}

// IsBase reports whether the member is an unsuffixed file.
func (m Member) IsBase() bool { return m.Suffix == "" }

// Family is a named, ordered set of members.
type Family struct {
	Name    string   `json:"name" yaml:"name"`
	Members []Member `json:"members" yaml:"members"`
}

// Base returns the first base member, if any.
func (f Family) Base() (Member, bool) {
	if len(f.Members) > 0 && f.Members[0].IsBase() {
		return f.Members[0], true
	}
	return Member{}, false
}

// Variants returns the suffixed members in order.
func (f Family) Variants() []Member {
	var out []Member
	for _, m := range f.Members {
		if !m.IsBase() {
			out = append(out, m)
		}
	}
	return out
}

// Paths returns member paths in merge order.
func (f Family) Paths() []string {
	out := make([]string, len(f.Members))
	for i, m := range f.Members {
		out[i] = m.Path
	}
	return out
}

// sortMembers puts base files first (by path), then variants by suffix.
func sortMembers(members []Member) {
	sort.SliceStable(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if a.IsBase() != b.IsBase() {
			return a.IsBase()
		}
		if a.Suffix != b.Suffix {
			return a.Suffix < b.Suffix
		}
		return a.Path < b.Path
	})
}

// ScanResult is the outcome of one discovery pass.
type ScanResult struct {
	Families   []Family `json:"families" yaml:"families"`
	TotalFiles int      `json:"total_files" yaml:"total_files"`
	Roots      []string `json:"roots" yaml:"roots"`
}

// Find returns the family with the given name.
func (r *ScanResult) Find(name string) (Family, bool) {
	i := sort.Search(len(r.Families), func(i int) bool {
		return r.Families[i].Name >= name
	})
	if i < len(r.Families) && r.Families[i].Name == name {
		return r.Families[i], true
	}
	return Family{}, false
}

// Names returns all family names in sorted order.
func (r *ScanResult) Names() []string {
	out := make([]string, len(r.Families))
	for i, f := range r.Families {
		out[i] = f.Name
	}
	return out
}

// Search returns families whose name contains pattern, ignoring case.
func (r *ScanResult) Search(pattern string) []Family {
	needle := strings.ToLower(pattern)
	var out []Family
	for _, f := range r.Families {
		if strings.Contains(strings.ToLower(f.Name), needle) {
			out = append(out, f)
		}
	}
	return out
}
