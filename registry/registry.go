// Package registry builds canonical, structural inventory of stylesheet
// rules: every selector and every leaf at-rule header is recorded under its
// normalized key together with all places it occurs.
package registry

import "sort"

// Occurrence is a single appearance of a key in a stylesheet.
type Occurrence struct {
	Container string // header of immediately enclosing container at-rule, empty at top level
	Body      string // serialized block content, trimmed
	Line      int
}

// TopLevel reports whether occurrence is not wrapped in container at-rule.
func (o Occurrence) TopLevel() bool {
	return o.Container == ""
}

// Registry maps canonical keys to their occurrences in insertion order.
// It is built once per stylesheet and only read afterwards.
type Registry struct {
	entries     map[string][]Occurrence
	occurrences int
}

// New returns empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string][]Occurrence)}
}

// Add appends occurrence to the key. Empty keys are ignored.
func (r *Registry) Add(key string, occ Occurrence) {
	if key == "" {
		return
	}
	r.entries[key] = append(r.entries[key], occ)
	r.occurrences++
}

// Has reports whether key is present.
func (r *Registry) Has(key string) bool {
	_, ok := r.entries[key]
	return ok
}

// Occurrences returns all occurrences of the key in the order they were
// encountered.
func (r *Registry) Occurrences(key string) []Occurrence {
	return r.entries[key]
}

// Len returns number of distinct keys.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Count returns total number of occurrences of all keys.
func (r *Registry) Count() int {
	return r.occurrences
}

// Keys returns all keys sorted lexicographically.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
