// Package diff compares two rule registries and renders the result for
// human review.
package diff

import (
	"sort"

	"cssdiff/registry"
)

// MissingKeys returns keys present in long registry but absent from short one,
// sorted lexicographically. Presence is all that matters: occurrence counts,
// bodies and containers are not compared.
func MissingKeys(long, short *registry.Registry) []string {
	var missing []string
	for _, key := range long.Keys() {
		if !short.Has(key) {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

// Result holds everything needed to render a report.
type Result struct {
	Long    *registry.Registry
	Short   *registry.Registry
	Missing []string
}

// Compare computes the difference between long and short registries.
func Compare(long, short *registry.Registry) *Result {
	return &Result{Long: long, Short: short, Missing: MissingKeys(long, short)}
}
