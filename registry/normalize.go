package registry

import "strings"

// Normalize collapses every whitespace run in selector or at-rule header to a
// single space and trims both ends. Empty result means there is nothing to
// register.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
