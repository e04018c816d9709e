// Package debug renders internal structures as indented text for debug
// reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

const indent = "  "

// TreeWriter accumulates indented lines, one indentation step per depth
// level.
type TreeWriter struct {
	sb    strings.Builder
	lines int
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{}
}

func (tw *TreeWriter) String() string {
	return tw.sb.String()
}

// Lines returns number of lines written so far.
func (tw *TreeWriter) Lines() int {
	return tw.lines
}

// Line writes formatted line at depth.
func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.sb.WriteString(strings.Repeat(indent, depth))
	fmt.Fprintf(&tw.sb, format, args...)
	tw.sb.WriteByte('\n')
	tw.lines++
}

// TextBlock writes "label: value" line at depth with value quoted, so
// whitespace and line breaks of source text stay visible.
func (tw *TreeWriter) TextBlock(depth int, label, value string) {
	tw.Line(depth, "%s: %s", label, encodeText(value))
}

func encodeText(raw string) string {
	if raw == "" {
		return "<empty>"
	}
	return strconv.Quote(raw)
}
