package diff

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/maruel/natural"
	yaml "gopkg.in/yaml.v3"

	"cssdiff/registry"
)

// DefaultSeparatorWidth is width of the line separating keys in text report.
const DefaultSeparatorWidth = 80

// Block is a pseudo-CSS reconstruction of a single occurrence.
type Block struct {
	Number int // 1-based within the key
	Text   string
}

// FormatBlocks renders every occurrence of the key as indented pseudo-CSS,
// wrapping it into its container header when there is one.
func FormatBlocks(key string, occs []registry.Occurrence) []Block {
	blocks := make([]Block, 0, len(occs))
	for i, occ := range occs {
		var sb strings.Builder
		indent := ""
		if !occ.TopLevel() {
			sb.WriteString(occ.Container + " {\n")
			indent = "  "
		}
		sb.WriteString(indent + key + " {\n")
		for _, line := range bodyLines(occ.Body) {
			sb.WriteString("    " + line + "\n")
		}
		sb.WriteString(indent + "}")
		if !occ.TopLevel() {
			sb.WriteString("\n}")
		}
		blocks = append(blocks, Block{Number: i + 1, Text: sb.String()})
	}
	return blocks
}

// bodyLines splits body on line boundaries and right-trims every line. Empty
// body has no lines.
func bodyLines(body string) []string {
	if body == "" {
		return nil
	}
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\r", "\n")
	lines := strings.Split(strings.TrimSuffix(body, "\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimRightFunc(lines[i], unicode.IsSpace)
	}
	return lines
}

// WriteText writes human readable report: summary line followed by every
// missing key with numbered reconstructed blocks.
func WriteText(w io.Writer, res *Result, separatorWidth int) error {
	if separatorWidth <= 0 {
		separatorWidth = DefaultSeparatorWidth
	}
	separator := strings.Repeat("=", separatorWidth)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Selectors or at rules present only in LONG CSS: %d\n", len(res.Missing))
	for _, key := range res.Missing {
		fmt.Fprintf(&sb, "\n%s\nSelector or at rule: %s\n", separator, key)
		for _, b := range FormatBlocks(key, res.Long.Occurrences(key)) {
			fmt.Fprintf(&sb, "\nRule %d:\n%s\n", b.Number, b.Text)
		}
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("unable to write report: %w", err)
	}
	return nil
}

type (
	yamlOccurrence struct {
		Container string `yaml:"container,omitempty"`
		Line      int    `yaml:"line"`
		Body      string `yaml:"body"`
	}

	yamlEntry struct {
		Key         string           `yaml:"key"`
		Occurrences []yamlOccurrence `yaml:"occurrences"`
	}

	yamlContainer struct {
		Header string `yaml:"header"`
		Keys   int    `yaml:"keys"`
	}

	yamlReport struct {
		LongKeys   int             `yaml:"long_keys"`
		ShortKeys  int             `yaml:"short_keys"`
		Missing    int             `yaml:"missing"`
		Containers []yamlContainer `yaml:"containers,omitempty"`
		Entries    []yamlEntry     `yaml:"entries"`
	}
)

// WriteYAML writes machine readable report with the same content as
// WriteText plus per container summary of missing keys.
func WriteYAML(w io.Writer, res *Result) error {
	rpt := yamlReport{
		LongKeys:  res.Long.Len(),
		ShortKeys: res.Short.Len(),
		Missing:   len(res.Missing),
		Entries:   make([]yamlEntry, 0, len(res.Missing)),
	}

	perContainer := make(map[string]map[string]struct{})
	for _, key := range res.Missing {
		entry := yamlEntry{Key: key}
		for _, occ := range res.Long.Occurrences(key) {
			entry.Occurrences = append(entry.Occurrences, yamlOccurrence{Container: occ.Container, Line: occ.Line, Body: occ.Body})
			if occ.TopLevel() {
				continue
			}
			if perContainer[occ.Container] == nil {
				perContainer[occ.Container] = make(map[string]struct{})
			}
			perContainer[occ.Container][key] = struct{}{}
		}
		rpt.Entries = append(rpt.Entries, entry)
	}

	headers := make([]string, 0, len(perContainer))
	for h := range perContainer {
		headers = append(headers, h)
	}
	sort.Sort(natural.StringSlice(headers))
	for _, h := range headers {
		rpt.Containers = append(rpt.Containers, yamlContainer{Header: h, Keys: len(perContainer[h])})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rpt); err != nil {
		return fmt.Errorf("unable to encode report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("unable to finish report: %w", err)
	}
	return nil
}

// Summary returns one line description of the result for logging.
func Summary(res *Result) string {
	return strconv.Itoa(len(res.Missing)) + " of " + strconv.Itoa(res.Long.Len()) + " keys missing"
}
