package diff

import (
	"bytes"
	"strings"
	"testing"

	yaml "gopkg.in/yaml.v3"

	"cssdiff/registry"
)

func TestFormatBlocks_TopLevel(t *testing.T) {
	blocks := FormatBlocks(".a", []registry.Occurrence{{Body: "color: red;\n  margin: 0;   "}})
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	want := ".a {\n    color: red;\n      margin: 0;\n}"
	if blocks[0].Text != want {
		t.Errorf("block text:\n%s\nwant:\n%s", blocks[0].Text, want)
	}
	if blocks[0].Number != 1 {
		t.Errorf("block number = %d, want 1", blocks[0].Number)
	}
}

func TestFormatBlocks_Container(t *testing.T) {
	blocks := FormatBlocks(".x", []registry.Occurrence{{Container: "@media print", Body: "a: 1"}})
	want := "@media print {\n  .x {\n    a: 1\n  }\n}"
	if blocks[0].Text != want {
		t.Errorf("block text:\n%s\nwant:\n%s", blocks[0].Text, want)
	}
}

func TestFormatBlocks_EmptyBody(t *testing.T) {
	blocks := FormatBlocks("@import url(a.css)", []registry.Occurrence{{}, {Container: "@layer x"}})
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Text != "@import url(a.css) {\n}" {
		t.Errorf("unexpected empty top-level block %q", blocks[0].Text)
	}
	if blocks[1].Text != "@layer x {\n  @import url(a.css) {\n  }\n}" {
		t.Errorf("unexpected empty contained block %q", blocks[1].Text)
	}
	if blocks[1].Number != 2 {
		t.Errorf("second block number = %d, want 2", blocks[1].Number)
	}
}

func TestBodyLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a  \r\nb\t\rc", []string{"a", "b", "c"}},
		{"a\n\nb", []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		got := bodyLines(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
			t.Errorf("bodyLines(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteText(t *testing.T) {
	long := build(t, `.kept{a:1} .dropped{b:2} @media (max-width:500px){.m{c:3}} .dup{x:1} @media print{.dup{x:2}}`)
	short := build(t, `.kept{a:1} @media (max-width:500px){.m{c:3}}`)

	var buf bytes.Buffer
	if err := WriteText(&buf, Compare(long, short), 10); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}

	want := `Selectors or at rules present only in LONG CSS: 2

==========
Selector or at rule: .dropped

Rule 1:
.dropped {
    b:2
}

==========
Selector or at rule: .dup

Rule 1:
.dup {
    x:1
}

Rule 2:
@media print {
  .dup {
    x:2
  }
}
`
	if buf.String() != want {
		t.Errorf("unexpected report:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteText_NothingMissing(t *testing.T) {
	reg := build(t, `.a{}`)
	var buf bytes.Buffer
	if err := WriteText(&buf, Compare(reg, reg), 0); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	if buf.String() != "Selectors or at rules present only in LONG CSS: 0\n" {
		t.Errorf("unexpected report %q", buf.String())
	}
}

func TestWriteText_DefaultSeparator(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, Compare(build(t, `.a{}`), registry.New()), 0); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	if !strings.Contains(buf.String(), "\n"+strings.Repeat("=", DefaultSeparatorWidth)+"\n") {
		t.Errorf("expected default separator in report:\n%s", buf.String())
	}
}

func TestWriteText_Deterministic(t *testing.T) {
	input := `.c{} .b{} .a{} @media x{.d{}} @font-face{a:b} @font-face{c:d}`
	var first, second bytes.Buffer
	if err := WriteText(&first, Compare(build(t, input), registry.New()), 0); err != nil {
		t.Fatal(err)
	}
	if err := WriteText(&second, Compare(build(t, input), registry.New()), 0); err != nil {
		t.Fatal(err)
	}
	if first.String() != second.String() {
		t.Error("reports differ between identical runs")
	}
}

func TestWriteYAML(t *testing.T) {
	long := build(t, `.a{x:1} @media screen and (min-width: 10px){.b{y:2}} @media screen and (min-width: 9px){.b{y:3} .c{}}`)
	short := build(t, `.a{}`)

	var buf bytes.Buffer
	if err := WriteYAML(&buf, Compare(long, short)); err != nil {
		t.Fatalf("WriteYAML() error = %v", err)
	}

	var got yamlReport
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("report is not valid YAML: %v\n%s", err, buf.String())
	}
	if got.LongKeys != 3 || got.ShortKeys != 1 || got.Missing != 2 {
		t.Errorf("unexpected counts %+v", got)
	}
	if len(got.Entries) != 2 || got.Entries[0].Key != ".b" || len(got.Entries[0].Occurrences) != 2 {
		t.Fatalf("unexpected entries %+v", got.Entries)
	}
	if occ := got.Entries[0].Occurrences[1]; occ.Container != "@media screen and (min-width: 9px)" || occ.Body != "y:3" {
		t.Errorf("unexpected occurrence %+v", occ)
	}
	// natural order puts 9px before 10px
	if len(got.Containers) != 2 || got.Containers[0].Header != "@media screen and (min-width: 9px)" || got.Containers[0].Keys != 2 {
		t.Errorf("unexpected containers %+v", got.Containers)
	}
}
