package css_test

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"cssdiff/css"
)

func TestParser_Dump(t *testing.T) {
	p := css.NewParser(nil)
	sheet := p.Parse([]byte(".a, .b { x: 1 }\n@import url(a.css);\n@media print { .c { y: 2 } }\n@font-face { font-family: F }\n"))

	expand := func(keyword string) bool { return keyword == "media" }
	want := `stylesheet: 4 rules, 0 warnings
  qualified rule (line 1)
    prelude: ".a, .b"
    content: "x: 1"
  at-rule @import (line 2)
    prelude: "url(a.css)"
    no block
  at-rule @media (line 3)
    prelude: "print"
    qualified rule (line 3)
      prelude: ".c"
      content: "y: 2"
  at-rule @font-face (line 4)
    prelude: <empty>
    content: "font-family: F"
`
	if got := p.Dump(sheet, expand); got != want {
		t.Errorf("Dump() =\n%s\nwant:\n%s", got, want)
	}
}

func TestParser_DumpWarnings(t *testing.T) {
	p := css.NewParser(nil)
	sheet := p.Parse([]byte(".a { x: 1 } .b"))

	want := `stylesheet: 1 rules, 1 warnings
  warning (line 1): rule without block at end of input: .b
  qualified rule (line 1)
    prelude: ".a"
    content: "x: 1"
`
	if got := p.Dump(sheet, nil); got != want {
		t.Errorf("Dump() =\n%s\nwant:\n%s", got, want)
	}
}

func TestParser_DumpLogsSize(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	p := css.NewParser(zap.New(core))
	sheet := p.Parse([]byte(".a { x: 1 }\n@import url(a.css);"))

	got := p.Dump(sheet, nil)
	entries := logs.FilterMessage("Rule tree dumped").All()
	if len(entries) != 1 {
		t.Fatalf("expected one dump log entry, got %d", len(entries))
	}
	lines := entries[0].ContextMap()["lines"]
	if want := int64(strings.Count(got, "\n")); lines != want {
		t.Errorf("logged lines = %v, want %d", lines, want)
	}
}
