package css

import (
	"strings"

	"go.uber.org/zap"

	"cssdiff/utils/debug"
)

// Dump renders rule tree as indented text, one node per rule with its
// source line. Blocks of at-rules for which expand returns true are parsed
// as nested rule lists and rendered as children, all other blocks are shown
// as text.
func (p *Parser) Dump(sheet *Stylesheet, expand func(keyword string) bool) string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "stylesheet: %d rules, %d warnings", len(sheet.Rules), len(sheet.Warnings))
	for _, w := range sheet.Warnings {
		tw.Line(1, "warning (line %d): %s", w.Line, w.Message)
	}
	p.dumpRules(tw, 1, sheet.Rules, expand)
	p.log.Debug("Rule tree dumped", zap.Int("lines", tw.Lines()))
	return tw.String()
}

func (p *Parser) dumpRules(tw *debug.TreeWriter, depth int, rules []Rule, expand func(string) bool) {
	for _, rule := range rules {
		switch r := rule.(type) {
		case *QualifiedRule:
			tw.Line(depth, "qualified rule (line %d)", r.Line)
			tw.TextBlock(depth+1, "prelude", strings.TrimSpace(r.Prelude.String()))
			tw.TextBlock(depth+1, "content", strings.TrimSpace(r.Content.String()))
		case *AtRule:
			tw.Line(depth, "at-rule @%s (line %d)", r.Keyword, r.Line)
			tw.TextBlock(depth+1, "prelude", strings.TrimSpace(r.Prelude.String()))
			switch {
			case !r.HasBlock():
				tw.Line(depth+1, "no block")
			case expand != nil && expand(r.LowerKeyword()):
				inner, warnings := p.ParseRuleList(r.Content)
				for _, w := range warnings {
					tw.Line(depth+1, "warning (line %d): %s", w.Line, w.Message)
				}
				p.dumpRules(tw, depth+1, inner, expand)
			default:
				tw.TextBlock(depth+1, "content", strings.TrimSpace(r.Content.String()))
			}
		}
	}
}
