package registry

import (
	"strings"

	"go.uber.org/zap"

	"cssdiff/css"
)

// containerKeywords lists at-rules whose blocks are lists of rules to descend
// into. Any other at-rule is recorded as a single opaque key.
var containerKeywords = map[string]bool{
	"media":    true,
	"supports": true,
	"layer":    true,
}

// IsContainer reports whether at-rule keyword (lower case, without '@')
// denotes a container at-rule.
func IsContainer(keyword string) bool {
	return containerKeywords[keyword]
}

// Collector walks rule trees and records canonical keys.
type Collector struct {
	parser *css.Parser
	log    *zap.Logger
}

// NewCollector creates collector which uses parser to re-parse content of
// container at-rules.
func NewCollector(parser *css.Parser, log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	if parser == nil {
		parser = css.NewParser(log)
	}
	return &Collector{parser: parser, log: log.Named("collector")}
}

// Collect builds registry for the stylesheet.
func (c *Collector) Collect(sheet *css.Stylesheet) *Registry {
	reg := New()
	c.CollectRules(reg, sheet.Rules, "")
	c.log.Debug("Stylesheet collected", zap.Int("keys", reg.Len()), zap.Int("occurrences", reg.Count()))
	return reg
}

// CollectRules records every rule into reg. Container is the header of the
// enclosing container at-rule or empty string at top level.
func (c *Collector) CollectRules(reg *Registry, rules []css.Rule, container string) {
	for _, rule := range rules {
		c.collect(reg, rule, container)
	}
}

func (c *Collector) collect(reg *Registry, rule css.Rule, container string) {
	switch r := rule.(type) {
	case *css.QualifiedRule:
		if strings.TrimSpace(r.Prelude.String()) == "" {
			c.log.Debug("Skipping rule with empty selector", zap.Int("line", r.Line))
			return
		}
		body := strings.TrimSpace(r.Content.String())
		for _, sel := range r.Selectors() {
			reg.Add(Normalize(sel), Occurrence{Container: container, Body: body, Line: r.Line})
		}

	case *css.AtRule:
		keyword := r.LowerKeyword()
		header := AtRuleHeader(keyword, r.Prelude.String())

		if IsContainer(keyword) && len(r.Content) > 0 {
			// nested containers attribute their rules to the innermost header only
			inner, _ := c.parser.ParseRuleList(r.Content)
			c.CollectRules(reg, inner, header)
			return
		}
		reg.Add(header, Occurrence{Container: container, Body: strings.TrimSpace(r.Content.String()), Line: r.Line})

	default:
		c.log.Warn("Unexpected rule type, skipping", zap.Int("line", rule.SourceLine()))
	}
}

// AtRuleHeader builds canonical key for at-rule: "@keyword" followed by
// normalized prelude if there is one.
func AtRuleHeader(keyword, prelude string) string {
	header := "@" + keyword
	if p := Normalize(prelude); p != "" {
		header += " " + p
	}
	return header
}
