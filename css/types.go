package css

import (
	"strings"

	"github.com/tdewolff/parse/v2/css"
)

// Token is a single lexical token with its exact source text.
type Token struct {
	Type css.TokenType
	Data string
	Line int
}

// Tokens is a sequence of tokens. Concatenating the data of all tokens
// reproduces the source text they were lexed from (comments excluded).
type Tokens []Token

// String serializes tokens back to source text.
func (ts Tokens) String() string {
	var sb strings.Builder
	for _, t := range ts {
		sb.WriteString(t.Data)
	}
	return sb.String()
}

// TrimSpace returns tokens without leading and trailing whitespace tokens.
func (ts Tokens) TrimSpace() Tokens {
	start, end := 0, len(ts)
	for start < end && ts[start].Type == css.WhitespaceToken {
		start++
	}
	for end > start && ts[end-1].Type == css.WhitespaceToken {
		end--
	}
	return ts[start:end]
}

// SplitTopLevel splits tokens on commas which are not nested inside
// parentheses, brackets, braces or functional notation.
func (ts Tokens) SplitTopLevel() []Tokens {
	var (
		parts []Tokens
		depth int
		start int
	)
	for i, t := range ts {
		switch t.Type {
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken, css.LeftBraceToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken, css.RightBraceToken:
			if depth > 0 {
				depth--
			}
		case css.CommaToken:
			if depth == 0 {
				parts = append(parts, ts[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, ts[start:])
}

// Rule is a node of the stylesheet rule tree. It is either *QualifiedRule
// or *AtRule.
type Rule interface {
	// SourceLine returns 1-based line of the first token of the rule.
	SourceLine() int
	isRule()
}

// QualifiedRule is a selector list followed by a {} block.
type QualifiedRule struct {
	Prelude Tokens // selector list, as written
	Content Tokens // block content without the enclosing braces
	Line    int
}

func (r *QualifiedRule) SourceLine() int { return r.Line }
func (*QualifiedRule) isRule()           {}

// Selectors returns the selector list split on top-level commas, each
// serialized and trimmed. Empty selectors are dropped.
func (r *QualifiedRule) Selectors() []string {
	var out []string
	for _, part := range r.Prelude.SplitTopLevel() {
		if s := strings.TrimSpace(part.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// AtRule is an at-keyword with its prelude and an optional {} block.
type AtRule struct {
	Keyword string // at-keyword without '@', as written
	Prelude Tokens
	Content Tokens // nil when the rule was terminated by ';' or end of input
	Line    int
}

func (r *AtRule) SourceLine() int { return r.Line }
func (*AtRule) isRule()           {}

// LowerKeyword returns at-keyword in lower case.
func (r *AtRule) LowerKeyword() string {
	return strings.ToLower(r.Keyword)
}

// HasBlock reports whether the rule carried a {} block.
func (r *AtRule) HasBlock() bool {
	return r.Content != nil
}

// Warning is a recoverable problem found while building the rule tree.
type Warning struct {
	Line    int
	Message string
}

// Stylesheet is an ordered list of top-level rules.
type Stylesheet struct {
	Rules    []Rule
	Warnings []Warning
}

// QualifiedRules returns top-level qualified rules in source order.
func (s *Stylesheet) QualifiedRules() []*QualifiedRule {
	var rules []*QualifiedRule
	for _, r := range s.Rules {
		if q, ok := r.(*QualifiedRule); ok {
			rules = append(rules, q)
		}
	}
	return rules
}

// AtRules returns top-level at-rules in source order.
func (s *Stylesheet) AtRules() []*AtRule {
	var rules []*AtRule
	for _, r := range s.Rules {
		if a, ok := r.(*AtRule); ok {
			rules = append(rules, a)
		}
	}
	return rules
}
