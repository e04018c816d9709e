package css

import (
	"bytes"
	"errors"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser turns CSS text into a rule tree of qualified rules and at-rules.
// Block contents are kept as raw tokens so that callers can serialize them
// or parse them again as a nested rule list.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet. Malformed rules are skipped and
// reported as warnings, parsing never fails as a whole.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	toks, warnings := p.Tokenize(data)
	b := &builder{warnings: warnings}
	sheet := &Stylesheet{Rules: b.ruleList(toks, true)}
	sheet.Warnings = b.warnings

	for _, w := range sheet.Warnings {
		p.log.Debug("CSS parse warning", zap.Int("line", w.Line), zap.String("problem", w.Message))
	}
	return sheet
}

// ParseRuleList parses content of a block (for example of @media) as a list
// of rules.
func (p *Parser) ParseRuleList(toks Tokens) ([]Rule, []Warning) {
	b := &builder{}
	rules := b.ruleList(toks, false)
	for _, w := range b.warnings {
		p.log.Debug("CSS parse warning", zap.Int("line", w.Line), zap.String("problem", w.Message))
	}
	return rules, b.warnings
}

// Tokenize splits CSS text into tokens, dropping comments.
func (p *Parser) Tokenize(data []byte) (Tokens, []Warning) {
	var (
		toks     Tokens
		warnings []Warning
		line     = 1
	)

	// input preprocessing replaces NUL with U+FFFD, lexer also uses NUL as
	// end of input marker
	data = bytes.ReplaceAll(data, []byte{0}, []byte("\uFFFD"))

	l := css.NewLexer(parse.NewInput(bytes.NewReader(data)))
	for {
		tt, text := l.Next()
		if tt == css.ErrorToken {
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				warnings = append(warnings, Warning{Line: line, Message: "tokenizer stopped: " + err.Error()})
			}
			return toks, warnings
		}
		s := string(text)
		if tt != css.CommentToken {
			toks = append(toks, Token{Type: tt, Data: s, Line: line})
		}
		line += strings.Count(s, "\n")
	}
}

type builder struct {
	warnings []Warning
}

func (b *builder) warn(line int, msg string) {
	b.warnings = append(b.warnings, Warning{Line: line, Message: msg})
}

// ruleList consumes a list of rules. At the top level of a stylesheet CDO
// and CDC tokens are ignored.
func (b *builder) ruleList(ts Tokens, top bool) []Rule {
	var rules []Rule
	for i := 0; i < len(ts); {
		switch t := ts[i]; {
		case t.Type == css.WhitespaceToken:
			i++
		case top && (t.Type == css.CDOToken || t.Type == css.CDCToken):
			i++
		case t.Type == css.AtKeywordToken:
			var r *AtRule
			r, i = b.atRule(ts, i)
			rules = append(rules, r)
		default:
			var r *QualifiedRule
			if r, i = b.qualifiedRule(ts, i); r != nil {
				rules = append(rules, r)
			}
		}
	}
	return rules
}

// atRule consumes at-rule starting with at-keyword token at position i and
// returns position past its end.
func (b *builder) atRule(ts Tokens, i int) (*AtRule, int) {
	r := &AtRule{
		Keyword: strings.TrimPrefix(ts[i].Data, "@"),
		Line:    ts[i].Line,
	}
	j := i + 1
	for j < len(ts) {
		switch ts[j].Type {
		case css.SemicolonToken:
			r.Prelude = ts[i+1 : j]
			return r, j + 1
		case css.LeftBraceToken:
			r.Prelude = ts[i+1 : j]
			var end int
			r.Content, end = b.block(ts, j)
			return r, end
		}
		j, _ = skipComponent(ts, j)
	}
	r.Prelude = ts[i+1:]
	return r, len(ts)
}

// qualifiedRule consumes qualified rule starting at position i. Rule without
// a block is a parse error and is dropped.
func (b *builder) qualifiedRule(ts Tokens, i int) (*QualifiedRule, int) {
	j := i
	for j < len(ts) {
		if ts[j].Type == css.LeftBraceToken {
			r := &QualifiedRule{Prelude: ts[i:j], Line: ts[i].Line}
			var end int
			r.Content, end = b.block(ts, j)
			return r, end
		}
		j, _ = skipComponent(ts, j)
	}
	b.warn(ts[i].Line, "rule without block at end of input: "+strings.TrimSpace(ts[i:].String()))
	return nil, len(ts)
}

// block consumes {} block opened at position i and returns its content
// (never nil) and position past the closing brace.
func (b *builder) block(ts Tokens, i int) (Tokens, int) {
	end, closed := skipComponent(ts, i)
	last := end
	if closed {
		last = end - 1
	} else {
		b.warn(ts[i].Line, "unterminated block")
	}
	content := make(Tokens, 0, last-i-1)
	return append(content, ts[i+1:last]...), end
}

// skipComponent returns position past the component value starting at i. For
// blocks and functions this includes everything up to the matching closing
// token. Second value is false when input ended before the block was closed.
func skipComponent(ts Tokens, i int) (int, bool) {
	closer, ok := closerOf(ts[i].Type)
	if !ok {
		return i + 1, true
	}
	for j := i + 1; j < len(ts); {
		if ts[j].Type == closer {
			return j + 1, true
		}
		var closed bool
		if j, closed = skipComponent(ts, j); !closed {
			return j, false
		}
	}
	return len(ts), false
}

func closerOf(tt css.TokenType) (css.TokenType, bool) {
	switch tt {
	case css.FunctionToken, css.LeftParenthesisToken:
		return css.RightParenthesisToken, true
	case css.LeftBracketToken:
		return css.RightBracketToken, true
	case css.LeftBraceToken:
		return css.RightBraceToken, true
	}
	return css.ErrorToken, false
}
