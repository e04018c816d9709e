// Package compare glues stylesheet loading, rule collection, diffing and
// report rendering into "diff" command.
package compare

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"

	"cssdiff/archive"
	"cssdiff/css"
	"cssdiff/registry"
)

var (
	// ErrInputNotFound is returned when source path does not exist, either on
	// disk or inside archive.
	ErrInputNotFound = errors.New("input source was not found")
	// ErrDecode is returned when stylesheet text cannot be decoded.
	ErrDecode = errors.New("unable to decode stylesheet text")
	// ErrNotStylesheet is returned for inputs recognized as binary files.
	ErrNotStylesheet = errors.New("input is not a stylesheet")
)

// ResolveEncoding returns encoding for IANA character set name. Empty name
// selects ISO-8859-1.
func ResolveEncoding(name string) (encoding.Encoding, error) {
	if len(name) == 0 {
		return charmap.ISO8859_1, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown character set '%s': %w", name, err)
	}
	if enc == nil {
		// known to IANA but not supported by x/text
		return nil, fmt.Errorf("unsupported character set '%s'", name)
	}
	return enc, nil
}

// EncodingName returns preferred MIME name of the encoding, IANA name when
// there is none.
func EncodingName(enc encoding.Encoding) string {
	if enc == nil {
		return ""
	}
	if n, err := ianaindex.MIME.Name(enc); err == nil && len(n) > 0 {
		return n
	}
	if n, err := ianaindex.IANA.Name(enc); err == nil {
		return n
	}
	return "unknown"
}

// Source is a stylesheet read and decoded into text.
type Source struct {
	Path     string
	Data     []byte // as read
	Text     string // decoded
	Encoding string // name of encoding used to decode Data

	Sheet *css.Stylesheet // set by Loader.Collect
}

// Loader reads stylesheets and builds their registries.
type Loader struct {
	parser    *css.Parser
	collector *registry.Collector
	fallback  encoding.Encoding
	log       *zap.Logger
}

// NewLoader creates loader which decodes non UTF-8 input with fallback
// encoding (ISO-8859-1 when nil).
func NewLoader(fallback encoding.Encoding, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	if fallback == nil {
		fallback = charmap.ISO8859_1
	}
	parser := css.NewParser(log)
	return &Loader{
		parser:    parser,
		collector: registry.NewCollector(parser, log),
		fallback:  fallback,
		log:       log,
	}
}

// Read locates source, reads it fully and decodes it.
func (l *Loader) Read(src string) (*Source, error) {
	data, err := ReadSource(src)
	if err != nil {
		return nil, err
	}
	if kind, _ := filetype.Match(data); kind != filetype.Unknown {
		return nil, fmt.Errorf("%s (%s): %w", src, kind.MIME.Value, ErrNotStylesheet)
	}
	text, enc, err := Decode(data, l.fallback)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	l.log.Debug("Stylesheet decoded", zap.String("source", src), zap.String("charset", enc))
	return &Source{Path: src, Data: data, Text: text, Encoding: enc}, nil
}

// Collect parses decoded source and builds its registry.
func (l *Loader) Collect(src *Source) *registry.Registry {
	src.Sheet = l.parser.Parse([]byte(src.Text), src.Path)
	l.log.Debug("Stylesheet parsed", zap.String("source", src.Path),
		zap.Int("rules", len(src.Sheet.QualifiedRules())), zap.Int("at-rules", len(src.Sheet.AtRules())))
	if len(src.Sheet.Warnings) > 0 {
		l.log.Debug("Stylesheet has problems", zap.String("source", src.Path), zap.Int("warnings", len(src.Sheet.Warnings)))
	}
	return l.collector.Collect(src.Sheet)
}

// Dump renders rule tree of collected source, expanding the same container
// at-rules collector descends into.
func (l *Loader) Dump(src *Source) string {
	if src.Sheet == nil {
		return ""
	}
	return l.parser.Dump(src.Sheet, registry.IsContainer)
}

// Load reads source and builds its registry.
func (l *Loader) Load(src string) (*Source, *registry.Registry, error) {
	s, err := l.Read(src)
	if err != nil {
		return nil, nil, err
	}
	return s, l.Collect(s), nil
}

// ReadSource returns content of the file. Path may point inside zip based
// archive, e.g. "theme.epub/OEBPS/style.css".
func ReadSource(src string) ([]byte, error) {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			return nil, fmt.Errorf("%s => (%s): %w", head, strings.TrimPrefix(src, head), ErrInputNotFound)
		}
		if !fi.Mode().IsRegular() {
			return nil, fmt.Errorf("unexpected path mode for (%s)", head)
		}

		if len(tail) == 0 {
			data, err := os.ReadFile(head)
			if err != nil {
				return nil, fmt.Errorf("unable to read stylesheet: %w", err)
			}
			return data, nil
		}

		ok, err := archive.IsArchive(head)
		if err != nil {
			// checking format - but cannot open target file
			return nil, fmt.Errorf("unable to check archive type: %w", err)
		}
		if !ok {
			// regular file cannot have tail
			return nil, fmt.Errorf("%s => (%s): %w", head, strings.TrimPrefix(src, head), ErrInputNotFound)
		}
		name := filepath.ToSlash(strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator)))
		data, err := archive.ReadFile(head, name)
		if errors.Is(err, archive.ErrNotFound) {
			return nil, fmt.Errorf("%s => (%s): %w", head, name, ErrInputNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("unable to read archive: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s: %w", src, ErrInputNotFound)
}

// Decode converts data to text and returns name of the encoding used. Byte
// order mark wins, then valid UTF-8 is taken as is, then encoding declared
// by leading @charset rule and finally fallback. Declared encoding which
// cannot decode the data is ignored.
func Decode(data []byte, fallback encoding.Encoding) (string, string, error) {
	if enc, name := detectBOM(data); enc != nil {
		out, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return "", name, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		// decoders substitute invalid sequences, text must encode back
		// into the very same bytes
		if len(out) > 0 {
			if back, err := enc.NewEncoder().Bytes(out); err != nil || !bytes.Equal(back, data) {
				return "", name, fmt.Errorf("%w: invalid byte sequence for %s", ErrDecode, name)
			}
		}
		return string(out), name, nil
	}

	if utf8.Valid(data) {
		return string(data), "UTF-8", nil
	}

	if enc, name := declaredEncoding(data); enc != nil {
		if text, err := decodeText(data, enc, name); err == nil {
			return text, name, nil
		}
	}

	if fallback == nil {
		return "", "", fmt.Errorf("%w: input is not valid UTF-8 and no fallback encoding is set", ErrDecode)
	}
	name := EncodingName(fallback)
	text, err := decodeText(data, fallback, name)
	if err != nil {
		return "", name, err
	}
	return text, name, nil
}

func decodeText(data []byte, enc encoding.Encoding, name string) (string, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	// x/text decoders substitute invalid sequences
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", fmt.Errorf("%w: invalid byte sequence for %s", ErrDecode, name)
	}
	return string(out), nil
}

// declaredEncoding resolves @charset label. IANA names are tried first so
// "iso-8859-1" means Latin-1 rather than its WHATWG alias windows-1252.
// Unicode labels are not usable here since data is not valid UTF-8 and has
// no byte order mark.
func declaredEncoding(data []byte) (encoding.Encoding, string) {
	label := declaredCharset(data)
	if len(label) == 0 {
		return nil, ""
	}
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil || enc == nil {
		enc, _ = charset.Lookup(label)
	}
	if enc == nil {
		return nil, ""
	}
	name := EncodingName(enc)
	if n := strings.ToLower(name); n == "utf-8" || strings.HasPrefix(n, "utf-16") || strings.HasPrefix(n, "utf-32") {
		return nil, ""
	}
	return enc, name
}

// detectBOM returns encoding selected by byte order mark. UTF-32 marks must
// be checked before UTF-16 ones as they share prefix.
func detectBOM(data []byte) (encoding.Encoding, string) {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return unicode.UTF8BOM, "UTF-8"
	case bytes.HasPrefix(data, []byte{0x00, 0x00, 0xFE, 0xFF}):
		return utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM), "UTF-32BE"
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE, 0x00, 0x00}):
		return utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM), "UTF-32LE"
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), "UTF-16BE"
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), "UTF-16LE"
	}
	return nil, ""
}

// declaredCharset returns label from '@charset "label";' which must be the
// very first bytes of the stylesheet.
func declaredCharset(data []byte) string {
	const prefix = `@charset "`
	if len(data) > 1024 {
		data = data[:1024]
	}
	if !bytes.HasPrefix(data, []byte(prefix)) {
		return ""
	}
	rest := data[len(prefix):]
	end := bytes.Index(rest, []byte(`";`))
	if end <= 0 {
		return ""
	}
	return string(rest[:end])
}
