// Package heal reads the near-JSON text language models produce.
//
// The grammar is a permissive superset of JSON5: four quote styles, identifier keys,
// missing and trailing commas, undefined members, Infinity, NaN, hex numbers and
// comments. Decoding is driven by the expected schema, which also selects the priming
// prefix a completion-style model is given.
package heal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/skosovsky/promptfn/typeexpr"
)

const (
	DefaultMaxDepth = 256
	DefaultMaxBytes = 1 << 20
)

// Decoder holds parser limits. The zero value uses DefaultMaxDepth and DefaultMaxBytes.
type Decoder struct {
	MaxDepth int
	MaxBytes int
}

var std Decoder

// Parse reads the first complete value from text using the default limits.
func Parse(text string) (any, error) { return std.Parse(text) }

// Decode parses primed text and unwraps it according to schema using the default limits.
func Decode(primed string, schema *typeexpr.Schema) (any, error) {
	return std.Decode(primed, schema)
}

// Parse reads the first complete value from text. Objects become map[string]any,
// arrays []any, numbers float64. Anything after the value is ignored.
func (d Decoder) Parse(text string) (any, error) {
	maxBytes := d.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if len(text) > maxBytes {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(text), maxBytes)
	}
	p := &parser{src: text, maxDepth: d.MaxDepth}
	if p.maxDepth <= 0 {
		p.maxDepth = DefaultMaxDepth
	}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	if v == undefined {
		return nil, nil
	}
	return v, nil
}

// Decode parses primed (the priming prefix followed by the raw completion) and returns
// the value described by schema. Object and array kinds are returned as parsed; the
// scalar kinds arrive as {"value": X} and X is unwrapped and type-checked.
func (d Decoder) Decode(primed string, schema *typeexpr.Schema) (any, error) {
	kind, err := typeexpr.CanonicalKind(schema)
	if err != nil {
		return nil, err
	}
	v, err := d.Parse(primed)
	if err != nil {
		return nil, err
	}
	if !kind.Wrapped() {
		return v, nil
	}
	return unwrap(v, kind)
}

func unwrap(v any, kind typeexpr.Shape) (any, error) {
	var x any
	if obj, ok := v.(map[string]any); ok {
		inner, present := obj["value"]
		if !present && kind != typeexpr.ShapeNull {
			return nil, &TypeMismatchError{Want: kind, Got: v}
		}
		x = inner
	} else {
		// A bare scalar is accepted when it already has the right kind.
		x = v
	}
	ok := false
	switch kind {
	case typeexpr.ShapeString:
		_, ok = x.(string)
	case typeexpr.ShapeNumber:
		_, ok = x.(float64)
	case typeexpr.ShapeBoolean:
		_, ok = x.(bool)
	case typeexpr.ShapeNull:
		ok = x == nil
	}
	if !ok {
		return nil, &TypeMismatchError{Want: kind, Got: x}
	}
	return x, nil
}

type undefinedValue struct{}

// undefined is returned by value() for the bare literal and never escapes the package.
var undefined = undefinedValue{}

type parser struct {
	src      string
	pos      int
	depth    int
	maxDepth int
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peekRune() (rune, int) {
	if p.eof() {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(p.src[p.pos:])
}

// skip consumes whitespace and comments.
func (p *parser) skip() error {
	for !p.eof() {
		r, size := p.peekRune()
		switch {
		case unicode.IsSpace(r) || r == '\uFEFF':
			p.pos += size
		case strings.HasPrefix(p.src[p.pos:], "//"):
			end := strings.IndexAny(p.src[p.pos:], "\n\r")
			if end < 0 {
				p.pos = len(p.src)
			} else {
				p.pos += end
			}
		case strings.HasPrefix(p.src[p.pos:], "/*"):
			end := strings.Index(p.src[p.pos+2:], "*/")
			if end < 0 {
				return p.errorf("unterminated comment")
			}
			p.pos += 2 + end + 2
		default:
			return nil
		}
	}
	return nil
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > p.maxDepth {
		return &SyntaxError{Offset: p.pos, Msg: fmt.Sprintf("nesting exceeds %d", p.maxDepth), Err: ErrTooDeep}
	}
	return nil
}

func (p *parser) value() (any, error) {
	if err := p.skip(); err != nil {
		return nil, err
	}
	if p.eof() {
		return nil, p.errorf("unexpected end of input")
	}
	r, _ := p.peekRune()
	switch {
	case r == '{':
		return p.object()
	case r == '[':
		return p.array()
	case closingQuote(r) != nil:
		return p.str()
	case r == '+' || r == '-' || r == '.' || (r >= '0' && r <= '9'):
		return p.number()
	case isIdentStart(r):
		return p.keyword()
	}
	return nil, p.errorf("unexpected %q", r)
}

func (p *parser) object() (any, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()
	p.pos++
	obj := make(map[string]any)
	for {
		if err := p.skip(); err != nil {
			return nil, err
		}
		if p.eof() {
			return nil, p.errorf("unterminated object")
		}
		switch p.src[p.pos] {
		case '}':
			p.pos++
			return obj, nil
		case ',':
			p.pos++
			continue
		}
		key, err := p.key()
		if err != nil {
			return nil, err
		}
		if err := p.skip(); err != nil {
			return nil, err
		}
		if p.eof() || p.src[p.pos] != ':' {
			return nil, p.errorf("expected ':' after key %q", key)
		}
		p.pos++
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		if v == undefined {
			delete(obj, key)
		} else {
			obj[key] = v
		}
	}
}

func (p *parser) key() (string, error) {
	r, _ := p.peekRune()
	if closingQuote(r) != nil {
		return p.str()
	}
	start := p.pos
	for !p.eof() {
		r, size := p.peekRune()
		if !isIdentPart(r) {
			break
		}
		p.pos += size
	}
	if p.pos == start {
		return "", p.errorf("expected member name, found %q", r)
	}
	return p.src[start:p.pos], nil
}

func (p *parser) array() (any, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()
	p.pos++
	arr := make([]any, 0)
	for {
		if err := p.skip(); err != nil {
			return nil, err
		}
		if p.eof() {
			return nil, p.errorf("unterminated array")
		}
		switch p.src[p.pos] {
		case ']':
			p.pos++
			return arr, nil
		case ',':
			p.pos++
			continue
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		if v == undefined {
			v = nil
		}
		arr = append(arr, v)
	}
}

// closingQuote returns the runes that may close a string opened by r, or nil when r
// does not open one. Curly quotes close with either curly variant of the same pair.
func closingQuote(r rune) []rune {
	switch r {
	case '"':
		return []rune{'"'}
	case '\'':
		return []rune{'\''}
	case '\u201C', '\u201D':
		return []rune{'\u201D', '\u201C'}
	case '\u2018', '\u2019':
		return []rune{'\u2019', '\u2018'}
	}
	return nil
}

func (p *parser) str() (string, error) {
	open, size := p.peekRune()
	closers := closingQuote(open)
	start := p.pos
	p.pos += size
	var b strings.Builder
	for !p.eof() {
		r, size := p.peekRune()
		switch {
		case r == closers[0] || (len(closers) > 1 && r == closers[1]):
			p.pos += size
			return b.String(), nil
		case r == '\\':
			p.pos++
			if err := p.escape(&b); err != nil {
				return "", err
			}
		default:
			b.WriteRune(r)
			p.pos += size
		}
	}
	p.pos = start
	return "", p.errorf("unterminated string")
}

func (p *parser) escape(b *strings.Builder) error {
	if p.eof() {
		return p.errorf("unterminated escape")
	}
	r, size := p.peekRune()
	p.pos += size
	switch r {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case '0':
		b.WriteByte(0)
	case 'x':
		code, err := p.hex(2)
		if err != nil {
			return err
		}
		b.WriteRune(rune(code))
	case 'u':
		code, err := p.hex(4)
		if err != nil {
			return err
		}
		r := rune(code)
		if r >= 0xD800 && r < 0xDC00 && strings.HasPrefix(p.src[p.pos:], `\u`) {
			save := p.pos
			p.pos += 2
			lo, err := p.hex(4)
			if err == nil && lo >= 0xDC00 && lo < 0xE000 {
				r = (r-0xD800)<<10 + (rune(lo) - 0xDC00) + 0x10000
			} else {
				p.pos = save
				r = utf8.RuneError
			}
		}
		b.WriteRune(r)
	case '\r':
		if strings.HasPrefix(p.src[p.pos:], "\n") {
			p.pos++
		}
	case '\n', '\u2028', '\u2029':
		// line continuation
	default:
		b.WriteRune(r)
	}
	return nil
}

func (p *parser) hex(n int) (uint64, error) {
	if p.pos+n > len(p.src) {
		return 0, p.errorf("short hex escape")
	}
	code, err := strconv.ParseUint(p.src[p.pos:p.pos+n], 16, 32)
	if err != nil {
		return 0, p.errorf("bad hex escape %q", p.src[p.pos:p.pos+n])
	}
	p.pos += n
	return code, nil
}

func (p *parser) number() (any, error) {
	start := p.pos
	neg := false
	if c := p.src[p.pos]; c == '+' || c == '-' {
		neg = c == '-'
		p.pos++
	}
	rest := p.src[p.pos:]
	sign := 1.0
	if neg {
		sign = -1
	}
	switch {
	case strings.HasPrefix(rest, "Infinity"):
		p.pos += len("Infinity")
		return math.Inf(int(sign)), nil
	case strings.HasPrefix(rest, "NaN"):
		p.pos += len("NaN")
		return math.NaN(), nil
	case strings.HasPrefix(rest, "0x") || strings.HasPrefix(rest, "0X"):
		p.pos += 2
		digits := p.pos
		for !p.eof() && isHexDigit(p.src[p.pos]) {
			p.pos++
		}
		if p.pos == digits {
			return nil, p.errorf("hex number without digits")
		}
		n, err := strconv.ParseUint(p.src[digits:p.pos], 16, 64)
		if err != nil {
			return nil, p.errorf("bad hex number %q", p.src[start:p.pos])
		}
		return sign * float64(n), nil
	}
	mantissa := p.pos
	p.digits()
	if !p.eof() && p.src[p.pos] == '.' {
		p.pos++
		p.digits()
	}
	if mant := p.src[mantissa:p.pos]; mant == "" || mant == "." {
		return nil, p.errorf("malformed number %q", p.src[start:max(p.pos, start+1)])
	}
	if !p.eof() && (p.src[p.pos] == 'e' || p.src[p.pos] == 'E') {
		save := p.pos
		p.pos++
		if !p.eof() && (p.src[p.pos] == '+' || p.src[p.pos] == '-') {
			p.pos++
		}
		exp := p.pos
		p.digits()
		if p.pos == exp {
			p.pos = save
		}
	}
	f, err := strconv.ParseFloat(p.src[mantissa:p.pos], 64)
	if err != nil {
		return nil, p.errorf("bad number %q", p.src[start:p.pos])
	}
	return sign * f, nil
}

func (p *parser) digits() {
	for !p.eof() && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
}

func (p *parser) keyword() (any, error) {
	start := p.pos
	for !p.eof() {
		r, size := p.peekRune()
		if !isIdentPart(r) {
			break
		}
		p.pos += size
	}
	switch word := p.src[start:p.pos]; word {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null":
		return nil, nil
	case "undefined":
		return undefined, nil
	case "Infinity":
		return math.Inf(1), nil
	case "NaN":
		return math.NaN(), nil
	default:
		p.pos = start
		return nil, p.errorf("unexpected identifier %q", word)
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
