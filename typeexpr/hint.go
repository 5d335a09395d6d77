package typeexpr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseHint parses type-declaration text, the form TypeHint produces, into a normalized Type.
//
//	string | null
//	{ name: string; age?: number }[]
//	Record<string, "a" | "b">
//	{ [key: string]: boolean }
//
// Intersections, function types and non-string dictionary keys are rejected with
// UnrepresentableTypeError.
func ParseHint(text string) (Type, error) {
	toks, err := lexHint(text)
	if err != nil {
		return nil, err
	}
	p := &hintParser{toks: toks}
	t, err := p.union()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.errorf(tok, "unexpected %q", tok.text)
	}
	return Normalize(t)
}

// MustParseHint is like ParseHint but panics on error. Useful for package-level contracts.
func MustParseHint(text string) Type {
	t, err := ParseHint(text)
	if err != nil {
		panic(err)
	}
	return t
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokString
	tokNumber
	tokPunct
)

type hintToken struct {
	kind tokKind
	text string
	pos  int
	str  string
	num  float64
}

func lexHint(src string) ([]hintToken, error) {
	var toks []hintToken
	i := 0
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case r == '=' && strings.HasPrefix(src[i:], "=>"):
			toks = append(toks, hintToken{kind: tokPunct, text: "=>", pos: i})
			i += 2
		case strings.ContainsRune("()[]{}<>|&;,:?", r):
			toks = append(toks, hintToken{kind: tokPunct, text: string(r), pos: i})
			i += size
		case r == '"' || r == '\'':
			s, n, err := lexQuoted(src[i:], r)
			if err != nil {
				return nil, &HintSyntaxError{Offset: i, Msg: err.Error()}
			}
			toks = append(toks, hintToken{kind: tokString, text: src[i : i+n], pos: i, str: s})
			i += n
		case r == '-' || r == '+' || r == '.' || (r >= '0' && r <= '9'):
			n := lexNumberLen(src[i:])
			v, err := strconv.ParseFloat(src[i:i+n], 64)
			if n == 0 || err != nil {
				return nil, &HintSyntaxError{Offset: i, Msg: fmt.Sprintf("bad number %q", src[i:i+max(n, 1)])}
			}
			toks = append(toks, hintToken{kind: tokNumber, text: src[i : i+n], pos: i, num: v})
			i += n
		case r == '_' || r == '$' || unicode.IsLetter(r):
			j := i + size
			for j < len(src) {
				r2, s2 := utf8.DecodeRuneInString(src[j:])
				if r2 != '_' && r2 != '$' && !unicode.IsLetter(r2) && !unicode.IsDigit(r2) {
					break
				}
				j += s2
			}
			toks = append(toks, hintToken{kind: tokIdent, text: src[i:j], pos: i})
			i = j
		default:
			return nil, &HintSyntaxError{Offset: i, Msg: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	return append(toks, hintToken{kind: tokEOF, pos: len(src)}), nil
}

func lexNumberLen(s string) int {
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	digits := func() {
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
	}
	digits()
	if i < len(s) && s[i] == '.' {
		i++
		digits()
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '-' || s[i] == '+') {
			i++
		}
		digits()
	}
	return i
}

// lexQuoted reads a quoted literal starting at s[0] and returns its value and byte length.
func lexQuoted(s string, quote rune) (string, int, error) {
	var b strings.Builder
	i := 1
	for i < len(s) {
		c := s[i]
		switch {
		case rune(c) == quote:
			return b.String(), i + 1, nil
		case c == '\\':
			if i+1 >= len(s) {
				return "", 0, fmt.Errorf("unterminated escape")
			}
			esc := s[i+1]
			i += 2
			switch esc {
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
			case 'u':
				if i+4 > len(s) {
					return "", 0, fmt.Errorf("short unicode escape")
				}
				code, err := strconv.ParseUint(s[i:i+4], 16, 32)
				if err != nil {
					return "", 0, fmt.Errorf("bad unicode escape %q", s[i:i+4])
				}
				i += 4
				r := rune(code)
				if utf16IsHighSurrogate(r) && strings.HasPrefix(s[i:], `\u`) && i+6 <= len(s) {
					if lo, err := strconv.ParseUint(s[i+2:i+6], 16, 32); err == nil {
						r = combineSurrogates(r, rune(lo))
						i += 6
					}
				}
				b.WriteRune(r)
			default:
				b.WriteByte(esc)
			}
		default:
			b.WriteByte(c)
			i++
		}
	}
	return "", 0, fmt.Errorf("unterminated string")
}

func utf16IsHighSurrogate(r rune) bool { return r >= 0xD800 && r < 0xDC00 }

func combineSurrogates(hi, lo rune) rune {
	if lo < 0xDC00 || lo >= 0xE000 {
		return utf8.RuneError
	}
	return (hi-0xD800)<<10 + (lo - 0xDC00) + 0x10000
}

type hintParser struct {
	toks []hintToken
	i    int
}

func (p *hintParser) peek() hintToken { return p.toks[p.i] }

func (p *hintParser) peekAt(n int) hintToken {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+n]
}

func (p *hintParser) next() hintToken {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *hintParser) is(text string) bool {
	t := p.peek()
	return t.kind == tokPunct && t.text == text
}

func (p *hintParser) expect(text string) error {
	t := p.next()
	if t.kind != tokPunct || t.text != text {
		return p.errorf(t, "expected %q, found %q", text, t.text)
	}
	return nil
}

func (p *hintParser) errorf(t hintToken, format string, args ...any) error {
	return &HintSyntaxError{Offset: t.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *hintParser) union() (Type, error) {
	if p.is("|") {
		p.next()
	}
	var members []Type
	for {
		t, err := p.postfix()
		if err != nil {
			return nil, err
		}
		members = append(members, t)
		if p.is("&") {
			return nil, &UnrepresentableTypeError{What: "intersection type"}
		}
		if !p.is("|") {
			break
		}
		p.next()
	}
	if len(members) == 1 {
		return members[0], nil
	}
	return Union{Members: members}, nil
}

func (p *hintParser) postfix() (Type, error) {
	t, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.is("[") {
		p.next()
		if err := p.expect("]"); err != nil {
			return nil, err
		}
		t = Array{Item: t}
	}
	return t, nil
}

func (p *hintParser) primary() (Type, error) {
	tok := p.peek()
	switch tok.kind {
	case tokString:
		p.next()
		return Literal{Value: tok.str}, nil
	case tokNumber:
		p.next()
		return Literal{Value: tok.num}, nil
	case tokIdent:
		return p.named()
	case tokPunct:
		switch tok.text {
		case "(":
			return p.group()
		case "{":
			return p.object()
		}
	}
	return nil, p.errorf(tok, "unexpected %q", tok.text)
}

func (p *hintParser) group() (Type, error) {
	p.next()
	// "()" or "(name:" / "(name?:" starts a parameter list.
	if p.is(")") || (p.peek().kind == tokIdent && p.peekAt(1).kind == tokPunct &&
		(p.peekAt(1).text == ":" || p.peekAt(1).text == "?")) {
		return nil, &UnrepresentableTypeError{What: "function type"}
	}
	t, err := p.union()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	if p.is("=>") {
		return nil, &UnrepresentableTypeError{What: "function type"}
	}
	return t, nil
}

func (p *hintParser) named() (Type, error) {
	tok := p.next()
	switch tok.text {
	case "string":
		return String{}, nil
	case "number", "integer":
		return Number{}, nil
	case "boolean":
		return Boolean{}, nil
	case "null":
		return Null{}, nil
	case "undefined":
		return Absent{}, nil
	case "true":
		return Literal{Value: true}, nil
	case "false":
		return Literal{Value: false}, nil
	case "Array":
		if err := p.expect("<"); err != nil {
			return nil, err
		}
		item, err := p.union()
		if err != nil {
			return nil, err
		}
		if err := p.expect(">"); err != nil {
			return nil, err
		}
		return Array{Item: item}, nil
	case "Record":
		if err := p.expect("<"); err != nil {
			return nil, err
		}
		if err := p.stringKey(); err != nil {
			return nil, err
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
		v, err := p.union()
		if err != nil {
			return nil, err
		}
		if err := p.expect(">"); err != nil {
			return nil, err
		}
		return Dictionary{Value: v}, nil
	}
	return nil, &UnrepresentableTypeError{What: fmt.Sprintf("type %q", tok.text)}
}

func (p *hintParser) stringKey() error {
	key := p.next()
	if key.kind != tokIdent {
		return p.errorf(key, "expected key type, found %q", key.text)
	}
	if key.text != "string" {
		return &UnrepresentableTypeError{What: fmt.Sprintf("dictionary key of type %s", key.text)}
	}
	return nil
}

func (p *hintParser) object() (Type, error) {
	p.next()
	var obj Object
	var dict Type
	for !p.is("}") {
		if p.peek().kind == tokEOF {
			return nil, p.errorf(p.peek(), "unterminated object")
		}
		if p.is("[") {
			v, err := p.indexSignature()
			if err != nil {
				return nil, err
			}
			dict = v
		} else {
			f, err := p.member()
			if err != nil {
				return nil, err
			}
			obj.Fields = append(obj.Fields, f)
		}
		if p.is(";") || p.is(",") {
			p.next()
		}
	}
	p.next()
	switch {
	case dict != nil && len(obj.Fields) > 0:
		return nil, &UnrepresentableTypeError{What: "object with both members and an index signature"}
	case dict != nil:
		return Dictionary{Value: dict}, nil
	}
	return obj, nil
}

func (p *hintParser) indexSignature() (Type, error) {
	p.next()
	if name := p.next(); name.kind != tokIdent {
		return nil, p.errorf(name, "expected index name, found %q", name.text)
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	if err := p.stringKey(); err != nil {
		return nil, err
	}
	if err := p.expect("]"); err != nil {
		return nil, err
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	return p.union()
}

func (p *hintParser) member() (Field, error) {
	name := p.next()
	var f Field
	switch name.kind {
	case tokIdent:
		f.Name = name.text
	case tokString:
		f.Name = name.str
	default:
		return f, p.errorf(name, "expected member name, found %q", name.text)
	}
	if p.is("(") {
		return f, &UnrepresentableTypeError{What: fmt.Sprintf("method %q", f.Name)}
	}
	if p.is("?") {
		p.next()
		f.Optional = true
	}
	if err := p.expect(":"); err != nil {
		return f, err
	}
	t, err := p.union()
	if err != nil {
		return f, err
	}
	f.Type = t
	return f, nil
}
