package scanner

import (
	"fmt"
	"strings"

	"github.com/zig-whatwg/zoop/zooperr"
)

// ScanUnit extracts all class and mixin declarations from one source unit.
// The unit name is the file stem and becomes the qualifier of every
// declaration found. A malformed declaration aborts the scan of this unit;
// callers scan other units regardless.
func ScanUnit(unit, src string) ([]*Declaration, error) {
	toks, err := Lex(unit, src)
	if err != nil {
		return nil, err
	}
	s := &unitScanner{unit: unit, src: src, toks: toks}
	return s.scan()
}

// unitScanner holds the state for scanning one unit's token stream.
type unitScanner struct {
	unit string
	src  string
	toks []Token
	pos  int
}

func (s *unitScanner) current() *Token {
	if s.pos < len(s.toks) {
		return &s.toks[s.pos]
	}
	return nil
}

func (s *unitScanner) peek(n int) *Token {
	if s.pos+n < len(s.toks) {
		return &s.toks[s.pos+n]
	}
	return nil
}

func (s *unitScanner) atEnd() bool {
	return s.pos >= len(s.toks)
}

func (s *unitScanner) advance() {
	if s.pos < len(s.toks) {
		s.pos++
	}
}

func (s *unitScanner) errorAt(tok *Token, format string, args ...interface{}) error {
	line, col := 0, 0
	if tok != nil {
		line, col = tok.Line, tok.Col
	}
	return &zooperr.ParseError{Unit: s.unit, Line: line, Column: col, Msg: fmt.Sprintf(format, args...)}
}

// scan walks the top level of the unit. Only `[pub] const Name = class {...};`
// and `[pub] const Name = mixin {...};` are recognized; all other top-level
// content passes through untouched, with brace depth tracked so declaration
// markers inside unrelated bodies are never matched.
func (s *unitScanner) scan() ([]*Declaration, error) {
	var decls []*Declaration
	depth := 0

	for !s.atEnd() {
		t := s.current()
		switch t.Type {
		case TokenLBrace:
			depth++
		case TokenRBrace:
			depth--
		case TokenIdent:
			if depth == 0 && (t.Value == "pub" || t.Value == "const") {
				d, ok, err := s.tryDeclaration()
				if err != nil {
					return nil, err
				}
				if ok {
					decls = append(decls, d)
					continue
				}
			}
		}
		s.advance()
	}

	return decls, nil
}

// tryDeclaration attempts to parse a declaration header at the current
// position. Returns ok=false with the position unchanged when the tokens
// form some other top-level definition.
func (s *unitScanner) tryDeclaration() (*Declaration, bool, error) {
	start := s.pos
	pub := false

	t := s.current()
	headLine, headCol := t.Line, t.Col
	if t.Value == "pub" {
		pub = true
		s.advance()
		t = s.current()
	}
	if t == nil || t.Type != TokenIdent || t.Value != "const" {
		s.pos = start
		return nil, false, nil
	}
	s.advance()

	name := s.current()
	if name == nil || name.Type != TokenIdent {
		s.pos = start
		return nil, false, nil
	}
	s.advance()

	if eq := s.current(); eq == nil || eq.Type != TokenEquals {
		s.pos = start
		return nil, false, nil
	}
	s.advance()

	marker := s.current()
	if marker == nil || marker.Type != TokenIdent || (marker.Value != string(KindClass) && marker.Value != string(KindMixin)) {
		s.pos = start
		return nil, false, nil
	}
	s.advance()

	if lb := s.current(); lb == nil || lb.Type != TokenLBrace {
		return nil, false, s.errorAt(s.current(), "expected '{' after %s marker", marker.Value)
	}
	s.advance()

	d := &Declaration{
		Name: name.Value,
		Unit: s.unit,
		Kind: DeclKind(marker.Value),
		Pub:  pub,
		Line: headLine,
		Col:  headCol,
	}

	if err := s.parseBody(d); err != nil {
		return nil, false, err
	}
	return d, true, nil
}

// parseBody parses declaration members up to and including the closing `};`.
func (s *unitScanner) parseBody(d *Declaration) error {
	sawExtends, sawWith, sawProps := false, false, false

	for {
		t := s.current()
		if t == nil {
			return s.errorAt(nil, "unterminated %s declaration %s", d.Kind, d.Name)
		}

		if t.Type == TokenRBrace {
			s.advance()
			if semi := s.current(); semi != nil && semi.Type == TokenSemi {
				s.advance()
			}
			return nil
		}

		if t.Type != TokenIdent {
			return s.errorAt(t, "unexpected %q in body of %s", t.Value, d.Name)
		}

		switch t.Value {
		case "extends":
			if sawExtends {
				return s.errorAt(t, "duplicate extends directive in %s", d.Name)
			}
			sawExtends = true
			if err := s.parseExtends(d); err != nil {
				return err
			}

		case "with":
			if sawWith {
				return s.errorAt(t, "duplicate with directive in %s", d.Name)
			}
			sawWith = true
			if err := s.parseWith(d); err != nil {
				return err
			}

		case "props":
			if sawProps {
				return s.errorAt(t, "duplicate props directive in %s", d.Name)
			}
			sawProps = true
			if err := s.parseProps(d); err != nil {
				return err
			}

		case "pub", "fn":
			if err := s.parseMethod(d); err != nil {
				return err
			}

		default:
			if next := s.peek(1); next != nil && next.Type == TokenColon {
				if err := s.parseField(d); err != nil {
					return err
				}
			} else {
				return s.errorAt(t, "unexpected %q in body of %s", t.Value, d.Name)
			}
		}
	}
}

// parseRef parses a declaration reference: Name or unit.Name.
func (s *unitScanner) parseRef() (string, error) {
	t := s.current()
	if t == nil || t.Type != TokenIdent {
		return "", s.errorAt(t, "expected declaration reference")
	}
	ref := t.Value
	s.advance()

	if dot := s.current(); dot != nil && dot.Type == TokenDot {
		s.advance()
		name := s.current()
		if name == nil || name.Type != TokenIdent {
			return "", s.errorAt(name, "expected declaration name after %q.", ref)
		}
		ref = ref + "." + name.Value
		s.advance()
	}
	return ref, nil
}

func (s *unitScanner) parseExtends(d *Declaration) error {
	s.advance() // extends
	ref, err := s.parseRef()
	if err != nil {
		return err
	}
	d.Parent = ref
	return s.expectSemi("extends directive")
}

func (s *unitScanner) parseWith(d *Declaration) error {
	s.advance() // with
	for {
		ref, err := s.parseRef()
		if err != nil {
			return err
		}
		d.Mixins = append(d.Mixins, ref)

		t := s.current()
		if t != nil && t.Type == TokenComma {
			s.advance()
			continue
		}
		break
	}
	return s.expectSemi("with directive")
}

func (s *unitScanner) parseProps(d *Declaration) error {
	s.advance() // props
	if lb := s.current(); lb == nil || lb.Type != TokenLBrace {
		return s.errorAt(s.current(), "expected '{' after props")
	}
	s.advance()
	d.Props = []Property{}

	for {
		t := s.current()
		if t == nil {
			return s.errorAt(nil, "unterminated props table in %s", d.Name)
		}
		if t.Type == TokenRBrace {
			s.advance()
			return s.expectSemi("props table")
		}
		if t.Type != TokenIdent {
			return s.errorAt(t, "expected property name, got %q", t.Value)
		}

		name := t.Value
		s.advance()
		if c := s.current(); c == nil || c.Type != TokenColon {
			return s.errorAt(s.current(), "expected ':' after property name %q", name)
		}
		s.advance()

		typeToks, err := s.collectTypeTokens(d.Name)
		if err != nil {
			return err
		}

		access := AccessReadOnly
		if n := len(typeToks); n > 1 {
			last := typeToks[n-1]
			if last.Type == TokenIdent && (last.Value == string(AccessReadOnly) || last.Value == string(AccessReadWrite)) {
				access = AccessMode(last.Value)
				typeToks = typeToks[:n-1]
			}
		}
		if len(typeToks) == 0 {
			return s.errorAt(t, "missing type for property %q", name)
		}

		d.Props = append(d.Props, Property{
			Name:   name,
			Type:   s.span(typeToks),
			Access: access,
		})

		if c := s.current(); c != nil && c.Type == TokenComma {
			s.advance()
		}
	}
}

func (s *unitScanner) parseField(d *Declaration) error {
	t := s.current()
	name := t.Value
	s.advance() // name
	s.advance() // colon

	typeToks, err := s.collectTypeTokens(d.Name)
	if err != nil {
		return err
	}
	if len(typeToks) == 0 {
		return s.errorAt(t, "missing type for field %q", name)
	}

	d.Fields = append(d.Fields, Field{Name: name, Type: s.span(typeToks)})

	if c := s.current(); c != nil && c.Type == TokenComma {
		s.advance()
	}
	return nil
}

// collectTypeTokens gathers type tokens until a comma or closing brace at
// nesting level zero. The stop token is not consumed.
func (s *unitScanner) collectTypeTokens(declName string) ([]Token, error) {
	var toks []Token
	level := 0

	for {
		t := s.current()
		if t == nil {
			return nil, s.errorAt(nil, "unterminated member in %s", declName)
		}
		if level == 0 && (t.Type == TokenComma || t.Type == TokenRBrace) {
			return toks, nil
		}
		switch t.Type {
		case TokenLParen, TokenLBracket, TokenLBrace:
			level++
		case TokenRParen, TokenRBracket, TokenRBrace:
			level--
		case TokenSemi:
			if level == 0 {
				return nil, s.errorAt(t, "unexpected ';' in type of member in %s", declName)
			}
		}
		toks = append(toks, *t)
		s.advance()
	}
}

// parseMethod parses `[pub] fn name(params) ret { body }`. The signature and
// body are kept as raw source spans so own methods are emitted exactly as
// declared.
func (s *unitScanner) parseMethod(d *Declaration) error {
	pub := false
	t := s.current()
	startTok := *t
	if t.Value == "pub" {
		pub = true
		s.advance()
		t = s.current()
		if t == nil || t.Type != TokenIdent || t.Value != "fn" {
			return s.errorAt(t, "expected fn after pub in %s", d.Name)
		}
	}
	fnTok := *t
	s.advance() // fn

	nameTok := s.current()
	if nameTok == nil || nameTok.Type != TokenIdent {
		return s.errorAt(nameTok, "expected method name in %s", d.Name)
	}
	name := nameTok.Value
	s.advance()

	if lp := s.current(); lp == nil || lp.Type != TokenLParen {
		return s.errorAt(s.current(), "expected '(' after method name %q", name)
	}

	// Parameter list, tracking nesting for function-typed parameters.
	var paramToks []Token
	level := 0
	for {
		t := s.current()
		if t == nil {
			return s.errorAt(nil, "unterminated parameter list of %q", name)
		}
		paramToks = append(paramToks, *t)
		s.advance()
		if t.Type == TokenLParen {
			level++
		} else if t.Type == TokenRParen {
			level--
			if level == 0 {
				break
			}
		}
	}

	// Return type runs to the opening brace of the body.
	for {
		t := s.current()
		if t == nil {
			return s.errorAt(nil, "missing body of method %q", name)
		}
		if t.Type == TokenLBrace {
			break
		}
		if t.Type == TokenSemi || t.Type == TokenRBrace {
			return s.errorAt(t, "missing body of method %q", name)
		}
		s.advance()
	}

	bodyStart := s.current()
	sig := strings.TrimRight(s.src[fnTok.Offset:bodyStart.Offset], " \t\r\n")

	// Body: matched braces.
	depth := 0
	var bodyEnd Token
	for {
		t := s.current()
		if t == nil {
			return s.errorAt(nil, "unterminated body of method %q", name)
		}
		if t.Type == TokenLBrace {
			depth++
		} else if t.Type == TokenRBrace {
			depth--
			if depth == 0 {
				bodyEnd = *t
				s.advance()
				break
			}
		}
		s.advance()
	}
	body := s.src[bodyStart.Offset:bodyEnd.End]

	d.Methods = append(d.Methods, Method{
		Name:      name,
		Pub:       pub,
		Static:    !isReceiverParam(paramToks, d.Name),
		Signature: sig,
		Body:      body,
		Raw:       s.src[startTok.Offset:bodyEnd.End],
	})
	return nil
}

// isReceiverParam reports whether the first parameter in the parenthesized
// token list is a receiver of the declaration's own type: `self: T`,
// `self: *T` or `self: *const T`.
func isReceiverParam(paramToks []Token, declName string) bool {
	// Strip the surrounding parentheses.
	if len(paramToks) < 2 {
		return false
	}
	inner := paramToks[1 : len(paramToks)-1]

	// First parameter only.
	first := inner
	level := 0
	for i, t := range inner {
		if t.Type == TokenComma && level == 0 {
			first = inner[:i]
			break
		}
		switch t.Type {
		case TokenLParen, TokenLBracket, TokenLBrace:
			level++
		case TokenRParen, TokenRBracket, TokenRBrace:
			level--
		}
	}

	if len(first) < 3 || first[0].Type != TokenIdent || first[1].Type != TokenColon {
		return false
	}
	rest := first[2:]
	if len(rest) > 0 && rest[0].Type == TokenStar {
		rest = rest[1:]
	}
	if len(rest) > 0 && rest[0].Type == TokenIdent && rest[0].Value == "const" {
		rest = rest[1:]
	}
	return len(rest) == 1 && rest[0].Type == TokenIdent && rest[0].Value == declName
}

func (s *unitScanner) expectSemi(what string) error {
	t := s.current()
	if t == nil || t.Type != TokenSemi {
		return s.errorAt(t, "expected ';' after %s", what)
	}
	s.advance()
	return nil
}

// span slices the raw source text covered by a token run.
func (s *unitScanner) span(toks []Token) string {
	if len(toks) == 0 {
		return ""
	}
	return strings.TrimSpace(s.src[toks[0].Offset:toks[len(toks)-1].End])
}
