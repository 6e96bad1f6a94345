// Package rewrite copies methods between declarations, rewriting self-type
// references to the destination type.
//
// Rewriting is an exact token-equality replace over the typed token stream
// produced by the scanner's lexer, never a string search, so a type name
// that happens to be a substring of an unrelated identifier is left alone.
package rewrite

import (
	"strings"

	"github.com/zig-whatwg/zoop/internal/scanner"
)

// Method produces a copy of m with every identifier token exactly equal to
// from replaced by to, in both the signature and the body. The receiver
// parameter's type and any self-typed expressions in the body are covered
// by the same rule; an identifier following a dot is a qualified reference
// or member access, not a self-type reference, and stays untouched. Static
// methods carry no receiver but are rewritten the same way so factory-style
// returns of the declaring type follow the copy.
func Method(m scanner.Method, from, to string) (scanner.Method, error) {
	if from == to {
		return m, nil
	}

	sig, err := text(m.Signature, from, to)
	if err != nil {
		return scanner.Method{}, err
	}
	body, err := text(m.Body, from, to)
	if err != nil {
		return scanner.Method{}, err
	}

	out := m
	out.Signature = sig
	out.Body = body
	// A copy is no longer the declared text; it renders from the rewritten
	// parts.
	out.Raw = ""
	return out, nil
}

// TypeText rewrites self-type references inside one field or property type.
// Inherited fields follow the same rule as methods: only tokens exactly
// equal to the declaring type's name change.
func TypeText(typeText, from, to string) (string, error) {
	if from == to {
		return typeText, nil
	}
	return text(typeText, from, to)
}

// text rewrites one lexable source fragment. Offsets from the lexer drive
// the splice, so everything between tokens (spacing, comments) survives
// untouched.
func text(src, from, to string) (string, error) {
	toks, err := scanner.Lex("", src)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	last := 0
	for i, tok := range toks {
		if tok.Type != scanner.TokenIdent || tok.Value != from {
			continue
		}
		// A dot before the identifier means it is the name component of a
		// qualified reference (other.Animal) or a member access
		// (self.Animal), never a self-type reference.
		if i > 0 && toks[i-1].Type == scanner.TokenDot {
			continue
		}
		sb.WriteString(src[last:tok.Offset])
		sb.WriteString(to)
		last = tok.End
	}
	sb.WriteString(src[last:])
	return sb.String(), nil
}
