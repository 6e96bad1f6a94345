// Package emit renders flattened declarations back to host source text.
// Rendering is purely textual; every semantic decision (ordering, shadowing,
// rewriting) happened upstream in the flattener.
package emit

import (
	"strings"

	"github.com/zig-whatwg/zoop/internal/flatten"
	"github.com/zig-whatwg/zoop/internal/scanner"
)

// Unit renders one generated output file for a unit. Results must be in the
// unit's source order. Mixins are templates consumed during flattening and
// produce no output of their own.
func Unit(unitName string, results []*flatten.Result, opts Options) string {
	var sb strings.Builder
	sb.WriteString("// Code generated by zoop from " + unitName + ".zoop. DO NOT EDIT.\n")
	for _, res := range results {
		if res.Decl.Kind == scanner.KindMixin {
			continue
		}
		sb.WriteString("\n")
		sb.WriteString(Declaration(res, opts))
	}
	return sb.String()
}

// Declaration renders one flattened declaration as a struct definition:
// fields, property backing fields, accessors, copied methods, own methods.
func Declaration(res *flatten.Result, opts Options) string {
	decl := res.Decl

	var sb strings.Builder
	if decl.Pub {
		sb.WriteString("pub ")
	}
	sb.WriteString("const ")
	sb.WriteString(decl.Name)
	sb.WriteString(" = struct {\n")

	for _, fd := range res.Fields {
		sb.WriteString("    " + fd.Name + ": " + fd.Type + ",\n")
	}
	for _, p := range res.Props {
		sb.WriteString("    " + p.Name + ": " + p.Type + ",\n")
	}

	var fns []string
	for _, p := range res.Props {
		fns = append(fns, accessors(decl.Name, p, opts)...)
	}
	// Own methods carry their declared text and are emitted as written;
	// rewritten copies render from their signature and body.
	for _, m := range res.Methods {
		text := m.Raw
		if text == "" {
			text = m.Signature + " " + m.Body
			if m.Pub {
				text = "pub " + text
			}
		}
		fns = append(fns, text)
	}

	for _, fn := range fns {
		sb.WriteString("\n")
		sb.WriteString(indentBlock(fn, "    "))
		sb.WriteString("\n")
	}

	sb.WriteString("};\n")
	return sb.String()
}

// indentBlock re-indents a function block to the target depth. The block's
// continuation lines still carry the indentation of their original nesting
// depth, so the common leading whitespace is stripped before re-indenting;
// relative interior indentation survives.
func indentBlock(block, indent string) string {
	lines := strings.Split(block, "\n")
	if len(lines) == 1 {
		return indent + block
	}

	common := -1
	for _, ln := range lines[1:] {
		if strings.TrimSpace(ln) == "" {
			continue
		}
		n := len(ln) - len(strings.TrimLeft(ln, " \t"))
		if common < 0 || n < common {
			common = n
		}
	}
	if common < 0 {
		common = 0
	}

	var sb strings.Builder
	sb.WriteString(indent)
	sb.WriteString(lines[0])
	for _, ln := range lines[1:] {
		sb.WriteString("\n")
		if strings.TrimSpace(ln) == "" {
			continue
		}
		sb.WriteString(indent)
		sb.WriteString(ln[common:])
	}
	return sb.String()
}
