// Package flatten composes the full member set of a declaration from its
// ancestor chain, its mixins, and its own contributions.
//
// Ordering contract: ancestor members first in ancestor-chain order, then
// each mixin's members in mixin-declaration order, then own members last.
// A member declared directly on the descendant shadows a same-named
// inherited member in place; two inherited sources contributing the same
// name with no local override is a hard error.
package flatten

import (
	"math"
	"sync"

	"github.com/zig-whatwg/zoop/internal/registry"
	"github.com/zig-whatwg/zoop/internal/rewrite"
	"github.com/zig-whatwg/zoop/internal/scanner"
	"github.com/zig-whatwg/zoop/zooperr"
)

// Result is the transient flattened form of one declaration. Results are
// recomputed per run and never shared back into the registry.
type Result struct {
	Decl    *scanner.Declaration
	Fields  []scanner.Field
	Props   []scanner.Property
	Methods []scanner.Method
	// FieldCount is the overflow-checked total of fields and properties.
	FieldCount uint16
}

// Flattener computes flattened results in topological order. It is safe to
// flatten independent declarations concurrently; a declaration's
// dependencies must already be flattened when Flatten is called for it.
type Flattener struct {
	reg *registry.Registry

	// maxFields is the configured ceiling on the flattened member count.
	// Zero means only the counting type's own maximum applies.
	maxFields int

	mu      sync.RWMutex
	results map[string]*Result
}

// New creates a flattener over a frozen registry.
func New(reg *registry.Registry, maxFields int) *Flattener {
	return &Flattener{
		reg:       reg,
		maxFields: maxFields,
		results:   make(map[string]*Result),
	}
}

// Result returns the stored flattened result for a qualified name, or nil.
func (f *Flattener) Result(qualified string) *Result {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.results[qualified]
}

// source is one inherited contribution: the parent or one mixin.
type source struct {
	qualified string // Qualified name, for collision reporting
	typeName  string // Short type name rewritten away in copies
	res       *Result
}

// Flatten computes and stores the flattened result for decl. The results of
// everything decl depends on must already be present.
func (f *Flattener) Flatten(decl *scanner.Declaration) (*Result, error) {
	qn := decl.QualifiedName()

	sources, err := f.sources(decl)
	if err != nil {
		return nil, err
	}

	res := &Result{Decl: decl}
	if err := f.mergeMembers(res, decl, sources); err != nil {
		return nil, err
	}
	if err := f.composeMethods(res, decl, sources); err != nil {
		return nil, err
	}

	count, ok := checkedCount(len(res.Fields), len(res.Props))
	if !ok {
		return nil, &zooperr.FieldCountOverflowError{Decl: qn, Max: math.MaxUint16}
	}
	if f.maxFields > 0 && int(count) > f.maxFields {
		return nil, &zooperr.FieldCountOverflowError{Decl: qn, Max: f.maxFields}
	}
	res.FieldCount = count

	f.mu.Lock()
	f.results[qn] = res
	f.mu.Unlock()
	return res, nil
}

// sources resolves the parent and mixin results, parent first.
func (f *Flattener) sources(decl *scanner.Declaration) ([]source, error) {
	refs := make([]string, 0, len(decl.Mixins)+1)
	if decl.Parent != "" {
		refs = append(refs, decl.Parent)
	}
	refs = append(refs, decl.Mixins...)

	sources := make([]source, 0, len(refs))
	for _, ref := range refs {
		entry, err := f.reg.Resolve(ref, decl.Unit)
		if err != nil {
			return nil, err
		}
		dep := entry.Decl.QualifiedName()
		res := f.Result(dep)
		if res == nil {
			// The topological order guarantees dependencies are flattened
			// first; a missing result is a scheduling bug, not bad input.
			panic("flatten: dependency " + dep + " not yet flattened")
		}
		sources = append(sources, source{qualified: dep, typeName: entry.Decl.Name, res: res})
	}
	return sources, nil
}

// mergeMembers builds the flattened field and property lists.
func (f *Flattener) mergeMembers(res *Result, decl *scanner.Declaration, sources []source) error {
	qn := decl.QualifiedName()

	ownNames := make(map[string]bool)
	for _, fd := range decl.Fields {
		ownNames[fd.Name] = true
	}
	for _, p := range decl.Props {
		ownNames[p.Name] = true
	}

	// origin tracks which source contributed each member name.
	origin := make(map[string]string)

	// Inherited members, parent first, then mixins in declaration order.
	// Inherited self-typed members are rewritten to the descendant's name.
	for _, src := range sources {
		for _, fd := range src.res.Fields {
			if prev, ok := origin[fd.Name]; ok {
				if ownNames[fd.Name] {
					continue // descendant shadows both copies
				}
				return &zooperr.FieldCollisionError{Decl: qn, Member: fd.Name, First: prev, Second: src.qualified}
			}
			typ, err := rewrite.TypeText(fd.Type, src.typeName, decl.Name)
			if err != nil {
				return err
			}
			origin[fd.Name] = src.qualified
			res.Fields = append(res.Fields, scanner.Field{Name: fd.Name, Type: typ})
		}
		for _, p := range src.res.Props {
			if prev, ok := origin[p.Name]; ok {
				if ownNames[p.Name] {
					continue
				}
				return &zooperr.FieldCollisionError{Decl: qn, Member: p.Name, First: prev, Second: src.qualified}
			}
			typ, err := rewrite.TypeText(p.Type, src.typeName, decl.Name)
			if err != nil {
				return err
			}
			origin[p.Name] = src.qualified
			res.Props = append(res.Props, scanner.Property{Name: p.Name, Type: typ, Access: p.Access})
		}
	}

	// Own members: shadow in place (same position, new type), or append.
	// A shadow that changes member kind (field over property or the other
	// way around) cannot keep the slot in the old list, so it moves to the
	// end of the new one.
	for _, fd := range decl.Fields {
		if prev, ok := origin[fd.Name]; ok {
			if prev == qn {
				return &zooperr.FieldCollisionError{Decl: qn, Member: fd.Name, First: qn, Second: qn}
			}
			if idx := indexField(res.Fields, fd.Name); idx >= 0 {
				res.Fields[idx] = fd
			} else {
				removeProp(res, fd.Name)
				res.Fields = append(res.Fields, fd)
			}
			origin[fd.Name] = qn
			continue
		}
		origin[fd.Name] = qn
		res.Fields = append(res.Fields, fd)
	}
	for _, p := range decl.Props {
		if prev, ok := origin[p.Name]; ok {
			if prev == qn {
				return &zooperr.FieldCollisionError{Decl: qn, Member: p.Name, First: qn, Second: qn}
			}
			if idx := indexProp(res.Props, p.Name); idx >= 0 {
				if res.Props[idx].Access != p.Access {
					return &zooperr.AccessModeConflictError{
						Decl:      qn,
						Property:  p.Name,
						Inherited: string(res.Props[idx].Access),
						Declared:  string(p.Access),
					}
				}
				res.Props[idx] = p
			} else {
				removeField(res, p.Name)
				res.Props = append(res.Props, p)
			}
			origin[p.Name] = qn
			continue
		}
		origin[p.Name] = qn
		res.Props = append(res.Props, p)
	}

	return nil
}

func indexField(fields []scanner.Field, name string) int {
	for i, fd := range fields {
		if fd.Name == name {
			return i
		}
	}
	return -1
}

func indexProp(props []scanner.Property, name string) int {
	for i, p := range props {
		if p.Name == name {
			return i
		}
	}
	return -1
}

func removeField(res *Result, name string) {
	if i := indexField(res.Fields, name); i >= 0 {
		res.Fields = append(res.Fields[:i], res.Fields[i+1:]...)
	}
}

func removeProp(res *Result, name string) {
	if i := indexProp(res.Props, name); i >= 0 {
		res.Props = append(res.Props[:i], res.Props[i+1:]...)
	}
}

// composeMethods copies non-shadowed inherited methods, rewritten to the
// descendant's type, then appends own methods verbatim. Local declarations
// always win; among inherited sources the first contributor wins.
func (f *Flattener) composeMethods(res *Result, decl *scanner.Declaration, sources []source) error {
	seen := make(map[string]bool)
	for _, m := range decl.Methods {
		seen[m.Name] = true
	}

	for _, src := range sources {
		for _, m := range src.res.Methods {
			if seen[m.Name] {
				continue
			}
			cp, err := rewrite.Method(m, src.typeName, decl.Name)
			if err != nil {
				return err
			}
			res.Methods = append(res.Methods, cp)
			seen[m.Name] = true
		}
	}

	res.Methods = append(res.Methods, decl.Methods...)
	return nil
}

// checkedCount sums two list lengths into the counting type, reporting
// overflow instead of wrapping.
func checkedCount(a, b int) (uint16, bool) {
	total := uint64(a) + uint64(b)
	if total > math.MaxUint16 {
		return 0, false
	}
	return uint16(total), true
}
