// Package graph derives the inheritance dependency graph from the registry
// and produces the topological generation order.
//
// Edges run from a declaration to its parent (extends) and to each of its
// mixins (mixes-in). The walk uses the registry entry's resolution state as
// the cycle sentinel: seeing a Resolving entry again on the same path means
// a cycle, and the minimal cycle path is reported.
package graph

import (
	"github.com/zig-whatwg/zoop/internal/registry"
	"github.com/zig-whatwg/zoop/internal/scanner"
	"github.com/zig-whatwg/zoop/zooperr"
)

// EdgeKind distinguishes the two dependency edge kinds.
type EdgeKind string

const (
	EdgeExtends EdgeKind = "extends"
	EdgeMixesIn EdgeKind = "mixes-in"
)

// Edge is one derived dependency relationship. Edges are not stored; they
// exist only while computing the generation order.
type Edge struct {
	From *registry.Entry
	To   *registry.Entry
	Kind EdgeKind
}

// Builder walks the frozen registry and orders declarations so that every
// dependency (by either edge kind) precedes its dependents.
type Builder struct {
	reg *registry.Registry
}

// NewBuilder creates a builder over a frozen registry.
func NewBuilder(reg *registry.Registry) *Builder {
	return &Builder{reg: reg}
}

// Dependencies resolves a declaration's parent and mixin references, in
// that order. Fails with UnknownDeclaration for unresolvable references.
func (b *Builder) Dependencies(decl *scanner.Declaration) ([]Edge, error) {
	from := b.reg.Get(decl.QualifiedName())
	var edges []Edge

	if decl.Parent != "" {
		e, err := b.reg.Resolve(decl.Parent, decl.Unit)
		if err != nil {
			return nil, err
		}
		edges = append(edges, Edge{From: from, To: e, Kind: EdgeExtends})
	}
	for _, ref := range decl.Mixins {
		e, err := b.reg.Resolve(ref, decl.Unit)
		if err != nil {
			return nil, err
		}
		edges = append(edges, Edge{From: from, To: e, Kind: EdgeMixesIn})
	}
	return edges, nil
}

// Order returns all registry entries in topological order: ancestors and
// mixins before descendants. Independent subtrees are ordered by qualified
// name so repeated runs on unchanged input generate identical output.
func (b *Builder) Order() ([]*registry.Entry, error) {
	var order []*registry.Entry
	var path []string

	var visit func(e *registry.Entry) error
	visit = func(e *registry.Entry) error {
		qn := e.Decl.QualifiedName()

		switch e.State {
		case registry.Resolved:
			return nil
		case registry.Resolving:
			// Found a cycle - report the minimal path back to this entry.
			start := 0
			for i, p := range path {
				if p == qn {
					start = i
					break
				}
			}
			cycle := make([]string, 0, len(path)-start+1)
			cycle = append(cycle, path[start:]...)
			cycle = append(cycle, qn)
			return &zooperr.DependencyCycleError{Path: cycle}
		}

		e.State = registry.Resolving
		path = append(path, qn)

		edges, err := b.Dependencies(e.Decl)
		if err != nil {
			return err
		}
		for _, edge := range edges {
			if err := visit(edge.To); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		e.State = registry.Resolved
		order = append(order, e)
		return nil
	}

	for _, name := range b.reg.Names() {
		if err := visit(b.reg.Get(name)); err != nil {
			return nil, err
		}
	}
	return order, nil
}
