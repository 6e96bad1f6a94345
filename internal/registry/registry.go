// Package registry provides the process-wide table of declaration records.
//
// The registry is built once per generation run by inserting every record
// found by the scanner, then frozen. After freezing it is read-only for the
// rest of the run, so concurrent readers need no locking; the per-entry
// resolution state remains mutable and is owned by the graph walk.
package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/zig-whatwg/zoop/internal/scanner"
	"github.com/zig-whatwg/zoop/zooperr"
)

// State is the resolution state of a registry entry, used as the cycle
// sentinel during the graph walk.
type State int

const (
	Unresolved State = iota
	Resolving
	Resolved
)

// Entry is one registry slot: a declaration record plus its resolution state.
type Entry struct {
	Decl  *scanner.Declaration
	State State
}

// Registry maps qualified declaration names to their entries.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*Entry
	frozen  bool
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
	}
}

// Register inserts a declaration record. Safe for concurrent use during the
// build phase. Fails with DuplicateDeclaration if the qualified name is
// already claimed, and panics if called after Freeze: registration after
// the build phase is a programming error, not an input error.
func (r *Registry) Register(decl *scanner.Declaration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		panic("registry: Register called after Freeze")
	}

	name := decl.QualifiedName()
	if _, ok := r.entries[name]; ok {
		return &zooperr.DuplicateDeclarationError{Name: name}
	}
	r.entries[name] = &Entry{Decl: decl}
	return nil
}

// Freeze marks the end of the build phase. No further registration is
// allowed; lookups no longer take the lock.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Resolve looks up a reference as written in source. A reference containing
// a dot is fully qualified; a bare name is resolved within the referencing
// unit. Fails with UnknownDeclaration if no entry exists.
func (r *Registry) Resolve(ref, fromUnit string) (*Entry, error) {
	name := ref
	if !strings.Contains(ref, ".") {
		name = fromUnit + "." + ref
	}

	if !r.frozen {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	if e, ok := r.entries[name]; ok {
		return e, nil
	}
	return nil, &zooperr.UnknownDeclarationError{Ref: ref, FromUnit: fromUnit}
}

// Get returns the entry for a qualified name, or nil.
func (r *Registry) Get(qualified string) *Entry {
	if !r.frozen {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	return r.entries[qualified]
}

// Names returns all qualified names in sorted order. Sorting keeps the
// generation order deterministic between runs.
func (r *Registry) Names() []string {
	if !r.frozen {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered declarations.
func (r *Registry) Len() int {
	if !r.frozen {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	return len(r.entries)
}
