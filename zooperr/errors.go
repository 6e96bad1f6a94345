// Package zooperr defines the error taxonomy and the diagnostics sink for
// the zoop generation pipeline.
package zooperr

import (
	"fmt"
	"strings"
	"sync"
)

// Kind defines the category of the error.
type Kind string

const (
	KindParse                Kind = "ParseError"
	KindDuplicateDeclaration Kind = "DuplicateDeclaration"
	KindUnknownDeclaration   Kind = "UnknownDeclaration"
	KindDependencyCycle      Kind = "DependencyCycle"
	KindFieldCollision       Kind = "FieldCollision"
	KindFieldCountOverflow   Kind = "FieldCountOverflow"
	KindAccessModeConflict   Kind = "AccessModeConflict"
	KindMulti                Kind = "MultiError"
)

// ZoopError is the interface for all zoop-related errors.
type ZoopError interface {
	error
	Kind() Kind
}

// ParseError represents a malformed declaration found while scanning a unit.
// It aborts the scan of its unit but not the scan of other units.
type ParseError struct {
	Unit   string
	Line   int
	Column int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("[%s] %s:%d:%d %s", KindParse, e.Unit, e.Line, e.Column, e.Msg)
}

func (e *ParseError) Kind() Kind { return KindParse }

// DuplicateDeclarationError is returned when two declarations claim the same
// qualified name.
type DuplicateDeclarationError struct {
	Name string // Qualified name
}

func (e *DuplicateDeclarationError) Error() string {
	return fmt.Sprintf("[%s] %s is declared more than once", KindDuplicateDeclaration, e.Name)
}

func (e *DuplicateDeclarationError) Kind() Kind { return KindDuplicateDeclaration }

// UnknownDeclarationError is returned when a parent or mixin reference cannot
// be resolved against the registry.
type UnknownDeclarationError struct {
	Ref      string // Reference as written in source
	FromUnit string // Unit the reference appears in
}

func (e *UnknownDeclarationError) Error() string {
	return fmt.Sprintf("[%s] %s referenced from unit %s is not declared", KindUnknownDeclaration, e.Ref, e.FromUnit)
}

func (e *UnknownDeclarationError) Kind() Kind { return KindUnknownDeclaration }

// DependencyCycleError reports the minimal cycle path through extends and
// mixin edges.
type DependencyCycleError struct {
	Path []string // Qualified names forming the cycle; first == last
}

func (e *DependencyCycleError) Error() string {
	return fmt.Sprintf("[%s] %s", KindDependencyCycle, strings.Join(e.Path, " -> "))
}

func (e *DependencyCycleError) Kind() Kind { return KindDependencyCycle }

// FieldCollisionError is returned when two different inherited sources
// contribute the same field or property name and the descendant does not
// redeclare it.
type FieldCollisionError struct {
	Decl   string // Qualified name of the declaration being flattened
	Member string // Colliding field/property name
	First  string // Qualified name of the first contributing source
	Second string // Qualified name of the second contributing source
}

func (e *FieldCollisionError) Error() string {
	return fmt.Sprintf("[%s] %s: %q is contributed by both %s and %s",
		KindFieldCollision, e.Decl, e.Member, e.First, e.Second)
}

func (e *FieldCollisionError) Kind() Kind { return KindFieldCollision }

// FieldCountOverflowError is returned when the flattened field count would
// wrap the counting integer type or exceed the configured maximum.
type FieldCountOverflowError struct {
	Decl string
	Max  int
}

func (e *FieldCountOverflowError) Error() string {
	return fmt.Sprintf("[%s] %s: flattened field count exceeds %d", KindFieldCountOverflow, e.Decl, e.Max)
}

func (e *FieldCountOverflowError) Kind() Kind { return KindFieldCountOverflow }

// AccessModeConflictError is returned when a descendant redeclares an
// inherited property with a different access mode.
type AccessModeConflictError struct {
	Decl      string
	Property  string
	Inherited string
	Declared  string
}

func (e *AccessModeConflictError) Error() string {
	return fmt.Sprintf("[%s] %s: property %q is %s upstream but redeclared as %s",
		KindAccessModeConflict, e.Decl, e.Property, e.Inherited, e.Declared)
}

func (e *AccessModeConflictError) Kind() Kind { return KindAccessModeConflict }

// MultiError collects multiple zoop errors.
type MultiError struct {
	Errors []error
}

func (m *MultiError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d error(s) occurred:\n", len(m.Errors)))
	for _, err := range m.Errors {
		sb.WriteString(fmt.Sprintf("- %v\n", err))
	}
	return sb.String()
}

// Kind is always KindMulti: a batch may mix categories, so claiming the
// first member's kind for the whole batch would misclassify the rest.
func (m *MultiError) Kind() Kind { return KindMulti }

// Diagnostic is one user-visible problem report.
type Diagnostic struct {
	Declaration string // Qualified declaration name, or "" for unit-level problems
	Kind        Kind
	Message     string
}

// Diagnostics is an append-only, concurrency-safe sink for problem reports.
// The full list is returned to the caller whether or not the run succeeds.
type Diagnostics struct {
	mu   sync.Mutex
	list []Diagnostic
}

// Append records a diagnostic.
func (d *Diagnostics) Append(diag Diagnostic) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.list = append(d.list, diag)
}

// AppendError records a diagnostic derived from a zoop error.
func (d *Diagnostics) AppendError(decl string, err error) {
	kind := Kind("Error")
	if ze, ok := err.(ZoopError); ok {
		kind = ze.Kind()
	}
	d.Append(Diagnostic{Declaration: decl, Kind: kind, Message: err.Error()})
}

// List returns a copy of all recorded diagnostics in append order.
func (d *Diagnostics) List() []Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Diagnostic, len(d.list))
	copy(out, d.list)
	return out
}

// Empty reports whether no diagnostics have been recorded.
func (d *Diagnostics) Empty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.list) == 0
}
