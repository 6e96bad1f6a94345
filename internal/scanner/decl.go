package scanner

// DeclKind distinguishes class and mixin declarations.
type DeclKind string

const (
	KindClass DeclKind = "class"
	KindMixin DeclKind = "mixin"
)

// AccessMode is the declared access control of a property.
type AccessMode string

const (
	AccessReadOnly  AccessMode = "ro"
	AccessReadWrite AccessMode = "rw"
)

// Field is one declared field: a name, a type, no body.
type Field struct {
	Name string
	Type string
}

// Property is one property-table entry. Access defaults to read-only when
// the source does not specify a mode.
type Property struct {
	Name   string
	Type   string
	Access AccessMode
}

// Method is one method declaration. Signature is the raw source text from
// the fn keyword through the return type; Body is the raw source text of
// the braced block, braces included. Both are lexable on their own, which
// is what the rewriter relies on.
//
// Raw is the whole method exactly as declared, pub keyword through closing
// brace, so own methods can be emitted byte-for-byte. Rewritten copies
// carry no raw span and are re-rendered from Signature and Body.
//
// Static is true iff the first parameter is not a receiver of the
// declaration's own type.
type Method struct {
	Name      string
	Pub       bool
	Static    bool
	Signature string
	Body      string
	Raw       string
}

// Declaration is one class or mixin definition as written by the user,
// before flattening. Created once by the scanner, immutable afterward.
type Declaration struct {
	Name   string // Short name as declared
	Unit   string // Owning unit (source file stem)
	Kind   DeclKind
	Pub    bool
	Parent string   // Parent reference as written, "" if none
	Mixins []string // Mixin references in declaration order

	Fields  []Field
	Props   []Property
	Methods []Method

	Line int
	Col  int
}

// QualifiedName returns the unit-scoped, globally unique name.
func (d *Declaration) QualifiedName() string {
	return d.Unit + "." + d.Name
}
