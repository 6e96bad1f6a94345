package emit

import (
	"fmt"
	"strings"

	"github.com/zig-whatwg/zoop/internal/scanner"
)

// Options controls rendered output. Zero values fall back to the defaults
// below, so an empty Options is always usable.
type Options struct {
	GetterPrefix string
	SetterPrefix string
}

const (
	defaultGetterPrefix = "get"
	defaultSetterPrefix = "set"
)

func (o Options) getterPrefix() string {
	if o.GetterPrefix == "" {
		return defaultGetterPrefix
	}
	return o.GetterPrefix
}

func (o Options) setterPrefix() string {
	if o.SetterPrefix == "" {
		return defaultSetterPrefix
	}
	return o.SetterPrefix
}

// AccessorName derives an accessor name from a prefix and a property name,
// capitalizing the property's first letter: "get" + "age" -> "getAge".
func AccessorName(prefix, property string) string {
	if property == "" {
		return prefix
	}
	return prefix + strings.ToUpper(property[:1]) + property[1:]
}

// accessors renders the getter and, for read-write properties, the setter of
// one property. Accessors are plain wrappers over direct field access so the
// host compiler can inline them.
func accessors(typeName string, p scanner.Property, opts Options) []string {
	out := []string{fmt.Sprintf(
		"pub fn %s(self: *const %s) %s {\n    return self.%s;\n}",
		AccessorName(opts.getterPrefix(), p.Name), typeName, p.Type, p.Name,
	)}
	if p.Access == scanner.AccessReadWrite {
		out = append(out, fmt.Sprintf(
			"pub fn %s(self: *%s, value: %s) void {\n    self.%s = value;\n}",
			AccessorName(opts.setterPrefix(), p.Name), typeName, p.Type, p.Name,
		))
	}
	return out
}
