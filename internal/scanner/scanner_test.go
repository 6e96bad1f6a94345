package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dogSrc = `
const std = @import("std");

pub const Dog = class {
    extends Animal;
    with Walker, Swimmer;
    props {
        age: u32 rw,
        id: u64,
    };

    breed: []const u8,

    pub fn describe(self: Dog) []const u8 {
        return self.breed;
    }

    fn adopt(name: []const u8) Dog {
        return Dog{ .breed = name };
    }
};
`

func TestScanUnitFullDeclaration(t *testing.T) {
	decls, err := ScanUnit("pets", dogSrc)
	require.NoError(t, err)
	require.Len(t, decls, 1)

	d := decls[0]
	assert.Equal(t, "Dog", d.Name)
	assert.Equal(t, "pets", d.Unit)
	assert.Equal(t, "pets.Dog", d.QualifiedName())
	assert.Equal(t, KindClass, d.Kind)
	assert.True(t, d.Pub)
	assert.Equal(t, "Animal", d.Parent)
	assert.Equal(t, []string{"Walker", "Swimmer"}, d.Mixins)

	require.Len(t, d.Props, 2)
	assert.Equal(t, Property{Name: "age", Type: "u32", Access: AccessReadWrite}, d.Props[0])
	assert.Equal(t, Property{Name: "id", Type: "u64", Access: AccessReadOnly}, d.Props[1])

	require.Len(t, d.Fields, 1)
	assert.Equal(t, Field{Name: "breed", Type: "[]const u8"}, d.Fields[0])

	require.Len(t, d.Methods, 2)
	describe := d.Methods[0]
	assert.Equal(t, "describe", describe.Name)
	assert.True(t, describe.Pub)
	assert.False(t, describe.Static)
	assert.Equal(t, "fn describe(self: Dog) []const u8", describe.Signature)
	assert.Contains(t, describe.Body, "return self.breed;")

	adopt := d.Methods[1]
	assert.Equal(t, "adopt", adopt.Name)
	assert.False(t, adopt.Pub)
	assert.True(t, adopt.Static, "first parameter is not a receiver")
}

func TestScanUnitMixin(t *testing.T) {
	src := `
const Walker = mixin {
    speed: u32,

    pub fn walk(self: *Walker) void {
        self.speed += 1;
    }
};
`
	decls, err := ScanUnit("traits", src)
	require.NoError(t, err)
	require.Len(t, decls, 1)

	d := decls[0]
	assert.Equal(t, KindMixin, d.Kind)
	assert.False(t, d.Pub)
	assert.Empty(t, d.Parent)
	require.Len(t, d.Methods, 1)
	assert.False(t, d.Methods[0].Static, "pointer receiver still counts as a receiver")
}

func TestScanUnitPointerConstReceiver(t *testing.T) {
	src := `
const Cat = class {
    pub fn name(self: *const Cat) []const u8 {
        return self.n;
    }
};
`
	decls, err := ScanUnit("pets", src)
	require.NoError(t, err)
	require.Len(t, decls[0].Methods, 1)
	assert.False(t, decls[0].Methods[0].Static)
}

func TestScanUnitEmptyDeclaration(t *testing.T) {
	decls, err := ScanUnit("u", "const Empty = class {};")
	require.NoError(t, err)
	require.Len(t, decls, 1)

	d := decls[0]
	assert.Empty(t, d.Parent)
	assert.Empty(t, d.Mixins)
	assert.Empty(t, d.Fields)
	assert.Empty(t, d.Props)
	assert.Empty(t, d.Methods)
}

func TestScanUnitQualifiedReferences(t *testing.T) {
	src := `
const Dog = class {
    extends animals.Animal;
    with traits.Walker;
};
`
	decls, err := ScanUnit("pets", src)
	require.NoError(t, err)

	d := decls[0]
	assert.Equal(t, "animals.Animal", d.Parent)
	assert.Equal(t, []string{"traits.Walker"}, d.Mixins)
}

func TestScanUnitMultipleDeclarations(t *testing.T) {
	src := `
const A = class {};
pub const B = mixin {};
const helper = struct {
    x: u32,
};
const C = class { extends A; };
`
	decls, err := ScanUnit("u", src)
	require.NoError(t, err)
	require.Len(t, decls, 3)
	assert.Equal(t, "A", decls[0].Name)
	assert.Equal(t, "B", decls[1].Name)
	assert.Equal(t, "C", decls[2].Name)
}

func TestScanUnitIgnoresUnrelatedTopLevel(t *testing.T) {
	src := `
const std = @import("std");

pub fn freeFunction(x: u32) u32 {
    return x * 2;
}

const config = struct {
    class_like: bool,
};
`
	decls, err := ScanUnit("u", src)
	require.NoError(t, err)
	assert.Empty(t, decls)
}

func TestScanUnitDuplicateDirectives(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "duplicate extends",
			src:  "const D = class { extends A; extends B; };",
			want: "duplicate extends directive",
		},
		{
			name: "duplicate with",
			src:  "const D = class { with A; with B; };",
			want: "duplicate with directive",
		},
		{
			name: "duplicate props",
			src:  "const D = class { props { a: u32 }; props { b: u32 }; };",
			want: "duplicate props directive",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ScanUnit("u", tc.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestScanUnitMalformed(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "unterminated declaration",
			src:  "const D = class { breed: u8,",
			want: "unterminated",
		},
		{
			name: "missing semicolon after extends",
			src:  "const D = class { extends A };",
			want: "expected ';'",
		},
		{
			name: "missing field type",
			src:  "const D = class { breed: , };",
			want: "missing type for field",
		},
		{
			name: "stray token in body",
			src:  "const D = class { 42, };",
			want: "unexpected",
		},
		{
			name: "missing method body",
			src:  "const D = class { fn f(self: D) void; };",
			want: "missing body of method",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ScanUnit("u", tc.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestScanUnitMethodBodyPreservedVerbatim(t *testing.T) {
	src := `
const A = class {
    pub fn f(self: A) u32 {
        // keep   spacing
        const x = self.n *  2;
        return x;
    }
};
`
	decls, err := ScanUnit("u", src)
	require.NoError(t, err)

	body := decls[0].Methods[0].Body
	assert.Contains(t, body, "// keep   spacing")
	assert.Contains(t, body, "self.n *  2")
}

func TestScanUnitMethodRawSpanAsDeclared(t *testing.T) {
	src := "pub const Dog = class {\n" +
		"    pub fn speak(self: Dog)  []const u8\n" +
		"    {\n" +
		"        return self.name;\n" +
		"    }\n" +
		"};\n"
	decls, err := ScanUnit("pets", src)
	require.NoError(t, err)
	require.Len(t, decls, 1)
	require.Len(t, decls[0].Methods, 1)

	m := decls[0].Methods[0]
	assert.Equal(t, "fn speak(self: Dog)  []const u8", m.Signature)
	assert.Equal(t,
		"pub fn speak(self: Dog)  []const u8\n    {\n        return self.name;\n    }",
		m.Raw, "the raw span covers pub keyword through closing brace, as written")
}

func TestScanUnitNestedBracesInBody(t *testing.T) {
	src := `
const A = class {
    pub fn f(self: A) u32 {
        if (self.n > 0) {
            while (true) { break; }
        }
        return 0;
    }

    tail: u32,
};
`
	decls, err := ScanUnit("u", src)
	require.NoError(t, err)

	d := decls[0]
	require.Len(t, d.Methods, 1)
	require.Len(t, d.Fields, 1)
	assert.Equal(t, "tail", d.Fields[0].Name)
}
