package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zig-whatwg/zoop/internal/scanner"
)

func TestMethodRewritesReceiverType(t *testing.T) {
	m := scanner.Method{
		Name:      "speak",
		Pub:       true,
		Signature: "fn speak(self: Animal) []const u8",
		Body:      "{\n    return self.name;\n}",
	}

	out, err := Method(m, "Animal", "Dog")
	require.NoError(t, err)

	assert.Equal(t, "fn speak(self: Dog) []const u8", out.Signature)
	assert.Equal(t, "{\n    return self.name;\n}", out.Body, "field access is untouched")
}

func TestMethodRewritesSelfTypedBodyExpressions(t *testing.T) {
	m := scanner.Method{
		Name:      "clone",
		Signature: "fn clone(self: *const Animal) Animal",
		Body:      "{\n    var copy: Animal = Animal{ .name = self.name };\n    return copy;\n}",
	}

	out, err := Method(m, "Animal", "Dog")
	require.NoError(t, err)

	assert.Equal(t, "fn clone(self: *const Dog) Dog", out.Signature)
	assert.NotContains(t, out.Body, "Animal")
	assert.Contains(t, out.Body, "var copy: Dog = Dog{ .name = self.name };")
}

func TestMethodTokenEqualityNotSubstring(t *testing.T) {
	m := scanner.Method{
		Name:      "feed",
		Signature: "fn feed(self: Animal, food: AnimalFood) void",
		Body:      "{\n    eatAnimalFood(self, food);\n    const a = \"Animal\";\n    _ = a;\n}",
	}

	out, err := Method(m, "Animal", "Dog")
	require.NoError(t, err)

	assert.Equal(t, "fn feed(self: Dog, food: AnimalFood) void", out.Signature,
		"AnimalFood is an unrelated identifier, not a self-reference")
	assert.Contains(t, out.Body, "eatAnimalFood(self, food);")
	assert.Contains(t, out.Body, `const a = "Animal";`, "string literals are not identifiers")
}

func TestMethodQualifiedReferenceUntouched(t *testing.T) {
	// A same-named declaration in another unit is a different type; its
	// qualified reference must survive the copy.
	m := scanner.Method{
		Name:      "adopt",
		Signature: "fn adopt(self: Animal, other: b.Animal) void",
		Body:      "{\n    care(self, other);\n    var stray: b.Animal = other;\n    _ = stray;\n}",
	}

	out, err := Method(m, "Animal", "Dog")
	require.NoError(t, err)

	assert.Equal(t, "fn adopt(self: Dog, other: b.Animal) void", out.Signature)
	assert.Contains(t, out.Body, "var stray: b.Animal = other;")
	assert.NotContains(t, out.Body, "b.Dog")
}

func TestMethodMemberAccessSharingTypeNameUntouched(t *testing.T) {
	m := scanner.Method{
		Name:      "tag",
		Signature: "fn tag(self: Animal) u32",
		Body:      "{\n    return self.Animal;\n}",
	}

	out, err := Method(m, "Animal", "Dog")
	require.NoError(t, err)

	assert.Equal(t, "fn tag(self: Dog) u32", out.Signature)
	assert.Contains(t, out.Body, "return self.Animal;", "field access is not a type reference")
}

func TestMethodStaticRewritesFactoryReturns(t *testing.T) {
	m := scanner.Method{
		Name:      "create",
		Static:    true,
		Signature: "fn create(name: []const u8) Animal",
		Body:      "{\n    return Animal{ .name = name };\n}",
	}

	out, err := Method(m, "Animal", "Dog")
	require.NoError(t, err)

	assert.True(t, out.Static)
	assert.Equal(t, "fn create(name: []const u8) Dog", out.Signature)
	assert.Contains(t, out.Body, "return Dog{ .name = name };")
}

func TestMethodCumulativeChain(t *testing.T) {
	m := scanner.Method{
		Name:      "id",
		Signature: "fn id(self: Grand) Grand",
		Body:      "{ return self; }",
	}

	// Grand -> Parent -> Child, one rewrite per generation step.
	step1, err := Method(m, "Grand", "Parent")
	require.NoError(t, err)
	step2, err := Method(step1, "Parent", "Child")
	require.NoError(t, err)

	assert.Equal(t, "fn id(self: Child) Child", step2.Signature)
	assert.NotContains(t, step2.Signature, "Grand")
	assert.NotContains(t, step2.Signature, "Parent")
}

func TestMethodNoopWhenNamesEqual(t *testing.T) {
	m := scanner.Method{Name: "f", Signature: "fn f(self: A) void", Body: "{}"}

	out, err := Method(m, "A", "A")
	require.NoError(t, err)
	assert.Equal(t, m, out)
}

func TestMethodPreservesFormatting(t *testing.T) {
	m := scanner.Method{
		Name:      "f",
		Signature: "fn f(  self:   Animal  ) void",
		Body:      "{\n    // Animal stays in comments\n    var x: Animal = undefined;\n    _ = x;\n}",
	}

	out, err := Method(m, "Animal", "Dog")
	require.NoError(t, err)

	assert.Equal(t, "fn f(  self:   Dog  ) void", out.Signature)
	assert.Contains(t, out.Body, "// Animal stays in comments", "comments are not tokens")
	assert.Contains(t, out.Body, "var x: Dog = undefined;")
}

func TestTypeText(t *testing.T) {
	out, err := TypeText("*Animal", "Animal", "Dog")
	require.NoError(t, err)
	assert.Equal(t, "*Dog", out)

	out, err = TypeText("[]const AnimalTag", "Animal", "Dog")
	require.NoError(t, err)
	assert.Equal(t, "[]const AnimalTag", out, "unrelated identifier untouched")

	out, err = TypeText("?*b.Animal", "Animal", "Dog")
	require.NoError(t, err)
	assert.Equal(t, "?*b.Animal", out, "qualified reference to another unit untouched")
}
