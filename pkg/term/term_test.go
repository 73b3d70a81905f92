package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariableIdentityEquality(t *testing.T) {
	lang := NewLanguage("test")
	src := NewVariableSource(lang)

	v1 := src.Fresh("x")
	v2 := src.Fresh("x")

	assert.True(t, v1.Equal(v1))
	assert.False(t, v1.Equal(v2), "two distinct variables with the same name must not be equal")
}

func TestConstantIdentityEquality(t *testing.T) {
	a := NewConstant("cat")
	b := NewConstant("cat")

	assert.True(t, a.Equal(a))
	assert.False(t, a.Equal(b), "constants are compared by identity, not name")
}

func TestConstantSourceInterns(t *testing.T) {
	src := NewConstantSource()
	a := src.Intern("cat")
	b := src.Intern("cat")

	assert.True(t, a.Equal(b))
	assert.Same(t, a, b)
}

func TestWrapperEqualityDelegatesToValue(t *testing.T) {
	w1 := NewWrapper(42)
	w2 := NewWrapper(42)
	w3 := NewWrapper(43)

	assert.True(t, w1.Equal(w2))
	assert.False(t, w1.Equal(w3))
}

func TestWrapperEqualityIsTypeSensitive(t *testing.T) {
	w1 := NewWrapper("2")
	w2 := NewWrapper(2)

	assert.False(t, w1.Equal(w2))
}

func TestExpressionStructuralEquality(t *testing.T) {
	is := NewConstant("Is")
	cat := NewConstant("cat")
	dylan := NewConstant("dylan")

	e1 := NewExpression(is, dylan, cat)
	e2 := NewExpression(is, dylan, cat)
	e3 := NewExpression(is, cat, dylan)

	assert.True(t, e1.Equal(e2))
	assert.False(t, e1.Equal(e3))
}

func TestExpressionArityMismatch(t *testing.T) {
	is := NewConstant("Is")
	a := NewConstant("a")

	e1 := NewExpression(is, a)
	e2 := NewExpression(is, a, a)

	assert.False(t, e1.Equal(e2))
}

func TestNormalizeVariablesPreservesSharedIdentity(t *testing.T) {
	lang := NewLanguage("source")
	src := NewVariableSource(lang)
	x := src.Fresh("x")

	is := NewConstant("Is")
	cat := NewConstant("cat")
	// (Is x x) -- the same variable used twice.
	expr := NewExpression(is, x, x)

	target := NewVariableSource(NewLanguage("target"))
	normalized, mapping := NormalizeVariables(expr, target)

	ne, ok := normalized.(*Expression)
	require.True(t, ok)
	require.Len(t, ne.Children(), 3)

	freshX, ok := ne.Children()[1].(*Variable)
	require.True(t, ok)
	freshX2, ok := ne.Children()[2].(*Variable)
	require.True(t, ok)

	assert.Same(t, freshX, freshX2, "one source variable must map to one fresh variable throughout")
	assert.Equal(t, freshX, mapping[x])
	assert.NotEqual(t, cat, freshX)
}
