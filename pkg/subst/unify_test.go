package subst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidlabs/proofkit/pkg/term"
)

func freshVars(n int) []*term.Variable {
	src := term.NewVariableSource(term.NewLanguage("test"))
	out := make([]*term.Variable, n)
	for i := range out {
		out[i] = src.Fresh("")
	}
	return out
}

func freshConsts(n int) []*term.Constant {
	out := make([]*term.Constant, n)
	for i := range out {
		out[i] = term.NewConstant("c")
	}
	return out
}

func expr(children ...term.Term) *term.Expression {
	return term.NewExpression(children...)
}

func TestUnifyConstantsFailure(t *testing.T) {
	cs := freshConsts(2)
	_, ok := Unify(cs[0], cs[1], nil)
	assert.False(t, ok)
}

func TestUnifyConstantsSuccess(t *testing.T) {
	cs := freshConsts(1)
	result, ok := Unify(cs[0], cs[0], nil)
	require.True(t, ok)
	assert.True(t, result.Equal(New()))
}

func TestUnifyExpressionsSuccess(t *testing.T) {
	cs := freshConsts(4)
	a, b, c, d := cs[0], cs[1], cs[2], cs[3]
	e1 := expr(a, expr(b, c), d)
	e2 := expr(a, expr(b, c), d)

	result, ok := Unify(e1, e2, nil)
	require.True(t, ok)
	assert.True(t, result.Equal(New()))
}

func TestUnifyExpressionsFailure(t *testing.T) {
	cs := freshConsts(4)
	a, b, c, _ := cs[0], cs[1], cs[2], cs[3]
	e1 := expr(a, expr(b, c), cs[3])
	e2 := expr(a, expr(b, c), a)

	_, ok := Unify(e1, e2, nil)
	assert.False(t, ok)
}

func TestUnifyVariableWithExpression(t *testing.T) {
	vs := freshVars(1)
	v1 := vs[0]
	cs := freshConsts(4)
	a, b, c, d := cs[0], cs[1], cs[2], cs[3]

	exprD := expr(d)
	e1 := expr(a, expr(b, c), exprD)

	result, ok := Unify(v1, e1, nil)
	require.True(t, ok)
	assert.True(t, result.Apply(v1).Equal(e1))
}

func TestUnifyOccursCheckFails(t *testing.T) {
	vs := freshVars(1)
	v1 := vs[0]
	f := term.NewConstant("f")

	_, ok := Unify(v1, expr(f, v1), nil)
	assert.False(t, ok, "unify(v, f(v)) must fail the occurs check")
}

func TestUnifyWithVariablesFailureConflict(t *testing.T) {
	vs := freshVars(1)
	v1 := vs[0]
	cs := freshConsts(4)
	a, b, c, d := cs[0], cs[1], cs[2], cs[3]

	exprD := expr(d)
	e1 := expr(a, expr(b, c), exprD)
	e3 := expr(a, expr(v1, c), v1)

	_, ok := Unify(e1, e3, nil)
	assert.False(t, ok)
}

func TestUnifyWithVariablesEqualityOnly(t *testing.T) {
	vs := freshVars(2)
	v1, v2 := vs[0], vs[1]
	cs := freshConsts(2)
	a, c := cs[0], cs[1]

	e2 := expr(a, expr(v1, c), v2)
	e3 := expr(a, expr(v1, c), v1)

	result, ok := Unify(e2, e3, nil)
	require.True(t, ok)
	assert.True(t, result.Apply(v2).Equal(result.Apply(v1)))
}

func TestUnifyContainedFailure(t *testing.T) {
	vs := freshVars(2)
	v1, v2 := vs[0], vs[1]
	cs := freshConsts(3)
	a, c, d := cs[0], cs[1], cs[2]

	exprD := expr(d)
	e2 := expr(a, expr(v1, c), v2)
	e4 := expr(a, v1, exprD)

	_, ok := Unify(e2, e4, nil)
	assert.False(t, ok)
}

// unify(Expr(a,x,d), Expr(a,y,d)) with previous {x -> bc, y -> b-z}
// should yield previous extended with {z -> c}.
func TestUnifyWithPreviousScenario(t *testing.T) {
	a := term.NewConstant("a")
	b := term.NewConstant("b")
	c := term.NewConstant("c")
	d := term.NewConstant("d")
	vs := freshVars(3)
	x, y, z := vs[0], vs[1], vs[2]

	bc := expr(b, c)
	bz := expr(b, z)

	previous, ok := New().WithBindings(
		Binding{Term: bc, Variables: []*term.Variable{x}},
		Binding{Term: bz, Variables: []*term.Variable{y}},
	)
	require.True(t, ok)

	e1 := expr(a, x, d)
	e2 := expr(a, y, d)

	result, ok := Unify(e1, e2, previous)
	require.True(t, ok)

	// z must now resolve to c.
	assert.True(t, result.Apply(z).Equal(c))
	// Previous bindings for x and y survive untouched.
	assert.True(t, result.Apply(x).Equal(bc))
}

func TestUnifyWithPreviousFailing(t *testing.T) {
	a := term.NewConstant("a")
	b := term.NewConstant("b")
	d := term.NewConstant("d")
	vs := freshVars(1)
	x := vs[0]

	previous, ok := New().WithBindings(Binding{Term: b, Variables: []*term.Variable{x}})
	require.True(t, ok)

	bc := expr(b, term.NewConstant("c"))
	e1 := expr(a, bc, d)
	e2 := expr(a, x, d)

	_, ok = Unify(e1, e2, previous)
	assert.False(t, ok)
}

func TestApplyIsIdempotent(t *testing.T) {
	vs := freshVars(2)
	x, y := vs[0], vs[1]
	a := term.NewConstant("a")

	result, ok := Unify(x, expr(a, y), nil)
	require.True(t, ok)
	result, ok = result.WithBindings(Binding{Term: a, Variables: []*term.Variable{y}})
	require.True(t, ok)

	once := result.Apply(x)
	twice := result.Apply(once)
	assert.True(t, once.Equal(twice))
}

func TestSubstitutionEqualityIgnoresConstructionOrder(t *testing.T) {
	vs := freshVars(2)
	x, y := vs[0], vs[1]
	a := term.NewConstant("a")

	s1, ok := New().WithBindings(Binding{Term: a, Variables: []*term.Variable{x, y}})
	require.True(t, ok)

	s2, ok := New().WithBindings(Binding{Term: a, Variables: []*term.Variable{y}})
	require.True(t, ok)
	s2, ok = s2.WithBindings(Binding{Term: nil, Variables: []*term.Variable{y, x}})
	require.True(t, ok)
	s2, ok = s2.bindOne(x, a)
	require.True(t, ok)

	assert.True(t, s1.Equal(s2))
}
