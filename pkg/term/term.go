// Package term implements the four-variant term model of the proof
// engine: variables, constants, wrapped host values and ordered
// expressions. Terms are structurally immutable once built; an
// Expression never shares mutable state with its children.
//
// This generalizes gitrdm-gokando/pkg/minikanren/core.go's flat
// Term/Var/Atom/Pair model to an n-ary Expression in place of binary
// Pair, plus a fourth Wrapper variant and named Language scoping for
// variables.
package term

import (
	"fmt"
	"reflect"
	"strings"
)

// Term is any value in the logic universe: a Variable, a Constant, a
// Wrapper around a host value, or an Expression of child terms.
type Term interface {
	fmt.Stringer

	// IsVariable reports whether this term is a Variable.
	IsVariable() bool

	// Equal is strict structural/identity equality, not unification.
	Equal(other Term) bool
}

// Variable is identity-only: two variables are equal iff they are the
// same pointer. Create one via a VariableSource.
type Variable struct {
	language *Language
	name     string
	ordinal  uint64
}

func (v *Variable) String() string {
	if v.name != "" {
		return fmt.Sprintf("?%s", v.name)
	}
	return fmt.Sprintf("?_%d", v.ordinal)
}

// IsVariable always returns true for *Variable.
func (v *Variable) IsVariable() bool { return true }

// Equal compares by identity: a variable is only ever equal to itself.
func (v *Variable) Equal(other Term) bool {
	ov, ok := other.(*Variable)
	return ok && ov == v
}

// Language returns the naming scope the variable was minted in.
func (v *Variable) Language() *Language { return v.language }

// Name returns the variable's debugging name, which may be empty.
func (v *Variable) Name() string { return v.name }

// Constant is an opaque named atom, compared by identity: two constants
// built from the same name are distinct unless they are the same
// pointer. Use a ConstantSource to intern names consistently.
type Constant struct {
	name string
}

// NewConstant builds a brand-new constant with the given display name.
// Two calls with the same name produce two distinct, non-equal
// constants — callers that want interning should keep their own map, or
// use ConstantSource.
func NewConstant(name string) *Constant {
	return &Constant{name: name}
}

func (c *Constant) String() string { return c.name }

// IsVariable always returns false for *Constant.
func (c *Constant) IsVariable() bool { return false }

// Equal compares by identity.
func (c *Constant) Equal(other Term) bool {
	oc, ok := other.(*Constant)
	return ok && oc == c
}

// ConstantSource interns constants by name so repeated lookups of the
// same symbolic name yield the identical *Constant, the way a parser or
// a REPL expects `cat` to always mean the same atom.
type ConstantSource struct {
	byName map[string]*Constant
}

// NewConstantSource creates an empty interning table.
func NewConstantSource() *ConstantSource {
	return &ConstantSource{byName: make(map[string]*Constant)}
}

// Intern returns the constant for name, minting it on first use.
func (s *ConstantSource) Intern(name string) *Constant {
	if c, ok := s.byName[name]; ok {
		return c
	}
	c := NewConstant(name)
	s.byName[name] = c
	return c
}

// Wrapper lifts an arbitrary comparable host value (number, string, ...)
// into term space. Equality delegates to the wrapped value via ==, so
// Value must be a comparable Go type; passing an uncomparable value
// panics on first Equal/comparison exactly as a bare Go `==` would.
type Wrapper struct {
	value interface{}
}

// NewWrapper lifts value into a term.
func NewWrapper(value interface{}) *Wrapper {
	return &Wrapper{value: value}
}

func (w *Wrapper) String() string { return fmt.Sprintf("%v", w.value) }

// IsVariable always returns false for *Wrapper.
func (w *Wrapper) IsVariable() bool { return false }

// Value returns the wrapped host value.
func (w *Wrapper) Value() interface{} { return w.value }

// Equal delegates to the wrapped value's equality.
func (w *Wrapper) Equal(other Term) bool {
	ow, ok := other.(*Wrapper)
	if !ok {
		return false
	}
	if reflect.TypeOf(w.value) != reflect.TypeOf(ow.value) {
		return false
	}
	return w.value == ow.value
}

// Expression is an ordered, fixed-arity tuple of child terms. Expressions
// never share mutable state: Children returns the same backing slice but
// callers must treat it as read-only.
type Expression struct {
	children []Term
}

// NewExpression builds an Expression from its ordered children. The
// first child is conventionally a head Constant naming the relation
// (e.g. NewExpression(Is, dylan, cat) for `Is(dylan, cat)`), but nothing
// in the term model enforces that; it's a convention the rest of the
// package (and the language helpers in lang.go) relies on.
func NewExpression(children ...Term) *Expression {
	frozen := make([]Term, len(children))
	copy(frozen, children)
	return &Expression{children: frozen}
}

func (e *Expression) String() string {
	parts := make([]string, len(e.children))
	for i, c := range e.children {
		parts[i] = c.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, " "))
}

// IsVariable always returns false for *Expression.
func (e *Expression) IsVariable() bool { return false }

// Children returns the expression's ordered children. Treat as read-only.
func (e *Expression) Children() []Term { return e.children }

// Arity returns the number of children.
func (e *Expression) Arity() int { return len(e.children) }

// Equal is structural: same arity and pairwise-equal children.
func (e *Expression) Equal(other Term) bool {
	oe, ok := other.(*Expression)
	if !ok || len(oe.children) != len(e.children) {
		return false
	}
	for i, c := range e.children {
		if !c.Equal(oe.children[i]) {
			return false
		}
	}
	return true
}
