// Package subst implements the substitution algebra: a union-find over
// variable equivalence classes, each class optionally bound to a
// non-variable representative term, plus the unification algorithm
// (unify.go) that builds substitutions.
//
// A Substitution is persistent: every extension returns a new value;
// the old one's backing maps are never mutated in place, the way
// gitrdm-gokando/pkg/minikanren/core.go's Substitution.Bind clones
// before writing. Two Substitutions are Equal iff they induce the same
// variable->representative mapping, regardless of how they were built.
package subst

import (
	"fmt"
	"sort"
	"strings"

	"github.com/corvidlabs/proofkit/pkg/term"
)

// Substitution is an immutable set of variable equivalence classes, each
// with an optional non-variable bound term.
type Substitution struct {
	// parent maps a variable to another variable in the same class
	// (union-find, unpathcompressed since the structure is immutable).
	// A variable absent from parent is its own class's root.
	parent map[*term.Variable]*term.Variable

	// bound maps a class root to the term it is bound to. Absence means
	// the class is unbound (pure equivalence, no representative term).
	bound map[*term.Variable]term.Term
}

// New returns the empty substitution.
func New() *Substitution {
	return &Substitution{
		parent: map[*term.Variable]*term.Variable{},
		bound:  map[*term.Variable]term.Term{},
	}
}

// clone returns a shallow copy with fresh backing maps, ready to be
// extended without mutating s.
func (s *Substitution) clone() *Substitution {
	parent := make(map[*term.Variable]*term.Variable, len(s.parent)+1)
	for k, v := range s.parent {
		parent[k] = v
	}
	bound := make(map[*term.Variable]term.Term, len(s.bound)+1)
	for k, v := range s.bound {
		bound[k] = v
	}
	return &Substitution{parent: parent, bound: bound}
}

// root follows the union-find chain to v's class representative.
func (s *Substitution) root(v *term.Variable) *term.Variable {
	for {
		p, ok := s.parent[v]
		if !ok {
			return v
		}
		v = p
	}
}

// GetBoundObjectFor returns the representative term of v's class: the
// bound term if the class has one, otherwise the class's root variable
// itself.
func (s *Substitution) GetBoundObjectFor(v *term.Variable) term.Term {
	r := s.root(v)
	if t, ok := s.bound[r]; ok {
		return t
	}
	return r
}

// resolve follows variable chains (through union-find and bindings) one
// hop at a time until reaching a non-variable term or an unbound
// variable. It does not recurse into compound subterms — that is Apply's
// job.
func (s *Substitution) resolve(t term.Term) term.Term {
	v, ok := t.(*term.Variable)
	if !ok {
		return t
	}
	r := s.root(v)
	if bt, ok := s.bound[r]; ok {
		return s.resolve(bt)
	}
	return r
}

// Apply rewrites every variable in t by its class representative,
// recursively, including the variables inside a bound term. Applying
// twice yields the same result as applying once, since every variable
// left in the result is an unbound class root; the occurs check in
// bindVar's caller keeps the recursion finite.
func (s *Substitution) Apply(t term.Term) term.Term {
	resolved := s.resolve(t)
	expr, ok := resolved.(*term.Expression)
	if !ok {
		return resolved
	}
	children := expr.Children()
	newChildren := make([]term.Term, len(children))
	changed := false
	for i, c := range children {
		newChildren[i] = s.Apply(c)
		if newChildren[i] != c {
			changed = true
		}
	}
	if !changed {
		return expr
	}
	return term.NewExpression(newChildren...)
}

// occursIn reports whether v occurs (transitively, after substitution)
// within t.
func (s *Substitution) occursIn(v *term.Variable, t term.Term) bool {
	resolved := s.resolve(t)
	if rv, ok := resolved.(*term.Variable); ok {
		return s.root(rv) == s.root(v)
	}
	if expr, ok := resolved.(*term.Expression); ok {
		for _, c := range expr.Children() {
			if s.occursIn(v, c) {
				return true
			}
		}
	}
	return false
}

// bindVar returns a new Substitution binding v's class to t (t may be
// another variable, in which case the two classes are merged with no
// bound term — unless one side already carries a binding, which is
// then inherited).
func (s *Substitution) bindVar(v *term.Variable, t term.Term) *Substitution {
	next := s.clone()
	root := next.root(v)

	if ov, ok := t.(*term.Variable); ok {
		oroot := next.root(ov)
		if oroot == root {
			return next
		}
		// Merge the two classes under oroot; carry over whichever
		// binding (at most one can exist, since both were unbound
		// before reaching bindVar with a variable target) survives.
		if b, ok := next.bound[root]; ok {
			next.bound[oroot] = b
			delete(next.bound, root)
		}
		next.parent[root] = oroot
		return next
	}

	next.bound[root] = t
	return next
}

// Equal reports whether s and other induce the same mapping from
// variable to representative term — not whether they were built the
// same way.
func (s *Substitution) Equal(other *Substitution) bool {
	if s == nil || other == nil {
		return s == other
	}
	vars := map[*term.Variable]struct{}{}
	for v := range s.parent {
		vars[v] = struct{}{}
	}
	for v := range s.bound {
		vars[v] = struct{}{}
	}
	for v := range other.parent {
		vars[v] = struct{}{}
	}
	for v := range other.bound {
		vars[v] = struct{}{}
	}
	for v := range vars {
		if !representativeEqual(s.GetBoundObjectFor(v), other.GetBoundObjectFor(v)) {
			return false
		}
	}
	return true
}

func representativeEqual(a, b term.Term) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(b)
}

// String renders the substitution's bindings for debugging, in a
// deterministic (root-address-independent-but-stable-per-run) order.
func (s *Substitution) String() string {
	type entry struct {
		v string
		t string
	}
	entries := make([]entry, 0, len(s.bound))
	for root, bound := range s.bound {
		entries = append(entries, entry{v: root.String(), t: bound.String()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].v < entries[j].v })

	var b strings.Builder
	b.WriteString("{")
	for i, e := range entries {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", e.v, e.t)
	}
	b.WriteString("}")
	return b.String()
}
