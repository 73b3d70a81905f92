package subst

import "github.com/corvidlabs/proofkit/pkg/term"

// Binding groups a set of variables into one equivalence class, optionally
// bound to Term. A nil Term is a "null binding": the variables become
// equal to each other without being bound to any representative term,
// mirroring aitools' subst((None, [v1, v2])) test fixture.
type Binding struct {
	Term      term.Term
	Variables []*term.Variable
}

// WithBindings extends s with every Binding, monotonically: the result
// either strictly extends s and is returned with ok=true, or the
// extension is inconsistent (fails the occurs check or unifies two
// incompatible bound terms) and (nil, false) is returned, leaving s
// untouched.
func (s *Substitution) WithBindings(bindings ...Binding) (*Substitution, bool) {
	cur := s
	for _, b := range bindings {
		if len(b.Variables) == 0 {
			continue
		}
		head := b.Variables[0]
		var ok bool
		cur, ok = cur.bindOne(head, b.Term)
		if !ok {
			return nil, false
		}
		for _, v := range b.Variables[1:] {
			cur, ok = cur.bindOne(v, head)
			if !ok {
				return nil, false
			}
		}
	}
	return cur, true
}

// bindOne unifies variable v with t (or, if t is nil, simply ensures v
// has a class without constraining it further) and returns the extended
// substitution.
func (s *Substitution) bindOne(v *term.Variable, t term.Term) (*Substitution, bool) {
	if t == nil {
		if _, exists := s.parent[v]; !exists {
			if _, exists := s.bound[v]; !exists {
				// Nothing to store: root() already treats a variable
				// absent from both maps as its own unbound root.
				return s, true
			}
		}
		return s, true
	}
	return unify(v, t, s)
}

// Unify computes the most general unifier of a and b extending previous.
// A nil previous is treated as the empty substitution. Returns
// (nil, false) if a and b cannot be unified.
func Unify(a, b term.Term, previous *Substitution) (*Substitution, bool) {
	if previous == nil {
		previous = New()
	}
	return unify(a, b, previous)
}

func unify(a, b term.Term, s *Substitution) (*Substitution, bool) {
	ra := s.resolve(a)
	rb := s.resolve(b)

	rvA, aIsVar := ra.(*term.Variable)
	rvB, bIsVar := rb.(*term.Variable)

	if aIsVar && bIsVar && s.root(rvA) == s.root(rvB) {
		return s, true
	}

	if aIsVar {
		if s.occursIn(rvA, rb) {
			return nil, false
		}
		return s.bindVar(rvA, rb), true
	}

	if bIsVar {
		if s.occursIn(rvB, ra) {
			return nil, false
		}
		return s.bindVar(rvB, ra), true
	}

	eA, aIsExpr := ra.(*term.Expression)
	eB, bIsExpr := rb.(*term.Expression)
	if aIsExpr && bIsExpr {
		if eA.Arity() != eB.Arity() {
			return nil, false
		}
		cur := s
		childrenA := eA.Children()
		childrenB := eB.Children()
		for i := range childrenA {
			var ok bool
			cur, ok = unify(childrenA[i], childrenB[i], cur)
			if !ok {
				return nil, false
			}
		}
		return cur, true
	}
	if aIsExpr || bIsExpr {
		return nil, false
	}

	if ra.Equal(rb) {
		return s, true
	}
	return nil, false
}
