// Language operators: Implies/Not, the small surface consumed by
// callers who build compound goals. Go cannot overload `<<`/`>>` the
// way aitools/logic/sentences.py's operators did for
// `A << Implies >> B`; Rule.Implies is a method-chaining builder
// standing in for the same infix reading.
package kb

import "github.com/corvidlabs/proofkit/pkg/term"

var opConstants = term.NewConstantSource()

// ImpliesSymbol and NotSymbol are the interned head constants of every
// Implies/Not expression this package builds, so two independently
// constructed Implies expressions compare structurally equal.
var (
	ImpliesSymbol = opConstants.Intern("Implies")
	NotSymbol     = opConstants.Intern("Not")
)

// ImpliesExpr builds Implies(premise, conclusion).
func ImpliesExpr(premise, conclusion term.Term) *term.Expression {
	return term.NewExpression(ImpliesSymbol, premise, conclusion)
}

// NotExpr builds Not(formula).
func NotExpr(formula term.Term) *term.Expression {
	return term.NewExpression(NotSymbol, formula)
}

// IsImplies reports whether t is an Implies(premise, conclusion)
// expression, returning its two children.
func IsImplies(t term.Term) (premise, conclusion term.Term, ok bool) {
	e, isExpr := t.(*term.Expression)
	if !isExpr || e.Arity() != 3 {
		return nil, nil, false
	}
	head, isConst := e.Children()[0].(*term.Constant)
	if !isConst || head != ImpliesSymbol {
		return nil, nil, false
	}
	return e.Children()[1], e.Children()[2], true
}

// IsNot reports whether t is a Not(formula) expression, returning its
// child.
func IsNot(t term.Term) (formula term.Term, ok bool) {
	e, isExpr := t.(*term.Expression)
	if !isExpr || e.Arity() != 2 {
		return nil, false
	}
	head, isConst := e.Children()[0].(*term.Constant)
	if !isConst || head != NotSymbol {
		return nil, false
	}
	return e.Children()[1], true
}

// Rule is a builder standing in for `A << Implies >> B` infix syntax:
// Premise(a).Implies(b) reads the same left-to-right.
type Rule struct {
	premise term.Term
}

// Premise starts a rule builder rooted at premise.
func Premise(premise term.Term) Rule {
	return Rule{premise: premise}
}

// Implies completes the rule, producing Implies(premise, conclusion).
func (r Rule) Implies(conclusion term.Term) *term.Expression {
	return ImpliesExpr(r.premise, conclusion)
}
