// Prover dispatch and the knowledge retriever, plus two backward-chaining
// provers grounded on aitools/logic/provers.py: RestrictedModusPonens
// and NegationProver.
package kb

import (
	"context"
	"fmt"

	"github.com/corvidlabs/proofkit/pkg/proof"
	"github.com/corvidlabs/proofkit/pkg/subst"
	"github.com/corvidlabs/proofkit/pkg/term"

	"github.com/corvidlabs/proofkit/internal/sched"
)

// Prover is the backward-chaining inference-rule contract. truth makes
// explicit what aitools/logic/provers.py's _truth keyword argument
// defaulted implicitly: false asks the prover to prove goal FALSE
// rather than true (used by NegationProver).
type Prover interface {
	fmt.Stringer
	Prove(ctx context.Context, goal term.Term, truth bool, previous *subst.Substitution, kbase *KnowledgeBase) <-chan sched.Result
}

func asSource(ctx context.Context, p Prover, goal term.Term, truth bool, previous *subst.Substitution, kbase *KnowledgeBase) sched.Source {
	return func(context.Context) <-chan sched.Result {
		return p.Prove(ctx, goal, truth, previous, kbase)
	}
}

// knowledgeRetrieverRule tags every proof produced directly from
// stored formulas.
type knowledgeRetrieverRule struct{}

func (knowledgeRetrieverRule) String() string { return "KnowledgeRetriever" }

// knowledgeRetriever is the built-in prover every knowledge base ships
// with: it matches any goal and yields one proof per stored formula
// that unifies with it. It always runs, even once another prover has
// already produced a match.
type knowledgeRetriever struct{}

func (knowledgeRetriever) String() string { return "KnowledgeRetriever" }

func (r knowledgeRetriever) Prove(ctx context.Context, goal term.Term, truth bool, previous *subst.Substitution, kbase *KnowledgeBase) <-chan sched.Result {
	out := make(chan sched.Result)
	go func() {
		defer close(out)
		if !truth {
			// The stored-formula set only witnesses positive facts.
			return
		}
		candidates, err := kbase.searchUnifiable(goal)
		if err != nil {
			select {
			case out <- sched.Result{Err: wrapStorageErr("search_unifiable", err)}:
			case <-ctx.Done():
			}
			return
		}
		for _, candidate := range candidates {
			renamed, _ := term.NormalizeVariables(candidate, kbase.varSource)
			result, ok := subst.Unify(goal, renamed, previous)
			if !ok {
				continue
			}
			p := proof.New(knowledgeRetrieverRule{}, renamed, result)
			select {
			case out <- sched.Result{Proof: p}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// modusPonensRule tags a proof produced by RestrictedModusPonens.
type modusPonensRule struct{}

func (modusPonensRule) String() string { return "RestrictedModusPonens" }

// RestrictedModusPonens proves formula by finding a stored
// Implies(premise, formula) and recursively proving premise. It
// refuses to prove a goal that is itself an Implies — the
// "restricted" half of the name, carried over from provers.py's own
// restriction against chaining through nested implications.
type RestrictedModusPonens struct{}

func (RestrictedModusPonens) String() string { return "RestrictedModusPonens" }

func (RestrictedModusPonens) Prove(ctx context.Context, goal term.Term, truth bool, previous *subst.Substitution, kbase *KnowledgeBase) <-chan sched.Result {
	out := make(chan sched.Result)
	go func() {
		defer close(out)
		if !truth {
			return
		}
		if _, _, ok := IsImplies(goal); ok {
			return
		}

		premiseVar := kbase.varSource.Fresh("premise")
		pattern := ImpliesExpr(premiseVar, goal)

		candidates, err := kbase.searchUnifiable(pattern)
		if err != nil {
			select {
			case out <- sched.Result{Err: wrapStorageErr("search_unifiable", err)}:
			case <-ctx.Done():
			}
			return
		}

		for _, candidate := range candidates {
			renamed, _ := term.NormalizeVariables(candidate, kbase.varSource)
			premise, conclusion, ok := IsImplies(renamed)
			if !ok {
				continue
			}
			ruleSubst, ok := subst.Unify(goal, conclusion, previous)
			if !ok {
				continue
			}

			sub, cancel, err := kbase.proveAsync(ctx, ruleSubst.Apply(premise), true, ruleSubst)
			if err != nil {
				select {
				case out <- sched.Result{Err: err}:
				case <-ctx.Done():
				}
				return
			}
			for res := range sub {
				if res.Err != nil {
					select {
					case out <- res:
					case <-ctx.Done():
						cancel()
						return
					}
					continue
				}
				p := proof.New(modusPonensRule{}, goal, res.Proof.Substitution, res.Proof)
				select {
				case out <- sched.Result{Proof: p}:
				case <-ctx.Done():
					cancel()
					return
				}
			}
			cancel()
		}
	}()
	return out
}

// negationRule tags a proof produced by NegationProver.
type negationRule struct{}

func (negationRule) String() string { return "NegationProver" }

// NegationProver proves Not(formula) true by proving formula false,
// and proves Not(formula) false by proving formula true — the
// truth-flipping scheme from provers.py's NegationProver.
type NegationProver struct{}

func (NegationProver) String() string { return "NegationProver" }

func (NegationProver) Prove(ctx context.Context, goal term.Term, truth bool, previous *subst.Substitution, kbase *KnowledgeBase) <-chan sched.Result {
	out := make(chan sched.Result)
	go func() {
		defer close(out)
		inner, ok := IsNot(goal)
		if !ok {
			return
		}

		sub, cancel, err := kbase.proveAsync(ctx, inner, !truth, previous)
		if err != nil {
			select {
			case out <- sched.Result{Err: err}:
			case <-ctx.Done():
			}
			return
		}
		defer cancel()
		for res := range sub {
			if res.Err != nil {
				select {
				case out <- res:
				case <-ctx.Done():
					return
				}
				continue
			}
			p := proof.New(negationRule{}, goal, res.Proof.Substitution, res.Proof)
			select {
			case out <- sched.Result{Proof: p}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (kbase *KnowledgeBase) searchUnifiable(query term.Term) ([]term.Term, error) {
	stored, err := kbase.storage.SearchUnifiable(query)
	if err != nil {
		return nil, err
	}
	out := make([]term.Term, len(stored))
	for i, s := range stored {
		out[i] = s.Term
	}
	return out, nil
}
