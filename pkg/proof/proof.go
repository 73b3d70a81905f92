// Package proof defines the immutable derivation tree produced by
// proving a goal: a quadruple of the inference rule used, the proved
// conclusion, the substitution it holds under, and the premise proofs
// it was derived from.
package proof

import (
	"fmt"
	"strings"

	"github.com/corvidlabs/proofkit/pkg/subst"
	"github.com/corvidlabs/proofkit/pkg/term"
)

// Rule tags a Proof with what produced it: a Prover, a Listener firing
// (tagged with the formula that triggered it), or the knowledge
// retriever.
type Rule interface {
	fmt.Stringer
}

// Proof is an immutable witness that Conclusion follows from Premises
// under Substitution via Rule. Proofs form a DAG, never a cycle: every
// Premise was built strictly before the Proof that references it.
type Proof struct {
	Rule         Rule
	Conclusion   term.Term
	Substitution *subst.Substitution
	Premises     []*Proof
}

// New builds a Proof. Premises is copied so later mutation of the
// caller's slice cannot retroactively change an already-built Proof.
func New(rule Rule, conclusion term.Term, substitution *subst.Substitution, premises ...*Proof) *Proof {
	frozen := make([]*Proof, len(premises))
	copy(frozen, premises)
	return &Proof{Rule: rule, Conclusion: conclusion, Substitution: substitution, Premises: frozen}
}

func (p *Proof) String() string {
	var b strings.Builder
	p.write(&b, 0)
	return b.String()
}

func (p *Proof) write(b *strings.Builder, depth int) {
	fmt.Fprintf(b, "%s%s via %s [%s]\n", strings.Repeat("  ", depth), p.Conclusion, p.Rule, p.Substitution)
	for _, premise := range p.Premises {
		premise.write(b, depth+1)
	}
}
