package parse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidlabs/proofkit/pkg/kb"
	"github.com/corvidlabs/proofkit/pkg/term"
)

// A rule parsed from `(Implies (Is ?x kitten) (Is ?x cat))` must
// backward-chain exactly like the same rule built with the
// Premise(...).Implies(...) Go builder: the parser has to route the
// literal "Implies" token to kb.ImpliesSymbol rather than interning it
// as an ordinary constant, or RestrictedModusPonens's discrimination-
// tree lookup never finds it.
func TestParsedImpliesRuleDrivesModusPonens(t *testing.T) {
	kbase := kb.NewKnowledgeBase()
	p := New(kbase.ConstantSource(), kbase.VariableSource())

	rule, err := p.ParseRule("(Implies (Is ?x kitten) (Is ?x cat))")
	require.NoError(t, err)

	fact, err := p.Formula("(Is kitty kitten)")
	require.NoError(t, err)

	require.NoError(t, kbase.AddFormulas(rule, fact))

	consts := kbase.ConstantSource()
	is, cat, kitty := consts.Intern("Is"), consts.Intern("cat"), consts.Intern("kitty")

	querySrc := term.NewVariableSource(term.NewLanguage("query"))
	who := querySrc.Fresh("who")
	query := term.NewExpression(is, who, cat)

	ch, cancel, err := kbase.Prove(context.Background(), query, nil, false)
	require.NoError(t, err)
	defer cancel()

	var found bool
	for res := range ch {
		require.NoError(t, res.Err)
		if res.Proof.Substitution.Apply(who).Equal(kitty) {
			found = true
		}
	}
	assert.True(t, found, "expected Is(kitty, cat) to be derivable via RestrictedModusPonens from a parsed Implies rule")
}

// ParseRule itself validates the parsed form is an Implies expression
// via kb.IsImplies, which compares against kb.ImpliesSymbol by pointer
// identity; a rule whose head was interned as an unrelated constant
// would fail this check even before reaching the knowledge base.
func TestParseRuleAcceptsAParsedImpliesExpression(t *testing.T) {
	kbase := kb.NewKnowledgeBase()
	p := New(kbase.ConstantSource(), kbase.VariableSource())

	_, err := p.ParseRule("(Implies (Is ?x kitten) (Is ?x cat))")
	assert.NoError(t, err)
}

// The literal token "Not" must parse to kb.NotSymbol so kb.IsNot and
// NegationProver recognize it, the same way "Implies" must reach
// kb.ImpliesSymbol.
func TestParsedNotExpressionUsesTheSharedNotSymbol(t *testing.T) {
	kbase := kb.NewKnowledgeBase()
	p := New(kbase.ConstantSource(), kbase.VariableSource())

	formula, err := p.Formula("(Not (Dog tweety))")
	require.NoError(t, err)

	e, ok := formula.(*term.Expression)
	require.True(t, ok)

	_, ok = kb.IsNot(e)
	assert.True(t, ok, "expected a parsed (Not ...) expression to satisfy kb.IsNot")
}
