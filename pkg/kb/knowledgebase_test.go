package kb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidlabs/proofkit/pkg/subst"
	"github.com/corvidlabs/proofkit/pkg/term"
)

func drainProve(t *testing.T, kbase *KnowledgeBase, goal term.Term) []term.Term {
	t.Helper()
	ch, cancel, err := kbase.Prove(context.Background(), goal, nil, true)
	require.NoError(t, err)
	defer cancel()

	var conclusions []term.Term
	for res := range ch {
		require.NoError(t, res.Err)
		conclusions = append(conclusions, res.Proof.Substitution.Apply(res.Proof.Conclusion))
	}
	return conclusions
}

// add Is(dylan, cat); prove(Is(dylan, cat)) should yield one proof with
// empty substitution.
func TestProveSingleFormulaRetrieval(t *testing.T) {
	kbase := NewKnowledgeBase()
	consts := kbase.ConstantSource()
	is, dylan, cat := consts.Intern("Is"), consts.Intern("dylan"), consts.Intern("cat")
	formula := term.NewExpression(is, dylan, cat)
	require.NoError(t, kbase.AddFormulas(formula))

	got := drainProve(t, kbase, formula)
	require.Len(t, got, 1)
	assert.True(t, got[0].Equal(formula))
}

func TestProveRejectsReentrantCallFromInsideATask(t *testing.T) {
	kbase := NewKnowledgeBase()
	ctx := withTask(context.Background())
	_, _, err := kbase.Prove(ctx, term.NewConstant("x"), nil, true)
	assert.ErrorIs(t, err, ErrReentrantProve)
}

func TestProveWithOpenGoalUnifiesAgainstStoredFormula(t *testing.T) {
	kbase := NewKnowledgeBase()
	consts := kbase.ConstantSource()
	is, dylan, cat := consts.Intern("Is"), consts.Intern("dylan"), consts.Intern("cat")
	require.NoError(t, kbase.AddFormulas(term.NewExpression(is, dylan, cat)))

	querySrc := term.NewVariableSource(term.NewLanguage("query"))
	who := querySrc.Fresh("who")
	query := term.NewExpression(is, who, cat)

	ch, cancel, err := kbase.Prove(context.Background(), query, nil, true)
	require.NoError(t, err)
	defer cancel()

	res := <-ch
	require.NoError(t, res.Err)
	assert.True(t, res.Proof.Substitution.Apply(who).Equal(dylan))
}

func TestModusPonensProvesOpenGoalViaStoredImplication(t *testing.T) {
	kbase := NewKnowledgeBase()
	consts := kbase.ConstantSource()
	is, kitten, cat, kitty := consts.Intern("Is"), consts.Intern("kitten"), consts.Intern("cat"), consts.Intern("kitty")

	ruleSrc := term.NewVariableSource(term.NewLanguage("rule"))
	x := ruleSrc.Fresh("x")
	rule := Premise(term.NewExpression(is, x, kitten)).Implies(term.NewExpression(is, x, cat))

	require.NoError(t, kbase.AddFormulas(rule, term.NewExpression(is, kitty, kitten)))

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
	assert.True(t, found, "expected Is(kitty, cat) to be derivable via RestrictedModusPonens")
}

func TestNegationProverProvesNotOfAFalseGoal(t *testing.T) {
	kbase := NewKnowledgeBase()
	consts := kbase.ConstantSource()
	dog := consts.Intern("Dog")
	tweety := consts.Intern("tweety")
	goal := NotExpr(term.NewExpression(dog, tweety))

	ch, cancel, err := kbase.Prove(context.Background(), goal, nil, false)
	require.NoError(t, err)
	defer cancel()

	var got []term.Term
	for res := range ch {
		require.NoError(t, res.Err)
		got = append(got, res.Proof.Conclusion)
	}
	// Dog(tweety) is not stored, so proving it true yields no proofs,
	// hence Not(Dog(tweety)) proves true exactly once (truth flipped).
	require.Len(t, got, 1)
}

func TestTransactionUnsupportedOnMemoryBackend(t *testing.T) {
	kbase := NewKnowledgeBase()
	require.False(t, kbase.SupportsTransactions())

	_, err := kbase.Transaction()
	assert.Error(t, err)
}

func TestGetProversForReturnsBuiltins(t *testing.T) {
	kbase := NewKnowledgeBase()
	provers := kbase.GetProversFor(term.NewConstant("anything"))
	assert.Len(t, provers, 2)
}

func TestSubstitutionDefaultsToEmpty(t *testing.T) {
	kbase := NewKnowledgeBase()
	consts := kbase.ConstantSource()
	c := consts.Intern("c")
	require.NoError(t, kbase.AddFormulas(c))

	ch, cancel, err := kbase.Prove(context.Background(), c, nil, true)
	require.NoError(t, err)
	defer cancel()
	res := <-ch
	assert.True(t, res.Proof.Substitution.Equal(subst.New()))
}
