package index

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corvidlabs/proofkit/pkg/term"
)

func TestRetrieveExactMatch(t *testing.T) {
	is := term.NewConstant("Is")
	dylan := term.NewConstant("dylan")
	cat := term.NewConstant("cat")
	formula := term.NewExpression(is, dylan, cat)

	ix := New[string]()
	ix.Add(MakeKey(formula), "entry")

	got := ix.Retrieve(MakeKey(formula))
	assert.Equal(t, []string{"entry"}, got)
}

func TestRetrieveWildcardQueryMatchesSpecificEntry(t *testing.T) {
	is := term.NewConstant("Is")
	dylan := term.NewConstant("dylan")
	cat := term.NewConstant("cat")
	formula := term.NewExpression(is, dylan, cat)

	ix := New[string]()
	ix.Add(MakeKey(formula), "entry")

	src := term.NewVariableSource(term.NewLanguage("q"))
	query := term.NewExpression(is, src.Fresh("x"), cat)
	got := ix.Retrieve(MakeKey(query))
	assert.Equal(t, []string{"entry"}, got)
}

func TestRetrieveSpecificQueryMatchesWildcardEntry(t *testing.T) {
	is := term.NewConstant("Is")
	cat := term.NewConstant("cat")
	src := term.NewVariableSource(term.NewLanguage("reg"))
	listenedFormula := term.NewExpression(is, src.Fresh("cat"), cat)

	ix := New[string]()
	ix.Add(MakeKey(listenedFormula), "listener")

	dylan := term.NewConstant("dylan")
	query := term.NewExpression(is, dylan, cat)
	got := ix.Retrieve(MakeKey(query))
	assert.Equal(t, []string{"listener"}, got)
}

func TestRetrieveFullWildcardMatchesEverything(t *testing.T) {
	is := term.NewConstant("Is")
	dylan := term.NewConstant("dylan")
	cat := term.NewConstant("cat")
	formula := term.NewExpression(is, dylan, cat)

	ix := New[string]()
	ix.Add(MakeKey(formula), "entry")

	allVar := term.NewVariableSource(term.NewLanguage("anything")).Fresh("")
	got := ix.Retrieve(MakeKey(allVar))
	assert.Equal(t, []string{"entry"}, got)
}

func TestRetrieveDoesNotMatchDifferentConstant(t *testing.T) {
	is := term.NewConstant("Is")
	dylan := term.NewConstant("dylan")
	cat := term.NewConstant("cat")
	hugo := term.NewConstant("hugo")
	formula := term.NewExpression(is, dylan, cat)

	ix := New[string]()
	ix.Add(MakeKey(formula), "entry")

	got := ix.Retrieve(MakeKey(term.NewExpression(is, hugo, cat)))
	assert.Empty(t, got)
}

func TestRetrieveDuplicatesAreNotSuppressed(t *testing.T) {
	c := term.NewConstant("c")
	ix := New[string]()
	ix.Add(MakeKey(c), "same")
	ix.Add(MakeKey(c), "same")

	got := ix.Retrieve(MakeKey(c))
	assert.Len(t, got, 2)
}
