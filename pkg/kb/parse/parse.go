// Package parse implements the tiny s-expression formula syntax used
// by cmd/proofkit's .pk files: `(Is dylan cat)`,
// `(Implies (Is ?x kitten) (Is ?x cat))`. The parenthesized-term
// reading style mirrors how gitrdm-gokando/pkg/minikanren's test
// fixtures build terms by nested constructor calls — this package
// gives the same shape a textual front end — and the tokenizer follows
// dolthub-go-mysql-server's hand-written recursive-descent pattern.
package parse

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/corvidlabs/proofkit/pkg/kb"
	"github.com/corvidlabs/proofkit/pkg/term"
)

// Parser turns formula text into term.Term values, interning constants
// through a shared ConstantSource and minting variables through a
// shared VariableSource so `?x` means the same variable within one
// top-level formula and a distinct one in the next (each call to
// Formula opens a fresh lexical scope for `?`-names).
type Parser struct {
	consts *term.ConstantSource
	vars   *term.VariableSource
}

// New builds a Parser sharing consts/vars with a KnowledgeBase, so
// constants and variables parsed from a file interoperate with ones
// built programmatically against the same base.
func New(consts *term.ConstantSource, vars *term.VariableSource) *Parser {
	return &Parser{consts: consts, vars: vars}
}

// Formulas splits src into its top-level parenthesized forms and
// parses each independently, skipping blank lines and everything from
// a `;` to the end of its line (a comment, in the Lisp-adjacent
// convention this syntax borrows).
func (p *Parser) Formulas(src string) ([]term.Term, error) {
	toks := tokenize(src)
	var out []term.Term
	i := 0
	for i < len(toks) {
		scope := make(map[string]*term.Variable)
		t, next, err := p.parseOne(toks, i, scope)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
		i = next
	}
	return out, nil
}

// Formula parses exactly one top-level form, failing if src contains
// more than one or none.
func (p *Parser) Formula(src string) (term.Term, error) {
	forms, err := p.Formulas(src)
	if err != nil {
		return nil, err
	}
	if len(forms) != 1 {
		return nil, fmt.Errorf("parse: expected exactly one formula, got %d", len(forms))
	}
	return forms[0], nil
}

func tokenize(src string) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	lines := strings.Split(src, "\n")
	for _, line := range lines {
		if idx := strings.IndexByte(line, ';'); idx >= 0 {
			line = line[:idx]
		}
		for _, r := range line {
			switch {
			case r == '(' || r == ')':
				flush()
				toks = append(toks, string(r))
			case unicode.IsSpace(r):
				flush()
			default:
				cur.WriteRune(r)
			}
		}
		flush()
	}
	return toks
}

func (p *Parser) parseOne(toks []string, i int, scope map[string]*term.Variable) (term.Term, int, error) {
	if i >= len(toks) {
		return nil, i, fmt.Errorf("parse: unexpected end of input")
	}
	if toks[i] == ")" {
		return nil, i, fmt.Errorf("parse: unexpected )")
	}
	if toks[i] != "(" {
		return p.parseAtom(toks[i], scope), i + 1, nil
	}

	i++ // consume "("
	var children []term.Term
	for {
		if i >= len(toks) {
			return nil, i, fmt.Errorf("parse: unterminated (")
		}
		if toks[i] == ")" {
			i++
			return term.NewExpression(children...), i, nil
		}
		child, next, err := p.parseOne(toks, i, scope)
		if err != nil {
			return nil, i, err
		}
		children = append(children, child)
		i = next
	}
}

func (p *Parser) parseAtom(tok string, scope map[string]*term.Variable) term.Term {
	if strings.HasPrefix(tok, "?") {
		name := tok[1:]
		if v, ok := scope[name]; ok {
			return v
		}
		v := p.vars.Fresh(name)
		scope[name] = v
		return v
	}
	if n, err := strconv.Atoi(tok); err == nil {
		return term.NewWrapper(n)
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return term.NewWrapper(f)
	}
	// Implies/Not are operator symbols owned by package kb
	// (kb.ImpliesSymbol/kb.NotSymbol) and compared by pointer identity
	// throughout kb.IsImplies/kb.IsNot/RestrictedModusPonens/
	// NegationProver. Interning these two tokens through p.consts like
	// any other constant would mint a distinct *term.Constant that
	// those pointer comparisons never match, so a parsed rule would
	// silently fail to backward-chain.
	switch tok {
	case "Implies":
		return kb.ImpliesSymbol
	case "Not":
		return kb.NotSymbol
	}
	return p.consts.Intern(tok)
}

// ParseRule is a convenience for the common `(Implies premise
// conclusion)` shape: it parses one formula and returns it as an
// Expression, failing unless kb.IsImplies accepts it.
func (p *Parser) ParseRule(src string) (*term.Expression, error) {
	t, err := p.Formula(src)
	if err != nil {
		return nil, err
	}
	e, ok := t.(*term.Expression)
	if !ok {
		return nil, fmt.Errorf("parse: rule must be an Implies expression")
	}
	if _, _, ok := kb.IsImplies(e); !ok {
		return nil, fmt.Errorf("parse: rule must be an Implies expression")
	}
	return e, nil
}
