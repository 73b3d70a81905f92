// Package index implements a retrieval structure that maps a
// term-derived key to a bag of registered entries (provers, listeners,
// or stored formulas), where variables collapse to a wildcard so a
// query term and an indexed term with variables in different positions
// still collide.
//
// The backing structure is a discrimination tree whose inner nodes
// branch on a per-position token and whose wildcard edges are always
// followed alongside the specific edge. This generalizes
// gitrdm-gokando/pkg/minikanren/fact_store.go's FactIndex from a flat
// position->value map to a tree that can be walked recursively into
// nested expressions, combined with its pldb.go's
// discrimination-by-head-symbol bucketing.
package index

import "github.com/corvidlabs/proofkit/pkg/term"

// MaxDepth bounds how deep MakeKey descends into nested expressions.
// Structure past this depth is folded into a single wildcard token, so
// the index never discriminates beyond it — correctness is unaffected
// since retrieval is always a superset the caller re-verifies by
// unification.
const MaxDepth = 8

type tokenKind int

const (
	tokenWildcard tokenKind = iota
	tokenConstant
	tokenWrapper
	tokenExpr
)

type token struct {
	kind  tokenKind
	arity int
	value interface{}
}

// Key is the flattened pre-order encoding of a term, produced by
// MakeKey, used to navigate the discrimination tree.
type Key []token

// MakeKey derives a retrieval key from t: every Variable becomes a
// single wildcard token, Constants and Wrappers become themselves, and
// Expressions contribute a head token (arity) followed by their
// children's tokens, recursively, down to MaxDepth.
func MakeKey(t term.Term) Key {
	var k Key
	appendKey(&k, t, MaxDepth)
	return k
}

func appendKey(k *Key, t term.Term, depth int) {
	if depth <= 0 {
		*k = append(*k, token{kind: tokenWildcard})
		return
	}
	switch v := t.(type) {
	case *term.Variable:
		*k = append(*k, token{kind: tokenWildcard})
	case *term.Constant:
		*k = append(*k, token{kind: tokenConstant, value: v})
	case *term.Wrapper:
		*k = append(*k, token{kind: tokenWrapper, value: v.Value()})
	case *term.Expression:
		*k = append(*k, token{kind: tokenExpr, arity: v.Arity()})
		for _, c := range v.Children() {
			appendKey(k, c, depth-1)
		}
	default:
		*k = append(*k, token{kind: tokenWildcard})
	}
}

// Index is a discrimination tree mapping Keys to a bag of entries of
// type T. Duplicates are not suppressed: adding the same entry twice
// stores it twice; entries are compared by identity upstream.
type Index[T any] struct {
	root *node[T]
}

type node[T any] struct {
	children map[token]*node[T]
	wildcard *node[T]
	entries  []T
}

func newNode[T any]() *node[T] {
	return &node[T]{children: make(map[token]*node[T])}
}

// New creates an empty index.
func New[T any]() *Index[T] {
	return &Index[T]{root: newNode[T]()}
}

// Add registers entry under key.
func (ix *Index[T]) Add(key Key, entry T) {
	n := ix.root
	for _, tk := range key {
		n = n.child(tk)
	}
	n.entries = append(n.entries, entry)
}

func (n *node[T]) child(tk token) *node[T] {
	if tk.kind == tokenWildcard {
		if n.wildcard == nil {
			n.wildcard = newNode[T]()
		}
		return n.wildcard
	}
	c, ok := n.children[tk]
	if !ok {
		c = newNode[T]()
		n.children[tk] = c
	}
	return c
}

// Retrieve returns every entry whose registration key is compatible
// with query: a wildcard on either side matches anything on the other,
// so the result is a superset of true unifiers that the caller must
// confirm by attempting unification. Ordering is unspecified.
func (ix *Index[T]) Retrieve(query Key) []T {
	var out []T
	ix.root.retrieve(query, 0, &out)
	return out
}

func (n *node[T]) retrieve(query Key, i int, out *[]T) {
	if i == len(query) {
		*out = append(*out, n.entries...)
		return
	}
	tk := query[i]

	// The wildcard edge always matches, regardless of the query token.
	if n.wildcard != nil {
		n.wildcard.retrieve(query, i+1, out)
	}

	if tk.kind == tokenWildcard {
		// A wildcard query token subsumes every specific branch too.
		for _, c := range n.children {
			c.retrieve(query, i+1, out)
		}
		return
	}

	if c, ok := n.children[tk]; ok {
		c.retrieve(query, i+1, out)
	}
}
