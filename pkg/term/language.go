package term

import "fmt"

// Language is a namespace token for variables. Two variables created in
// different Languages never compare equal even if they share a name;
// normalizing a term into a Language freshens every variable it contains.
//
// Language is compared by identity: the zero value must never be used,
// always obtain one from NewLanguage.
type Language struct {
	name string
}

// NewLanguage creates a fresh, empty naming scope.
func NewLanguage(name string) *Language {
	return &Language{name: name}
}

func (l *Language) String() string {
	if l == nil {
		return "<nil-language>"
	}
	if l.name == "" {
		return fmt.Sprintf("lang(%p)", l)
	}
	return l.name
}

// VariableSource mints fresh variables scoped to a single Language.
// It is the idiomatic stand-in for aitools' thread-local
// variable_source: callers hold one explicitly instead of reading it off
// an ambient global.
type VariableSource struct {
	language *Language
	counter  uint64
}

// NewVariableSource returns a source that mints variables in language.
func NewVariableSource(language *Language) *VariableSource {
	return &VariableSource{language: language}
}

// Fresh mints a new, never-before-seen variable, optionally named for
// debugging. The name has no bearing on equality.
func (s *VariableSource) Fresh(name string) *Variable {
	s.counter++
	return &Variable{language: s.language, name: name, ordinal: s.counter}
}

// Language returns the naming scope this source mints into.
func (s *VariableSource) Language() *Language {
	return s.language
}

// NormalizeVariables returns a structurally identical copy of t in which
// every distinct Variable has been replaced by a fresh Variable minted
// from source, preserving equality: the same source variable maps to the
// same fresh variable throughout the whole call. The bijection used is
// returned so callers (e.g. a Listener re-checking a trigger) can map
// back and forth.
func NormalizeVariables(t Term, source *VariableSource) (Term, map[*Variable]*Variable) {
	mapping := make(map[*Variable]*Variable)
	return normalize(t, source, mapping), mapping
}

func normalize(t Term, source *VariableSource, mapping map[*Variable]*Variable) Term {
	switch v := t.(type) {
	case *Variable:
		if fresh, ok := mapping[v]; ok {
			return fresh
		}
		fresh := source.Fresh(v.name)
		mapping[v] = fresh
		return fresh
	case *Expression:
		children := make([]Term, len(v.children))
		for i, c := range v.children {
			children[i] = normalize(c, source, mapping)
		}
		return NewExpression(children...)
	default:
		// Constant and Wrapper carry no variables.
		return t
	}
}
