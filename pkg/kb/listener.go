// Listener registration and firing. Handler return-shape dispatch uses
// a tagged sum (HandlerItem, built by Conclusion/WithSubst/WithPremises)
// instead of runtime inspection of the returned value's shape, and
// handler-argument marshalling uses an explicit ordered variable list
// supplied at registration time instead of reading parameter names off
// the function value — Go has no runtime parameter-name reflection,
// unlike the inspect.signature-based dispatch aitools/logic/handlers.py
// uses.
package kb

import (
	"context"
	"fmt"
	"reflect"

	"github.com/corvidlabs/proofkit/pkg/proof"
	"github.com/corvidlabs/proofkit/pkg/subst"
	"github.com/corvidlabs/proofkit/pkg/term"
)

// HandlerItem is one item of a listener handler's returned sequence,
// built via Conclusion/WithSubst/WithPremises. Substitution may be nil,
// meaning "use the unifier the listener matched with"; Premises may be
// nil, meaning "no extra premises beyond the triggering proof".
type HandlerItem struct {
	Conclusion   term.Term
	Substitution *subst.Substitution
	Premises     []*proof.Proof
}

// Conclusion builds the "single term" handler-return shape.
func Conclusion(t term.Term) HandlerItem { return HandlerItem{Conclusion: t} }

// WithSubst builds the "(t, substitution)" handler-return shape.
func WithSubst(t term.Term, s *subst.Substitution) HandlerItem {
	return HandlerItem{Conclusion: t, Substitution: s}
}

// WithPremises builds the "(t, substitution, premises)" handler-return
// shape.
func WithPremises(t term.Term, s *subst.Substitution, premises ...*proof.Proof) HandlerItem {
	return HandlerItem{Conclusion: t, Substitution: s, Premises: premises}
}

// RawHandlerFunc backs a Raw-mode listener: it receives the triggering
// formula and the unifier exactly as bound.
type RawHandlerFunc func(ctx context.Context, formula term.Term, substitution *subst.Substitution) ([]HandlerItem, error)

// MapHandlerFunc backs every Map*-mode listener: it receives the bound
// values for the variables named at registration time, in that order,
// already massaged per the selected HandlerArgumentMode.
type MapHandlerFunc func(ctx context.Context, values []term.Term) ([]HandlerItem, error)

// Listener is a forward-chaining reaction: whenever a proof's
// conclusion unifies with ListenedFormula, Handler runs and its
// returned items become new proofs fed back into ponder's loopback
// queue.
type Listener struct {
	ListenedFormula term.Term
	Safety          HandlerSafety
	ArgumentMode    HandlerArgumentMode
	Variables       []*term.Variable
	Handler         RawHandlerFunc
	name            string
}

func (l *Listener) String() string {
	if l.name != "" {
		return l.name
	}
	return fmt.Sprintf("Listener(%s)", l.ListenedFormula)
}

// NewRawListener registers a RAW-mode listener: fn receives the
// triggering formula and substitution unmodified.
func NewRawListener(name string, listenedFormula term.Term, safety HandlerSafety, fn RawHandlerFunc) (*Listener, error) {
	if err := checkHandlerFunc(fn); err != nil {
		return nil, err
	}
	return &Listener{
		ListenedFormula: listenedFormula,
		Safety:          safety,
		ArgumentMode:    Raw,
		Handler:         fn,
		name:            name,
	}, nil
}

// NewMapListener registers a Map*-mode listener. variables names, in
// order, which variables of listenedFormula feed positional arguments
// of fn; InvalidHandlerShapeError is returned if variables is empty,
// since every Map* mode requires at least one bound value to marshal.
func NewMapListener(name string, listenedFormula term.Term, safety HandlerSafety, mode HandlerArgumentMode, variables []*term.Variable, fn MapHandlerFunc) (*Listener, error) {
	if mode == Raw {
		return nil, &InvalidHandlerShapeError{Reason: "NewMapListener cannot be used with Raw; call NewRawListener"}
	}
	if len(variables) == 0 {
		return nil, &InvalidHandlerShapeError{Reason: "a Map* listener needs at least one variable to marshal"}
	}
	if err := checkHandlerFunc(fn); err != nil {
		return nil, err
	}

	raw := func(ctx context.Context, _ term.Term, s *subst.Substitution) ([]HandlerItem, error) {
		values := make([]term.Term, len(variables))
		for i, v := range variables {
			bound := s.Apply(v)
			switch mode {
			case MapUnwrapped, MapUnwrappedRequired, MapUnwrappedNoVariables:
				w, isWrapper := bound.(*term.Wrapper)
				if mode == MapUnwrappedRequired && !isWrapper {
					return nil, nil // silent refusal: a required wrapper binding is not one
				}
				if isWrapper {
					bound = term.NewWrapper(w.Value())
				}
			}
			switch mode {
			case MapNoVariables, MapUnwrappedNoVariables:
				if bound.IsVariable() {
					return nil, nil // silent refusal
				}
			}
			values[i] = bound
		}
		return fn(ctx, values)
	}

	return &Listener{
		ListenedFormula: listenedFormula,
		Safety:          safety,
		ArgumentMode:    mode,
		Variables:       append([]*term.Variable(nil), variables...),
		Handler:         raw,
		name:            name,
	}, nil
}

// checkHandlerFunc is the registration-time InvalidHandlerShapeError
// gate: reject nil or non-function handlers before they
// can ever be invoked. Go's static typing already rejects a handler
// whose Go signature doesn't match RawHandlerFunc/MapHandlerFunc at
// compile time; reflect only needs to catch the nil-function case a
// static signature check cannot.
func checkHandlerFunc(fn interface{}) error {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return &InvalidHandlerShapeError{Reason: "handler must be a non-nil function"}
	}
	return nil
}
