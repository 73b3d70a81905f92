// Ponder drives forward chaining: prove each input formula, then fire
// every listener whose pattern unifies with each emitted proof's
// conclusion, feeding the listener's own derived proofs back into the
// same firing loop (the loopback queue).
package kb

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/corvidlabs/proofkit/pkg/proof"
	"github.com/corvidlabs/proofkit/pkg/subst"
	"github.com/corvidlabs/proofkit/pkg/term"
)

// PonderResult is one item of a Ponder stream: either a derived Proof
// or a terminal error. A single error poisons the rest of the query —
// no further items follow one with a non-nil Err.
type PonderResult struct {
	Proof *proof.Proof
	Err   error
}

// listenerTriggerRule tags a proof produced by a fired listener.
type listenerTriggerRule struct {
	listener   *Listener
	triggering term.Term
}

func (r listenerTriggerRule) String() string {
	return fmt.Sprintf("%s triggered by %s", r.listener, r.triggering)
}

// Ponder proves every formula in formulas under mode, firing listeners
// on the resulting proofs and feeding their derived proofs back into
// the firing loop. Hypothetically (and any unrecognized mode) is
// rejected with ErrHypotheticalUnsupported.
func (kbase *KnowledgeBase) Ponder(ctx context.Context, formulas []term.Term, mode PonderMode) (<-chan PonderResult, context.CancelFunc, error) {
	switch mode {
	case Known, Prove:
	default:
		return nil, nil, ErrHypotheticalUnsupported
	}

	cctx, cancel := context.WithCancel(ctx)
	taskCtx := withTask(WithKnowledgeBase(cctx, kbase))
	retrieveOnly := mode == Known

	out := make(chan PonderResult, kbase.bufferSize)

	go func() {
		defer close(out)
		defer cancel()

		var wg sync.WaitGroup
		var mu sync.Mutex
		var errs *multierror.Error

		// branchCtx stops the sibling branches once one fails; taskCtx
		// stays live so that failure can still be delivered on out.
		branchCtx, stopBranches := context.WithCancel(taskCtx)
		defer stopBranches()

		emit := func(r PonderResult) bool {
			select {
			case out <- r:
				return true
			case <-branchCtx.Done():
				return false
			}
		}

		for _, formula := range formulas {
			formula := formula
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := kbase.ponderOne(branchCtx, formula, true, subst.New(), retrieveOnly, emit); err != nil {
					mu.Lock()
					errs = multierror.Append(errs, err)
					mu.Unlock()
					stopBranches()
				}
			}()
		}
		wg.Wait()

		if errs != nil {
			select {
			case out <- PonderResult{Err: errs.ErrorOrNil()}:
			case <-taskCtx.Done():
			}
		}
	}()

	return out, cancel, nil
}

// ponderOne proves formula and depth-first fires listeners on each
// resulting proof: a listener's own derived chain (B, C, D, ...) is
// fully emitted before siblings triggered by the same parent proof are
// considered.
func (kbase *KnowledgeBase) ponderOne(ctx context.Context, formula term.Term, truth bool, previous *subst.Substitution, retrieveOnly bool, emit func(PonderResult) bool) error {
	stream := kbase.proveStream(ctx, formula, truth, previous, retrieveOnly)
	for res := range stream {
		if res.Err != nil {
			return res.Err
		}
		if err := kbase.fireChain(ctx, res.Proof, emit); err != nil {
			return err
		}
	}
	return nil
}

// fireChain consults every listener registered against p's conclusion.
// It never emits p itself — p may be the pondered goal's own proof,
// which is not a derived result — only the proofs a listener's handler
// derives. Each derived child is emitted before fireChain recurses into
// it, so a listener's own chain (B, C, D, ...) is fully emitted before
// siblings triggered by the same parent proof are considered.
func (kbase *KnowledgeBase) fireChain(ctx context.Context, p *proof.Proof, emit func(PonderResult) bool) error {
	select {
	case <-ctx.Done():
		return nil
	default:
	}

	for _, listener := range kbase.GetListenersFor(p.Conclusion) {
		// listener.ListenedFormula's variables are fixed once at
		// registration and reused across every firing: since
		// Substitution is immutable and each unify call threads a
		// fresh result from p.Substitution, concurrent or repeated
		// firings never alias a stale binding onto these variables.
		matchedSubst, ok := subst.Unify(listener.ListenedFormula, p.Conclusion, p.Substitution)
		if !ok {
			continue
		}

		items, err := kbase.invokeHandler(ctx, listener, p.Conclusion, matchedSubst)
		if err != nil {
			return err
		}

		for _, item := range items {
			resultSubst := item.Substitution
			if resultSubst == nil {
				resultSubst = matchedSubst
			}
			premises := append([]*proof.Proof{p}, item.Premises...)
			child := proof.New(listenerTriggerRule{listener: listener, triggering: p.Conclusion}, item.Conclusion, resultSubst, premises...)
			if !emit(PonderResult{Proof: child}) {
				return nil
			}
			if err := kbase.fireChain(ctx, child, emit); err != nil {
				return err
			}
		}
	}
	return nil
}

// invokeHandler runs listener.Handler, converting a recovered panic
// into a HandlerException.
func (kbase *KnowledgeBase) invokeHandler(ctx context.Context, listener *Listener, formula term.Term, s *subst.Substitution) (items []HandlerItem, err error) {
	defer func() {
		if r := recover(); r != nil {
			kbase.logger.Warn("listener handler panicked", zap.Stringer("listener", listener), zap.Any("cause", r))
			err = &HandlerException{Listener: listener, Cause: r}
		}
	}()
	return listener.Handler(ctx, formula, s)
}
