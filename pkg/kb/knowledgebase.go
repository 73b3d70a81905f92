// Package kb glues the term/subst/proof/index/storage/sched packages
// into the knowledge base: add_formulas, prove, ponder, and
// transactions, grounded on gitrdm-gokando/pkg/minikanren/solve.go's
// top-level solve entry points and on aitools/logic/knowledge_base.py.
package kb

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/corvidlabs/proofkit/pkg/index"
	"github.com/corvidlabs/proofkit/pkg/storage"
	"github.com/corvidlabs/proofkit/pkg/subst"
	"github.com/corvidlabs/proofkit/pkg/term"

	"github.com/corvidlabs/proofkit/internal/sched"
)

// KnowledgeBase owns storage, the prover/listener indexes, and the
// variable/constant interning sources every formula and goal is
// normalized through.
type KnowledgeBase struct {
	mu sync.RWMutex

	language    *term.Language
	varSource   *term.VariableSource
	constSource *term.ConstantSource

	storage   storage.Backend
	provers   *index.Index[Prover]
	listeners *index.Index[*Listener]

	retriever  knowledgeRetriever
	bufferSize int
	logger     *zap.Logger
}

// Option configures a KnowledgeBase at construction time.
type Option func(*KnowledgeBase)

// WithStorage selects the storage backend. Defaults to storage.NewMemory().
func WithStorage(backend storage.Backend) Option {
	return func(kbase *KnowledgeBase) { kbase.storage = backend }
}

// WithLogger attaches a zap logger. Defaults to zap.NewNop(), so the
// library stays silent unless a caller opts in, mirroring the original
// system's own logger.info("Trying to prove %s with previous
// substitution %s", ...) calls in knowledge_base.py.
func WithLogger(logger *zap.Logger) Option {
	return func(kbase *KnowledgeBase) { kbase.logger = logger }
}

// WithBufferSize sets the multiplex bounded-queue size (default 1).
func WithBufferSize(n int) Option {
	return func(kbase *KnowledgeBase) { kbase.bufferSize = n }
}

// WithConstantSource overrides the constant-interning table. Required
// when a persistent storage.Backend (e.g. storage.Bolt) was opened
// against a ConstantSource of its own, so constants decoded from disk
// intern into the same table formulas built in-process use.
func WithConstantSource(consts *term.ConstantSource) Option {
	return func(kbase *KnowledgeBase) { kbase.constSource = consts }
}

// NewKnowledgeBase builds an empty knowledge base with the built-in
// knowledge retriever and the two supplemented backward-chaining
// provers (RestrictedModusPonens, NegationProver) already registered
// at the wildcard pattern, so every goal consults them.
func NewKnowledgeBase(opts ...Option) *KnowledgeBase {
	language := term.NewLanguage("kb")
	kbase := &KnowledgeBase{
		language:    language,
		varSource:   term.NewVariableSource(language),
		constSource: term.NewConstantSource(),
		storage:     storage.NewMemory(),
		provers:     index.New[Prover](),
		listeners:   index.New[*Listener](),
		bufferSize:  1,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(kbase)
	}

	wildcard := kbase.varSource.Fresh("")
	kbase.provers.Add(index.MakeKey(wildcard), RestrictedModusPonens{})
	kbase.provers.Add(index.MakeKey(wildcard), NegationProver{})
	return kbase
}

// Language returns the knowledge base's private variable-naming scope.
func (kbase *KnowledgeBase) Language() *term.Language { return kbase.language }

// ConstantSource returns the constant-interning table formulas added
// through this knowledge base should share.
func (kbase *KnowledgeBase) ConstantSource() *term.ConstantSource { return kbase.constSource }

// VariableSource returns the variable source formulas added through
// this knowledge base are normalized through — exposed so a front end
// (e.g. a formula-file parser) can mint `?x`-style variables that
// share the knowledge base's Language.
func (kbase *KnowledgeBase) VariableSource() *term.VariableSource { return kbase.varSource }

// AddFormulas normalizes each formula into the knowledge base's own
// Language (Open Question (a): normalize on insertion) and persists it
// via the storage backend.
func (kbase *KnowledgeBase) AddFormulas(formulas ...term.Term) error {
	kbase.mu.Lock()
	defer kbase.mu.Unlock()

	normalized := make([]term.Term, len(formulas))
	for i, f := range formulas {
		renamed, _ := term.NormalizeVariables(f, kbase.varSource)
		normalized[i] = renamed
	}
	if err := kbase.storage.Add(normalized...); err != nil {
		return wrapStorageErr("add", err)
	}
	kbase.logger.Debug("added formulas", zap.Int("count", len(normalized)))
	return nil
}

// AddFormulasTx is AddFormulas scoped to an in-progress transaction.
// Transactions wrap only add_formulas; provers and listeners never run
// inside one.
func (kbase *KnowledgeBase) AddFormulasTx(tx storage.Transaction, formulas ...term.Term) error {
	kbase.mu.Lock()
	defer kbase.mu.Unlock()

	normalized := make([]term.Term, len(formulas))
	for i, f := range formulas {
		renamed, _ := term.NormalizeVariables(f, kbase.varSource)
		normalized[i] = renamed
	}
	if err := tx.Add(normalized...); err != nil {
		return wrapStorageErr("add (transaction)", err)
	}
	return nil
}

// SupportsTransactions reports whether the underlying storage backend
// supports Transaction/Commit/Rollback.
func (kbase *KnowledgeBase) SupportsTransactions() bool {
	return kbase.storage.SupportsTransactions()
}

// Transaction starts a transaction on the storage backend, returning
// storage.ErrNoTransactionSupport if the backend doesn't support one.
func (kbase *KnowledgeBase) Transaction() (storage.Transaction, error) {
	tx, err := kbase.storage.Begin()
	if err != nil {
		return nil, wrapStorageErr("begin transaction", err)
	}
	return tx, nil
}

// AddProver registers prover under pattern (typically a goal template
// with variables standing for wildcards), so Prove consults it for any
// goal whose key is compatible with pattern's key.
func (kbase *KnowledgeBase) AddProver(pattern term.Term, prover Prover) {
	kbase.mu.Lock()
	defer kbase.mu.Unlock()
	kbase.provers.Add(index.MakeKey(pattern), prover)
}

// AddListener registers listener under its own ListenedFormula. The
// index key collapses ListenedFormula's variables to wildcards
// regardless, so no renaming is needed here — matching itself happens
// later, directly against listener.ListenedFormula, in fireChain.
func (kbase *KnowledgeBase) AddListener(listener *Listener) {
	kbase.mu.Lock()
	defer kbase.mu.Unlock()
	kbase.listeners.Add(index.MakeKey(listener.ListenedFormula), listener)
}

// GetProversFor returns every registered prover whose registration key
// is compatible with goal's key — a retrieval superset, same contract
// as the index it is built on.
func (kbase *KnowledgeBase) GetProversFor(goal term.Term) []Prover {
	kbase.mu.RLock()
	defer kbase.mu.RUnlock()
	return kbase.provers.Retrieve(index.MakeKey(goal))
}

// GetListenersFor returns every registered listener whose registration
// key is compatible with formula's key.
func (kbase *KnowledgeBase) GetListenersFor(formula term.Term) []*Listener {
	kbase.mu.RLock()
	defer kbase.mu.RUnlock()
	return kbase.listeners.Retrieve(index.MakeKey(formula))
}

// Prove is the synchronous top-level entry point. It fails with
// ErrReentrantProve if called from within a task already running on
// this knowledge base's own scheduler — use the internal async form
// from inside a Prover or Listener handler.
//
// If previous is nil, subst.New() is used. retrieveOnly restricts the
// stream to the knowledge retriever alone.
func (kbase *KnowledgeBase) Prove(ctx context.Context, goal term.Term, previous *subst.Substitution, retrieveOnly bool) (<-chan sched.Result, context.CancelFunc, error) {
	if insideTask(ctx) {
		return nil, nil, ErrReentrantProve
	}
	if previous == nil {
		previous = subst.New()
	}
	cctx, cancel := context.WithCancel(ctx)
	taskCtx := withTask(WithKnowledgeBase(cctx, kbase))
	kbase.logger.Debug("proving", zap.Stringer("goal", goal), zap.Bool("retrieve_only", retrieveOnly))
	return kbase.proveStream(taskCtx, goal, true, previous, retrieveOnly), cancel, nil
}

// proveAsync is the internal recursive form available to a Prover or
// Listener handler already running inside a task: no reentrancy check,
// since the caller is already on the scheduler.
func (kbase *KnowledgeBase) proveAsync(ctx context.Context, goal term.Term, truth bool, previous *subst.Substitution) (<-chan sched.Result, context.CancelFunc, error) {
	if previous == nil {
		previous = subst.New()
	}
	cctx, cancel := context.WithCancel(ctx)
	return kbase.proveStream(withTask(cctx), goal, truth, previous, false), cancel, nil
}

func (kbase *KnowledgeBase) proveStream(ctx context.Context, goal term.Term, truth bool, previous *subst.Substitution, retrieveOnly bool) <-chan sched.Result {
	sources := []sched.Source{asSource(ctx, kbase.retriever, goal, truth, previous, kbase)}
	if !retrieveOnly {
		for _, p := range kbase.GetProversFor(goal) {
			sources = append(sources, asSource(ctx, p, goal, truth, previous, kbase))
		}
	}
	return sched.Multiplex(ctx, kbase.bufferSize, sources...)
}
