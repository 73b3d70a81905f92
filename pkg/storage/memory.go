package storage

import (
	"sync"

	"github.com/corvidlabs/proofkit/pkg/index"
	"github.com/corvidlabs/proofkit/pkg/term"
)

// Memory is the default backend: an in-process index over the formulas
// it has been given, with no durability and no transaction support. It
// is grounded on gitrdm-gokando/pkg/minikanren's fact_store.go and
// pldb.go, generalized from position-keyed buckets to the shared
// pkg/index.Index discrimination tree.
type Memory struct {
	mu    sync.RWMutex
	ix    *index.Index[term.Term]
	count int
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{ix: index.New[term.Term]()}
}

func (m *Memory) SearchUnifiable(query term.Term) ([]Stored, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hits := m.ix.Retrieve(index.MakeKey(query))
	out := make([]Stored, len(hits))
	for i, t := range hits {
		out[i] = Stored{Term: t}
	}
	return out, nil
}

func (m *Memory) Add(formulas ...term.Term) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range formulas {
		m.ix.Add(index.MakeKey(f), f)
		m.count++
	}
	return nil
}

func (m *Memory) Len() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.count, nil
}

func (m *Memory) SupportsTransactions() bool { return false }

func (m *Memory) Begin() (Transaction, error) {
	return nil, ErrNoTransactionSupport
}
