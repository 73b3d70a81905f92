// Package storage defines the external storage-backend contract — the
// persistent/source-of-truth collaborator the inference engine treats
// as a swappable dependency — plus two concrete backends: an in-memory
// one grounded on gitrdm-gokando/pkg/minikanren's fact_store.go/pldb.go
// indexing style, and a github.com/boltdb/bolt-backed one that actually
// supports transactions.
package storage

import (
	"errors"

	"github.com/corvidlabs/proofkit/pkg/term"
)

// ErrNoTransactionSupport is returned by Begin when the backend does not
// implement transactions: Transaction/Commit/Rollback are only usable
// when the backend advertises support via SupportsTransactions.
var ErrNoTransactionSupport = errors.New("storage: backend does not support transactions")

// Stored pairs a formula with backend-specific metadata.
type Stored struct {
	Term     term.Term
	Metadata map[string]interface{}
}

// Backend is the storage collaborator the knowledge base depends on.
// Implementations need not order writes that happen during a concurrent
// proof search against that search's own reads.
type Backend interface {
	// SearchUnifiable returns a candidate superset of stored formulas
	// that might unify with query; the caller always re-verifies by
	// unification.
	SearchUnifiable(query term.Term) ([]Stored, error)

	// Add persists formulas, already normalized by the caller.
	Add(formulas ...term.Term) error

	// Len returns the number of stored formulas.
	Len() (int, error)

	// SupportsTransactions reports whether Begin can succeed.
	SupportsTransactions() bool

	// Begin starts a transaction scoping subsequent Add calls, returning
	// ErrNoTransactionSupport if SupportsTransactions is false.
	Begin() (Transaction, error)
}

// Transaction groups Add calls atomically. Exactly one of Commit or
// Rollback must be called to release it.
type Transaction interface {
	Add(formulas ...term.Term) error
	Commit() error
	Rollback() error
}

// WithTransaction runs fn against a new transaction on backend, committing
// if fn returns nil and rolling back otherwise — including on panic, which
// is re-raised after rollback so the backend is never left half-open on
// any exit path.
func WithTransaction(backend Backend, fn func(tx Transaction) error) (err error) {
	tx, err := backend.Begin()
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return tx.Commit()
}
