package storage

import (
	"fmt"

	bolt "github.com/boltdb/bolt"
	"github.com/pkg/errors"

	"github.com/corvidlabs/proofkit/pkg/term"
)

var formulasBucket = []byte("formulas")

// Bolt is a durable backend on top of github.com/boltdb/bolt. It has no
// secondary index: SearchUnifiable decodes every stored formula and
// hands the caller the full set as a superset candidate, which is
// correct (the caller always re-verifies by unification) if slower
// than Memory's discrimination-tree lookup for large knowledge bases.
type Bolt struct {
	db     *bolt.DB
	consts *term.ConstantSource
}

// OpenBolt opens (creating if necessary) a bolt database at path and
// prepares its formulas bucket. consts is the constant interning table
// shared with the rest of the knowledge base so decoded constants
// compare equal to ones already in memory.
func OpenBolt(path string, consts *term.ConstantSource) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "storage: open bolt database")
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(formulasBucket)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "storage: create formulas bucket")
	}
	return &Bolt{db: db, consts: consts}, nil
}

// Close releases the underlying database file.
func (b *Bolt) Close() error {
	return b.db.Close()
}

func (b *Bolt) SearchUnifiable(query term.Term) ([]Stored, error) {
	var out []Stored
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(formulasBucket)
		return bucket.ForEach(func(_, v []byte) error {
			t, id, err := unmarshalRecord(v, b.consts)
			if err != nil {
				return err
			}
			out = append(out, Stored{Term: t, Metadata: map[string]interface{}{"id": id}})
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "storage: search bolt backend")
	}
	return out, nil
}

func (b *Bolt) Add(formulas ...term.Term) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return addTo(tx.Bucket(formulasBucket), formulas...)
	})
}

// addTo persists each formula under a zero-padded sequence key, which
// keeps bucket iteration in insertion order; the formula's own stable
// identifier (wireRecord.ID, a github.com/google/uuid value) travels
// inside the encoded record itself rather than as the key, since the
// key's only job here is ordering, not identity.
func addTo(bucket *bolt.Bucket, formulas ...term.Term) error {
	for _, f := range formulas {
		data, err := marshalRecord(f)
		if err != nil {
			return errors.Wrap(err, "storage: encode formula")
		}
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		key := []byte(fmt.Sprintf("%020d", seq))
		if err := bucket.Put(key, data); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bolt) Len() (int, error) {
	n := 0
	err := b.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(formulasBucket).Stats().KeyN
		return nil
	})
	return n, err
}

func (b *Bolt) SupportsTransactions() bool { return true }

func (b *Bolt) Begin() (Transaction, error) {
	tx, err := b.db.Begin(true)
	if err != nil {
		return nil, errors.Wrap(err, "storage: begin bolt transaction")
	}
	return &boltTx{tx: tx}, nil
}

// boltTx wraps a writable *bolt.Tx. Add stages writes directly into the
// transaction's view of the bucket; they become visible to other
// readers only on Commit, matching bolt's own MVCC semantics.
type boltTx struct {
	tx   *bolt.Tx
	done bool
}

func (t *boltTx) Add(formulas ...term.Term) error {
	return addTo(t.tx.Bucket(formulasBucket), formulas...)
}

func (t *boltTx) Commit() error {
	if t.done {
		return errors.New("storage: transaction already closed")
	}
	t.done = true
	return t.tx.Commit()
}

func (t *boltTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.tx.Rollback()
}
