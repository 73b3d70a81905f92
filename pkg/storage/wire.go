package storage

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/google/uuid"

	"github.com/corvidlabs/proofkit/pkg/term"
)

// wireTerm is the serializable shadow of a term.Term used to persist
// formulas to the bolt backend. No example in the corpus carries a
// term/AST serialization library, so this wire format is hand-rolled
// over the standard library's encoding/gob rather than grounded on a
// third-party dependency (see DESIGN.md).
type wireTerm struct {
	Kind     byte // 'v' variable, 'c' constant, 'w' wrapper, 'e' expression
	VarID    int
	Name     string
	Wrapped  interface{}
	Children []wireTerm
}

// wireRecord is the unit actually stored per bolt key: the encoded
// formula plus a generated identifier independent of the bucket's
// sequence-numbered key, so a formula keeps a stable ID even if the
// backend is ever migrated to key by something other than insertion
// order.
type wireRecord struct {
	ID   string
	Term wireTerm
}

func init() {
	gob.Register("")
	gob.Register(0)
	gob.Register(int64(0))
	gob.Register(float64(0))
	gob.Register(false)
}

// encodeTerm flattens t into a wireTerm, assigning a small integer to
// each distinct Variable so shared identity within a single formula
// round-trips; identity across separately-stored formulas is not
// preserved, since the knowledge base re-normalizes every candidate it
// retrieves from storage before unifying against it anyway.
func encodeTerm(t term.Term) wireTerm {
	ids := make(map[*term.Variable]int)
	return encodeWithIDs(t, ids)
}

func encodeWithIDs(t term.Term, ids map[*term.Variable]int) wireTerm {
	switch v := t.(type) {
	case *term.Variable:
		id, ok := ids[v]
		if !ok {
			id = len(ids)
			ids[v] = id
		}
		return wireTerm{Kind: 'v', VarID: id, Name: v.Name()}
	case *term.Constant:
		return wireTerm{Kind: 'c', Name: v.String()}
	case *term.Wrapper:
		return wireTerm{Kind: 'w', Wrapped: v.Value()}
	case *term.Expression:
		children := make([]wireTerm, len(v.Children()))
		for i, c := range v.Children() {
			children[i] = encodeWithIDs(c, ids)
		}
		return wireTerm{Kind: 'e', Children: children}
	default:
		panic(fmt.Sprintf("storage: cannot encode term of type %T", t))
	}
}

// decodeTerm rebuilds a term.Term from a wireTerm, minting fresh
// Variables from a throwaway Language scoped to this single decode so
// that repeated VarIDs within the blob resolve to the same Variable.
// Constants are interned through consts so a constant decoded from the
// backend compares equal (by pointer, per term.Constant's identity
// semantics) to the same-named constant already live in the caller's
// knowledge base.
func decodeTerm(w wireTerm, consts *term.ConstantSource) term.Term {
	src := term.NewVariableSource(term.NewLanguage("storage.decode"))
	byID := make(map[int]*term.Variable)
	return decodeWithIDs(w, src, byID, consts)
}

func decodeWithIDs(w wireTerm, src *term.VariableSource, byID map[int]*term.Variable, consts *term.ConstantSource) term.Term {
	switch w.Kind {
	case 'v':
		v, ok := byID[w.VarID]
		if !ok {
			v = src.Fresh(w.Name)
			byID[w.VarID] = v
		}
		return v
	case 'c':
		return consts.Intern(w.Name)
	case 'w':
		return term.NewWrapper(w.Wrapped)
	case 'e':
		children := make([]term.Term, len(w.Children))
		for i, c := range w.Children {
			children[i] = decodeWithIDs(c, src, byID, consts)
		}
		return term.NewExpression(children...)
	default:
		panic(fmt.Sprintf("storage: corrupt wire term kind %q", w.Kind))
	}
}

// marshalRecord encodes t together with a freshly minted UUID
// identifying this stored formula.
func marshalRecord(t term.Term) ([]byte, error) {
	rec := wireRecord{ID: uuid.NewString(), Term: encodeTerm(t)}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// unmarshalRecord decodes a stored record, returning the term and its
// stable identifier.
func unmarshalRecord(data []byte, consts *term.ConstantSource) (term.Term, string, error) {
	var rec wireRecord
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rec); err != nil {
		return nil, "", err
	}
	return decodeTerm(rec.Term, consts), rec.ID, nil
}
