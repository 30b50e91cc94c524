package ecs

import (
	"hash/fnv"
	"reflect"
)

// ComponentID is the dense, stable integer assigned to a component type the
// first time it is used against a given Store.
type ComponentID uint32

// typeHash is the content-addressed identity of a component type: the FNV
// hash of its fully qualified name. Two reflect.Type values for the same
// named type in the same binary always produce the same hash, which is the
// property the type-sequence map relies on to stay stable across call
// sites that each saw the type independently.
type typeHash uint64

func hashType(t reflect.Type) typeHash {
	h := fnv.New64a()
	_, _ = h.Write([]byte(t.PkgPath()))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(t.Name()))
	return typeHash(h.Sum64())
}

// typeSequence is the per-Store map from a component type's stable hash to
// its dense index. It is the only globally-visible-looking state the store
// carries, but it lives on the Store value rather than a package global so
// that two Stores in the same process never share component numbering.
type typeSequence struct {
	hashToID map[typeHash]ComponentID
	ids      []typeHash // ids[ComponentID] = hash, for debugging/Visit
}

func newTypeSequence() typeSequence {
	return typeSequence{hashToID: make(map[typeHash]ComponentID, 16)}
}

// sequenceFor returns the stable ComponentID for T, assigning the next
// dense integer the first time T is observed by this store.
func sequenceFor[T any](s *typeSequence) ComponentID {
	h := hashType(reflect.TypeOf((*T)(nil)).Elem())
	if id, ok := s.hashToID[h]; ok {
		return id
	}
	id := ComponentID(len(s.ids))
	s.hashToID[h] = id
	s.ids = append(s.ids, h)
	return id
}
