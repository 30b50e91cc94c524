// Package ecs is the in-memory entity-component store: type-erased
// component pools keyed by a stable per-type sequence, sparse-set storage
// for O(1) add/remove/has, lazy views over include/exclude predicates, and
// owned groups that keep matching entities packed into a contiguous prefix.
// Every mutation that the rest of the engine cares about is mirrored onto a
// bus.Bus as a synchronous lifecycle event.
package ecs

import "fmt"

// indexBits is the width of the index half of a packed Entity; the
// remaining bits hold the generation counter.
const indexBits = 20

const (
	indexMask = 1<<indexBits - 1
	genMask   = ^uint32(indexMask)
)

// Entity is an opaque 32-bit identifier: the low indexBits bits are the
// slot index, the remaining bits are a generation counter bumped every time
// the slot is recycled. Null represents "no entity" and is never returned
// by Create.
type Entity uint32

// Null is the sentinel "no entity" value. It is never returned by Create
// and is distinct from every valid (index, generation) pairing because its
// index bits are all set, which the allocator never hands out.
const Null Entity = Entity(indexMask | genMask)

// index returns the slot index packed into e.
func (e Entity) index() uint32 { return uint32(e) & indexMask }

// generation returns the generation counter packed into e.
func (e Entity) generation() uint32 { return (uint32(e) & genMask) >> indexBits }

func pack(index, generation uint32) Entity {
	return Entity((generation<<indexBits)&genMask | (index & indexMask))
}

func (e Entity) String() string {
	return fmt.Sprintf("Entity(%d:%d)", e.index(), e.generation())
}
