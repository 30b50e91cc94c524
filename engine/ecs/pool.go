package ecs

// erasedPool is the type-erased face every concrete pool[T] presents to the
// Store so it can be kept in a single homogeneous slice indexed by
// ComponentID. Per-type operations take a generic parameter at the call
// site and project through this interface to reach the underlying pool.
type erasedPool interface {
	has(e Entity) bool
	remove(e Entity) bool
	removeNotify(s *Store, e Entity) bool
	size() int
	reserve(n int)
	clear()
	swap(a, b Entity)
	entities() []Entity
}

// pool[T] is a sparse set keyed by entity index, yielding dense-packed
// storage for T. sparse[e.index()] is the position of e inside dense/data,
// or -1 if e has no T. The forward (sparse->dense) and backward
// (dense->sparse, implicit via dense[i] itself) mappings always agree: dense
// is walked for iteration, sparse is used for O(1) lookup.
type pool[T any] struct {
	sparse []int32
	dense  []Entity
	data   []T
}

func newPool[T any]() *pool[T] {
	return &pool[T]{}
}

func (p *pool[T]) growSparse(index uint32) {
	if need := int(index) + 1 - len(p.sparse); need > 0 {
		grown := make([]int32, need)
		for i := range grown {
			grown[i] = -1
		}
		p.sparse = append(p.sparse, grown...)
	}
}

func (p *pool[T]) has(e Entity) bool {
	idx := e.index()
	return int(idx) < len(p.sparse) && p.sparse[idx] != -1 && p.dense[p.sparse[idx]] == e
}

func (p *pool[T]) slot(e Entity) int32 {
	idx := e.index()
	if int(idx) >= len(p.sparse) {
		return -1
	}
	return p.sparse[idx]
}

// emplace inserts e with value v. The caller must ensure e has no T yet.
func (p *pool[T]) emplace(e Entity, v T) *T {
	p.growSparse(e.index())
	pos := int32(len(p.dense))
	p.sparse[e.index()] = pos
	p.dense = append(p.dense, e)
	p.data = append(p.data, v)
	return &p.data[pos]
}

func (p *pool[T]) get(e Entity) *T {
	pos := p.slot(e)
	if pos == -1 {
		return nil
	}
	return &p.data[pos]
}

// remove erases e's component via swap-with-last, keeping dense packed.
// Returns false if e had no T.
func (p *pool[T]) remove(e Entity) bool {
	pos := p.slot(e)
	if pos == -1 {
		return false
	}
	last := int32(len(p.dense)) - 1
	if pos != last {
		movedEntity := p.dense[last]
		p.dense[pos] = movedEntity
		p.data[pos] = p.data[last]
		p.sparse[movedEntity.index()] = pos
	}
	p.dense = p.dense[:last]
	p.data = p.data[:last]
	p.sparse[e.index()] = -1
	return true
}

// removeNotify erases e's component after publishing RemoveComponentEvent[T]
// while the component is still present, matching the spec's signal-before-
// storage-change rule for removals.
func (p *pool[T]) removeNotify(s *Store, e Entity) bool {
	if !p.has(e) {
		return false
	}
	publishRemoveComponent[T](s, e)
	return p.remove(e)
}

func (p *pool[T]) size() int { return len(p.dense) }

func (p *pool[T]) reserve(n int) {
	if cap(p.dense) < n {
		grownDense := make([]Entity, len(p.dense), n)
		copy(grownDense, p.dense)
		p.dense = grownDense
		grownData := make([]T, len(p.data), n)
		copy(grownData, p.data)
		p.data = grownData
	}
}

func (p *pool[T]) clear() {
	p.sparse = nil
	p.dense = p.dense[:0]
	p.data = p.data[:0]
}

func (p *pool[T]) entities() []Entity { return p.dense }

// swap exchanges the dense-array positions of a and b without changing
// either entity's component values' identity; used by groups to shuffle
// entities across the owned-prefix boundary.
func (p *pool[T]) swap(a, b Entity) {
	pa, pb := p.slot(a), p.slot(b)
	if pa == -1 || pb == -1 {
		return
	}
	p.swapPositions(int(pa), int(pb))
}

// swapPositions exchanges whatever entities currently occupy dense
// positions i and j.
func (p *pool[T]) swapPositions(i, j int) {
	if i == j {
		return
	}
	ei, ej := p.dense[i], p.dense[j]
	p.dense[i], p.dense[j] = ej, ei
	p.data[i], p.data[j] = p.data[j], p.data[i]
	p.sparse[ei.index()], p.sparse[ej.index()] = int32(j), int32(i)
}

// moveToFront moves e to dense position k, swapping with whatever entity
// is currently there. It is a no-op if e is already at position k.
func (p *pool[T]) moveToFront(e Entity, k int) {
	pos := int(p.slot(e))
	p.swapPositions(pos, k)
}
