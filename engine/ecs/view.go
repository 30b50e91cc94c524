package ecs

// excluded reports whether e carries any of the given excluded component
// types.
func excluded(s *Store, e Entity, exclude []ComponentID) bool {
	for _, id := range exclude {
		if int(id) < len(s.pools) && s.pools[id] != nil && s.pools[id].has(e) {
			return true
		}
	}
	return false
}

// excludedIgnoring is excluded, but treats ignore as absent regardless of
// its actual pool membership. Groups use this while an exclude-type
// component is mid-removal: the Store still has it in the pool at the
// point onRemove fires, but the question being asked is "would e match
// once this specific component is gone".
func excludedIgnoring(s *Store, e Entity, exclude []ComponentID, ignore ComponentID) bool {
	for _, id := range exclude {
		if id == ignore {
			continue
		}
		if int(id) < len(s.pools) && s.pools[id] != nil && s.pools[id].has(e) {
			return true
		}
	}
	return false
}

func containsID(ids []ComponentID, id ComponentID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// View1 is a lazy, non-owning cursor over every entity that has a T and
// none of the excluded component types. It is invalidated by any
// structural mutation (add/remove) of T's pool made while iterating;
// callers should finish a pass before mutating.
type View1[T any] struct {
	pool    *pool[T]
	exclude []ComponentID
	store   *Store
	idx     int
}

// NewView1 creates a View1 over s, excluding entities carrying any of the
// given component types.
func NewView1[T any](s *Store, exclude ...ComponentID) *View1[T] {
	return &View1[T]{pool: poolFor[T](s), exclude: exclude, store: s, idx: -1}
}

// Next advances the cursor, returning false once exhausted.
func (v *View1[T]) Next() bool {
	for {
		v.idx++
		if v.idx >= len(v.pool.dense) {
			return false
		}
		e := v.pool.dense[v.idx]
		if !excluded(v.store, e, v.exclude) {
			return true
		}
	}
}

// Entity returns the entity at the cursor's current position.
func (v *View1[T]) Entity() Entity { return v.pool.dense[v.idx] }

// Get returns the current entity's T component.
func (v *View1[T]) Get() *T { return &v.pool.data[v.idx] }

// Each visits every matching (entity, *T) pair in dense order.
func (v *View1[T]) Each(fn func(Entity, *T)) {
	for v.Next() {
		fn(v.Entity(), v.Get())
	}
}

// View2 iterates entities that have both A and B and none of the excluded
// types. The shorter of A's and B's pools drives the scan.
type View2[A, B any] struct {
	getA    func(Entity) *A
	getB    func(Entity) *B
	driver  []Entity
	other   erasedPool
	exclude []ComponentID
	store   *Store
	idx     int
}

// NewView2 creates a View2 over s.
func NewView2[A, B any](s *Store, exclude ...ComponentID) *View2[A, B] {
	pa, pb := poolFor[A](s), poolFor[B](s)
	v := &View2[A, B]{exclude: exclude, store: s, idx: -1, getA: pa.get, getB: pb.get}
	if pa.size() <= pb.size() {
		v.driver, v.other = pa.entities(), pb
	} else {
		v.driver, v.other = pb.entities(), pa
	}
	return v
}

// Next advances the cursor.
func (v *View2[A, B]) Next() bool {
	for {
		v.idx++
		if v.idx >= len(v.driver) {
			return false
		}
		e := v.driver[v.idx]
		if v.other.has(e) && !excluded(v.store, e, v.exclude) {
			return true
		}
	}
}

// Entity returns the current entity.
func (v *View2[A, B]) Entity() Entity { return v.driver[v.idx] }

// Get returns pointers to the current entity's A and B components.
func (v *View2[A, B]) Get() (*A, *B) {
	e := v.Entity()
	return v.getA(e), v.getB(e)
}

// Each visits every matching (entity, *A, *B) triple.
func (v *View2[A, B]) Each(fn func(Entity, *A, *B)) {
	for v.Next() {
		a, b := v.Get()
		fn(v.Entity(), a, b)
	}
}

// View3 iterates entities that have A, B and C and none of the excluded
// types.
type View3[A, B, C any] struct {
	v2     *View2[A, B]
	poolC  *pool[C]
	store  *Store
}

// NewView3 creates a View3 over s.
func NewView3[A, B, C any](s *Store, exclude ...ComponentID) *View3[A, B, C] {
	return &View3[A, B, C]{v2: NewView2[A, B](s, exclude...), poolC: poolFor[C](s), store: s}
}

// Next advances the cursor.
func (v *View3[A, B, C]) Next() bool {
	for v.v2.Next() {
		if v.poolC.has(v.v2.Entity()) {
			return true
		}
	}
	return false
}

// Entity returns the current entity.
func (v *View3[A, B, C]) Entity() Entity { return v.v2.Entity() }

// Get returns pointers to the current entity's A, B and C components.
func (v *View3[A, B, C]) Get() (*A, *B, *C) {
	a, b := v.v2.Get()
	return a, b, v.poolC.get(v.v2.Entity())
}

// Each visits every matching (entity, *A, *B, *C) quadruple.
func (v *View3[A, B, C]) Each(fn func(Entity, *A, *B, *C)) {
	for v.Next() {
		a, b, c := v.Get()
		fn(v.Entity(), a, b, c)
	}
}
