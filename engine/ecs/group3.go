package ecs

// Group3 is Group2 generalized to three owned types; see Group2 for the
// invariant and algorithm this maintains.
type Group3[A, B, C any] struct {
	store   *Store
	get     []ComponentID
	exclude []ComponentID
	length  int
}

// NewGroup3 creates a group owning A, B and C.
func NewGroup3[A, B, C any](s *Store, get, exclude []ComponentID) *Group3[A, B, C] {
	g := &Group3[A, B, C]{store: s, get: get, exclude: exclude}
	g.materialize()
	s.registerGroup(g, IDOf[A](s), IDOf[B](s), IDOf[C](s))
	s.registerGroup(g, get...)
	s.registerGroup(g, exclude...)
	return g
}

func (g *Group3[A, B, C]) matches(e Entity) bool {
	s := g.store
	if !Has[A](s, e) || !Has[B](s, e) || !Has[C](s, e) {
		return false
	}
	for _, id := range g.get {
		if int(id) >= len(s.pools) || s.pools[id] == nil || !s.pools[id].has(e) {
			return false
		}
	}
	return !excluded(s, e, g.exclude)
}

func (g *Group3[A, B, C]) materialize() {
	poolA, poolB, poolC := poolFor[A](g.store), poolFor[B](g.store), poolFor[C](g.store)
	ents := append([]Entity(nil), poolA.entities()...)
	k := 0
	for _, e := range ents {
		if g.matches(e) {
			poolA.moveToFront(e, k)
			poolB.moveToFront(e, k)
			poolC.moveToFront(e, k)
			k++
		}
	}
	g.length = k
}

// onAdd mirrors Group2.onAdd: an exclude-type construct can only evict, an
// owned/get-type construct can only admit.
func (g *Group3[A, B, C]) onAdd(s *Store, e Entity, id ComponentID) {
	if containsID(g.exclude, id) {
		if g.inPrefix(e) {
			g.length--
			poolFor[A](s).moveToFront(e, g.length)
			poolFor[B](s).moveToFront(e, g.length)
			poolFor[C](s).moveToFront(e, g.length)
		}
		return
	}
	if g.inPrefix(e) || !g.matches(e) {
		return
	}
	poolFor[A](s).moveToFront(e, g.length)
	poolFor[B](s).moveToFront(e, g.length)
	poolFor[C](s).moveToFront(e, g.length)
	g.length++
}

// onRemove mirrors Group2.onRemove: an exclude-type destruct can only
// admit, an owned/get-type destruct can only evict.
func (g *Group3[A, B, C]) onRemove(s *Store, e Entity, id ComponentID) {
	if containsID(g.exclude, id) {
		if g.inPrefix(e) {
			return
		}
		if !Has[A](s, e) || !Has[B](s, e) || !Has[C](s, e) {
			return
		}
		for _, gid := range g.get {
			if int(gid) >= len(s.pools) || s.pools[gid] == nil || !s.pools[gid].has(e) {
				return
			}
		}
		if excludedIgnoring(s, e, g.exclude, id) {
			return
		}
		poolFor[A](s).moveToFront(e, g.length)
		poolFor[B](s).moveToFront(e, g.length)
		poolFor[C](s).moveToFront(e, g.length)
		g.length++
		return
	}
	if !g.inPrefix(e) {
		return
	}
	g.length--
	poolFor[A](s).moveToFront(e, g.length)
	poolFor[B](s).moveToFront(e, g.length)
	poolFor[C](s).moveToFront(e, g.length)
}

func (g *Group3[A, B, C]) inPrefix(e Entity) bool {
	pos := poolFor[A](g.store).slot(e)
	return pos != -1 && int(pos) < g.length
}

// Len returns the current prefix length.
func (g *Group3[A, B, C]) Len() int { return g.length }

// Each visits every entity currently in the group's prefix along with its
// A, B and C components.
func (g *Group3[A, B, C]) Each(fn func(Entity, *A, *B, *C)) {
	poolA, poolB, poolC := poolFor[A](g.store), poolFor[B](g.store), poolFor[C](g.store)
	for i := 0; i < g.length; i++ {
		e := poolA.dense[i]
		fn(e, &poolA.data[i], &poolB.data[i], &poolC.data[i])
	}
}
