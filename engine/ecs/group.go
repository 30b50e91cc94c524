package ecs

import "slices"

// groupBase is the type-erased hook every owned group registers with the
// Store so that ordinary Add/Remove calls can maintain the group's prefix
// invariant in O(1) amortized without the Store knowing which concrete
// types any given group owns.
type groupBase interface {
	onAdd(s *Store, e Entity, id ComponentID)
	onRemove(s *Store, e Entity, id ComponentID)
}

// Group2 maintains a contiguous prefix, of length Len, across pool A's and
// pool B's dense arrays: the first Len entries of each equal the same set
// of entities, and every one of them has A, B, every Get-filter component
// and none of the Exclude components. Group2 requires at least two owned
// types, matching the spec's rejection of single-component and
// exclusion-only groups.
type Group2[A, B any] struct {
	store   *Store
	get     []ComponentID
	exclude []ComponentID
	length  int
}

// NewGroup2 creates (or, on a later call with the same owned types and the
// same get/exclude lists, simply returns the already-materialized) group
// owning A and B, additionally requiring every component in get and
// excluding every component in exclude. Creation re-sorts both owned pools
// so their first Len entries already satisfy the invariant.
func NewGroup2[A, B any](s *Store, get, exclude []ComponentID) *Group2[A, B] {
	for _, existing := range s.groupsFor(IDOf[A](s)) {
		if g, ok := existing.(*Group2[A, B]); ok && slices.Equal(g.get, get) && slices.Equal(g.exclude, exclude) {
			return g
		}
	}
	g := &Group2[A, B]{store: s, get: get, exclude: exclude}
	g.materialize()
	s.registerGroup(g, IDOf[A](s), IDOf[B](s))
	s.registerGroup(g, get...)
	s.registerGroup(g, exclude...)
	return g
}

func (g *Group2[A, B]) matches(e Entity) bool {
	s := g.store
	if !Has[A](s, e) || !Has[B](s, e) {
		return false
	}
	for _, id := range g.get {
		if int(id) >= len(s.pools) || s.pools[id] == nil || !s.pools[id].has(e) {
			return false
		}
	}
	return !excluded(s, e, g.exclude)
}

func (g *Group2[A, B]) materialize() {
	poolA := poolFor[A](g.store)
	poolB := poolFor[B](g.store)
	ents := append([]Entity(nil), poolA.entities()...)
	k := 0
	for _, e := range ents {
		if g.matches(e) {
			poolA.moveToFront(e, k)
			poolB.moveToFront(e, k)
			k++
		}
	}
	g.length = k
}

// onAdd is called after every Add[T] on the store. For an owned or get
// type, e is swapped into the prefix boundary if it now fully satisfies
// the group. For an exclude type, constructing it can only ever disqualify
// e, so an e currently in the prefix is evicted instead.
func (g *Group2[A, B]) onAdd(s *Store, e Entity, id ComponentID) {
	if containsID(g.exclude, id) {
		if g.inPrefix(e) {
			g.length--
			poolFor[A](s).moveToFront(e, g.length)
			poolFor[B](s).moveToFront(e, g.length)
		}
		return
	}
	if g.inPrefix(e) {
		return
	}
	if !g.matches(e) {
		return
	}
	poolFor[A](s).moveToFront(e, g.length)
	poolFor[B](s).moveToFront(e, g.length)
	g.length++
}

// onRemove is called before every Remove[T] on the store. For an owned or
// get type, e is about to stop satisfying the group if it is currently in
// the prefix, so it is swapped out and the prefix shrinks. For an exclude
// type, destroying it can only ever (re-)qualify e, so an e not currently
// in the prefix is admitted if dropping this one exclude component would
// satisfy the group.
func (g *Group2[A, B]) onRemove(s *Store, e Entity, id ComponentID) {
	if containsID(g.exclude, id) {
		if g.inPrefix(e) {
			return
		}
		if !Has[A](s, e) || !Has[B](s, e) {
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
		g.length++
		return
	}
	if !g.inPrefix(e) {
		return
	}
	g.length--
	poolFor[A](s).moveToFront(e, g.length)
	poolFor[B](s).moveToFront(e, g.length)
}

func (g *Group2[A, B]) inPrefix(e Entity) bool {
	poolA := poolFor[A](g.store)
	pos := poolA.slot(e)
	return pos != -1 && int(pos) < g.length
}

// Len returns the current prefix length: the number of entities satisfying
// the group right now.
func (g *Group2[A, B]) Len() int { return g.length }

// Entities returns the owned prefix of pool A, which by invariant is the
// same set of entities as pool B's prefix of the same length.
func (g *Group2[A, B]) Entities() []Entity {
	return poolFor[A](g.store).entities()[:g.length]
}

// Each visits every entity currently in the group's prefix along with its
// A and B components.
func (g *Group2[A, B]) Each(fn func(Entity, *A, *B)) {
	poolA := poolFor[A](g.store)
	poolB := poolFor[B](g.store)
	for i := 0; i < g.length; i++ {
		e := poolA.dense[i]
		fn(e, &poolA.data[i], &poolB.data[i])
	}
}
