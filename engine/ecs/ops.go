package ecs

import (
	"reflect"

	"github.com/NIKEA-SOFT/HelenaSystems/engine/bus"
	"github.com/NIKEA-SOFT/HelenaSystems/engine/consts"
	"github.com/NIKEA-SOFT/HelenaSystems/engine/logx"
)

// poolFor returns the pool[T] for s, creating it (and assigning T its
// ComponentID) the first time T is touched.
func poolFor[T any](s *Store) *pool[T] {
	id := sequenceFor[T](&s.seq)
	s.ensurePool(id)
	if s.pools[id] == nil {
		s.pools[id] = newPool[T]()
	}
	return s.pools[id].(*pool[T])
}

// IDOf returns the ComponentID assigned to T by s, assigning one if T has
// never been used against this store before.
func IDOf[T any](s *Store) ComponentID {
	return sequenceFor[T](&s.seq)
}

func publishAddComponent[T any](s *Store, e Entity) {
	bus.Publish(s.bus, AddComponentEvent[T]{Entity: e})
}

func publishRemoveComponent[T any](s *Store, e Entity) {
	bus.Publish(s.bus, RemoveComponentEvent[T]{Entity: e})
}

func typeNameOf[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().Name()
}

// Add constructs T in place on e and publishes AddComponentEvent[T] after
// the storage mutation, per the spec's "signal after storage change" rule
// for additions. e must be valid and must not already have a T.
func Add[T any](s *Store, e Entity, v T) *T {
	id := IDOf[T](s)
	p := poolFor[T](s)
	ptr := p.emplace(e, v)
	for _, g := range s.groupsFor(id) {
		g.onAdd(s, e, id)
	}
	publishAddComponent[T](s, e)
	if consts.DEBUG_ECS_EVENTS {
		logx.Debugf("ecs: entity %v: added %s", e, typeNameOf[T]())
	}
	return ptr
}

// Get returns a pointer to e's T component. e must be valid and must have
// a T; callers that are not sure should use TryGet.
func Get[T any](s *Store, e Entity) *T {
	return poolFor[T](s).get(e)
}

// TryGet returns a pointer to e's T component, or nil if e has none.
func TryGet[T any](s *Store, e Entity) *T {
	return poolFor[T](s).get(e)
}

// Has reports whether e has a T component.
func Has[T any](s *Store, e Entity) bool {
	return poolFor[T](s).has(e)
}

// Has2 reports whether e has both A and B.
func Has2[A, B any](s *Store, e Entity) bool {
	return Has[A](s, e) && Has[B](s, e)
}

// Has3 reports whether e has A, B and C.
func Has3[A, B, C any](s *Store, e Entity) bool {
	return Has[A](s, e) && Has[B](s, e) && Has[C](s, e)
}

// Any2 reports whether e has A or B (or both).
func Any2[A, B any](s *Store, e Entity) bool {
	return Has[A](s, e) || Has[B](s, e)
}

// Any3 reports whether e has A, B or C.
func Any3[A, B, C any](s *Store, e Entity) bool {
	return Has[A](s, e) || Has[B](s, e) || Has[C](s, e)
}

// Remove erases e's T component, if present, publishing
// RemoveComponentEvent[T] first. It is a no-op if e has no T.
func Remove[T any](s *Store, e Entity) {
	id := IDOf[T](s)
	p := poolFor[T](s)
	if !p.has(e) {
		return
	}
	for _, g := range s.groupsFor(id) {
		g.onRemove(s, e, id)
	}
	p.removeNotify(s, e)
	if consts.DEBUG_ECS_EVENTS {
		logx.Debugf("ecs: entity %v: removed %s", e, typeNameOf[T]())
	}
}

// ClearType removes T from every entity that has it.
func ClearType[T any](s *Store) {
	p := poolFor[T](s)
	for {
		ents := p.entities()
		if len(ents) == 0 {
			return
		}
		Remove[T](s, ents[len(ents)-1])
	}
}

// SizeOf returns the number of entities currently carrying a T.
func SizeOf[T any](s *Store) int {
	return poolFor[T](s).size()
}

// ReserveOf pre-grows T's pool to hold at least n components.
func ReserveOf[T any](s *Store, n int) {
	poolFor[T](s).reserve(n)
}
