package ecs

import (
	"github.com/NIKEA-SOFT/HelenaSystems/engine/bus"
	"github.com/NIKEA-SOFT/HelenaSystems/engine/consts"
	"github.com/NIKEA-SOFT/HelenaSystems/engine/logx"
)

// Store is the set of all component pools plus the entity allocator for one
// world. It owns every component exclusively; nothing outside the package
// holds a component by value across a tick boundary. A Store is not safe
// for concurrent use — callers drive it from a single goroutine, same as
// the rest of the engine core.
type Store struct {
	alloc           allocator
	seq             typeSequence
	pools           []erasedPool
	groupsByCompID  map[ComponentID][]groupBase
	bus             *bus.Bus
}

// NewStore creates an empty Store that publishes its lifecycle events onto b.
func NewStore(b *bus.Bus) *Store {
	return &Store{seq: newTypeSequence(), bus: b, groupsByCompID: make(map[ComponentID][]groupBase)}
}

// registerGroup hooks g to fire whenever any of the given component types
// is added to or removed from an entity.
func (s *Store) registerGroup(g groupBase, ids ...ComponentID) {
	for _, id := range ids {
		s.groupsByCompID[id] = append(s.groupsByCompID[id], g)
	}
}

func (s *Store) groupsFor(id ComponentID) []groupBase {
	return s.groupsByCompID[id]
}

// Bus returns the event bus this store publishes lifecycle events onto.
func (s *Store) Bus() *bus.Bus { return s.bus }

// Create allocates a fresh entity with no components and publishes
// CreateEntityEvent.
func (s *Store) Create() Entity {
	e := s.alloc.create()
	bus.Publish(s.bus, CreateEntityEvent{Entity: e})
	if consts.DEBUG_ECS_EVENTS {
		logx.Debugf("ecs: created entity %v", e)
	}
	return e
}

// CreateHint attempts to allocate an entity whose index matches hint's. It
// fails with ErrEntityAlreadyExists if that index is currently live.
func (s *Store) CreateHint(hint Entity) (Entity, error) {
	e, err := s.alloc.createHint(hint)
	if err != nil {
		return Null, err
	}
	bus.Publish(s.bus, CreateEntityEvent{Entity: e})
	return e, nil
}

// CreateRange bulk-allocates n entities, firing one CreateEntityEvent per
// entity in allocation order.
func (s *Store) CreateRange(n int) []Entity {
	out := make([]Entity, n)
	for i := range out {
		out[i] = s.Create()
	}
	return out
}

// Has reports whether e refers to a currently live entity.
func (s *Store) Has(e Entity) bool { return s.alloc.has(e) }

// Size returns the length of the allocator's slot table: every index handed
// out so far (alive or recycled), plus slots added by Reserve and indices
// skipped over by CreateHint that were never handed out.
func (s *Store) Size() int { return s.alloc.size() }

// Alive returns the number of currently live entities.
func (s *Store) Alive() int { return s.alloc.alive() }

// Reserve pre-grows the entity allocator to hold at least n slots.
func (s *Store) Reserve(n int) { s.alloc.reserve(n) }

// Destroy fires RemoveEntityEvent while e is still fully valid, then tears
// down every component it carries (each firing its own RemoveComponentEvent
// before the storage mutation that erases it), then frees the slot and
// bumps its generation.
func (s *Store) Destroy(e Entity) {
	if !s.alloc.has(e) {
		return
	}
	bus.Publish(s.bus, RemoveEntityEvent{Entity: e})
	if consts.DEBUG_ECS_EVENTS {
		logx.Debugf("ecs: destroying entity %v", e)
	}
	for id, p := range s.pools {
		if p == nil || !p.has(e) {
			continue
		}
		for _, g := range s.groupsFor(ComponentID(id)) {
			g.onRemove(s, e, ComponentID(id))
		}
		p.removeNotify(s, e)
	}
	s.alloc.destroy(e)
}

// DestroyRange destroys every entity in es, in order, with the same
// per-entity contract as Destroy.
func (s *Store) DestroyRange(es []Entity) {
	for _, e := range es {
		s.Destroy(e)
	}
}

// Clear destroys every currently live entity.
func (s *Store) Clear() {
	for _, e := range s.liveEntities() {
		s.Destroy(e)
	}
}

func (s *Store) liveEntities() []Entity {
	var out []Entity
	for i := 0; i < s.alloc.size(); i++ {
		idx := uint32(i)
		slot := s.alloc.slots[idx]
		if slot.alive {
			out = append(out, pack(idx, slot.generation))
		}
	}
	return out
}

// Each calls fn for every currently live entity.
func (s *Store) Each(fn func(Entity)) {
	for _, e := range s.liveEntities() {
		fn(e)
	}
}

// EachOrphans calls fn for every currently live entity that has zero
// components attached.
func (s *Store) EachOrphans(fn func(Entity)) {
	for _, e := range s.liveEntities() {
		orphan := true
		for _, p := range s.pools {
			if p != nil && p.has(e) {
				orphan = false
				break
			}
		}
		if orphan {
			fn(e)
		}
	}
}

// Visit calls fn with the ComponentID of every component type attached to e.
func (s *Store) Visit(e Entity, fn func(ComponentID)) {
	for id, p := range s.pools {
		if p != nil && p.has(e) {
			fn(ComponentID(id))
		}
	}
}

// VisitTypes calls fn with every ComponentID known to the store, whether or
// not any live entity currently carries it.
func (s *Store) VisitTypes(fn func(ComponentID)) {
	for id, p := range s.pools {
		if p != nil {
			fn(ComponentID(id))
		}
	}
}

func (s *Store) ensurePool(id ComponentID) {
	if need := int(id) + 1 - len(s.pools); need > 0 {
		s.pools = append(s.pools, make([]erasedPool, need)...)
	}
}
