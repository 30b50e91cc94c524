package ecs

import (
	"testing"

	"github.com/NIKEA-SOFT/HelenaSystems/engine/bus"
)

type Pos struct{ X, Y int }
type Vel struct{ X, Y int }
type Tag struct{}

func newTestStore() *Store {
	return NewStore(bus.New())
}

func TestCreateGetView(t *testing.T) {
	s := newTestStore()
	e := s.Create()
	Add[Pos](s, e, Pos{1, 2})
	Add[Vel](s, e, Vel{3, 4})

	var got []Entity
	v := NewView2[Pos, Vel](s)
	v.Each(func(ent Entity, p *Pos, vel *Vel) {
		got = append(got, ent)
		if *p != (Pos{1, 2}) || *vel != (Vel{3, 4}) {
			t.Fatalf("unexpected components: %+v %+v", p, vel)
		}
	})
	if len(got) != 1 || got[0] != e {
		t.Fatalf("expected exactly [%v], got %v", e, got)
	}

	Remove[Vel](s, e)
	empty := true
	NewView2[Pos, Vel](s).Each(func(Entity, *Pos, *Vel) { empty = false })
	if !empty {
		t.Fatal("expected view2 to be empty after removing Vel")
	}

	var solo []Entity
	NewView1[Pos](s).Each(func(ent Entity, p *Pos) { solo = append(solo, ent) })
	if len(solo) != 1 || solo[0] != e {
		t.Fatalf("expected [%v], got %v", e, solo)
	}
}

func TestGenerationRecycling(t *testing.T) {
	s := newTestStore()
	e1 := s.Create()
	s.Destroy(e1)
	e2 := s.Create()

	if e1 == e2 {
		t.Fatal("expected a different entity value after recycling")
	}
	if s.Has(e1) {
		t.Fatal("expected stale entity to be invalid")
	}
	if !s.Has(e2) {
		t.Fatal("expected new entity to be valid")
	}
}

func TestGroupPrefixInvariant(t *testing.T) {
	s := newTestStore()
	ents := s.CreateRange(5)
	for _, e := range ents {
		Add[Pos](s, e, Pos{})
	}
	for i := 0; i < 3; i++ {
		Add[Vel](s, ents[i], Vel{})
	}

	g := NewGroup2[Pos, Vel](s, nil, nil)
	if g.Len() != 3 {
		t.Fatalf("expected group length 3, got %d", g.Len())
	}

	inGroup := map[Entity]bool{}
	g.Each(func(e Entity, p *Pos, v *Vel) { inGroup[e] = true })
	for i := 0; i < 3; i++ {
		if !inGroup[ents[i]] {
			t.Fatalf("expected %v in group prefix", ents[i])
		}
	}

	// Adding Vel to a 4th entity should extend the prefix by one.
	Add[Vel](s, ents[3], Vel{})
	if g.Len() != 4 {
		t.Fatalf("expected group length 4 after add, got %d", g.Len())
	}

	// Removing Vel from one member should shrink the prefix.
	Remove[Vel](s, ents[0])
	if g.Len() != 3 {
		t.Fatalf("expected group length 3 after remove, got %d", g.Len())
	}
}

func TestGroupExcludeEvictsAndReadmits(t *testing.T) {
	s := newTestStore()
	e := s.Create()
	Add[Pos](s, e, Pos{})
	Add[Vel](s, e, Vel{})

	tagID := IDOf[Tag](s)
	g := NewGroup2[Pos, Vel](s, nil, []ComponentID{tagID})
	if g.Len() != 1 {
		t.Fatalf("expected group length 1 before any Tag exists, got %d", g.Len())
	}

	// Constructing the excluded type on a grouped entity must evict it.
	Add[Tag](s, e, Tag{})
	if g.Len() != 0 {
		t.Fatalf("expected group length 0 after adding excluded Tag, got %d", g.Len())
	}

	// Destroying the excluded type must readmit the entity.
	Remove[Tag](s, e)
	if g.Len() != 1 {
		t.Fatalf("expected group length 1 after removing excluded Tag, got %d", g.Len())
	}

	var got []Entity
	g.Each(func(ent Entity, p *Pos, v *Vel) { got = append(got, ent) })
	if len(got) != 1 || got[0] != e {
		t.Fatalf("expected [%v] back in the group prefix, got %v", e, got)
	}
}

func TestTypeSequenceStable(t *testing.T) {
	s := newTestStore()
	idPos1 := IDOf[Pos](s)
	idVel := IDOf[Vel](s)
	idPos2 := IDOf[Pos](s)

	if idPos1 != idPos2 {
		t.Fatalf("expected stable ID for repeated queries of Pos: %d != %d", idPos1, idPos2)
	}
	if idPos1 == idVel {
		t.Fatal("expected distinct IDs for distinct types")
	}
}

func TestEventOrdering(t *testing.T) {
	s := newTestStore()
	var addSeenAfterStorage, removeSeenWhilePresent bool

	bus.Subscribe(s.Bus(), func(ev AddComponentEvent[Pos]) {
		addSeenAfterStorage = Has[Pos](s, ev.Entity)
	})
	bus.Subscribe(s.Bus(), func(ev RemoveComponentEvent[Pos]) {
		removeSeenWhilePresent = Has[Pos](s, ev.Entity)
	})

	e := s.Create()
	Add[Pos](s, e, Pos{})
	if !addSeenAfterStorage {
		t.Fatal("AddComponentEvent handler should observe the component as already queryable")
	}

	Remove[Pos](s, e)
	if !removeSeenWhilePresent {
		t.Fatal("RemoveComponentEvent handler should observe the component before it is erased")
	}
	if Has[Pos](s, e) {
		t.Fatal("component should be gone after Remove returns")
	}
}

func TestDestroyOrderAndOrphans(t *testing.T) {
	s := newTestStore()
	var events []string
	bus.Subscribe(s.Bus(), func(ev RemoveComponentEvent[Pos]) { events = append(events, "removecomponent") })
	bus.Subscribe(s.Bus(), func(ev RemoveEntityEvent) { events = append(events, "removeentity") })

	e := s.Create()
	Add[Pos](s, e, Pos{})
	s.Destroy(e)

	if len(events) != 2 || events[0] != "removeentity" || events[1] != "removecomponent" {
		t.Fatalf("unexpected event order: %v", events)
	}

	e2 := s.Create()
	var orphans []Entity
	s.EachOrphans(func(o Entity) { orphans = append(orphans, o) })
	if len(orphans) != 1 || orphans[0] != e2 {
		t.Fatalf("expected only %v to be an orphan, got %v", e2, orphans)
	}
}

func TestClearTypeFansOutExplicitly(t *testing.T) {
	s := newTestStore()
	e := s.Create()
	Add[Pos](s, e, Pos{})
	Add[Vel](s, e, Vel{})

	ClearType2[Pos, Vel](s)
	if Has[Pos](s, e) || Has[Vel](s, e) {
		t.Fatal("expected both component types cleared")
	}
}

func TestCreateHintRejectsLiveIndex(t *testing.T) {
	s := newTestStore()
	e := s.Create()
	if _, err := s.CreateHint(e); err != ErrEntityAlreadyExists {
		t.Fatalf("expected ErrEntityAlreadyExists, got %v", err)
	}
}
