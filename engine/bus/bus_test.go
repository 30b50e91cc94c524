package bus

import "testing"

type pingEvent struct{ N int }

func TestSubscribePublishUnsubscribe(t *testing.T) {
	b := New()
	var got []int
	tok := Subscribe(b, func(e pingEvent) { got = append(got, e.N) })

	Publish(b, pingEvent{N: 1})
	Publish(b, pingEvent{N: 2})
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("unexpected deliveries: %v", got)
	}

	b.Unsubscribe(tok)
	Publish(b, pingEvent{N: 3})
	if len(got) != 2 {
		t.Fatalf("expected no further deliveries after unsubscribe, got %v", got)
	}
	if n := Len[pingEvent](b); n != 0 {
		t.Fatalf("expected 0 remaining handlers, got %d", n)
	}
}

func TestPublishOrderAndPanicIsolation(t *testing.T) {
	b := New()
	var order []int
	Subscribe(b, func(e pingEvent) { order = append(order, 1); panic("boom") })
	Subscribe(b, func(e pingEvent) { order = append(order, 2) })

	Publish(b, pingEvent{N: 0})
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("expected both handlers to run despite panic, got %v", order)
	}
}
