package transport

import (
	"testing"
	"time"
)

func waitEvent(t *testing.T, h Host, want EventType) Event {
	t.Helper()
	ev, ok := h.Service(time.Second)
	if !ok {
		t.Fatalf("timed out waiting for event %v", want)
	}
	if ev.Type != want {
		t.Fatalf("expected event %v, got %v", want, ev.Type)
	}
	return ev
}

func TestLoopbackConnectAndReceive(t *testing.T) {
	server, err := NewLoopbackServer(Config{IP: "127.0.0.1", Port: 7777})
	if err != nil {
		t.Fatal(err)
	}
	defer server.Close()

	client, err := NewLoopbackClient(Config{})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := client.Connect("127.0.0.1:7777"); err != nil {
		t.Fatal(err)
	}

	waitEvent(t, server, EventConnect)
	clientConnectEv := waitEvent(t, client, EventConnect)

	if err := clientConnectEv.Peer.Send(0, FlagReliable, []byte("hello")); err != nil {
		t.Fatal(err)
	}
	client.Flush()
	ev := waitEvent(t, server, EventReceive)
	if string(ev.Packet.Data) != "hello" {
		t.Fatalf("expected hello, got %q", ev.Packet.Data)
	}
	if ev.Packet.Flags != FlagReliable {
		t.Fatalf("expected reliable flag, got %v", ev.Packet.Flags)
	}
}

func TestLoopbackDuplicateAddress(t *testing.T) {
	server, err := NewLoopbackServer(Config{IP: "127.0.0.1", Port: 7778})
	if err != nil {
		t.Fatal(err)
	}
	defer server.Close()

	if _, err := NewLoopbackServer(Config{IP: "127.0.0.1", Port: 7778}); err == nil {
		t.Fatal("expected duplicate bind to fail")
	}
}

func TestLoopbackDisconnect(t *testing.T) {
	server, err := NewLoopbackServer(Config{IP: "127.0.0.1", Port: 7779})
	if err != nil {
		t.Fatal(err)
	}
	defer server.Close()
	client, _ := NewLoopbackClient(Config{})
	peer, err := client.Connect("127.0.0.1:7779")
	if err != nil {
		t.Fatal(err)
	}
	waitEvent(t, server, EventConnect)
	waitEvent(t, client, EventConnect)

	peer.DisconnectNow(42)
	ev := waitEvent(t, server, EventDisconnect)
	if ev.Data != 42 {
		t.Fatalf("expected disconnect data 42, got %d", ev.Data)
	}

	if err := peer.Send(0, FlagReliable, []byte("x")); err == nil {
		t.Fatal("expected send on disconnected peer to fail")
	}
}

func TestLoopbackDisconnectNowFlushesQueuedData(t *testing.T) {
	server, err := NewLoopbackServer(Config{IP: "127.0.0.1", Port: 7780})
	if err != nil {
		t.Fatal(err)
	}
	defer server.Close()
	client, _ := NewLoopbackClient(Config{})
	peer, err := client.Connect("127.0.0.1:7780")
	if err != nil {
		t.Fatal(err)
	}
	waitEvent(t, server, EventConnect)
	waitEvent(t, client, EventConnect)

	if err := peer.Send(0, FlagReliable, []byte("queued")); err != nil {
		t.Fatal(err)
	}
	peer.DisconnectNow(1)

	ev := waitEvent(t, server, EventReceive)
	if string(ev.Packet.Data) != "queued" {
		t.Fatalf("expected DisconnectNow to flush queued data, got %q", ev.Packet.Data)
	}
	waitEvent(t, server, EventDisconnect)
}

func TestLoopbackDisconnectDropsQueuedData(t *testing.T) {
	server, err := NewLoopbackServer(Config{IP: "127.0.0.1", Port: 7781})
	if err != nil {
		t.Fatal(err)
	}
	defer server.Close()
	client, _ := NewLoopbackClient(Config{})
	peer, err := client.Connect("127.0.0.1:7781")
	if err != nil {
		t.Fatal(err)
	}
	waitEvent(t, server, EventConnect)
	waitEvent(t, client, EventConnect)

	if err := peer.Send(0, FlagReliable, []byte("dropped")); err != nil {
		t.Fatal(err)
	}
	peer.Disconnect(2)

	ev := waitEvent(t, server, EventDisconnect)
	if ev.Data != 2 {
		t.Fatalf("expected disconnect data 2, got %d", ev.Data)
	}
	if _, ok := server.CheckEvents(); ok {
		t.Fatal("expected Disconnect to drop the queued send, not deliver it")
	}
}

func TestLoopbackCheckEventsNonBlocking(t *testing.T) {
	client, _ := NewLoopbackClient(Config{})
	if _, ok := client.CheckEvents(); ok {
		t.Fatal("expected no events on a fresh idle host")
	}
}
