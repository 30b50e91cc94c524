package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/NIKEA-SOFT/HelenaSystems/engine/bus"
	"github.com/NIKEA-SOFT/HelenaSystems/engine/transport"
)

func drainUntil(t *testing.T, networks []*Network, timeout time.Duration, done func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, n := range networks {
			n.Service(consts_SERVICE_EVENTS_LIMIT, timeout)
		}
		if done() {
			return
		}
	}
	t.Fatal("timed out waiting for condition")
}

// consts_SERVICE_EVENTS_LIMIT avoids importing consts just for this test
// helper's loop bound; any sufficiently large number works.
const consts_SERVICE_EVENTS_LIMIT = 100

func newHandshakePair(t *testing.T, addr string) (serverBus, clientBus *bus.Bus, server, client *Network) {
	t.Helper()
	serverBus = bus.New()
	clientBus = bus.New()
	server = newNetwork(0, serverBus)
	client = newNetwork(0, clientBus)

	if err := server.CreateServer(transport.NewLoopbackServer, Config{IP: "127.0.0.1", Port: mustPort(addr)}); err != nil {
		t.Fatalf("create_server failed: %v", err)
	}
	if _, err := client.CreateClient(transport.NewLoopbackClient, Config{}, addr); err != nil {
		t.Fatalf("create_client failed: %v", err)
	}
	return
}

func mustPort(addr string) uint16 {
	var port uint16
	fmt.Sscanf(addr[len("127.0.0.1:"):], "%d", &port)
	return port
}

func TestHandshakeSuccessEndToEnd(t *testing.T) {
	const addr = "127.0.0.1:19001"
	serverBus, clientBus, server, client := newHandshakePair(t, addr)
	defer server.Shutdown()
	defer client.Shutdown()

	var serverConnected, clientConnected bool
	bus.Subscribe(serverBus, func(ConnectEvent) { serverConnected = true })
	bus.Subscribe(clientBus, func(ConnectEvent) { clientConnected = true })

	drainUntil(t, []*Network{server, client}, 20*time.Millisecond, func() bool {
		return serverConnected && clientConnected
	})

	if len(server.peers) == 0 || server.peers[0].state != Connected {
		t.Fatal("expected server slot 0 to be Connected")
	}
	if len(client.peers) == 0 || client.peers[0].state != Connected {
		t.Fatal("expected client slot 0 to be Connected")
	}
	if len(server.handshakeQueue) != 0 {
		t.Fatal("expected handshake queue to be empty after success")
	}
}

func TestHandshakeTimeoutResetsPeerWithoutConnectEvent(t *testing.T) {
	const addr = "127.0.0.1:19002"
	serverBus, _, server, client := newHandshakePair(t, addr)
	defer server.Shutdown()
	defer client.Shutdown()

	var connected bool
	bus.Subscribe(serverBus, func(ConnectEvent) { connected = true })

	// Drive only the server far enough to receive the transport CONNECT
	// and enqueue the handshake; the client intentionally never services,
	// modeling "client connects but never responds".
	drainUntil(t, []*Network{server}, 20*time.Millisecond, func() bool {
		return len(server.handshakeQueue) == 1
	})

	base := server.clockNow()
	server.clockNow = func() time.Time { return base.Add(3 * time.Second) }
	server.Service(consts_SERVICE_EVENTS_LIMIT, 0)

	if len(server.handshakeQueue) != 0 {
		t.Fatal("expected handshake queue to be drained after timeout")
	}
	if server.peers[0].state != Disconnected {
		t.Fatalf("expected slot to reset to Disconnected, got %v", server.peers[0].state)
	}
	if connected {
		t.Fatal("expected no ConnectEvent after a handshake timeout")
	}
}

func TestForceDisconnectEmitsNoDisconnectEvent(t *testing.T) {
	const addr = "127.0.0.1:19003"
	serverBus, clientBus, server, client := newHandshakePair(t, addr)
	defer server.Shutdown()
	defer client.Shutdown()

	var serverConnected, clientConnected, sawDisconnect bool
	bus.Subscribe(serverBus, func(ConnectEvent) { serverConnected = true })
	bus.Subscribe(clientBus, func(ConnectEvent) { clientConnected = true })
	bus.Subscribe(serverBus, func(DisconnectEvent) { sawDisconnect = true })

	drainUntil(t, []*Network{server, client}, 20*time.Millisecond, func() bool {
		return serverConnected && clientConnected
	})

	conn := server.peers[0].Connection()
	conn.Disconnect(ResetForce, 0)

	if server.peers[0].state != Disconnected {
		t.Fatalf("expected immediate Disconnected state, got %v", server.peers[0].state)
	}
	if sawDisconnect {
		t.Fatal("Force disconnect must not emit a DisconnectEvent")
	}
	if conn.Valid() {
		t.Fatal("expected the pre-reset Connection handle to be stale after Force disconnect")
	}
}

func TestResetUpdateDropsQueuedSendResetNowFlushesIt(t *testing.T) {
	run := func(flag ResetFlag, addr string) (delivered bool) {
		serverBus, clientBus, server, client := newHandshakePair(t, addr)
		defer server.Shutdown()
		defer client.Shutdown()

		var serverConnected, clientConnected bool
		bus.Subscribe(serverBus, func(ConnectEvent) { serverConnected = true })
		bus.Subscribe(clientBus, func(ConnectEvent) { clientConnected = true })
		var gotMessage bool
		bus.Subscribe(serverBus, func(MessageEvent) { gotMessage = true })

		drainUntil(t, []*Network{server, client}, 20*time.Millisecond, func() bool {
			return serverConnected && clientConnected
		})

		conn := client.peers[0].Connection()
		conn.Send(MessageReliable, 1, []byte("payload"))
		conn.Disconnect(flag, 0)

		drainUntil(t, []*Network{server}, 20*time.Millisecond, func() bool {
			return true
		})
		return gotMessage
	}

	if delivered := run(ResetUpdate, "127.0.0.1:19005"); delivered {
		t.Fatal("expected ResetUpdate to drop the queued send instead of delivering it")
	}
	if delivered := run(ResetNow, "127.0.0.1:19006"); !delivered {
		t.Fatal("expected ResetNow to flush the queued send before disconnecting")
	}
}

func TestScrambleIsAnInvolution(t *testing.T) {
	const x uint64 = 0x0123456789abcdef
	if got := Scramble(Scramble(x)); got != x {
		t.Fatalf("expected involution to round-trip, got %x", got)
	}
}

func TestMessageFlagMapping(t *testing.T) {
	cases := map[MessageFlag]transport.PacketFlags{
		MessageNone:        0,
		MessageReliable:    transport.FlagReliable,
		MessageFragmented:  transport.FlagFragmented,
		MessageUnsequenced: transport.FlagUnsequenced,
	}
	for flag, want := range cases {
		if got := flag.toTransport(); got != want {
			t.Fatalf("flag %v: expected %v, got %v", flag, want, got)
		}
	}
	if got := messageFlagFromTransport(transport.FlagReliable | transport.FlagFragmented); got != MessageReliable {
		t.Fatalf("expected unknown combination to coerce to Reliable, got %v", got)
	}
}

func TestConnectionStaleAfterSlotReuse(t *testing.T) {
	const addr = "127.0.0.1:19004"
	serverBus, clientBus, server, client := newHandshakePair(t, addr)
	defer server.Shutdown()
	defer client.Shutdown()

	var serverConnected, clientConnected bool
	bus.Subscribe(serverBus, func(ConnectEvent) { serverConnected = true })
	bus.Subscribe(clientBus, func(ConnectEvent) { clientConnected = true })
	drainUntil(t, []*Network{server, client}, 20*time.Millisecond, func() bool {
		return serverConnected && clientConnected
	})

	stale := server.peers[0].Connection()
	server.peers[0].reset()
	server.peers[0].sequence++ // simulate the slot being claimed by a new occupant

	if stale.Valid() {
		t.Fatal("expected handle minted against the old generation to be invalid")
	}
	stale.Send(MessageReliable, 0, []byte("x"))  // must be a silent no-op
	stale.Disconnect(ResetDefault, 0)            // must be a silent no-op
}
