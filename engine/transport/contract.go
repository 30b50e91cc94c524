// Package transport defines the contract the session layer needs from an
// underlying unreliable-datagram/reliable-channel transport: host
// create/destroy/flush/broadcast, per-peer send/disconnect/reset, and a
// two-call event poll (non-blocking check, blocking service-with-timeout).
// It intentionally does not prescribe an implementation — the loopback host
// (NewLoopbackServer/NewLoopbackClient) is an in-process double for tests, and KCPHost wires the same
// contract onto github.com/xtaci/kcp-go for real network I/O.
package transport

import "time"

// PacketFlags mirrors the flag bits a real reliable-UDP transport (e.g.
// ENet) attaches to an outgoing packet.
type PacketFlags uint8

const (
	// FlagReliable marks a packet as reliable and sequenced.
	FlagReliable PacketFlags = 1 << iota
	// FlagUnsequenced marks a packet as unreliable and unsequenced.
	FlagUnsequenced
	// FlagFragmented marks a packet as unreliable but fragmented/reassembled
	// if it exceeds the path MTU.
	FlagFragmented
)

// EventType discriminates the events a Host yields from CheckEvents/Service.
type EventType uint8

const (
	// EventNone means there is nothing to report; the service loop should
	// stop draining.
	EventNone EventType = iota
	// EventConnect is raised once a peer's connection attempt completes at
	// the transport level (before any application handshake).
	EventConnect
	// EventDisconnect is raised once a peer's disconnection is confirmed by
	// the transport.
	EventDisconnect
	// EventDisconnectTimeout is raised when a peer is dropped because it
	// stopped responding, rather than because either side asked to
	// disconnect.
	EventDisconnectTimeout
	// EventReceive carries a payload for one channel of one peer.
	EventReceive
)

// Packet is a received payload and the flags it was sent with.
type Packet struct {
	Flags PacketFlags
	Data  []byte
}

// Event is what CheckEvents/Service yield for one transport occurrence.
type Event struct {
	Type    EventType
	Peer    Peer
	Channel uint8
	Data    uint32
	Packet  Packet
}

// Config parameterizes host creation.
type Config struct {
	IP       string
	Port     uint16
	Peers    uint16
	Channels uint8
	Data     uint32
}

// Peer is one remote endpoint of a Host. Peer identity is stable for the
// lifetime of the transport-level connection; the session layer is
// responsible for generation-stamping its own handles on top of it.
type Peer interface {
	// ID returns the connection's identifier, shared by construction
	// between both ends of one connection (mirroring ENetPeer::connectID
	// rather than a locally-numbered slot index) so application code on
	// either side that derives a value from it gets the same answer.
	ID() uint32
	// Send queues data for delivery on channel with the given flags. It is
	// not necessarily on the wire yet: outbound data sits in the peer's
	// own queue until Flush, DisconnectLater, or DisconnectNow drains it.
	Send(channel uint8, flags PacketFlags, data []byte) error
	// DisconnectLater drains whatever is currently queued, then asks the
	// peer to disconnect.
	DisconnectLater(data uint32)
	// Disconnect drops whatever is currently queued and disconnects
	// without flushing it, as distinct from DisconnectNow below.
	Disconnect(data uint32)
	// DisconnectNow forces immediate delivery of whatever is currently
	// queued, then disconnects.
	DisconnectNow(data uint32)
	// Reset tears the peer down immediately without notifying the remote
	// side or flushing anything queued.
	Reset()
	// SetUserData attaches an opaque value the transport never inspects.
	SetUserData(v interface{})
	// UserData returns whatever was last passed to SetUserData.
	UserData() interface{}
}

// Host owns either a server-bound or client-side transport endpoint.
type Host interface {
	// Server reports whether this host was created with NewServer.
	Server() bool
	// Connect initiates a client-side connection to remoteAddr. Valid only
	// on a client host.
	Connect(remoteAddr string) (Peer, error)
	// Broadcast sends to every connected peer.
	Broadcast(channel uint8, flags PacketFlags, data []byte)
	// Flush forces any buffered outbound data to be sent now.
	Flush()
	// Close releases the host and every peer slot it owns.
	Close()
	// CheckEvents polls for one pending event without blocking.
	CheckEvents() (Event, bool)
	// Service blocks up to timeout waiting for one event.
	Service(timeout time.Duration) (Event, bool)
}
