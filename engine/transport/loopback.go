package transport

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// registry maps a bound server address to its host, so a client Connect
// call can find it — the loopback equivalent of a real UDP bind table.
var registry sync.Map // addr string -> *loopbackHost

var nextPeerID uint32

func allocPeerID() uint32 { return atomic.AddUint32(&nextPeerID, 1) }

// loopbackHost is an in-process Host double: no sockets, no goroutine
// scheduling surprises beyond the one needed to make CheckEvents/Service
// observe events asynchronously the way a real transport would.
type loopbackHost struct {
	server bool
	addr   string
	events chan Event

	mu     sync.Mutex
	peers  []*loopbackPeer
	closed bool
}

type outboundPacket struct {
	channel uint8
	flags   PacketFlags
	data    []byte
}

type loopbackPeer struct {
	id     uint32
	host   *loopbackHost
	remote *loopbackPeer

	mu       sync.Mutex
	reset    bool
	userData interface{}
	outbox   []outboundPacket
}

// NewLoopbackServer binds an in-process host at cfg.IP:cfg.Port. It fails
// if that address is already bound by another loopback server.
func NewLoopbackServer(cfg Config) (Host, error) {
	addr := fmt.Sprintf("%s:%d", cfg.IP, cfg.Port)
	h := &loopbackHost{server: true, addr: addr, events: make(chan Event, 256)}
	if _, loaded := registry.LoadOrStore(addr, h); loaded {
		return nil, fmt.Errorf("transport: address %s already in use", addr)
	}
	return h, nil
}

// NewLoopbackClient creates an in-process client host with no bound
// address of its own.
func NewLoopbackClient(cfg Config) (Host, error) {
	return &loopbackHost{server: false, events: make(chan Event, 256)}, nil
}

func (h *loopbackHost) Server() bool { return h.server }

// Connect looks up the server host registered at remoteAddr and links a
// fresh pair of peers, one per side, then delivers an EventConnect to both
// asynchronously — matching how a real handshake's CONNECT event arrives
// on a later Service call rather than synchronously inside Connect.
func (h *loopbackHost) Connect(remoteAddr string) (Peer, error) {
	v, ok := registry.Load(remoteAddr)
	if !ok {
		return nil, fmt.Errorf("transport: no host listening at %s", remoteAddr)
	}
	server := v.(*loopbackHost)

	// Both sides share one connection ID, mirroring ENetPeer::connectID:
	// the client mints it and the server adopts the same value, rather
	// than each side numbering its peer objects independently. The
	// application handshake's peer_id XOR term depends on both ends
	// agreeing on this number.
	connID := allocPeerID()
	clientPeer := &loopbackPeer{id: connID, host: h}
	serverPeer := &loopbackPeer{id: connID, host: server}
	clientPeer.remote = serverPeer
	serverPeer.remote = clientPeer

	h.mu.Lock()
	h.peers = append(h.peers, clientPeer)
	h.mu.Unlock()
	server.mu.Lock()
	server.peers = append(server.peers, serverPeer)
	server.mu.Unlock()

	go func() { server.events <- Event{Type: EventConnect, Peer: serverPeer} }()
	go func() { h.events <- Event{Type: EventConnect, Peer: clientPeer} }()
	return clientPeer, nil
}

func (h *loopbackHost) Broadcast(channel uint8, flags PacketFlags, data []byte) {
	h.mu.Lock()
	peers := append([]*loopbackPeer(nil), h.peers...)
	h.mu.Unlock()
	for _, p := range peers {
		_ = p.Send(channel, flags, data)
	}
}

// Flush delivers every peer's queued outbound data now.
func (h *loopbackHost) Flush() {
	h.mu.Lock()
	peers := append([]*loopbackPeer(nil), h.peers...)
	h.mu.Unlock()
	for _, p := range peers {
		p.flushOutbox()
	}
}

func (h *loopbackHost) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.mu.Unlock()
	if h.server {
		registry.Delete(h.addr)
	}
}

func (h *loopbackHost) CheckEvents() (Event, bool) {
	select {
	case ev := <-h.events:
		return ev, true
	default:
		return Event{}, false
	}
}

func (h *loopbackHost) Service(timeout time.Duration) (Event, bool) {
	if timeout <= 0 {
		return h.CheckEvents()
	}
	select {
	case ev := <-h.events:
		return ev, true
	case <-time.After(timeout):
		return Event{}, false
	}
}

func (p *loopbackPeer) ID() uint32 { return p.id }

// Send queues data for delivery; it is not actually handed to the remote
// peer's event channel until flushOutbox runs, via Flush, DisconnectLater
// or DisconnectNow.
func (p *loopbackPeer) Send(channel uint8, flags PacketFlags, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reset || p.remote == nil {
		return fmt.Errorf("transport: peer is not connected")
	}
	cp := append([]byte(nil), data...)
	p.outbox = append(p.outbox, outboundPacket{channel: channel, flags: flags, data: cp})
	return nil
}

// flushOutbox delivers every packet currently queued in p.outbox to the
// remote peer's event channel, in order, and empties the queue. Delivery
// happens synchronously on the calling goroutine (rather than via a
// spawned one, as the disconnect notification is) so that a caller sequencing a
// flush followed by a disconnect notification — DisconnectNow's contract —
// is guaranteed the flushed packets are queued ahead of it.
func (p *loopbackPeer) flushOutbox() {
	p.mu.Lock()
	if p.reset || p.remote == nil || len(p.outbox) == 0 {
		p.mu.Unlock()
		return
	}
	pending := p.outbox
	p.outbox = nil
	remote := p.remote
	p.mu.Unlock()
	for _, pkt := range pending {
		remote.host.events <- Event{Type: EventReceive, Peer: remote, Channel: pkt.channel, Packet: Packet{Flags: pkt.flags, Data: pkt.data}}
	}
}

// dropOutbox discards whatever is currently queued without delivering it.
func (p *loopbackPeer) dropOutbox() {
	p.mu.Lock()
	p.outbox = nil
	p.mu.Unlock()
}

// DisconnectLater drains whatever is queued, then disconnects.
func (p *loopbackPeer) DisconnectLater(data uint32) {
	p.flushOutbox()
	p.disconnect(data)
}

// Disconnect drops whatever is queued, then disconnects without flushing
// it, as distinct from DisconnectNow below.
func (p *loopbackPeer) Disconnect(data uint32) {
	p.dropOutbox()
	p.disconnect(data)
}

// DisconnectNow forces immediate delivery of whatever is queued, then
// disconnects.
func (p *loopbackPeer) DisconnectNow(data uint32) {
	p.flushOutbox()
	p.disconnect(data)
}

func (p *loopbackPeer) disconnect(data uint32) {
	p.mu.Lock()
	already := p.reset
	p.reset = true
	p.mu.Unlock()
	if already || p.remote == nil {
		return
	}
	remote := p.remote
	go func() { remote.host.events <- Event{Type: EventDisconnect, Peer: remote, Data: data} }()
}

// Reset tears the peer down without notifying the remote side, dropping
// anything queued and matching a forced disconnect.
func (p *loopbackPeer) Reset() {
	p.mu.Lock()
	p.reset = true
	p.outbox = nil
	p.mu.Unlock()
}

func (p *loopbackPeer) SetUserData(v interface{}) {
	p.mu.Lock()
	p.userData = v
	p.mu.Unlock()
}

func (p *loopbackPeer) UserData() interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.userData
}
