package session

import (
	"fmt"
	"time"

	"github.com/NIKEA-SOFT/HelenaSystems/engine/bus"
	"github.com/NIKEA-SOFT/HelenaSystems/engine/consts"
	"github.com/NIKEA-SOFT/HelenaSystems/engine/logx"
	"github.com/NIKEA-SOFT/HelenaSystems/engine/transport"
)

// ErrNetworkInUse is returned by CreateServer when a network's host has
// already been bound.
var ErrNetworkInUse = fmt.Errorf("session: network already in use")

// Network is one virtual network: a host (server-side listener or
// client-side initiator), a bounded array of peer slots, and a FIFO
// handshake queue. It is identified by a monotonically increasing 16-bit
// sequence number within its Manager and owns its peer sessions exclusively.
type Network struct {
	id     uint16
	isServ bool
	host   transport.Host

	peers          []*PeerSession
	handshakeQueue []*PeerSession

	userData interface{}

	bus      *bus.Bus
	clockNow func() time.Time
}

// Config parameterizes Network creation; zero Peers/Channels fall back to
// consts.DEFAULT_PEER_SLOTS/DEFAULT_CHANNELS.
type Config struct {
	IP       string
	Port     uint16
	Peers    uint16
	Channels uint8
	Data     uint32
}

func (c Config) toTransport() transport.Config {
	peers := c.Peers
	if peers == 0 {
		peers = consts.DEFAULT_PEER_SLOTS
	}
	channels := c.Channels
	if channels == 0 {
		channels = consts.DEFAULT_CHANNELS
	}
	return transport.Config{IP: c.IP, Port: c.Port, Peers: peers, Channels: channels, Data: c.Data}
}

func newNetwork(id uint16, b *bus.Bus) *Network {
	return &Network{id: id, bus: b, clockNow: time.Now}
}

func (n *Network) provisionSlots(count int) {
	n.peers = make([]*PeerSession, count)
	for i := range n.peers {
		n.peers[i] = newPeerSession(i)
		n.peers[i].network = n
	}
}

// Server reports whether this network was created with CreateServer.
func (n *Network) Server() bool { return n.isServ }

// Valid reports whether the network currently owns a live host.
func (n *Network) Valid() bool { return n.host != nil }

// ID returns the network's sequence number within its Manager.
func (n *Network) ID() uint16 { return n.id }

// SetUserData attaches an opaque value the session layer never inspects.
func (n *Network) SetUserData(v interface{}) { n.userData = v }

// UserData returns whatever was last passed to SetUserData.
func (n *Network) UserData() interface{} { return n.userData }

// CreateServer binds hostFactory's server host to cfg.IP:cfg.Port and
// provisions cfg.Peers slots. It fails with ErrNetworkInUse if this
// network already owns a host, and surfaces the transport's bind failure
// otherwise.
func (n *Network) CreateServer(newServer func(transport.Config) (transport.Host, error), cfg Config) error {
	if n.host != nil {
		return ErrNetworkInUse
	}
	tc := cfg.toTransport()
	host, err := newServer(tc)
	if err != nil {
		logx.Errorf("session: network %d: create_server failed: %v", n.id, err)
		return err
	}
	n.host = host
	n.isServ = true
	n.provisionSlots(int(tc.Peers))
	return nil
}

// CreateClient allocates a client host if absent and initiates a
// connection to remoteAddr on the first free slot, transitioning it to
// Connecting and bumping its sequence.
func (n *Network) CreateClient(newClient func(transport.Config) (transport.Host, error), cfg Config, remoteAddr string) (Connection, error) {
	tc := cfg.toTransport()
	if n.host == nil {
		host, err := newClient(tc)
		if err != nil {
			logx.Errorf("session: network %d: create_client failed: %v", n.id, err)
			return Connection{}, err
		}
		n.host = host
		n.isServ = false
		n.provisionSlots(int(tc.Peers))
	}
	slot := n.freeSlot()
	if slot < 0 {
		return Connection{}, fmt.Errorf("session: network %d: no free peer slots", n.id)
	}
	tp, err := n.host.Connect(remoteAddr)
	if err != nil {
		logx.Errorf("session: network %d: connect to %s failed: %v", n.id, remoteAddr, err)
		return Connection{}, err
	}
	p := n.peers[slot]
	p.sequence++
	p.bind(tp)
	return p.Connection(), nil
}

func (n *Network) freeSlot() int {
	for i, p := range n.peers {
		if p.state == Disconnected && p.transportPeer == nil {
			return i
		}
	}
	return -1
}

// Shutdown flushes outbound data and releases the host and every peer
// slot it owns. The spec's original implementation frees the session
// array via the pointer arithmetic identity host->peers[0].data, assuming
// a single contiguous allocation rooted at slot zero; this Go
// implementation replaces that assumption with an explicit, independently
// owned []*PeerSession that is simply dropped, which is both simpler and
// does not depend on any particular backing allocation.
func (n *Network) Shutdown() {
	if n.host == nil {
		return
	}
	n.host.Flush()
	n.host.Close()
	n.host = nil
	n.peers = nil
	n.handshakeQueue = nil
}

// Broadcast sends to every Connected peer; it is a no-op if the host is
// not valid.
func (n *Network) Broadcast(flag MessageFlag, channel uint8, data []byte) {
	if n.host == nil {
		return
	}
	for _, p := range n.peers {
		if p.state == Connected && p.transportPeer != nil {
			_ = p.transportPeer.Send(channel, flag.toTransport(), data)
		}
	}
}

// Each enumerates every peer slot as a transient Connection value. Callers
// must re-check Valid() inside fn since slots may be reused by the time
// they act on one.
func (n *Network) Each(fn func(Connection)) {
	for _, p := range n.peers {
		fn(p.Connection())
	}
}

func (n *Network) enqueueHandshake(p *PeerSession) {
	n.handshakeQueue = append(n.handshakeQueue, p)
}

func (n *Network) dequeueHandshake(p *PeerSession) {
	for i, q := range n.handshakeQueue {
		if q == p {
			n.handshakeQueue = append(n.handshakeQueue[:i:i], n.handshakeQueue[i+1:]...)
			return
		}
	}
}

// expireHandshakeHead pops and resets the queue head if its handshake_key
// deadline has passed. Only the head is inspected per tick: insertion
// order guarantees monotonic expiry since every key is now+TIMEOUT at
// enqueue time.
func (n *Network) expireHandshakeHead(now time.Time) {
	if len(n.handshakeQueue) == 0 {
		return
	}
	head := n.handshakeQueue[0]
	if uint64(now.Unix()) < head.handshakeKey {
		return
	}
	n.handshakeQueue = n.handshakeQueue[1:]
	if head.transportPeer != nil {
		head.transportPeer.Reset()
	}
	logx.Warnf("session: network %d: handshake timeout for peer slot %d", n.id, head.index)
	head.reset()
}
