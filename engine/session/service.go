package session

import (
	"time"

	"github.com/NIKEA-SOFT/HelenaSystems/engine/bus"
	"github.com/NIKEA-SOFT/HelenaSystems/engine/logx"
	"github.com/NIKEA-SOFT/HelenaSystems/engine/transport"
)

// Service drains at most eventsLimit transport events by alternating a
// non-blocking CheckEvents with a blocking Service(timeout), dispatches
// each by type, flushes queued outbound data the same way a real
// enet_host_service call implicitly does, and finally checks the
// handshake queue head for expiry. It is the body of one network's
// per-tick work; Manager.ServiceAll calls this for every owned network from
// the Tick handler.
func (n *Network) Service(eventsLimit int, timeout time.Duration) {
	if n.host == nil {
		return
	}
	for i := 0; i < eventsLimit; i++ {
		ev, ok := n.host.CheckEvents()
		if !ok {
			ev, ok = n.host.Service(timeout)
		}
		if !ok {
			break
		}
		if !n.dispatch(ev) {
			break
		}
	}
	n.host.Flush()
	n.expireHandshakeHead(n.clockNow())
}

// dispatch handles one transport event; it returns false when the caller
// should stop draining, which happens only for an EventNone. An event whose
// peer resolves to no slot is ignored and draining continues.
func (n *Network) dispatch(ev transport.Event) bool {
	switch ev.Type {
	case transport.EventNone:
		return false
	case transport.EventConnect:
		n.onTransportConnect(ev.Peer)
	case transport.EventDisconnect:
		n.onTransportDisconnect(ev.Peer, ev.Data, false)
	case transport.EventDisconnectTimeout:
		n.onTransportDisconnect(ev.Peer, ev.Data, true)
	case transport.EventReceive:
		n.onTransportReceive(ev.Peer, ev.Channel, ev.Packet)
	}
	return true
}

func (n *Network) slotFor(tp transport.Peer) *PeerSession {
	for _, p := range n.peers {
		if p.transportPeer != nil && p.transportPeer.ID() == tp.ID() {
			return p
		}
	}
	return nil
}

// onTransportConnect handles a fresh transport-level CONNECT. On the
// server side the slot did not previously exist as a tracked occupant, so
// one is claimed here; on the client side CreateClient already bound the
// slot ahead of the CONNECT event.
func (n *Network) onTransportConnect(tp transport.Peer) {
	p := n.slotFor(tp)
	if p == nil {
		slot := n.freeSlot()
		if slot < 0 {
			logx.Warnf("session: network %d: no free slot for incoming connection, resetting", n.id)
			tp.Reset()
			return
		}
		p = n.peers[slot]
		p.sequence++
		p.bind(tp)
	}
	if n.isServ {
		n.beginServerHandshake(p, n.clockNow())
	} else {
		n.beginClientHandshake(p)
	}
}

func (n *Network) onTransportDisconnect(tp transport.Peer, data uint32, timeout bool) {
	p := n.slotFor(tp)
	if p == nil {
		return
	}
	conn := p.Connection()
	p.reset()
	bus.Publish(n.bus, DisconnectEvent{Connection: conn, Timeout: timeout, Data: data})
}

func (n *Network) onTransportReceive(tp transport.Peer, channel uint8, packet transport.Packet) {
	p := n.slotFor(tp)
	if p == nil {
		return
	}
	if p.state == Handshake {
		if channel != 0 {
			logx.Warnf("session: network %d: slot %d received non-handshake channel %d during Handshake, ignoring", n.id, p.index, channel)
			return
		}
		if n.handleHandshakeReceive(p, packet.Data) {
			bus.Publish(n.bus, ConnectEvent{Connection: p.Connection()})
		}
		return
	}
	if p.state != Connected {
		return
	}
	flag := messageFlagFromTransport(packet.Flags)
	bus.Publish(n.bus, MessageEvent{Connection: p.Connection(), Channel: channel, Flag: flag, Data: packet.Data})
}
