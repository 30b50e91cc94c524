package session

// Connection is the lightweight, copyable handle the spec calls
// {network_ref, peer_slot_ptr, sequence_snapshot}. It owns nothing; once
// the slot it names is reused (its sequence bumped) every operation on a
// previously-minted Connection silently becomes a no-op rather than acting
// on the new occupant.
type Connection struct {
	network  *Network
	slot     int
	sequence uint8
}

// Valid reports whether the slot this handle names still has the same
// generation it was minted with.
func (c Connection) Valid() bool {
	p := c.peer()
	return p != nil && p.sequence == c.sequence
}

func (c Connection) peer() *PeerSession {
	if c.network == nil || c.slot < 0 || c.slot >= len(c.network.peers) {
		return nil
	}
	return c.network.peers[c.slot]
}

// resolve returns the live PeerSession this handle names, or nil if the
// handle is stale.
func (c Connection) resolve() *PeerSession {
	p := c.peer()
	if p == nil || p.sequence != c.sequence {
		return nil
	}
	return p
}

// ID returns the slot index this handle names, independent of validity.
func (c Connection) ID() int { return c.slot }

// State returns the peer's current state, or Disconnected if the handle is
// stale.
func (c Connection) State() State {
	p := c.resolve()
	if p == nil {
		return Disconnected
	}
	return p.state
}

// SetUserData is a silent no-op on a stale handle.
func (c Connection) SetUserData(v interface{}) {
	if p := c.resolve(); p != nil {
		p.SetUserData(v)
	}
}

// UserData returns nil on a stale handle.
func (c Connection) UserData() interface{} {
	p := c.resolve()
	if p == nil {
		return nil
	}
	return p.UserData()
}

// Send transmits bytes on channel using the transport flags the given
// MessageFlag maps to. It is a silent no-op if the handle is stale or the
// peer is not Connected, matching the spec's Silent no-op error class.
func (c Connection) Send(flag MessageFlag, channel uint8, data []byte) {
	p := c.resolve()
	if p == nil || p.state != Connected || p.transportPeer == nil {
		return
	}
	_ = p.transportPeer.Send(channel, flag.toTransport(), data)
}

// Disconnect applies one of the four reset semantics described by
// ResetFlag. It is a silent no-op on a stale handle, and also a no-op if
// the peer is already Disconnecting or Disconnected.
func (c Connection) Disconnect(flag ResetFlag, data uint32) {
	p := c.resolve()
	if p == nil {
		return
	}
	if p.state == Disconnecting || p.state == Disconnected {
		return
	}
	switch flag {
	case ResetDefault:
		// Graceful: let the transport drain whatever is already queued
		// before it sends the disconnect notification.
		p.state = Disconnecting
		if p.transportPeer != nil {
			p.transportPeer.DisconnectLater(data)
		}
	case ResetUpdate:
		// Drop anything still queued and disconnect without flushing it,
		// as distinct from Now below, which forces a flush first.
		p.state = Disconnecting
		if p.transportPeer != nil {
			p.transportPeer.Disconnect(data)
		}
	case ResetNow:
		p.state = Disconnecting
		if p.transportPeer != nil {
			p.transportPeer.DisconnectNow(data)
		}
	case ResetForce:
		if p.transportPeer != nil {
			p.transportPeer.Reset()
		}
		p.reset()
	}
}
