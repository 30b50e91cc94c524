package session

import "github.com/NIKEA-SOFT/HelenaSystems/engine/transport"

// State is one position in the peer session state machine described by the
// session layer: Disconnected -> Connecting -> Handshake -> Connected, with
// Disconnecting reachable only through an explicit application disconnect
// and returning to Disconnected once the transport confirms it.
type State uint8

const (
	Disconnected State = iota
	Connecting
	Handshake
	Connected
	Disconnecting
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case Handshake:
		return "Handshake"
	case Connected:
		return "Connected"
	case Disconnecting:
		return "Disconnecting"
	default:
		return "Unknown"
	}
}

// ResetFlag selects how disconnect tears a peer down; see Connection.Disconnect.
type ResetFlag uint8

const (
	// ResetDefault marks Disconnecting and lets outbound data drain before
	// the transport confirms the disconnect.
	ResetDefault ResetFlag = iota
	// ResetUpdate marks Disconnecting and disconnects on the next service
	// tick, dropping anything still queued outbound.
	ResetUpdate
	// ResetForce marks the peer Disconnected immediately and resets the
	// slot without notifying the remote side.
	ResetForce
	// ResetNow marks Disconnecting, flushes queued outbound data
	// immediately, then disconnects.
	ResetNow
)

// PeerSession is the per-slot state the spec calls {state, sequence,
// handshake_key, user_data}. sequence is bumped every time the slot is
// reused so a Connection minted against a stale generation becomes a
// permanent no-op; the slot itself is never deallocated before host
// teardown.
type PeerSession struct {
	index    int
	sequence uint8

	state        State
	handshakeKey uint64
	userData     interface{}

	transportPeer transport.Peer
	network       *Network
}

func newPeerSession(index int) *PeerSession {
	return &PeerSession{index: index, state: Disconnected}
}

// reset tears a slot down to Disconnected and bumps its generation so any
// Connection minted against the old occupant becomes a no-op.
func (p *PeerSession) reset() {
	p.state = Disconnected
	p.handshakeKey = 0
	p.userData = nil
	p.transportPeer = nil
	p.sequence++
}

// bind reoccupies a Disconnected slot for a fresh transport peer and moves
// it to Connecting.
func (p *PeerSession) bind(tp transport.Peer) {
	p.transportPeer = tp
	p.state = Connecting
	p.handshakeKey = 0
	p.userData = nil
}

// SetUserData attaches an opaque value the session layer never inspects.
func (p *PeerSession) SetUserData(v interface{}) { p.userData = v }

// UserData returns whatever was last passed to SetUserData.
func (p *PeerSession) UserData() interface{} { return p.userData }

// State returns the slot's current state.
func (p *PeerSession) State() State { return p.state }

// Connection mints a Connection handle for this slot's current generation.
func (p *PeerSession) Connection() Connection {
	return Connection{network: p.network, slot: p.index, sequence: p.sequence}
}
