package session

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/NIKEA-SOFT/HelenaSystems/engine/consts"
	"github.com/NIKEA-SOFT/HelenaSystems/engine/logx"
	"github.com/NIKEA-SOFT/HelenaSystems/engine/transport"
)

const (
	scrambleKeyA uint64 = 0xDEADBEEFC0DECAFE
	scrambleKeyB uint64 = 0xC0DEFACE12345678
)

// Scramble is a fixed-key involution: applying it twice returns the
// original value. It detects tampered or garbage handshake payloads and
// gives the handshake a liveness check; it provides no authentication and
// is explicitly not cryptography.
func Scramble(x uint64) uint64 {
	return (x ^ scrambleKeyA) ^ scrambleKeyB
}

// ErrMalformedHandshake is returned when a channel-0 payload received
// while a peer is in Handshake is not exactly consts.HANDSHAKE_PAYLOAD_SIZE
// bytes.
var ErrMalformedHandshake = fmt.Errorf("session: malformed handshake payload")

// encodeHandshakeKey and decodeHandshakeKey pin the on-wire byte order of
// the scrambled handshake key to little-endian. The source design left
// this unspecified, which would let differently-endian peers silently
// desync; this implementation fixes little-endian as the one accepted
// form and rejects any payload that is not exactly 8 bytes rather than
// guessing at a second form.
func encodeHandshakeKey(key uint64) []byte {
	buf := make([]byte, consts.HANDSHAKE_PAYLOAD_SIZE)
	binary.LittleEndian.PutUint64(buf, key)
	return buf
}

func decodeHandshakeKey(data []byte) (uint64, error) {
	if len(data) != consts.HANDSHAKE_PAYLOAD_SIZE {
		return 0, ErrMalformedHandshake
	}
	return binary.LittleEndian.Uint64(data), nil
}

func sendHandshake(p *PeerSession, key uint64) error {
	return p.transportPeer.Send(0, transport.FlagReliable, encodeHandshakeKey(Scramble(key)))
}

// beginServerHandshake is run when a server-side network observes a
// transport CONNECT: the peer moves to Handshake, its handshake_key
// becomes an absolute expiry timestamp, the challenge is sent on channel
// 0, and the peer is enqueued on the network's FIFO handshake queue.
func (n *Network) beginServerHandshake(p *PeerSession, now time.Time) {
	p.state = Handshake
	p.handshakeKey = uint64(now.Unix()) + uint64(consts.HANDSHAKE_TIMEOUT_SECS)
	if err := sendHandshake(p, p.handshakeKey); err != nil {
		logx.Errorf("session: network %d: failed to send handshake challenge: %v", n.id, err)
	}
	n.enqueueHandshake(p)
	if consts.DEBUG_HANDSHAKE {
		logx.Debugf("session: network %d: slot %d begins server handshake, expires at %d", n.id, p.index, p.handshakeKey)
	}
}

// beginClientHandshake is run when a client-side network observes a
// transport CONNECT: the peer moves to Handshake and waits for the
// server's challenge.
func (n *Network) beginClientHandshake(p *PeerSession) {
	p.state = Handshake
	p.handshakeKey = 0
	if consts.DEBUG_HANDSHAKE {
		logx.Debugf("session: network %d: slot %d begins client handshake", n.id, p.index)
	}
}

// handleHandshakeReceive implements the three-step challenge/response
// described by the spec. On success it returns true and the caller emits
// ConnectEvent; any failure resets the peer (and, on the server, dequeues
// it) without emitting one, per the Handshake-failure error policy.
func (n *Network) handleHandshakeReceive(p *PeerSession, data []byte) bool {
	raw, err := decodeHandshakeKey(data)
	if err != nil {
		logx.Warnf("session: network %d: slot %d sent malformed handshake payload (%d bytes)", n.id, p.index, len(data))
		if n.isServ {
			n.dequeueHandshake(p)
		}
		n.failHandshake(p)
		return false
	}
	decrypt := Scramble(raw)

	if !n.isServ {
		return n.clientHandshakeStep(p, decrypt)
	}
	return n.serverHandshakeStep(p, decrypt)
}

func (n *Network) clientHandshakeStep(p *PeerSession, decrypt uint64) bool {
	peerID := p.transportPeer.ID()
	if p.handshakeKey == 0 {
		// First message: derive our own handshake_key from the server's
		// challenge and echo it back scrambled.
		p.handshakeKey = decrypt ^ uint64(peerID+1)
		if err := sendHandshake(p, p.handshakeKey); err != nil {
			logx.Errorf("session: network %d: slot %d failed to echo handshake: %v", n.id, p.index, err)
			n.failHandshake(p)
			return false
		}
		return false
	}
	// Second message: the server's confirmation must unscramble back to
	// exactly the key we derived.
	if p.handshakeKey != decrypt {
		n.failHandshake(p)
		return false
	}
	p.state = Connected
	return true
}

func (n *Network) serverHandshakeStep(p *PeerSession, decrypt uint64) bool {
	peerID := p.transportPeer.ID()
	expected := p.handshakeKey ^ uint64(peerID+1)
	echoErr := sendHandshake(p, decrypt)
	if expected != decrypt || echoErr != nil {
		n.dequeueHandshake(p)
		n.failHandshake(p)
		return false
	}
	n.dequeueHandshake(p)
	p.state = Connected
	return true
}

func (n *Network) failHandshake(p *PeerSession) {
	if p.transportPeer != nil {
		p.transportPeer.Reset()
	}
	p.reset()
}
