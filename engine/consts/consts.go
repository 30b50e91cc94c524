// Package consts collects the tunable constants shared by the ECS store and
// the session layer, mirroring the surrounding runtime's convention of
// keeping magic numbers in one place instead of scattered through call sites.
package consts

import "time"

// Tunable Options
const (
	// HANDSHAKE_TIMEOUT_SECS is how long a peer has to complete the
	// challenge/response handshake before the server resets it.
	HANDSHAKE_TIMEOUT_SECS = 2

	// SERVICE_EVENTS_LIMIT is the max number of transport events drained
	// from a single virtual network per tick.
	SERVICE_EVENTS_LIMIT = 100

	// SERVICE_TIMEOUT is how long Service blocks waiting for the next
	// transport event inside one drain iteration.
	SERVICE_TIMEOUT = 0 * time.Millisecond

	// HANDSHAKE_PAYLOAD_SIZE is the exact wire size, in bytes, of a
	// handshake challenge/response packet.
	HANDSHAKE_PAYLOAD_SIZE = 8

	// DEFAULT_PEER_SLOTS is used when a Config does not specify Peers.
	DEFAULT_PEER_SLOTS = 32

	// DEFAULT_CHANNELS is used when a Config does not specify Channels.
	// Channel 0 is reserved for the handshake.
	DEFAULT_CHANNELS = 2
)

// Debug Options
const (
	// DEBUG_ECS_EVENTS logs every ECS lifecycle signal when enabled.
	DEBUG_ECS_EVENTS = false
	// DEBUG_HANDSHAKE logs every step of the peer handshake when enabled.
	DEBUG_HANDSHAKE = false
)
