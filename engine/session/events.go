package session

// ConnectEvent is emitted once a peer completes the application-level
// handshake successfully and becomes Connected.
type ConnectEvent struct {
	Connection Connection
}

// DisconnectEvent is emitted when a peer drops back to Disconnected
// because the transport confirmed it, either by explicit disconnect or by
// timing out. It is never emitted for a Force disconnect, which bypasses
// notification entirely.
type DisconnectEvent struct {
	Connection Connection
	Timeout    bool
	Data       uint32
}

// MessageEvent carries one application payload received on a Connected
// peer's channel.
type MessageEvent struct {
	Connection Connection
	Channel    uint8
	Flag       MessageFlag
	Data       []byte
}
