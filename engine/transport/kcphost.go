package transport

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/xiaonanln/go-xnsyncutil/xnsyncutil"
	kcp "github.com/xtaci/kcp-go"

	"github.com/NIKEA-SOFT/HelenaSystems/engine/logx"
)

// KCPHost is the real transport: every peer is one kcp-go stream, turbo
// mode tuned the same way the gate service tunes its client connections.
// kcp-go hands us one ordered reliable byte stream per session rather than
// ENet's per-channel reliable/unreliable/fragmented packet model, so each
// frame written to the stream carries a small header (channel, flags,
// length) and channel/flag semantics are reconstructed on the reading
// side instead of coming from the transport itself. A session that asks
// for FlagUnsequenced or FlagFragmented therefore still gets reliable,
// ordered delivery underneath — true unreliable delivery would need a
// second raw-UDP path alongside kcp-go, which this host does not stand up.
type KCPHost struct {
	server   bool
	listener *kcp.Listener

	mu     sync.Mutex
	peers  map[uint32]*kcpPeer
	events chan Event
	closed xnsyncutil.AtomicBool
}

type kcpFrame struct {
	channel uint8
	flags   PacketFlags
	data    []byte
}

type kcpPeer struct {
	id   uint32
	conn *kcp.UDPSession
	host *KCPHost

	mu       sync.Mutex
	userData interface{}
	outbox   []kcpFrame
	closed   xnsyncutil.AtomicBool
}

var kcpNextPeerID uint32

func tuneSession(conn *kcp.UDPSession) {
	conn.SetStreamMode(true)
	conn.SetWriteDelay(true)
	conn.SetNoDelay(1, 10, 2, 1)
}

// NewKCPServer binds cfg.IP:cfg.Port and starts accepting kcp-go sessions
// in the background, each surfaced as an EventConnect.
func NewKCPServer(cfg Config) (Host, error) {
	addr := fmt.Sprintf("%s:%d", cfg.IP, cfg.Port)
	ln, err := kcp.ListenWithOptions(addr, nil, 10, 3)
	if err != nil {
		return nil, errors.Wrap(err, "kcp listen failed")
	}
	h := &KCPHost{server: true, listener: ln, peers: map[uint32]*kcpPeer{}, events: make(chan Event, 256)}
	go h.acceptLoop()
	return h, nil
}

// NewKCPClient returns a client-side host with no listener of its own.
func NewKCPClient(cfg Config) (Host, error) {
	return &KCPHost{server: false, peers: map[uint32]*kcpPeer{}, events: make(chan Event, 256)}, nil
}

func (h *KCPHost) Server() bool { return h.server }

func (h *KCPHost) acceptLoop() {
	for {
		conn, err := h.listener.AcceptKCP()
		if err != nil {
			if !h.closed.Load() {
				logx.Errorf("kcp accept failed: %v", err)
			}
			return
		}
		tuneSession(conn)
		id, err := readConnID(conn)
		if err != nil {
			logx.Errorf("kcp: failed to read connection id preamble: %v", err)
			conn.Close()
			continue
		}
		h.adopt(conn, id)
	}
}

// readConnID and writeConnID exchange the 4-byte connection-id preamble
// that stands in for ENetPeer::connectID: since a kcp-go session is just
// a byte stream with no such field of its own, the dialing side mints a
// random id and the accepting side adopts it, so both ends of one
// connection agree on the same Peer.ID() without a central allocator that
// could span two separate processes.
func readConnID(conn *kcp.UDPSession) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(conn, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func writeConnID(conn *kcp.UDPSession, id uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], id)
	_, err := conn.Write(buf[:])
	return err
}

func (h *KCPHost) adopt(conn *kcp.UDPSession, id uint32) *kcpPeer {
	p := &kcpPeer{id: id, conn: conn, host: h}
	h.mu.Lock()
	h.peers[p.id] = p
	h.mu.Unlock()
	go p.readLoop()
	h.events <- Event{Type: EventConnect, Peer: p}
	return p
}

func (h *KCPHost) Connect(remoteAddr string) (Peer, error) {
	conn, err := kcp.DialWithOptions(remoteAddr, nil, 10, 3)
	if err != nil {
		return nil, errors.Wrap(err, "kcp dial failed")
	}
	tuneSession(conn)
	id := atomic.AddUint32(&kcpNextPeerID, 1)
	if err := writeConnID(conn, id); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "kcp connection id handshake failed")
	}
	return h.adopt(conn, id), nil
}

func (h *KCPHost) Broadcast(channel uint8, flags PacketFlags, data []byte) {
	h.mu.Lock()
	peers := make([]*kcpPeer, 0, len(h.peers))
	for _, p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.Unlock()
	for _, p := range peers {
		_ = p.Send(channel, flags, data)
	}
}

// Flush writes every peer's queued outbound frames onto the wire now.
func (h *KCPHost) Flush() {
	h.mu.Lock()
	peers := make([]*kcpPeer, 0, len(h.peers))
	for _, p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.Unlock()
	for _, p := range peers {
		p.flushOutbox()
	}
}

func (h *KCPHost) Close() {
	if h.closed.Load() {
		return
	}
	h.closed.Store(true)
	h.mu.Lock()
	peers := make([]*kcpPeer, 0, len(h.peers))
	for _, p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.Unlock()
	if h.listener != nil {
		h.listener.Close()
	}
	for _, p := range peers {
		p.Reset()
	}
}

func (h *KCPHost) CheckEvents() (Event, bool) {
	select {
	case ev := <-h.events:
		return ev, true
	default:
		return Event{}, false
	}
}

func (h *KCPHost) Service(timeout time.Duration) (Event, bool) {
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

func (h *KCPHost) removePeer(id uint32) {
	h.mu.Lock()
	delete(h.peers, id)
	h.mu.Unlock()
}

// readLoop decodes the channel|flags|length-prefixed frame format this
// host writes in flushOutbox, and turns each frame into an EventReceive. Stream
// EOF or a read error is reported as EventDisconnect.
func (p *kcpPeer) readLoop() {
	header := make([]byte, 6)
	for {
		if _, err := io.ReadFull(p.conn, header); err != nil {
			p.host.removePeer(p.id)
			p.host.events <- Event{Type: EventDisconnect, Peer: p}
			return
		}
		channel := header[0]
		flags := PacketFlags(header[1])
		length := binary.BigEndian.Uint32(header[2:6])
		payload := make([]byte, length)
		if _, err := io.ReadFull(p.conn, payload); err != nil {
			p.host.removePeer(p.id)
			p.host.events <- Event{Type: EventDisconnect, Peer: p}
			return
		}
		p.host.events <- Event{Type: EventReceive, Peer: p, Channel: channel, Packet: Packet{Flags: flags, Data: payload}}
	}
}

func (p *kcpPeer) ID() uint32 { return p.id }

// Send queues a frame for delivery; it is not written to the kcp session
// until flushOutbox runs, via Flush, DisconnectLater or DisconnectNow.
func (p *kcpPeer) Send(channel uint8, flags PacketFlags, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed.Load() {
		return fmt.Errorf("transport: peer is not connected")
	}
	cp := append([]byte(nil), data...)
	p.outbox = append(p.outbox, kcpFrame{channel: channel, flags: flags, data: cp})
	return nil
}

// flushOutbox writes every queued frame onto the kcp stream and empties
// the queue.
func (p *kcpPeer) flushOutbox() error {
	p.mu.Lock()
	pending := p.outbox
	p.outbox = nil
	p.mu.Unlock()
	for _, f := range pending {
		header := make([]byte, 6+len(f.data))
		header[0] = f.channel
		header[1] = byte(f.flags)
		binary.BigEndian.PutUint32(header[2:6], uint32(len(f.data)))
		copy(header[6:], f.data)
		if _, err := p.conn.Write(header); err != nil {
			return err
		}
	}
	return nil
}

// dropOutbox discards whatever is currently queued without writing it.
func (p *kcpPeer) dropOutbox() {
	p.mu.Lock()
	p.outbox = nil
	p.mu.Unlock()
}

// DisconnectLater flushes whatever is queued, then disconnects.
func (p *kcpPeer) DisconnectLater(data uint32) {
	p.flushOutbox()
	p.closeConn(data)
}

// Disconnect drops whatever is queued and disconnects without flushing
// it, as distinct from DisconnectNow below.
func (p *kcpPeer) Disconnect(data uint32) {
	p.dropOutbox()
	p.closeConn(data)
}

// DisconnectNow forces immediate delivery of whatever is queued, then
// disconnects.
func (p *kcpPeer) DisconnectNow(data uint32) {
	p.flushOutbox()
	p.closeConn(data)
}

func (p *kcpPeer) closeConn(uint32) {
	if p.closed.Load() {
		return
	}
	p.closed.Store(true)
	p.conn.Close()
}

func (p *kcpPeer) Reset() {
	p.dropOutbox()
	p.closeConn(0)
}

func (p *kcpPeer) SetUserData(v interface{}) {
	p.mu.Lock()
	p.userData = v
	p.mu.Unlock()
}

func (p *kcpPeer) UserData() interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.userData
}
