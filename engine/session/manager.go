package session

import (
	"fmt"
	"time"

	"github.com/NIKEA-SOFT/HelenaSystems/engine/bus"
	"github.com/NIKEA-SOFT/HelenaSystems/engine/clock"
	"github.com/NIKEA-SOFT/HelenaSystems/engine/consts"
	"github.com/NIKEA-SOFT/HelenaSystems/engine/transport"
)

// HostFactory constructs the transport.Host backing a Network. Manager
// takes one factory for server hosts and one for client hosts so tests can
// wire transport.NewLoopbackServer/Client while production code wires
// transport.NewKCPServer/Client.
type HostFactory func(transport.Config) (transport.Host, error)

// Manager owns every virtual Network for one engine instance, subscribing
// to the Tick event on construction and unsubscribing on destruction, per
// the session layer's contract with the surrounding Engine.
type Manager struct {
	b *bus.Bus

	newServerHost HostFactory
	newClientHost HostFactory

	networks map[uint16]*Network
	nextID   uint16

	tickToken    bus.Token
	eventsLimit  int
	serviceTimeout time.Duration
}

// New creates a Manager bound to b and subscribes it to clock.Tick. The
// subscription is torn down by Close.
func New(b *bus.Bus, newServerHost, newClientHost HostFactory) *Manager {
	m := &Manager{
		b:              b,
		newServerHost:  newServerHost,
		newClientHost:  newClientHost,
		networks:       make(map[uint16]*Network),
		eventsLimit:    consts.SERVICE_EVENTS_LIMIT,
		serviceTimeout: consts.SERVICE_TIMEOUT,
	}
	m.tickToken = bus.Subscribe(b, m.onTick)
	return m
}

func (m *Manager) onTick(clock.Tick) {
	m.ServiceAll()
}

// ServiceAll services every owned network once, in network-enumeration
// order. The Engine calls this indirectly via clock.Tick; tests may call
// it directly to avoid a real ticker.
func (m *Manager) ServiceAll() {
	for id := uint16(0); id < m.nextID; id++ {
		if n, ok := m.networks[id]; ok {
			n.Service(m.eventsLimit, m.serviceTimeout)
		}
	}
}

// Close unsubscribes from Tick and shuts down every owned network.
func (m *Manager) Close() {
	m.b.Unsubscribe(m.tickToken)
	for _, n := range m.networks {
		n.Shutdown()
	}
	m.networks = nil
}

// CreateNetwork allocates a fresh virtual network with the next sequence
// ID; it does not yet own a host until CreateServer or CreateClient is
// called on it.
func (m *Manager) CreateNetwork() *Network {
	id := m.nextID
	m.nextID++
	n := newNetwork(id, m.b)
	m.networks[id] = n
	return n
}

// Network looks up a previously created network by its sequence ID.
func (m *Manager) Network(id uint16) (*Network, bool) {
	n, ok := m.networks[id]
	return n, ok
}

// DestroyNetwork shuts down and removes a network from the manager.
func (m *Manager) DestroyNetwork(id uint16) error {
	n, ok := m.networks[id]
	if !ok {
		return fmt.Errorf("session: no network with id %d", id)
	}
	n.Shutdown()
	delete(m.networks, id)
	return nil
}

// CreateServer is a convenience that allocates a new network and binds a
// server host to it in one call.
func (m *Manager) CreateServer(cfg Config) (*Network, error) {
	n := m.CreateNetwork()
	if err := n.CreateServer(m.newServerHost, cfg); err != nil {
		delete(m.networks, n.id)
		return nil, err
	}
	return n, nil
}

// CreateClient is a convenience that allocates a new network, binds a
// client host, and connects to remoteAddr in one call.
func (m *Manager) CreateClient(cfg Config, remoteAddr string) (*Network, Connection, error) {
	n := m.CreateNetwork()
	conn, err := n.CreateClient(m.newClientHost, cfg, remoteAddr)
	if err != nil {
		delete(m.networks, n.id)
		return nil, Connection{}, err
	}
	return n, conn, nil
}
