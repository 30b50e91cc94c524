// Command demo wires the ECS store and the session layer together over a
// loopback transport: it spins up a server and a client network on the
// same process, lets them complete the handshake, creates a couple of ECS
// entities to react to the resulting Connect event, and exchanges one
// message before shutting everything down. It exists to exercise the
// integration glue end to end, the way the teacher repo's examples/
// programs exercise a gate/game pair.
package main

import (
	"time"

	"github.com/NIKEA-SOFT/HelenaSystems/engine/bus"
	"github.com/NIKEA-SOFT/HelenaSystems/engine/ecs"
	"github.com/NIKEA-SOFT/HelenaSystems/engine/logx"
	"github.com/NIKEA-SOFT/HelenaSystems/engine/session"
	"github.com/NIKEA-SOFT/HelenaSystems/engine/transport"
)

// Online is attached to an ECS entity representing a remote peer once the
// session layer reports it Connected.
type Online struct {
	Conn session.Connection
}

func main() {
	logx.SetComponent("demo")

	appBus := bus.New()
	store := ecs.NewStore(appBus)

	serverMgr := session.New(appBus, transport.NewLoopbackServer, transport.NewLoopbackClient)
	clientMgr := session.New(appBus, transport.NewLoopbackServer, transport.NewLoopbackClient)
	defer serverMgr.Close()
	defer clientMgr.Close()

	bus.Subscribe(appBus, func(ev session.ConnectEvent) {
		e := store.Create()
		ecs.Add[Online](store, e, Online{Conn: ev.Connection})
		logx.Infof("peer connected, spawned entity %v", e)
	})
	bus.Subscribe(appBus, func(ev session.MessageEvent) {
		logx.Infof("received %d bytes on channel %d: %q", len(ev.Data), ev.Channel, ev.Data)
	})

	server, err := serverMgr.CreateServer(session.Config{IP: "127.0.0.1", Port: 19900})
	if err != nil {
		logx.Fatalf("create_server failed: %v", err)
	}

	_, conn, err := clientMgr.CreateClient(session.Config{}, "127.0.0.1:19900")
	if err != nil {
		logx.Fatalf("create_client failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for ecs.SizeOf[Online](store) == 0 && time.Now().Before(deadline) {
		server.Service(100, 10*time.Millisecond)
		clientMgr.ServiceAll()
	}

	conn.Send(session.MessageReliable, 1, []byte("hello from client"))
	clientMgr.ServiceAll()
	server.Service(100, 50*time.Millisecond)

	var online []ecs.Entity
	store.Each(func(e ecs.Entity) {
		if ecs.Has[Online](store, e) {
			online = append(online, e)
		}
	})
	logx.Infof("online entities: %v", online)
}
