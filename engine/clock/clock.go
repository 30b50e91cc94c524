// Package clock defines the Tick event the session layer subscribes to and
// a minimal driver for standalone use. A full host application is expected
// to bring its own tick loop and simply Publish clock.Tick itself; Ticker
// exists so tests and small demos do not need one.
package clock

import (
	"time"

	"github.com/NIKEA-SOFT/HelenaSystems/engine/bus"
)

// Tick is published once per engine frame. Dt is the elapsed time since the
// previous tick.
type Tick struct {
	Dt time.Duration
}

// Ticker publishes Tick events on a fixed interval until Stop is called.
type Ticker struct {
	stop chan struct{}
}

// Start begins publishing Tick events onto b every interval, from a new
// goroutine, until Stop is called.
func Start(b *bus.Bus, interval time.Duration) *Ticker {
	t := &Ticker{stop: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		last := time.Now()
		for {
			select {
			case now := <-ticker.C:
				dt := now.Sub(last)
				last = now
				bus.Publish(b, Tick{Dt: dt})
			case <-t.stop:
				return
			}
		}
	}()
	return t
}

// Stop halts further Tick publication.
func (t *Ticker) Stop() {
	close(t.stop)
}
