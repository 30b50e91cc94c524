// Package safe runs callbacks with panic recovery, matching the discipline
// the session layer needs when invoking application event handlers: a
// misbehaving subscriber must not take down the tick loop.
package safe

import "github.com/NIKEA-SOFT/HelenaSystems/engine/logx"

// Run calls f and recovers any panic, logging it and reporting whether one
// occurred.
func Run(f func()) (paniced bool) {
	defer func() {
		if err := recover(); err != nil {
			logx.TraceError("panic recovered: %v", err)
			paniced = true
		}
	}()
	f()
	return
}
