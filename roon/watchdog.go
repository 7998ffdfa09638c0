// ABOUTME: Keepalive watchdog — forces the transport closed after a
// ABOUTME: silence window, using a clock that advances through process sleep
package roon

import (
	"time"
)

// setWallNow must only be called from inside the actor. It records the
// last-frame timestamp using time.Now().Round(0), which strips the
// monotonic reading Go attaches to every time.Time. Subtracting two such
// "wall-only" timestamps measures real elapsed time including any
// interval the process spent suspended — the monotonic reading Go
// otherwise prefers for Sub does not advance across a suspend/resume on
// most platforms, which would make the watchdog blind to exactly the
// silence it exists to detect.
func (cc *Connection) setWallNow() {
	cc.lastFrame = time.Now().Round(0).UnixNano()
}

func (cc *Connection) wallElapsedSinceLastFrame() time.Duration {
	return time.Duration(time.Now().Round(0).UnixNano() - cc.lastFrame)
}

// watchdogLoop polls at a quarter of the keepalive deadline and, finding
// the connection stale, forces the transport closed — the receive loop
// observes this as an error and drives teardown/reconnect exactly as it
// would for any other transport failure. The loop itself never touches
// state beyond that; it is a trigger, not a decision-maker.
func (c *Connection) watchdogLoop(gen int64, deadline time.Duration) {
	interval := deadline / 4
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var ctx interface{ Done() <-chan struct{} }
	c.enqueueSync(func(cc *Connection) {
		if cc.connGen == gen && cc.connCtx != nil {
			ctx = cc.connCtx
		}
	})
	if ctx == nil {
		return
	}

	for {
		select {
		case <-ticker.C:
			c.enqueue(func(cc *Connection) {
				if cc.connGen != gen || cc.state.Kind != Connected {
					return
				}
				if cc.wallElapsedSinceLastFrame() >= deadline {
					if cc.transport != nil {
						_ = cc.transport.Close(1001, "watchdog timeout")
					}
				}
			})
		case <-ctx.Done():
			return
		}
	}
}
