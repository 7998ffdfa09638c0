// ABOUTME: Drives repeated doConnect attempts paced by the Reconnector
// ABOUTME: after a previously-Connected session is lost
package roon

import "time"

// startReconnectLoop is spawned exactly once per loss of an established
// connection (from onReceiveError, never from a failed first Connect).
// It paces retries with the Reconnector and stops on success, on
// exhaustion, or once the state has left Reconnecting (Disconnect, or a
// caller's own Connect, took over).
func (c *Connection) startReconnectLoop() {
	for {
		delay, ok := c.reconnector.NextDelay()
		if !ok {
			c.enqueue(func(cc *Connection) {
				if cc.state.Kind == Reconnecting {
					cc.setState(ConnectionState{Kind: Failed, Err: ErrMaxReconnectAttemptsExceeded})
				}
			})
			return
		}

		time.Sleep(delay)

		stopped := false
		c.enqueueSync(func(cc *Connection) {
			if cc.state.Kind != Reconnecting {
				stopped = true
				return
			}
			cc.setState(ConnectionState{Kind: Reconnecting, Attempt: cc.reconnector.Attempt()})
		})
		if stopped {
			return
		}

		if err := c.doConnect(true); err == nil {
			return
		}
	}
}
