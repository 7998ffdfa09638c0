// ABOUTME: The receive loop — decodes inbound frames and dispatches them
// ABOUTME: to pending requests, subscriptions, or the inbound ping service
package roon

import (
	"fmt"
	"log"

	"github.com/teancom/RoonKit/codec"
	"github.com/teancom/RoonKit/transport"
)

// receiveLoop owns one Transport for the lifetime of generation gen. It
// exits (and tears down) the moment Receive returns an error, which is
// also how watchdog-forced closes and explicit disconnects propagate:
// both simply close the transport and let this loop discover it.
func (c *Connection) receiveLoop(gen int64, fromReconnect bool) {
	var tr transport.Transport
	c.enqueueSync(func(cc *Connection) { tr = cc.transport })
	if tr == nil {
		return
	}

	for {
		msg, err := tr.Receive()
		if err != nil {
			c.enqueue(func(cc *Connection) { cc.onReceiveError(gen, err, fromReconnect) })
			return
		}

		frame, decErr := codec.Decode(msg.Data)
		if decErr != nil {
			log.Printf("roonkit: dropping malformed frame: %v", decErr)
			continue
		}

		c.enqueue(func(cc *Connection) {
			if cc.connGen != gen {
				return
			}
			cc.setWallNow()
			if frame.IsRequest {
				cc.handleInboundRequest(tr, frame.Request)
				return
			}
			cc.dispatchResponse(frame.Response)
		})
	}
}

// onReceiveError must only be called from inside the actor.
func (cc *Connection) onReceiveError(gen int64, err error, fromReconnect bool) {
	if gen != cc.connGen {
		return
	}
	wasConnected := cc.state.Kind == Connected
	var next ConnectionState
	switch {
	case wasConnected:
		next = ConnectionState{Kind: Reconnecting, Attempt: cc.reconnector.Attempt() + 1}
	case fromReconnect:
		next = ConnectionState{Kind: Reconnecting, Attempt: cc.reconnector.Attempt()}
	default:
		next = ConnectionState{Kind: Failed, Err: fmt.Errorf("%w: %v", ErrConnectionClosed, err)}
	}
	cc.teardownLocked(gen, next)
	if wasConnected {
		go cc.startReconnectLoop()
	}
}

// dispatchResponse must only be called from inside the actor.
func (cc *Connection) dispatchResponse(resp *codec.Response) {
	if pr, ok := cc.pending[resp.ID]; ok {
		delete(cc.pending, resp.ID)
		pr.resolve(resp, nil)
		return
	}

	sub, ok := cc.subs[resp.ID]
	if !ok {
		// Unmatched response: either a late arrival for a request that
		// was already claimed by timeout/teardown, or a subscription
		// event for an id we no longer track. Per spec, codec/dispatch
		// errors for a single frame are dropped, not fatal.
		return
	}

	select {
	case sub.ch <- resp:
	default:
		log.Printf("roonkit: subscription %d backpressure, dropping event", resp.ID)
	}

	if resp.Verb == codec.VerbComplete {
		delete(cc.subs, resp.ID)
		close(sub.ch)
	}
}

// handleInboundRequest must only be called from inside the actor. The
// Core's request id space is independent of the client's; replies use
// the Core's id verbatim.
func (cc *Connection) handleInboundRequest(tr transport.Transport, req *codec.Request) {
	if req.Service == "com.roonlabs.ping:1" && req.Method == "ping" {
		cc.pingsSinceRegister++
		if cc.state.Kind == Registering && cc.pingsSinceRegister >= cc.cfg.PingsBeforeAwaitingAuthorization {
			cc.setState(ConnectionState{Kind: AwaitingAuthorization})
		}
		data, err := codec.EncodeResponse(req.ID, codec.VerbComplete, "Success", nil)
		if err != nil {
			log.Printf("roonkit: failed to encode ping reply: %v", err)
			return
		}
		go tr.Send(data)
		return
	}

	data, err := codec.EncodeResponse(req.ID, codec.VerbComplete, "InvalidRequest", map[string]interface{}{
		"error": fmt.Sprintf("no such service/method: %s/%s", req.Service, req.Method),
	})
	if err != nil {
		log.Printf("roonkit: failed to encode InvalidRequest reply: %v", err)
		return
	}
	go tr.Send(data)
}
