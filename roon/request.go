// ABOUTME: Request/response correlation — the no-drop, no-double-resume contract
package roon

import (
	"fmt"
	"time"

	"github.com/teancom/RoonKit/codec"
	"github.com/teancom/RoonKit/transport"
)

// pendingRequest holds the single resolver for one outstanding request.
// resolve must be called at most once; claimPending enforces this by
// removing the entry from cc.pending before calling it, inside the
// actor, so only the first of {response, send failure, timeout,
// teardown} to reach the actor wins.
type pendingRequest struct {
	id      int64
	resolve func(*codec.Response, error)
}

type pendingResult struct {
	resp *codec.Response
	err  error
}

// Send issues a correlated request and blocks for the response. It is
// only valid while Connected; per spec, commands may only be sent in
// that state.
func (c *Connection) Send(path string, body interface{}, timeout time.Duration) (*codec.Response, error) {
	var connected bool
	c.enqueueSync(func(cc *Connection) { connected = cc.state.Kind == Connected })
	if !connected {
		return nil, ErrNotConnected
	}
	return c.sendInternal(path, body, timeout)
}

// sendInternal performs the correlated send without the Connected check,
// used both by the public Send and by the registration handshake (which
// must send while Registering / AwaitingAuthorization).
//
// The ordering here is the entire point (spec.md §4.4.5): the pending
// entry is registered in the map before the send is initiated, and the
// send happens from a detached goroutine so that a response arriving
// during the send's own suspension is never lost. Every completion path
// — response arrival, send failure, timeout, teardown — resolves through
// claimPending's atomic take-from-map, which here is simply "executed as
// one actor turn," so only the first to run wins.
func (c *Connection) sendInternal(path string, body interface{}, timeout time.Duration) (*codec.Response, error) {
	if timeout <= 0 {
		timeout = c.cfg.RequestTimeout
	}

	resultCh := make(chan pendingResult, 1)
	var id int64
	var tr transport.Transport

	c.enqueueSync(func(cc *Connection) {
		id = cc.nextID
		cc.nextID++
		tr = cc.transport
		cc.pending[id] = &pendingRequest{
			id: id,
			resolve: func(resp *codec.Response, err error) {
				resultCh <- pendingResult{resp: resp, err: err}
			},
		}
	})

	if tr == nil {
		c.claimPending(id, nil, ErrNotConnected)
		return nil, ErrNotConnected
	}

	data, err := codec.EncodeRequest(id, path, body)
	if err != nil {
		c.claimPending(id, nil, err)
		return nil, err
	}

	go func() {
		if sendErr := tr.Send(data); sendErr != nil {
			c.claimPending(id, nil, fmt.Errorf("%w: %v", ErrConnectionClosed, sendErr))
		}
	}()

	timer := time.AfterFunc(timeout, func() {
		c.claimPending(id, nil, ErrTimeout)
	})
	defer timer.Stop()

	result := <-resultCh
	return result.resp, result.err
}

// claimPending is the atomic take-from-map claim: it runs inside the
// actor, so if the entry has already been removed by a different
// completion path, this call is a silent no-op — exactly one resolve
// ever fires per id.
func (c *Connection) claimPending(id int64, resp *codec.Response, err error) {
	c.enqueue(func(cc *Connection) {
		pr, ok := cc.pending[id]
		if !ok {
			return
		}
		delete(cc.pending, id)
		pr.resolve(resp, err)
	})
}

// failAllPending must only be called from inside the actor.
func (cc *Connection) failAllPending(err error) {
	for id, pr := range cc.pending {
		delete(cc.pending, id)
		pr.resolve(nil, err)
	}
}
