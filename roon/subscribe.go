// ABOUTME: Generic subscription registration — domain-specific "latest
// ABOUTME: wins" fan-out lives a layer up, in services/transport.
package roon

import (
	"github.com/teancom/RoonKit/codec"
	"github.com/teancom/RoonKit/transport"
)

// subscriptionEntry is a long-lived sink keyed by the request id that
// opened it.
type subscriptionEntry struct {
	id            int64
	ch            chan *codec.Response
	onUnsubscribe func()
}

// Subscribe opens a long-lived stream keyed by a freshly allocated
// request id. onUnsubscribe, if non-nil, is invoked (in its own
// goroutine, fire-and-forget) when the subscription ends via the
// returned cancel func — the caller supplies it because only the
// caller (a Services layer) knows the domain-specific unsubscribe
// request to issue, if any.
//
// The returned channel is closed when: the server sends COMPLETE, the
// caller invokes cancel, or the connection tears down. It is never
// closed twice and never left open past any of those events (spec
// invariant: subscription termination propagation).
func (c *Connection) Subscribe(path string, body interface{}, onUnsubscribe func()) (<-chan *codec.Response, func(), error) {
	var notConnected bool
	var id int64
	var tr transport.Transport
	ch := make(chan *codec.Response, 16)

	c.enqueueSync(func(cc *Connection) {
		if cc.state.Kind != Connected {
			notConnected = true
			return
		}
		id = cc.nextID
		cc.nextID++
		tr = cc.transport
		cc.subs[id] = &subscriptionEntry{id: id, ch: ch, onUnsubscribe: onUnsubscribe}
	})
	if notConnected {
		return nil, nil, ErrNotConnected
	}

	data, err := codec.EncodeRequest(id, path, body)
	if err != nil {
		c.removeSub(id, false)
		return nil, nil, err
	}

	go func() {
		if sendErr := tr.Send(data); sendErr != nil {
			c.removeSub(id, false)
		}
	}()

	cancel := func() { c.removeSub(id, true) }
	return ch, cancel, nil
}

// removeSub tears down subscription id if it is still present. When
// fireUnsubscribe is true (explicit caller cancel, as opposed to a send
// failure that never reached the server) the entry's onUnsubscribe
// callback is invoked.
func (c *Connection) removeSub(id int64, fireUnsubscribe bool) {
	c.enqueue(func(cc *Connection) {
		entry, ok := cc.subs[id]
		if !ok {
			return
		}
		delete(cc.subs, id)
		close(entry.ch)
		if fireUnsubscribe && entry.onUnsubscribe != nil {
			go entry.onUnsubscribe()
		}
	})
}

// finishAllSubs must only be called from inside the actor.
func (cc *Connection) finishAllSubs() {
	for id, s := range cc.subs {
		delete(cc.subs, id)
		close(s.ch)
	}
}
