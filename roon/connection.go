// ABOUTME: Connection is the MOO/1 actor: one serialized execution context
// ABOUTME: owning pending requests, subscriptions, state, and the id counter
package roon

import (
	"context"
	"fmt"
	"log"

	"github.com/teancom/RoonKit/reconnect"
	"github.com/teancom/RoonKit/transport"
)

// actorCmd is a unit of work executed by the single actor goroutine. It
// must only touch Connection's actor-owned fields from inside this
// function — never from the calling goroutine.
type actorCmd func(*Connection)

// Connection correlates requests, routes responses, runs the registration
// handshake, owns subscriptions, runs the keepalive watchdog, and drives
// reconnection. All of its mutable state is touched only from the single
// actor goroutine started by New; every public method reaches that state
// by enqueuing a command rather than locking a mutex.
type Connection struct {
	cfg         Config
	reconnector *reconnect.Reconnector

	cmds chan actorCmd

	// actor-owned state — read/written only inside actorLoop.
	transport transport.Transport
	state     ConnectionState
	nextID    int64
	pending   map[int64]*pendingRequest
	subs      map[int64]*subscriptionEntry
	stateSub  chan ConnectionState

	connGen    int64
	connCtx    context.Context
	connCancel context.CancelFunc
	lastFrame  int64 // unix nanoseconds, wall-clock only (see watchdog.go)

	pingsSinceRegister int
}

// New creates a Connection and starts its actor goroutine. The Connection
// does not dial anything until Connect is called.
func New(cfg Config) *Connection {
	def := DefaultConfig()
	if cfg.Port == 0 {
		cfg.Port = def.Port
	}
	if cfg.RequiredServices == nil {
		cfg.RequiredServices = def.RequiredServices
	}
	if cfg.ProvidedServices == nil {
		cfg.ProvidedServices = def.ProvidedServices
	}
	if cfg.Tokens == nil {
		cfg.Tokens = def.Tokens
	}
	if cfg.Dial == nil {
		cfg.Dial = def.Dial
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	if cfg.RegistrationTimeout <= 0 {
		cfg.RegistrationTimeout = def.RegistrationTimeout
	}
	if cfg.KeepaliveDeadline <= 0 {
		cfg.KeepaliveDeadline = def.KeepaliveDeadline
	}
	if cfg.PingsBeforeAwaitingAuthorization <= 0 {
		cfg.PingsBeforeAwaitingAuthorization = def.PingsBeforeAwaitingAuthorization
	}

	c := &Connection{
		cfg:         cfg,
		reconnector: reconnect.New(cfg.Reconnect),
		cmds:        make(chan actorCmd, 64),
		state:       ConnectionState{Kind: Disconnected},
		pending:     make(map[int64]*pendingRequest),
		subs:        make(map[int64]*subscriptionEntry),
	}
	go c.actorLoop()
	return c
}

func (c *Connection) actorLoop() {
	for cmd := range c.cmds {
		cmd(c)
	}
}

// enqueue submits cmd to the actor and returns without waiting for it to
// run. Used for fire-and-forget state mutations driven by async events
// (receive-loop dispatch, timers).
func (c *Connection) enqueue(cmd actorCmd) {
	c.cmds <- cmd
}

// enqueueSync submits cmd and blocks until the actor has run it,
// guaranteeing the caller observes the mutation's side effects.
func (c *Connection) enqueueSync(cmd actorCmd) {
	done := make(chan struct{})
	c.cmds <- func(cc *Connection) {
		cmd(cc)
		close(done)
	}
	<-done
}

// State returns the current connection state.
func (c *Connection) State() ConnectionState {
	var s ConnectionState
	c.enqueueSync(func(cc *Connection) { s = cc.state })
	return s
}

// StateStream returns a fresh stream of state transitions, emitting the
// current state immediately. Any previously returned stream is finished
// (closed) so its consumer terminates rather than hangs (spec invariant:
// state-stream supersession).
func (c *Connection) StateStream() <-chan ConnectionState {
	ch := make(chan ConnectionState, 8)
	c.enqueueSync(func(cc *Connection) {
		if cc.stateSub != nil {
			close(cc.stateSub)
		}
		cc.stateSub = ch
		ch <- cc.state
	})
	return ch
}

// setState must only be called from inside the actor.
func (cc *Connection) setState(s ConnectionState) {
	cc.state = s
	if cc.stateSub != nil {
		select {
		case cc.stateSub <- s:
		default:
			log.Printf("roonkit: state stream backpressure, dropping %v", s.Kind)
		}
	}
}

// Connect begins the connect/registration sequence. Per spec it is only
// valid from Disconnected, Failed, or Reconnecting; otherwise it is a
// no-op. It blocks until Connected or until the attempt definitively
// fails (registration failure, dial failure) — not while waiting out
// reconnect backoff, which runs in the background after a prior
// Connected session is lost.
func (c *Connection) Connect() error {
	allowed := false
	c.enqueueSync(func(cc *Connection) {
		switch cc.state.Kind {
		case Disconnected, Failed, Reconnecting:
			allowed = true
		}
	})
	if !allowed {
		return nil
	}
	return c.doConnect(false)
}

// doConnect performs one dial+register attempt. fromReconnect indicates
// this attempt is being driven by the background reconnect loop, which
// changes how a failure before reaching Connected is reported (it must
// stay Reconnecting so the loop can retry, rather than flashing Failed).
func (c *Connection) doConnect(fromReconnect bool) error {
	c.enqueue(func(cc *Connection) {
		if !fromReconnect {
			cc.setState(ConnectionState{Kind: Connecting})
		}
	})

	tr, err := c.cfg.Dial(c.cfg.Host, c.cfg.Port)
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrConnectionFailed, err)
		c.enqueue(func(cc *Connection) {
			cc.failAttempt(wrapped, fromReconnect)
		})
		return wrapped
	}

	var gen int64
	c.enqueueSync(func(cc *Connection) {
		cc.connGen++
		gen = cc.connGen
		cc.transport = tr
		cc.setWallNow()
		cc.connCtx, cc.connCancel = context.WithCancel(context.Background())
		cc.setState(ConnectionState{Kind: Registering})
	})

	go c.receiveLoop(gen, fromReconnect)

	if err := c.register(gen); err != nil {
		c.enqueue(func(cc *Connection) {
			cc.teardownLocked(gen, cc.failureState(fromReconnect, err))
		})
		return err
	}

	go c.watchdogLoop(gen, c.cfg.KeepaliveDeadline)
	c.reconnector.Reset()
	return nil
}

// failureState decides the state to transition to when an attempt fails
// before ever reaching Connected.
func (cc *Connection) failureState(fromReconnect bool, err error) ConnectionState {
	if fromReconnect {
		return ConnectionState{Kind: Reconnecting, Attempt: cc.reconnector.Attempt()}
	}
	return ConnectionState{Kind: Failed, Err: err}
}

// failAttempt handles a dial failure, which happens before any generation
// or transport exists, so there is nothing to tear down beyond the state.
func (cc *Connection) failAttempt(err error, fromReconnect bool) {
	cc.setState(cc.failureState(fromReconnect, err))
}

// Disconnect cancels any in-flight work, closes the transport, fails all
// pending requests and finishes all subscriptions, resets the id counter,
// and transitions to Disconnected. It does not attempt to reconnect.
func (c *Connection) Disconnect() {
	c.enqueueSync(func(cc *Connection) {
		cc.reconnector.Reset()
		gen := cc.connGen
		cc.teardownLocked(gen, ConnectionState{Kind: Disconnected})
		cc.nextID = 0
	})
}

// teardownLocked must only be called from inside the actor. It is
// idempotent per generation: a call whose gen no longer matches
// cc.connGen is a stale callback (the "task handle as liveness
// indicator" pitfall from spec.md §9) and is ignored.
func (cc *Connection) teardownLocked(gen int64, next ConnectionState) {
	if gen != cc.connGen {
		return
	}
	cc.connGen++
	cc.failAllPending(ErrConnectionClosed)
	cc.finishAllSubs()
	if cc.connCancel != nil {
		cc.connCancel()
		cc.connCancel = nil
	}
	if cc.transport != nil {
		_ = cc.transport.Close(1000, "teardown")
		cc.transport = nil
	}
	cc.setState(next)
}
