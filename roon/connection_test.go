package roon

import (
	"testing"
	"time"

	"github.com/teancom/RoonKit/codec"
	"github.com/teancom/RoonKit/tokenstore"
	"github.com/teancom/RoonKit/transport"
)

func newTestConfig(fake *transport.Fake) Config {
	cfg := DefaultConfig()
	cfg.Dial = func(host string, port int) (transport.Transport, error) { return fake, nil }
	cfg.ExtensionID = "ext1"
	cfg.DisplayName = "Test Extension"
	cfg.DisplayVersion = "1.0.0"
	cfg.Publisher = "Test"
	cfg.Email = "test@example.com"
	cfg.Tokens = tokenstore.NewInMemoryStore()
	cfg.RequestTimeout = 2 * time.Second
	cfg.RegistrationTimeout = 2 * time.Second
	cfg.KeepaliveDeadline = 200 * time.Millisecond
	cfg.Reconnect.MaxAttempts = 1
	return cfg
}

func nextSent(t *testing.T, fake *transport.Fake) *codec.Request {
	t.Helper()
	select {
	case data := <-fake.Sent:
		frame, err := codec.Decode(data)
		if err != nil {
			t.Fatalf("decode sent frame: %v", err)
		}
		if !frame.IsRequest {
			t.Fatalf("expected outgoing frame to be a request")
		}
		return frame.Request
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for client to send a frame")
		return nil
	}
}

func pushResponse(t *testing.T, fake *transport.Fake, id int64, verb codec.Verb, name string, body interface{}) {
	t.Helper()
	data, err := codec.EncodeResponse(id, verb, name, body)
	if err != nil {
		t.Errorf("encode response: %v", err)
		return
	}
	fake.PushBinary(data)
}

func performRegistration(t *testing.T, fake *transport.Fake, coreID, coreName, token string) {
	t.Helper()
	info := nextSent(t, fake)
	if info.Service != "com.roonlabs.registry:1" || info.Method != "info" {
		t.Fatalf("expected info request, got %s/%s", info.Service, info.Method)
	}
	pushResponse(t, fake, info.ID, codec.VerbComplete, "Success", map[string]interface{}{"core_id": coreID})

	reg := nextSent(t, fake)
	if reg.Service != "com.roonlabs.registry:1" || reg.Method != "register" {
		t.Fatalf("expected register request, got %s/%s", reg.Service, reg.Method)
	}
	body := map[string]interface{}{
		"core_id":            coreID,
		"display_name":       coreName,
		"display_version":    "1.8.0",
		"provided_services":  []interface{}{},
	}
	if token != "" {
		body["token"] = token
	}
	pushResponse(t, fake, reg.ID, codec.VerbComplete, "Registered", body)
}

func waitForState(t *testing.T, c *Connection, want StateKind, timeout time.Duration) ConnectionState {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		s := c.State()
		if s.Kind == want {
			return s
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for state %v, last was %v", want, c.State())
	return ConnectionState{}
}

// S1: registration.
func TestS1Registration(t *testing.T) {
	fake := transport.NewFake()
	cfg := newTestConfig(fake)
	c := New(cfg)

	errCh := make(chan error, 1)
	go func() { errCh <- c.Connect() }()

	performRegistration(t, fake, "c1", "Studio", "t1")

	if err := <-errCh; err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}

	state := c.State()
	if state.Kind != Connected || state.CoreID != "c1" || state.CoreName != "Studio" {
		t.Fatalf("unexpected state: %+v", state)
	}

	tok, ok := cfg.Tokens.Token("c1")
	if !ok || tok != "t1" {
		t.Errorf("token not saved: %q, %v", tok, ok)
	}
}

// S2: a server response observed synchronously during send still
// completes the caller, repeated rapidly, with no hang.
func TestS2FastResponse(t *testing.T) {
	fake := transport.NewFake()
	cfg := newTestConfig(fake)
	c := New(cfg)

	go func() { c.Connect() }()
	performRegistration(t, fake, "c1", "Studio", "")
	waitForState(t, c, Connected, time.Second)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			req := nextSent(t, fake)
			pushResponse(t, fake, req.ID, codec.VerbComplete, "Success", nil)
		}
	}()

	for i := 0; i < 10; i++ {
		resp, err := c.Send("com.roonlabs.transport:2/control",
			map[string]interface{}{"zone_or_output_id": "z1", "control": "play"}, time.Second)
		if err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
		if !codec.IsSuccess(resp.Name) {
			t.Fatalf("send %d: unexpected response %s", i, resp.Name)
		}
	}
	<-done
}

// S3: send timeout fires within roughly the requested bound.
func TestS3SendTimeout(t *testing.T) {
	fake := transport.NewFake()
	cfg := newTestConfig(fake)
	c := New(cfg)

	go func() { c.Connect() }()
	performRegistration(t, fake, "c1", "Studio", "")
	waitForState(t, c, Connected, time.Second)

	start := time.Now()
	_, err := c.Send("com.roonlabs.transport:2/control", nil, 100*time.Millisecond)
	elapsed := time.Since(start)
	if err == nil {
		t.Fatalf("expected a timeout error")
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("timeout took too long: %v", elapsed)
	}
}

// S4: watchdog-triggered reconnect after keepalive silence.
func TestS4Watchdog(t *testing.T) {
	fake := transport.NewFake()
	cfg := newTestConfig(fake)
	c := New(cfg)

	go func() { c.Connect() }()
	performRegistration(t, fake, "c1", "Studio", "")
	waitForState(t, c, Connected, time.Second)

	states := c.StateStream()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s, ok := <-states:
			if !ok {
				t.Fatalf("state stream closed unexpectedly")
			}
			if s.Kind == Reconnecting || s.Kind == Failed {
				return
			}
		case <-deadline:
			t.Fatalf("expected watchdog-triggered state change within deadline")
		}
	}
}

// Invariant #2/#3: a response arriving concurrently with teardown
// resolves the caller exactly once — no hang, no double-resume panic.
func TestAtMostOnceResume(t *testing.T) {
	fake := transport.NewFake()
	cfg := newTestConfig(fake)
	c := New(cfg)

	go func() { c.Connect() }()
	performRegistration(t, fake, "c1", "Studio", "")
	waitForState(t, c, Connected, time.Second)

	resultCh := make(chan error, 1)
	go func() {
		_, err := c.Send("com.roonlabs.transport:2/control", nil, time.Second)
		resultCh <- err
	}()

	req := nextSent(t, fake)
	go pushResponse(t, fake, req.ID, codec.VerbComplete, "Success", nil)
	go c.Disconnect()

	select {
	case <-resultCh:
	case <-time.After(2 * time.Second):
		t.Fatalf("Send neither completed nor failed")
	}
}

// Invariant #4: tearing down the connection finishes every open
// subscription sink.
func TestSubscriptionTerminationOnTeardown(t *testing.T) {
	fake := transport.NewFake()
	cfg := newTestConfig(fake)
	c := New(cfg)

	go func() { c.Connect() }()
	performRegistration(t, fake, "c1", "Studio", "")
	waitForState(t, c, Connected, time.Second)

	ch, _, err := c.Subscribe("com.roonlabs.transport:2/subscribe_zones", nil, nil)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	nextSent(t, fake) // drain the subscribe request itself

	c.Disconnect()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatalf("expected subscription channel closed, got a value")
		}
	case <-time.After(time.Second):
		t.Fatalf("subscription channel not closed after teardown")
	}
}

// Invariant #8: StateStream supersession.
func TestStateStreamSupersession(t *testing.T) {
	fake := transport.NewFake()
	cfg := newTestConfig(fake)
	c := New(cfg)

	first := c.StateStream()
	s0 := <-first
	if s0.Kind != Disconnected {
		t.Fatalf("expected initial Disconnected, got %v", s0.Kind)
	}

	second := c.StateStream()
	select {
	case _, ok := <-first:
		if ok {
			t.Fatalf("expected first stream closed")
		}
	case <-time.After(time.Second):
		t.Fatalf("first stream not closed after supersession")
	}

	s1 := <-second
	if s1.Kind != Disconnected {
		t.Fatalf("expected second stream's immediate state Disconnected, got %v", s1.Kind)
	}
}

// Invariant #9: a token saved from a successful registration is sent on
// the next connect.
func TestTokenReuseOnReconnect(t *testing.T) {
	fake := transport.NewFake()
	cfg := newTestConfig(fake)
	c := New(cfg)

	go func() { c.Connect() }()
	performRegistration(t, fake, "c1", "Studio", "t1")
	waitForState(t, c, Connected, time.Second)

	c.Disconnect()
	waitForState(t, c, Disconnected, time.Second)

	fake2 := transport.NewFake()
	c.cfg.Dial = func(host string, port int) (transport.Transport, error) { return fake2, nil }

	go func() { c.Connect() }()
	info := nextSent(t, fake2)
	pushResponse(t, fake2, info.ID, codec.VerbComplete, "Success", map[string]interface{}{"core_id": "c1"})

	reg := nextSent(t, fake2)
	tok, _ := reg.Body["token"].(string)
	if tok != "t1" {
		t.Fatalf("expected reused token t1, got %q", tok)
	}
	pushResponse(t, fake2, reg.ID, codec.VerbComplete, "Registered", map[string]interface{}{
		"core_id": "c1", "display_name": "Studio", "token": "t1",
	})
}

// connect() is a no-op outside Disconnected/Failed/Reconnecting.
func TestConnectNoOpWhenConnected(t *testing.T) {
	fake := transport.NewFake()
	cfg := newTestConfig(fake)
	c := New(cfg)

	go func() { c.Connect() }()
	performRegistration(t, fake, "c1", "Studio", "")
	waitForState(t, c, Connected, time.Second)

	if err := c.Connect(); err != nil {
		t.Fatalf("expected no-op nil error, got %v", err)
	}
	select {
	case <-fake.Sent:
		t.Fatalf("expected no additional frames sent for no-op Connect")
	case <-time.After(100 * time.Millisecond):
	}
}
