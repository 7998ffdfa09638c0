package transport

import (
	"sync"
)

// Fake is an in-memory Transport used to drive Connection tests
// deterministically, the same role the teacher's tests give a fake
// oto context or decoder. Sent frames are captured on Outbox; inbound
// frames are injected via Push. Close is idempotent and unblocks any
// pending Receive.
type Fake struct {
	mu      sync.Mutex
	inbox   chan Message
	closed  bool
	closeCh chan struct{}

	Outbox [][]byte
	Pings  int

	// Sent mirrors every successful Send call, letting a test "server"
	// block waiting for the client's next outgoing frame instead of
	// polling Outbox.
	Sent chan []byte

	// SendErr, when set, is returned by every subsequent Send call.
	SendErr error
}

// NewFake creates a ready-to-use fake transport.
func NewFake() *Fake {
	return &Fake{
		inbox:   make(chan Message, 64),
		closeCh: make(chan struct{}),
		Sent:    make(chan []byte, 64),
	}
}

// Push enqueues an inbound frame that a subsequent Receive will return.
func (f *Fake) Push(kind MessageKind, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.inbox <- Message{Kind: kind, Data: data}
}

// PushBinary is shorthand for Push(Binary, data).
func (f *Fake) PushBinary(data []byte) { f.Push(Binary, data) }

func (f *Fake) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	if f.SendErr != nil {
		return f.SendErr
	}
	f.Outbox = append(f.Outbox, append([]byte(nil), data...))
	f.Sent <- append([]byte(nil), data...)
	return nil
}

func (f *Fake) Receive() (Message, error) {
	select {
	case msg := <-f.inbox:
		return msg, nil
	case <-f.closeCh:
		return Message{}, ErrClosed
	}
}

func (f *Fake) SendPing() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Pings++
	return nil
}

func (f *Fake) Close(code int, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	close(f.closeCh)
	return nil
}

// IsClosed reports whether Close has been called.
func (f *Fake) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
