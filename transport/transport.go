// ABOUTME: Duplex binary transport abstraction for the MOO/1 connection
// ABOUTME: Backed by gorilla/websocket; a fake implementation drives tests
package transport

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// ErrClosed is returned by Fake's Receive/Send once Close has been
// called. WebSocketTransport instead returns the underlying websocket
// error, wrapped.
var ErrClosed = errors.New("transport: closed")

// MessageKind distinguishes the two WebSocket message kinds the Core may
// send. Text is decoded as UTF-8 and treated identically to Binary by the
// codec layer.
type MessageKind int

const (
	Binary MessageKind = iota
	Text
)

// Message is one inbound frame as delivered by Receive.
type Message struct {
	Kind MessageKind
	Data []byte
}

// Transport is a duplex binary WebSocket abstraction. Implementations must
// be safe to use from two concurrent contexts: one sender, one receiver.
// Close must be idempotent and must cause any outstanding Receive to fail.
type Transport interface {
	Send(data []byte) error
	Receive() (Message, error)
	SendPing() error
	Close(code int, reason string) error
}

// DefaultPort is the default Roon Core WebSocket port.
const DefaultPort = 9100

// WebSocketTransport is the production Transport, grounded on the
// teacher's internal/client/websocket.go dial/ReadMessage/WriteMessage
// pattern — generalized from a fixed JSON-message protocol to raw
// MOO/1 byte frames, and split into its own seam so Connection can be
// tested against a Fake instead.
type WebSocketTransport struct {
	conn *websocket.Conn
}

// Dial opens a WebSocket connection to a Roon Core at host:port.
func Dial(host string, port int) (*WebSocketTransport, error) {
	if host == "" {
		return nil, fmt.Errorf("transport: empty host")
	}
	if port == 0 {
		port = DefaultPort
	}
	u := url.URL{Scheme: "ws", Host: fmt.Sprintf("%s:%d", host, port), Path: "/api"}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("transport: dial failed: %w", err)
	}
	return &WebSocketTransport{conn: conn}, nil
}

func (t *WebSocketTransport) Send(data []byte) error {
	if err := t.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("transport: send failed: %w", err)
	}
	return nil
}

func (t *WebSocketTransport) Receive() (Message, error) {
	kind, data, err := t.conn.ReadMessage()
	if err != nil {
		return Message{}, fmt.Errorf("transport: receive failed: %w", err)
	}
	switch kind {
	case websocket.BinaryMessage:
		return Message{Kind: Binary, Data: data}, nil
	case websocket.TextMessage:
		return Message{Kind: Text, Data: data}, nil
	default:
		return Message{}, fmt.Errorf("transport: unsupported message kind %d", kind)
	}
}

func (t *WebSocketTransport) SendPing() error {
	return t.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

func (t *WebSocketTransport) Close(code int, reason string) error {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return t.conn.Close()
}
