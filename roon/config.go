// ABOUTME: Connection configuration and registration identity
// ABOUTME: Mirrors the teacher's plain-struct-plus-DefaultConfig config shape
package roon

import (
	"time"

	"github.com/teancom/RoonKit/reconnect"
	"github.com/teancom/RoonKit/tokenstore"
	"github.com/teancom/RoonKit/transport"
)

// Dialer opens a Transport to a Roon Core. Production code uses
// transport.Dial; tests substitute a func that hands back a transport.Fake.
type Dialer func(host string, port int) (transport.Transport, error)

// Config carries everything a Connection needs to dial, register, and
// maintain a session with a single Roon Core.
type Config struct {
	Host string
	Port int

	ExtensionID     string
	DisplayName     string
	DisplayVersion  string
	Publisher       string
	Email           string
	Website         string
	RequiredServices []string
	OptionalServices []string
	ProvidedServices []string

	Tokens tokenstore.Store
	Reconnect reconnect.Config
	Dial Dialer

	RequestTimeout      time.Duration
	RegistrationTimeout time.Duration
	KeepaliveDeadline   time.Duration

	// PingsBeforeAwaitingAuthorization is the number of inbound pings
	// observed with no register response before the connection reports
	// AwaitingAuthorization. The exact count is an implementation choice
	// (spec leaves it unspecified); default 2.
	PingsBeforeAwaitingAuthorization int
}

// DefaultConfig fills in every field a caller is unlikely to want to
// override explicitly, matching the required provided/required service
// sets from the registry/transport/browse/ping contract.
func DefaultConfig() Config {
	return Config{
		Port:                 transport.DefaultPort,
		RequiredServices:     []string{"com.roonlabs.transport:2", "com.roonlabs.browse:1"},
		OptionalServices:     nil,
		ProvidedServices:     []string{"com.roonlabs.ping:1"},
		Tokens:               tokenstore.NewInMemoryStore(),
		Reconnect:            reconnect.DefaultConfig(),
		Dial:                 func(host string, port int) (transport.Transport, error) { return transport.Dial(host, port) },
		RequestTimeout:       30 * time.Second,
		RegistrationTimeout:  300 * time.Second,
		KeepaliveDeadline:    15 * time.Second,
		PingsBeforeAwaitingAuthorization: 2,
	}
}
