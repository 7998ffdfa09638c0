// ABOUTME: Discover broadcasts a SOOD query and collects Core replies
// ABOUTME: within a time budget, the way a host finds a Roon Core to dial
package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// DefaultHTTPPort is used for a Core whose reply omits http_port.
const DefaultHTTPPort = 9100

var (
	multicastAddr = &net.UDPAddr{IP: net.IPv4(239, 255, 90, 90), Port: 9003}
	broadcastAddr = &net.UDPAddr{IP: net.IPv4bcast, Port: 9003}
)

// Config tunes a Discover call.
type Config struct {
	// Timeout bounds the whole discovery run.
	Timeout time.Duration
	// QueryInterval is how often a fresh query frame is re-sent while
	// still listening for replies.
	QueryInterval time.Duration
	// StopOnFirst ends the run as soon as one distinct Core has replied.
	StopOnFirst bool
}

// DefaultConfig matches spec.md §6's defaults.
func DefaultConfig() Config {
	return Config{Timeout: 60 * time.Second, QueryInterval: 2 * time.Second}
}

// CoreInfo describes one Core that answered a discovery query.
type CoreInfo struct {
	Host          string
	Port          int
	CoreID        string
	DisplayName   string
	TransactionID string
	DiscoveredAt  time.Time
}

// Discover sends a SOOD query to both the Roon multicast group and the
// local broadcast address, and collects replies until ctx is done or
// cfg.Timeout elapses, deduped by (host, port).
func Discover(ctx context.Context, cfg Config) ([]CoreInfo, error) {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.QueryInterval <= 0 {
		cfg.QueryInterval = def.QueryInterval
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, fmt.Errorf("discovery: listen: %w", err)
	}
	defer conn.Close()

	tid := uuid.New().String()
	query := encodeFrame(typeQuery, []Property{{Name: "_tid", Value: []byte(tid)}})

	send := func() {
		conn.WriteToUDP(query, multicastAddr)
		conn.WriteToUDP(query, broadcastAddr)
	}

	found := make(map[string]CoreInfo)
	deadline := time.Now().Add(cfg.Timeout)

	send()
	lastSend := time.Now()
	buf := make([]byte, 2048)

	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return toList(found), err
		}

		readDeadline := lastSend.Add(cfg.QueryInterval)
		if readDeadline.After(deadline) {
			readDeadline = deadline
		}
		conn.SetReadDeadline(readDeadline)

		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if time.Now().Before(deadline) {
				send()
				lastSend = time.Now()
			}
			continue
		}

		kind, props, decErr := decodeFrame(buf[:n])
		if decErr != nil || kind != typeReply {
			continue
		}

		info := toCoreInfo(addr, tid, props)
		key := fmt.Sprintf("%s:%d", info.Host, info.Port)
		if _, dup := found[key]; dup {
			continue
		}
		found[key] = info
		if cfg.StopOnFirst {
			return toList(found), nil
		}
	}

	return toList(found), nil
}

func toCoreInfo(addr *net.UDPAddr, tid string, props []Property) CoreInfo {
	info := CoreInfo{
		Host:          addr.IP.String(),
		Port:          DefaultHTTPPort,
		TransactionID: tid,
		DiscoveredAt:  time.Now(),
	}
	if v, ok := propString(props, "_corid"); ok {
		info.CoreID = v
	}
	if v, ok := propString(props, "_displayname"); ok {
		info.DisplayName = v
	}
	if v, ok := propString(props, "http_port"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			info.Port = port
		}
	}
	return info
}

func toList(found map[string]CoreInfo) []CoreInfo {
	out := make([]CoreInfo, 0, len(found))
	for _, info := range found {
		out = append(out, info)
	}
	return out
}
