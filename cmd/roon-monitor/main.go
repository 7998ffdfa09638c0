// ABOUTME: roon-monitor is a demo TUI exercising RoonKit end to end
// ABOUTME: connect, subscribe to zones, and issue transport commands
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/teancom/RoonKit/discovery"
	"github.com/teancom/RoonKit/roon"
	"github.com/teancom/RoonKit/services/transport"
	"github.com/teancom/RoonKit/version"
)

func main() {
	host := flag.String("host", "", "Roon Core host (skip to auto-discover)")
	port := flag.Int("port", 0, "Roon Core WebSocket port (0 = default)")
	discoverTimeout := flag.Duration("discover-timeout", 5*time.Second, "time budget for auto-discovery")
	flag.Parse()

	if *host == "" {
		found, err := discoverCore(*discoverTimeout)
		if err != nil {
			fmt.Fprintln(os.Stderr, "roon-monitor: discovery failed:", err)
			os.Exit(1)
		}
		*host = found.Host
		if *port == 0 {
			*port = found.Port
		}
	}

	cfg := roon.DefaultConfig()
	cfg.Host = *host
	if *port != 0 {
		cfg.Port = *port
	}
	cfg.ExtensionID = "com.roonkit.monitor"
	cfg.DisplayName = "RoonKit Monitor"
	cfg.DisplayVersion = version.Version
	cfg.Publisher = version.Manufacturer

	conn := roon.New(cfg)
	if err := conn.Connect(); err != nil {
		fmt.Fprintln(os.Stderr, "roon-monitor: connect failed:", err)
		os.Exit(1)
	}

	svc := transport.New(conn)

	if err := Run(conn, svc); err != nil {
		fmt.Fprintln(os.Stderr, "roon-monitor:", err)
		os.Exit(1)
	}
}

func discoverCore(timeout time.Duration) (discovery.CoreInfo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg := discovery.DefaultConfig()
	cfg.Timeout = timeout
	cfg.StopOnFirst = true

	cores, err := discovery.Discover(ctx, cfg)
	if err != nil && len(cores) == 0 {
		return discovery.CoreInfo{}, err
	}
	if len(cores) == 0 {
		return discovery.CoreInfo{}, fmt.Errorf("roon-monitor: no Roon Core found")
	}
	return cores[0], nil
}
