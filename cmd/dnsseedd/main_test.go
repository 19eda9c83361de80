package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnsseedd/dnsseed/internal/dnsseed/config"
)

func freeUDPPort(t *testing.T) int {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1")})
	require.NoError(t, err)
	port := conn.LocalAddr().(*net.UDPAddr).Port
	require.NoError(t, conn.Close())
	return port
}

func TestApplication_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	port := freeUDPPort(t)
	t.Setenv("DNSSEED_BIND_ADDR", fmt.Sprintf("127.0.0.1:%d", port))
	t.Setenv("DNSSEED_ZONE_HOST", "seed.test")
	t.Setenv("DNSSEED_ZONE_NS", "ns.seed.test")
	t.Setenv("DNSSEED_LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)

	app, err := buildApplication(cfg)
	require.NoError(t, err)
	require.NotNil(t, app)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appErr := make(chan error, 1)
	go func() { appErr <- app.Run(ctx) }()

	deadline := time.After(2 * time.Second)
waitForServer:
	for {
		select {
		case <-deadline:
			t.Fatal("server failed to start within timeout")
		case err := <-appErr:
			t.Fatalf("server exited early: %v", err)
		default:
			conn, err := net.Dial("udp", fmt.Sprintf("127.0.0.1:%d", port))
			if err == nil {
				require.NoError(t, conn.Close())
				break waitForServer
			}
			time.Sleep(10 * time.Millisecond)
		}
	}

	cancel()

	select {
	case err := <-appErr:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("application failed to shut down within timeout")
	}
}

func TestBuildApplication_StatsStoreAndPeersFile(t *testing.T) {
	dir := t.TempDir()
	peersPath := filepath.Join(dir, "peers.txt")
	require.NoError(t, os.WriteFile(peersPath, []byte("192.0.2.1\n192.0.2.2\n"), 0o600))

	t.Setenv("DNSSEED_ZONE_HOST", "seed.test")
	t.Setenv("DNSSEED_ZONE_NS", "ns.seed.test")
	t.Setenv("DNSSEED_PEERS_FILE", peersPath)
	t.Setenv("DNSSEED_STATS_DB_PATH", filepath.Join(dir, "stats.db"))

	cfg, err := config.Load()
	require.NoError(t, err)

	app, err := buildApplication(cfg)
	require.NoError(t, err)
	require.NotNil(t, app.store)
	t.Cleanup(func() { app.store.Close() })
}

func TestBuildApplication_RejectsUnreadablePeersFile(t *testing.T) {
	t.Setenv("DNSSEED_ZONE_HOST", "seed.test")
	t.Setenv("DNSSEED_ZONE_NS", "ns.seed.test")
	t.Setenv("DNSSEED_PEERS_FILE", "/nonexistent/peers.txt")

	cfg, err := config.Load()
	require.NoError(t, err)

	_, err = buildApplication(cfg)
	assert.Error(t, err)
}
