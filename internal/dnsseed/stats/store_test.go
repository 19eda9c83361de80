package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnsseedd/dnsseed/internal/dnsseed/domain"
)

func TestStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.db")
	s, err := OpenStore(path)
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Load()
	require.NoError(t, err)
	assert.False(t, ok, "no snapshot has been saved yet")

	snap := CounterSnapshot{Requests: 42}
	snap.RCodes[domain.RCodeNoError] = 40
	snap.RCodes[domain.RCodeRefused] = 2
	require.NoError(t, s.Save(snap))

	loaded, ok, err := s.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, snap, loaded)
}

func TestStore_SaveOverwritesPreviousSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.db")
	s, err := OpenStore(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(CounterSnapshot{Requests: 1}))
	require.NoError(t, s.Save(CounterSnapshot{Requests: 2}))

	loaded, ok, err := s.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(2), loaded.Requests)
}

func TestStore_ReopenPersistsAcrossHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.db")
	s, err := OpenStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(CounterSnapshot{Requests: 7}))
	require.NoError(t, s.Close())

	s2, err := OpenStore(path)
	require.NoError(t, err)
	defer s2.Close()

	loaded, ok, err := s2.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(7), loaded.Requests)
}

func TestStore_RunSavesOnTickAndOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.db")
	s, err := OpenStore(path)
	require.NoError(t, err)
	defer s.Close()

	c := NewCounters()
	c.RecordRequest()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, c, time.Millisecond)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	c.RecordRequest()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}

	loaded, ok, err := s.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(2), loaded.Requests)
}
