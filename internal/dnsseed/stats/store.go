package stats

import (
	"context"
	"encoding/binary"
	"time"

	bbolt "go.etcd.io/bbolt"
)

var (
	bucketCounters  = []byte("counters")
	snapshotKey     = []byte("snapshot")
	snapshotRecSize = 8 * (1 + rcodeHistogramSize)
)

// Store persists periodic Counters snapshots to a bbolt database, so a
// restart doesn't lose the running totals an operator graphs.
type Store struct {
	db *bbolt.DB
}

// OpenStore opens (or creates) a bbolt database at path.
func OpenStore(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCounters)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Save persists snap, overwriting whatever snapshot was saved before.
func (s *Store) Save(snap CounterSnapshot) error {
	buf := make([]byte, snapshotRecSize)
	binary.BigEndian.PutUint64(buf[0:], snap.Requests)
	for i, v := range snap.RCodes {
		binary.BigEndian.PutUint64(buf[8*(i+1):], v)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketCounters).Put(snapshotKey, buf)
	})
}

// Load reads back the most recently saved snapshot. ok is false if none
// has ever been saved.
func (s *Store) Load() (snap CounterSnapshot, ok bool, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketCounters).Get(snapshotKey)
		if len(v) != snapshotRecSize {
			return nil
		}
		snap.Requests = binary.BigEndian.Uint64(v[0:])
		for i := range snap.RCodes {
			snap.RCodes[i] = binary.BigEndian.Uint64(v[8*(i+1):])
		}
		ok = true
		return nil
	})
	return snap, ok, err
}

// Run saves counters' snapshot every interval until ctx is canceled, and
// once more before returning.
func (s *Store) Run(ctx context.Context, counters *Counters, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = s.Save(counters.Snapshot())
		case <-ctx.Done():
			_ = s.Save(counters.Snapshot())
			return
		}
	}
}
