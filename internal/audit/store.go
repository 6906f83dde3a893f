package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/greyfable/masterlist/internal/models"
)

var bucketActivity = []byte("activity")

// keyTimeFormat pads the fraction to full width. RFC3339Nano trims
// trailing zeros, which does not sort lexicographically ("...00.12Z"
// sorts after "...00.123Z"), so keys never use it.
const keyTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func entryKey(e *models.ActivityEntry) ([]byte, error) {
	ts, err := time.Parse(time.RFC3339Nano, e.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("bad activity timestamp %q: %w", e.Timestamp, err)
	}
	return []byte(ts.UTC().Format(keyTimeFormat) + "#" + e.ID), nil
}

// Store is the append-only activity log backed by BoltDB. Keys are a
// fixed-width encoding of the entry timestamp plus the entry id, so a
// reverse cursor walk yields newest-first order without sorting in memory.
type Store struct {
	db *bolt.DB

	mu        sync.Mutex
	watchers  map[int]func()
	nextWatch int
}

// NewStore opens (or creates) the activity database
func NewStore(path string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create activity directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open activity database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketActivity)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create activity bucket: %w", err)
	}

	return &Store{db: db, watchers: make(map[int]func())}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append writes one entry. Existing entries are never touched; the key
// carries the id so two writes in the same nanosecond still both land.
func (s *Store) Append(e *models.ActivityEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal activity entry: %w", err)
	}

	key, err := entryKey(e)
	if err != nil {
		return err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketActivity).Put(key, data)
	})
	if err != nil {
		return fmt.Errorf("failed to store activity entry: %w", err)
	}

	s.notify()
	return nil
}

// List returns entries newest first. limit <= 0 means all entries.
func (s *Store) List(limit int) ([]models.ActivityEntry, error) {
	entries := []models.ActivityEntry{}

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketActivity).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var e models.ActivityEntry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("failed to decode activity entry %s: %w", k, err)
			}
			entries = append(entries, e)
			if limit > 0 && len(entries) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Prune deletes entries older than cutoff and reports how many went.
// Keys start with a fixed-width timestamp, so a forward cursor walk
// stops at the first entry at or past the cutoff.
func (s *Store) Prune(cutoff time.Time) (int, error) {
	bound := []byte(cutoff.UTC().Format(keyTimeFormat))
	deleted := 0

	err := s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketActivity).Cursor()
		for k, _ := c.First(); k != nil && bytes.Compare(k, bound) < 0; k, _ = c.Next() {
			if err := c.Delete(); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to prune activity entries: %w", err)
	}
	return deleted, nil
}

// Watch registers a callback invoked after every successful append. The
// returned function removes the watcher; calling it more than once is safe.
func (s *Store) Watch(fn func()) func() {
	s.mu.Lock()
	id := s.nextWatch
	s.nextWatch++
	s.watchers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.watchers, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
