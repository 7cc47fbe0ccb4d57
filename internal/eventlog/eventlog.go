// Package eventlog is the append-only structured event store, keyed by a
// bbolt-native auto-increment sequence so insertion order and id order
// coincide, in place of the original's SQL AUTOINCREMENT column.
package eventlog

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.etcd.io/bbolt"
)

// Level is the severity of a runtime event.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// DefaultListLimit is applied when a caller omits an explicit limit.
const DefaultListLimit = 500

var bucketEvents = []byte("events")

// Event is one append-only row.
type Event struct {
	ID        uint64 `json:"id"`
	CapsuleID string `json:"capsule_id"`
	Component string `json:"component"`
	Level     Level  `json:"level"`
	Message   string `json:"message"`
	TSUnixMS  int64  `json:"ts_unix_ms"`
}

// Store is a handle to the event log.
type Store struct {
	db *bbolt.DB
}

// Open creates the parent directory if absent and opens (or creates) the
// events database.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("eventlog: create data dir: %w", err)
		}
	}
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("eventlog: open database: %w", err)
	}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEvents)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("eventlog: create bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func idKey(id uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, id)
	return key
}

// Append assigns the event the next sequence id, ordering it after every
// prior row; TSUnixMS is stored as the caller supplied it.
func (s *Store) Append(e Event) (Event, error) {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEvents)
		id, err := b.NextSequence()
		if err != nil {
			return err
		}
		e.ID = id
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		return b.Put(idKey(id), data)
	})
	return e, err
}

func (s *Store) all() ([]Event, error) {
	var out []Event
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEvents)
		cur := b.Cursor()
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			var e Event
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("eventlog: decode event %x: %w", k, err)
			}
			out = append(out, e)
		}
		return nil
	})
	return out, err
}

// ListForCapsule returns capsuleID's events in insertion order ascending,
// applying offset then limit. A zero limit uses DefaultListLimit.
func (s *Store) ListForCapsule(capsuleID string, limit, offset int) ([]Event, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	all, err := s.all()
	if err != nil {
		return nil, err
	}
	var filtered []Event
	for _, e := range all {
		if e.CapsuleID == capsuleID {
			filtered = append(filtered, e)
		}
	}
	if offset >= len(filtered) {
		return nil, nil
	}
	filtered = filtered[offset:]
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

// ListRecent returns events id-descending, optionally filtered by
// capsuleID and level. A zero limit uses DefaultListLimit.
func (s *Store) ListRecent(capsuleID string, level Level, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	all, err := s.all()
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	var out []Event
	for _, e := range all {
		if capsuleID != "" && e.CapsuleID != capsuleID {
			continue
		}
		if level != "" && e.Level != level {
			continue
		}
		out = append(out, e)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// CountForCapsuleLevel counts capsuleID's events at exactly level.
func (s *Store) CountForCapsuleLevel(capsuleID string, level Level) (int, error) {
	all, err := s.all()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, e := range all {
		if e.CapsuleID == capsuleID && e.Level == level {
			count++
		}
	}
	return count, nil
}

// CapsuleSummary is one capsule's row in Summary.
type CapsuleSummary struct {
	CapsuleID      string `json:"capsule_id"`
	Total          int    `json:"total"`
	CriticalEvents int    `json:"critical_events"`
	LastTSUnixMS   int64  `json:"last_ts_unix_ms"`
}

// Summary aggregates total/critical counts globally and per capsule.
type Summary struct {
	TotalEvents    int              `json:"total_events"`
	CriticalEvents int              `json:"critical_events"`
	Capsules       []CapsuleSummary `json:"capsules"`
}

// Summary computes a fresh aggregate via a single full-bucket scan
// rather than incremental counters.
func (s *Store) Summary() (Summary, error) {
	all, err := s.all()
	if err != nil {
		return Summary{}, err
	}
	byCapsule := make(map[string]*CapsuleSummary)
	var order []string
	sum := Summary{}
	for _, e := range all {
		sum.TotalEvents++
		if e.Level == LevelError {
			sum.CriticalEvents++
		}
		cs, ok := byCapsule[e.CapsuleID]
		if !ok {
			cs = &CapsuleSummary{CapsuleID: e.CapsuleID}
			byCapsule[e.CapsuleID] = cs
			order = append(order, e.CapsuleID)
		}
		cs.Total++
		if e.Level == LevelError {
			cs.CriticalEvents++
		}
		if e.TSUnixMS > cs.LastTSUnixMS {
			cs.LastTSUnixMS = e.TSUnixMS
		}
	}
	sort.Strings(order)
	for _, id := range order {
		sum.Capsules = append(sum.Capsules, *byCapsule[id])
	}
	return sum, nil
}
