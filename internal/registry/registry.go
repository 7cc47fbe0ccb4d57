// Package registry is the durable, process-safe capsule store: a bbolt
// database holding capsule records and their allocated-port subrecords.
package registry

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.etcd.io/bbolt"
	"gopkg.in/yaml.v3"

	"github.com/edhor1608/Nexum/internal/capsule"
)

// ErrImmutableSlug is returned by Upsert when an existing record's slug
// would change.
var ErrImmutableSlug = errors.New("registry: slug is immutable once persisted")

// ErrNotFound is returned by operations that require an existing capsule.
var ErrNotFound = errors.New("registry: capsule not found")

var (
	bucketCapsules = []byte("capsules")
	bucketPorts    = []byte("ports")
	bucketMeta     = []byte("meta")
)

const schemaVersionKey = "schema_version"
const currentSchemaVersion = 2

// Registry is a handle to the capsule/port store. All writes are
// serialized by the underlying bbolt single-writer transaction; multiple
// readers may share a handle.
type Registry struct {
	db *bbolt.DB
}

// record is the on-disk shape of a capsule row. Older rows may be missing
// State/RepoPath entirely (schema version < 2); those are backfilled on
// read by two additive migrations.
type record struct {
	CapsuleID   string        `json:"capsule_id"`
	Slug        string        `json:"slug"`
	DisplayName string        `json:"display_name"`
	RepoPath    string        `json:"repo_path,omitempty"`
	Mode        capsule.Mode  `json:"mode"`
	State       capsule.State `json:"state,omitempty"`
	Workspace   uint16        `json:"workspace"`
}

// Open creates the parent directory if absent, opens (or creates) the
// bbolt database at {path}, and applies any pending additive migrations.
// Treating an already-migrated database as success is itself the
// migration contract, not an error path.
func Open(path string) (*Registry, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("registry: create data dir: %w", err)
		}
	}
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("registry: open database: %w", err)
	}
	r := &Registry{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

// Close releases the underlying database handle.
func (r *Registry) Close() error {
	return r.db.Close()
}

func (r *Registry) migrate() error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketCapsules, bucketPorts, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("registry: create bucket %s: %w", b, err)
			}
		}
		meta := tx.Bucket(bucketMeta)
		existing := meta.Get([]byte(schemaVersionKey))
		if existing != nil && binary.BigEndian.Uint32(existing) >= currentSchemaVersion {
			return nil
		}

		// Backfill state/repo_path on any legacy capsule rows, then
		// record the schema version so this is a no-op on future opens.
		capsules := tx.Bucket(bucketCapsules)
		c := capsules.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var rec record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("registry: migrate decode %s: %w", k, err)
			}
			changed := false
			if rec.State == "" {
				rec.State = capsule.StateReady
				changed = true
			}
			if !changed {
				continue
			}
			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := capsules.Put(k, data); err != nil {
				return err
			}
		}

		versionBytes := make([]byte, 4)
		binary.BigEndian.PutUint32(versionBytes, currentSchemaVersion)
		return meta.Put([]byte(schemaVersionKey), versionBytes)
	})
}

func toRecord(c capsule.Capsule) record {
	return record{
		CapsuleID:   c.CapsuleID,
		Slug:        c.Slug,
		DisplayName: c.DisplayName,
		RepoPath:    c.RepoPath,
		Mode:        c.Mode,
		State:       c.State,
		Workspace:   c.Workspace,
	}
}

func fromRecord(rec record) capsule.Capsule {
	state := rec.State
	if state == "" {
		state = capsule.StateReady
	}
	return capsule.Capsule{
		CapsuleID:   rec.CapsuleID,
		Slug:        rec.Slug,
		DisplayName: rec.DisplayName,
		RepoPath:    rec.RepoPath,
		Mode:        rec.Mode,
		State:       state,
		Workspace:   rec.Workspace,
	}
}

// Upsert inserts or updates a capsule by CapsuleID. If a record already
// exists under a different slug, the write is rejected with
// ErrImmutableSlug; otherwise the call is idempotent for identical
// inputs.
func (r *Registry) Upsert(c capsule.Capsule) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCapsules)
		if existing := b.Get([]byte(c.CapsuleID)); existing != nil {
			var rec record
			if err := json.Unmarshal(existing, &rec); err != nil {
				return fmt.Errorf("registry: decode existing capsule: %w", err)
			}
			if rec.Slug != "" && rec.Slug != c.Slug {
				return ErrImmutableSlug
			}
		}
		data, err := json.Marshal(toRecord(c))
		if err != nil {
			return fmt.Errorf("registry: encode capsule: %w", err)
		}
		return b.Put([]byte(c.CapsuleID), data)
	})
}

// Get returns the capsule for id, or (zero, false) if absent.
func (r *Registry) Get(capsuleID string) (capsule.Capsule, bool, error) {
	var c capsule.Capsule
	found := false
	err := r.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketCapsules).Get([]byte(capsuleID))
		if data == nil {
			return nil
		}
		var rec record
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("registry: decode capsule %s: %w", capsuleID, err)
		}
		c = fromRecord(rec)
		found = true
		return nil
	})
	return c, found, err
}

// List returns every capsule, ordered by CapsuleID ascending.
func (r *Registry) List() ([]capsule.Capsule, error) {
	var out []capsule.Capsule
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCapsules)
		cur := b.Cursor()
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			var rec record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("registry: decode capsule %s: %w", k, err)
			}
			out = append(out, fromRecord(rec))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CapsuleID < out[j].CapsuleID })
	return out, err
}

// RenameDisplayName updates only the display name for an existing capsule.
func (r *Registry) RenameDisplayName(capsuleID, name string) error {
	return r.mutate(capsuleID, func(rec *record) { rec.DisplayName = name })
}

// SetRepoPath updates the repo path hint for an existing capsule.
func (r *Registry) SetRepoPath(capsuleID, path string) error {
	return r.mutate(capsuleID, func(rec *record) { rec.RepoPath = path })
}

// TransitionState performs an unchecked state write; policy checks are
// the caller's responsibility.
func (r *Registry) TransitionState(capsuleID string, state capsule.State) error {
	return r.mutate(capsuleID, func(rec *record) { rec.State = state })
}

func (r *Registry) mutate(capsuleID string, fn func(*record)) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketCapsules)
		data := b.Get([]byte(capsuleID))
		if data == nil {
			return ErrNotFound
		}
		var rec record
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("registry: decode capsule %s: %w", capsuleID, err)
		}
		fn(&rec)
		out, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(capsuleID), out)
	})
}

// portKey encodes a port number as a big-endian 8-byte key so bbolt's
// cursor walks the global port set in ascending numeric order.
func portKey(port int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(port))
	return key
}

// AllocatePort returns the capsule's existing port if it has one (stable
// re-allocation), otherwise the smallest integer in [start, end] not
// already present in the global port set. ok is false if the range is
// exhausted.
func (r *Registry) AllocatePort(capsuleID string, start, end int) (port int, ok bool, err error) {
	err = r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketPorts)
		cur := b.Cursor()
		used := make(map[int]struct{})
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			p := int(binary.BigEndian.Uint64(k))
			used[p] = struct{}{}
			if string(v) == capsuleID {
				port = p
				ok = true
			}
		}
		if ok {
			return nil
		}
		for p := start; p <= end; p++ {
			if _, taken := used[p]; !taken {
				if err := b.Put(portKey(p), []byte(capsuleID)); err != nil {
					return err
				}
				port = p
				ok = true
				return nil
			}
		}
		return nil
	})
	return port, ok, err
}

// ReleasePorts removes all port rows owned by capsuleID and returns the
// count released.
func (r *Registry) ReleasePorts(capsuleID string) (int, error) {
	released := 0
	err := r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketPorts)
		cur := b.Cursor()
		var toDelete [][]byte
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			if string(v) == capsuleID {
				key := make([]byte, len(k))
				copy(key, k)
				toDelete = append(toDelete, key)
			}
		}
		for _, k := range toDelete {
			if err := b.Delete(k); err != nil {
				return err
			}
			released++
		}
		return nil
	})
	return released, err
}

// ListPorts returns capsuleID's allocated ports, ascending.
func (r *Registry) ListPorts(capsuleID string) ([]int, error) {
	var out []int
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketPorts)
		cur := b.Cursor()
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			if string(v) == capsuleID {
				out = append(out, int(binary.BigEndian.Uint64(k)))
			}
		}
		return nil
	})
	sort.Ints(out)
	return out, err
}

// ExportYAML renders List() as a deterministic textual dump.
func (r *Registry) ExportYAML() (string, error) {
	capsules, err := r.List()
	if err != nil {
		return "", err
	}
	out, err := yaml.Marshal(capsules)
	if err != nil {
		return "", fmt.Errorf("registry: marshal yaml export: %w", err)
	}
	return string(out), nil
}
