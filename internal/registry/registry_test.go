package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/edhor1608/Nexum/internal/capsule"
)

func openTestRegistry(t *testing.T) *Registry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nexum.db")
	r, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestUpsertAndGet(t *testing.T) {
	r := openTestRegistry(t)
	c := capsule.New("cap-1", "Alpha Project", capsule.ModeHostDefault, 3)
	require.NoError(t, r.Upsert(c))

	got, ok, err := r.Get("cap-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, c.Slug, got.Slug)
}

func TestUpsertImmutableSlug(t *testing.T) {
	r := openTestRegistry(t)
	c := capsule.New("cap-1", "Alpha Project", capsule.ModeHostDefault, 3)
	require.NoError(t, r.Upsert(c))

	c.Slug = "different-slug"
	err := r.Upsert(c)
	require.ErrorIs(t, err, ErrImmutableSlug)
}

func TestRenameDisplayNameDoesNotChangeSlug(t *testing.T) {
	r := openTestRegistry(t)
	c := capsule.New("cap-1", "Alpha Project", capsule.ModeHostDefault, 3)
	require.NoError(t, r.Upsert(c))
	require.NoError(t, r.RenameDisplayName("cap-1", "New Name"))

	got, _, err := r.Get("cap-1")
	require.NoError(t, err)
	require.Equal(t, c.Slug, got.Slug)
	require.Equal(t, "New Name", got.DisplayName)
}

func TestListOrderedByCapsuleID(t *testing.T) {
	r := openTestRegistry(t)
	require.NoError(t, r.Upsert(capsule.New("cap-b", "B", capsule.ModeHostDefault, 0)))
	require.NoError(t, r.Upsert(capsule.New("cap-a", "A", capsule.ModeHostDefault, 0)))

	list, err := r.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "cap-a", list[0].CapsuleID)
	require.Equal(t, "cap-b", list[1].CapsuleID)
}

func TestAllocatePortStableAndDisjoint(t *testing.T) {
	r := openTestRegistry(t)
	p1, ok, err := r.AllocatePort("cap-a", 4000, 4010)
	require.NoError(t, err)
	require.True(t, ok)

	p1Again, ok, err := r.AllocatePort("cap-a", 4000, 4010)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, p1, p1Again)

	p2, ok, err := r.AllocatePort("cap-b", 4000, 4010)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEqual(t, p1, p2)
}

func TestReleasePortsCount(t *testing.T) {
	r := openTestRegistry(t)
	_, _, err := r.AllocatePort("cap-a", 5000, 5010)
	require.NoError(t, err)

	n, err := r.ReleasePorts("cap-a")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	ports, err := r.ListPorts("cap-a")
	require.NoError(t, err)
	require.Empty(t, ports)
}

func TestMigrationBackfillsLegacyState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nexum.db")
	r, err := Open(path)
	require.NoError(t, err)
	// Write a legacy row with no state field and clear the schema version
	// so the next Open runs the backfill.
	require.NoError(t, r.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketMeta).Delete([]byte(schemaVersionKey)); err != nil {
			return err
		}
		legacy := `{"capsule_id":"cap-1","slug":"alpha","display_name":"Alpha","mode":"host_default","workspace":0}`
		return tx.Bucket(bucketCapsules).Put([]byte("cap-1"), []byte(legacy))
	}))
	require.NoError(t, r.Close())

	// Reopening must be idempotent: migrating twice is still success.
	r2, err := Open(path)
	require.NoError(t, err)
	defer r2.Close()

	got, ok, err := r2.Get("cap-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, capsule.StateReady, got.State)
}
