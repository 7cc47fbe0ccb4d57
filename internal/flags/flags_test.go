package flags

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadOrDefaultMissingFile(t *testing.T) {
	f, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.flags"))
	require.NoError(t, err)
	require.Equal(t, Default(), f)
	require.True(t, f.ShadowMode)
	require.False(t, f.RoutingControlPlane)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cutover.flags")
	f := Default()
	Set(&f, RoutingControlPlane, true)

	require.NoError(t, Save(path, f))
	got, err := LoadOrDefault(path)
	require.NoError(t, err)
	require.Equal(t, f, got)
}

func TestSaveLeavesNoTempFileBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cutover.flags")
	require.NoError(t, Save(path, Default()))

	entries, err := filepath.Glob(filepath.Join(dir, ".*"))
	require.NoError(t, err)
	require.Empty(t, entries)
}
