package config

import (
	"os"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesCompiledDefaults(t *testing.T) {
	chdirToEmptyTempDir(t)

	cfg, err := New()
	require.NoError(t, err)

	require.Equal(t, "/var/lib/nexum/nexum.db", cfg.RegistryPath())
	require.Equal(t, 0.95, cfg.MinParityScore())
	start, end := cfg.PortRange()
	require.Equal(t, 20000, start)
	require.Equal(t, 20999, end)
}

func TestSocketPathFallsBackToResolvedDefault(t *testing.T) {
	chdirToEmptyTempDir(t)

	cfg, err := New()
	require.NoError(t, err)
	require.NotEmpty(t, cfg.SocketPath())
}

func TestEnvironmentOverridesDefault(t *testing.T) {
	chdirToEmptyTempDir(t)
	t.Setenv("NEXUM_REGISTRY_PATH", "/tmp/custom/nexum.db")

	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, "/tmp/custom/nexum.db", cfg.RegistryPath())
}

func TestBindFlagsOverridesEnvironment(t *testing.T) {
	chdirToEmptyTempDir(t)
	t.Setenv("NEXUM_REGISTRY_PATH", "/tmp/from-env/nexum.db")

	cfg, err := New()
	require.NoError(t, err)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, cfg.BindFlags(fs))
	require.NoError(t, fs.Parse([]string{"--registry-path", "/tmp/from-flag/nexum.db"}))

	require.Equal(t, "/tmp/from-flag/nexum.db", cfg.RegistryPath())
}

func chdirToEmptyTempDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
