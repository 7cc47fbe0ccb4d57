package capsule

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeSlug(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Alpha Project_01!", "alpha-project-01"},
		{"   ", "capsule"},
		{"---", "capsule"},
		{"already-slug", "already-slug"},
		{"Mixed_CASE--Name", "mixed-case-name"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, NormalizeSlug(tc.name), "input %q", tc.name)
	}
}

func TestNewCapsuleDomain(t *testing.T) {
	c := New("cap-1", "Alpha Project_01!", ModeHostDefault, 3)
	require.Equal(t, "alpha-project-01", c.Slug)
	require.Equal(t, "alpha-project-01.nexum.local", c.Domain())
	require.Equal(t, StateReady, c.State)
}

func TestRenameDisplayNamePreservesSlug(t *testing.T) {
	c := New("cap-1", "Alpha Project", ModeHostDefault, 0)
	original := c.Slug
	c.RenameDisplayName("Totally Different Name")
	require.Equal(t, original, c.Slug)
	require.Equal(t, "Totally Different Name", c.DisplayName)
}

func TestParseStateDefaultsToReady(t *testing.T) {
	require.Equal(t, StateReady, ParseState(""))
	require.Equal(t, StateReady, ParseState("nonsense"))
	require.Equal(t, StateDegraded, ParseState("degraded"))
}
