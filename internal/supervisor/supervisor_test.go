package supervisor

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/edhor1608/Nexum/internal/capsule"
	"github.com/edhor1608/Nexum/internal/eventlog"
	"github.com/edhor1608/Nexum/internal/registry"
	"github.com/stretchr/testify/require"
)

func openFixtures(t *testing.T) (*registry.Registry, *eventlog.Store) {
	t.Helper()
	reg, err := registry.Open(filepath.Join(t.TempDir(), "nexum.db"))
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })

	events, err := eventlog.Open(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { events.Close() })

	return reg, events
}

func TestStatusAggregatesRegistryAndEvents(t *testing.T) {
	reg, events := openFixtures(t)

	require.NoError(t, reg.Upsert(capsule.New("cap-1", "Alpha", capsule.ModeHostDefault, 1)))
	require.NoError(t, reg.Upsert(capsule.New("cap-2", "Beta", capsule.ModeHostDefault, 2)))
	require.NoError(t, reg.TransitionState("cap-2", capsule.StateDegraded))

	now := time.Now().UnixMilli()
	_, err := events.Append(eventlog.Event{CapsuleID: "cap-2", Component: "routing", Level: eventlog.LevelError, Message: "route lost", TSUnixMS: now})
	require.NoError(t, err)

	report, err := Status(reg, events, filepath.Join(t.TempDir(), "missing.flags"))
	require.NoError(t, err)

	require.Equal(t, 2, report.TotalCapsules)
	require.Equal(t, 1, report.DegradedCapsules)
	require.Equal(t, 1, report.CriticalEvents)
	require.True(t, report.Flags.ShadowMode)
}

func TestBlockersFlagsDegradedAndCriticalEvents(t *testing.T) {
	report := Report{
		Capsules: []CapsuleStatus{
			{CapsuleID: "cap-1", State: capsule.StateReady, CriticalEvents: 0},
			{CapsuleID: "cap-2", State: capsule.StateDegraded, CriticalEvents: 0},
			{CapsuleID: "cap-3", State: capsule.StateReady, CriticalEvents: 3},
		},
	}

	blockers := Blockers(report, 0)
	require.Len(t, blockers, 2)

	ids := []string{blockers[0].CapsuleID, blockers[1].CapsuleID}
	require.ElementsMatch(t, []string{"cap-2", "cap-3"}, ids)
}

func TestBlockersRespectsCustomThreshold(t *testing.T) {
	report := Report{
		Capsules: []CapsuleStatus{
			{CapsuleID: "cap-1", State: capsule.StateReady, CriticalEvents: 2},
		},
	}

	require.Empty(t, Blockers(report, 5))
	require.Len(t, Blockers(report, 2), 1)
}
