package dispatcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edhor1608/Nexum/internal/capsule"
	"github.com/edhor1608/Nexum/internal/eventlog"
	"github.com/edhor1608/Nexum/internal/registry"
	"github.com/edhor1608/Nexum/internal/restoreplan"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	reg, err := registry.Open(filepath.Join(t.TempDir(), "capsules.db"))
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })

	events, err := eventlog.Open(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { events.Close() })

	return Options{
		CapsuleDB: reg,
		EventsDB:  events,
		TLSDir:    t.TempDir(),
	}
}

func upsertWithRepo(t *testing.T, reg *registry.Registry, id, name, repo string, workspace uint16) {
	t.Helper()
	c := capsule.New(id, name, capsule.ModeHostDefault, workspace)
	c.RepoPath = repo
	require.NoError(t, reg.Upsert(c))
}

func TestDispatchDerivesSurfacesFromCapsule(t *testing.T) {
	opts := testOptions(t)
	upsertWithRepo(t, opts.CapsuleDB, "cap-stead-1", "Stead Capsule", "/workspace/stead", 20)

	result, err := DispatchBatch([]Event{{
		CapsuleID: "cap-stead-1",
		Signal:    restoreplan.SignalNeedsDecision,
		Upstream:  "127.0.0.1:4788",
	}}, opts)
	require.NoError(t, err)
	require.Equal(t, 1, result.Processed)
	require.Equal(t, 1, result.Succeeded)
	require.True(t, result.Results[0].OK)

	events, err := opts.EventsDB.ListForCapsule("cap-stead-1", 0, 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
}

func TestDispatchUnknownCapsuleIsPerEventError(t *testing.T) {
	opts := testOptions(t)

	result, err := DispatchBatch([]Event{{
		CapsuleID: "no-such",
		Signal:    restoreplan.SignalPassiveCompletion,
	}}, opts)
	require.NoError(t, err)
	require.Equal(t, 1, result.Failed)
	require.Contains(t, result.Results[0].Error, "unknown capsule: no-such")
}

func TestDispatchMissingSurfacesErrors(t *testing.T) {
	opts := testOptions(t)
	require.NoError(t, opts.CapsuleDB.Upsert(capsule.New("cap-bare", "Bare", capsule.ModeHostDefault, 1)))

	result, err := DispatchBatch([]Event{{
		CapsuleID: "cap-bare",
		Signal:    restoreplan.SignalNeedsDecision,
	}}, opts)
	require.NoError(t, err)
	require.Equal(t, "missing restore surfaces", result.Results[0].Error)
}

func TestDispatchBatchAttentionPlanFocusesFirstHighestPriority(t *testing.T) {
	opts := testOptions(t)
	upsertWithRepo(t, opts.CapsuleDB, "cap-a", "A", "/repo/a", 1)
	upsertWithRepo(t, opts.CapsuleDB, "cap-b", "B", "/repo/b", 2)
	upsertWithRepo(t, opts.CapsuleDB, "cap-c", "C", "/repo/c", 3)

	result, err := DispatchBatch([]Event{
		{CapsuleID: "cap-a", Signal: restoreplan.SignalPassiveCompletion},
		{CapsuleID: "cap-b", Signal: restoreplan.SignalCriticalFailure},
		{CapsuleID: "cap-c", Signal: restoreplan.SignalCriticalFailure},
	}, opts)
	require.NoError(t, err)
	require.Equal(t, 3, result.Succeeded)
	require.Equal(t, 2, result.AttentionPlan.Blocking)
	require.Equal(t, 0, result.AttentionPlan.Active)
	require.Equal(t, 1, result.AttentionPlan.Passive)
	// cap-c's signal arrives after cap-b's at equal priority, so cap-b keeps focus.
	require.Equal(t, "cap-b", result.AttentionPlan.FocusCapsuleID)
	require.Equal(t, 2, result.AttentionPlan.RequiresAckCount)
}

func TestDispatchFailOnMissingCapsulesAbortsBeforeSideEffects(t *testing.T) {
	opts := testOptions(t)
	opts.FailOnMissingCapsules = true
	upsertWithRepo(t, opts.CapsuleDB, "cap-ok", "OK", "/repo/ok", 1)

	_, err := DispatchBatch([]Event{
		{CapsuleID: "cap-ok", Signal: restoreplan.SignalNeedsDecision},
		{CapsuleID: "cap-missing", Signal: restoreplan.SignalNeedsDecision},
	}, opts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown capsule: cap-missing")

	events, listErr := opts.EventsDB.ListForCapsule("cap-ok", 0, 0)
	require.NoError(t, listErr)
	require.Empty(t, events)

	entries, globErr := filepath.Glob(filepath.Join(opts.TLSDir, "*"))
	require.NoError(t, globErr)
	require.Empty(t, entries)
}

func TestDispatchDryRunWritesNothing(t *testing.T) {
	opts := testOptions(t)
	opts.DryRun = true
	upsertWithRepo(t, opts.CapsuleDB, "cap-dry", "Dry Run", "/repo/dry", 4)

	result, err := DispatchBatch([]Event{{
		CapsuleID: "cap-dry",
		Signal:    restoreplan.SignalCriticalFailure,
	}}, opts)
	require.NoError(t, err)
	require.Equal(t, 1, result.Succeeded)
	require.Equal(t, 1, result.AttentionPlan.Blocking)
	require.Equal(t, "cap-dry", result.AttentionPlan.FocusCapsuleID)

	require.NotNil(t, result.Results[0].ExecutionPlan)
	require.Equal(t, "cap-dry", result.Results[0].ExecutionPlan.CapsuleID)

	events, listErr := opts.EventsDB.ListForCapsule("cap-dry", 0, 0)
	require.NoError(t, listErr)
	require.Empty(t, events)

	if _, statErr := os.Stat(filepath.Join(opts.TLSDir, "dry-run.nexum.local.crt.pem")); statErr == nil {
		t.Fatal("dry run wrote TLS material")
	}

	c, ok, getErr := opts.CapsuleDB.Get("cap-dry")
	require.NoError(t, getErr)
	require.True(t, ok)
	require.Equal(t, capsule.StateReady, c.State)
}
