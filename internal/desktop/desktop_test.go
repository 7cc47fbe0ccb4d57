package desktop

import (
	"errors"
	"testing"

	"github.com/edhor1608/Nexum/internal/capsule"
	"github.com/edhor1608/Nexum/internal/restoreplan"
	"github.com/stretchr/testify/require"
)

func sampleRestorePlan() restoreplan.Plan {
	cp := capsule.New("cp-1", "Alpha", capsule.ModeHostDefault, 4)
	return restoreplan.Build(restoreplan.Request{
		Capsule: cp,
		Signal:  restoreplan.SignalNeedsDecision,
		Surfaces: restoreplan.Surfaces{
			TerminalCmd:  "tmux attach -t alpha's session",
			EditorTarget: "/home/dev/alpha",
			BrowserURL:   "https://alpha.nexum.local",
		},
	})
}

func TestBuildPlanDropsEnsureRoutingAndKeepsFiveSteps(t *testing.T) {
	plan := BuildPlan(sampleRestorePlan())
	require.Len(t, plan.Commands, 5)
	require.EqualValues(t, 4, plan.Workspace)
	require.Equal(t, CommandFocusWorkspace, plan.Commands[0].Kind)
	require.Equal(t, CommandRaiseAttention, plan.Commands[4].Kind)
}

func TestBuildPlanDefaultsWorkspaceWhenMissing(t *testing.T) {
	restore := restoreplan.Plan{
		CapsuleID: "cp-2",
		Signal:    restoreplan.SignalPassiveCompletion,
		Steps: []restoreplan.Step{
			{Kind: restoreplan.StepLaunchTerminal, Value: "tmux attach"},
		},
	}
	plan := BuildPlan(restore)
	require.EqualValues(t, 1, plan.Workspace)
}

func TestRenderScriptEscapesSingleQuotes(t *testing.T) {
	plan := BuildPlan(sampleRestorePlan())
	script := RenderScript(plan)
	require.Contains(t, script, `wezterm start -- bash -lc 'tmux attach -t alpha'"'"'s session'`)
	require.Contains(t, script, "niri msg action focus-workspace 4")
	require.Contains(t, script, "notify-send 'Nexum Attention' 'needs_decision'")
}

type fakeAdapter struct {
	calls  []string
	failOn CommandKind
}

func (f *fakeAdapter) FocusWorkspace(workspace uint16) error {
	return f.record(CommandFocusWorkspace)
}
func (f *fakeAdapter) SpawnTerminal(command string) error { return f.record(CommandSpawnTerminal) }
func (f *fakeAdapter) SpawnEditor(target string) error    { return f.record(CommandSpawnEditor) }
func (f *fakeAdapter) SpawnBrowser(url string) error      { return f.record(CommandSpawnBrowser) }
func (f *fakeAdapter) RaiseAttention(level string) error  { return f.record(CommandRaiseAttention) }

func (f *fakeAdapter) record(kind CommandKind) error {
	if kind == f.failOn {
		return errors.New("command failed")
	}
	f.calls = append(f.calls, string(kind))
	return nil
}

func TestExecuteRunsAllCommandsInOrder(t *testing.T) {
	plan := BuildPlan(sampleRestorePlan())
	adapter := &fakeAdapter{}
	report, err := Execute(plan, adapter)
	require.NoError(t, err)
	require.Len(t, report.Executed, 5)
	require.Len(t, adapter.calls, 5)
}

func TestExecuteStopsOnFirstFailure(t *testing.T) {
	plan := BuildPlan(sampleRestorePlan())
	adapter := &fakeAdapter{failOn: CommandSpawnEditor}
	report, err := Execute(plan, adapter)
	require.Error(t, err)
	require.Len(t, report.Executed, 2)
}
