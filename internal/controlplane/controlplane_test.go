package controlplane

import (
	"testing"

	"github.com/edhor1608/Nexum/internal/capsule"
	"github.com/edhor1608/Nexum/internal/restoreplan"
	"github.com/stretchr/testify/require"
)

func TestBuildFlattensRoutingShellAndAttention(t *testing.T) {
	cp := capsule.New("cp-1", "Alpha", capsule.ModeHostDefault, 2)
	request := restoreplan.Request{
		Capsule: cp,
		Signal:  restoreplan.SignalCriticalFailure,
		Surfaces: restoreplan.Surfaces{
			TerminalCmd:  "tmux attach",
			EditorTarget: "/repo",
			BrowserURL:   "https://alpha.nexum.local",
		},
	}

	plan := Build(request)

	require.Equal(t, "cp-1", plan.CapsuleID)
	require.EqualValues(t, restoreplan.TargetBudgetMS, plan.TargetBudgetMS)

	require.Equal(t, StepEnsureRoute, plan.Steps[0].Kind)
	require.Equal(t, "alpha.nexum.local", plan.Steps[0].Domain)

	last := plan.Steps[len(plan.Steps)-1]
	require.Equal(t, StepEmitAttention, last.Kind)
	require.Equal(t, "blocking", last.Priority)
	require.Equal(t, "banner_and_sound", last.Channel)
	require.True(t, last.RequiresAck)
	require.Equal(t, "critical failure", last.Summary)
}

func TestBuildHasExactlyOneEmitAttentionStep(t *testing.T) {
	cp := capsule.New("cp-2", "Beta", capsule.ModeHostDefault, 1)
	plan := Build(restoreplan.Request{Capsule: cp, Signal: restoreplan.SignalPassiveCompletion})

	count := 0
	for _, step := range plan.Steps {
		if step.Kind == StepEmitAttention {
			count++
		}
	}
	require.Equal(t, 1, count)
}
