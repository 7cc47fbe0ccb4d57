// Package controlplane composes the restore planner, desktop renderer,
// and attention policy into one flattened execution plan.
package controlplane

import (
	"github.com/edhor1608/Nexum/internal/attention"
	"github.com/edhor1608/Nexum/internal/desktop"
	"github.com/edhor1608/Nexum/internal/restoreplan"
)

// StepKind discriminates Step.Value's interpretation.
type StepKind string

const (
	StepEnsureRoute         StepKind = "ensure_route"
	StepShellFocusWorkspace StepKind = "shell_focus_workspace"
	StepShellSpawnTerminal  StepKind = "shell_spawn_terminal"
	StepShellSpawnEditor    StepKind = "shell_spawn_editor"
	StepShellSpawnBrowser   StepKind = "shell_spawn_browser"
	StepEmitAttention       StepKind = "emit_attention"
)

// Step is one tagged entry in an ExecutionPlan.
type Step struct {
	Kind        StepKind `json:"kind"`
	Domain      string   `json:"domain,omitempty"`
	Value       string   `json:"value,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Channel     string   `json:"channel,omitempty"`
	RequiresAck bool     `json:"requires_ack,omitempty"`
	Summary     string   `json:"summary,omitempty"`
}

// ExecutionPlan is the flattened, ordered set of actions a restore
// produces once routing, desktop, and attention concerns are merged.
type ExecutionPlan struct {
	CapsuleID      string `json:"capsule_id"`
	TargetBudgetMS int64  `json:"target_budget_ms"`
	Steps          []Step `json:"steps"`
}

func summarizeSignal(signal restoreplan.Signal) string {
	switch signal {
	case restoreplan.SignalNeedsDecision:
		return "decision needed"
	case restoreplan.SignalCriticalFailure:
		return "critical failure"
	case restoreplan.SignalPassiveCompletion:
		return "passive completion"
	default:
		return string(signal)
	}
}

// Build runs the restore planner, desktop renderer, and attention
// policy over request and flattens their outputs into one ExecutionPlan:
// any EnsureRouting steps first, then the desktop shell commands, and
// finally a single EmitAttention step summarizing the signal.
func Build(request restoreplan.Request) ExecutionPlan {
	restore := restoreplan.Build(request)
	shell := desktop.BuildPlan(restore)
	routed := attention.Route(attention.Event{
		CapsuleID: request.Capsule.CapsuleID,
		Signal:    request.Signal,
		Summary:   summarizeSignal(request.Signal),
	})

	var steps []Step
	for _, step := range restore.Steps {
		if step.Kind == restoreplan.StepEnsureRouting {
			steps = append(steps, Step{Kind: StepEnsureRoute, Domain: step.Value})
		}
	}

	for _, command := range shell.Commands {
		switch command.Kind {
		case desktop.CommandFocusWorkspace:
			steps = append(steps, Step{Kind: StepShellFocusWorkspace, Value: command.Value})
		case desktop.CommandSpawnTerminal:
			steps = append(steps, Step{Kind: StepShellSpawnTerminal, Value: command.Value})
		case desktop.CommandSpawnEditor:
			steps = append(steps, Step{Kind: StepShellSpawnEditor, Value: command.Value})
		case desktop.CommandSpawnBrowser:
			steps = append(steps, Step{Kind: StepShellSpawnBrowser, Value: command.Value})
		case desktop.CommandRaiseAttention:
			continue
		}
	}

	steps = append(steps, Step{
		Kind:        StepEmitAttention,
		Priority:    string(routed.Priority),
		Channel:     string(routed.Channel),
		RequiresAck: routed.RequiresAck,
		Summary:     routed.Summary,
	})

	return ExecutionPlan{
		CapsuleID:      restore.CapsuleID,
		TargetBudgetMS: restore.TargetBudgetMS,
		Steps:          steps,
	}
}
