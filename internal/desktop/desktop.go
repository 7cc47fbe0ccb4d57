// Package desktop renders a restore plan into the niri-specific shell
// commands that actually bring a capsule's windows to the front.
package desktop

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/edhor1608/Nexum/internal/restoreplan"
)

// CommandKind discriminates Command.Value's meaning.
type CommandKind string

const (
	CommandFocusWorkspace CommandKind = "focus_workspace"
	CommandSpawnTerminal  CommandKind = "spawn_terminal"
	CommandSpawnEditor    CommandKind = "spawn_editor"
	CommandSpawnBrowser   CommandKind = "spawn_browser"
	CommandRaiseAttention CommandKind = "raise_attention"
)

// Command is one tagged niri-shell action.
type Command struct {
	Kind  CommandKind `json:"kind"`
	Value string      `json:"value"`
}

// Plan is the niri-specific rendering of a restore plan: routing steps
// are dropped since niri has no notion of a domain.
type Plan struct {
	Workspace uint16    `json:"workspace"`
	Commands  []Command `json:"commands"`
}

// ExecutionReport records what an Adapter actually ran.
type ExecutionReport struct {
	Workspace uint16    `json:"workspace"`
	Executed  []Command `json:"executed"`
}

// Adapter performs the five niri-shell actions. Production code talks to
// a real niri/wezterm/editor/browser/notify-send stack; tests use a fake.
type Adapter interface {
	FocusWorkspace(workspace uint16) error
	SpawnTerminal(command string) error
	SpawnEditor(target string) error
	SpawnBrowser(url string) error
	RaiseAttention(level string) error
}

// BuildPlan derives the niri shell plan from a restore plan, dropping
// the EnsureRouting step and defaulting to workspace 1 if the restore
// plan never focuses one.
func BuildPlan(restore restoreplan.Plan) Plan {
	plan := Plan{Workspace: 1}

	for _, step := range restore.Steps {
		switch step.Kind {
		case restoreplan.StepEnsureRouting:
			continue
		case restoreplan.StepFocusWorkspace:
			workspace := parseWorkspace(step.Value)
			plan.Workspace = workspace
			plan.Commands = append(plan.Commands, Command{Kind: CommandFocusWorkspace, Value: step.Value})
		case restoreplan.StepLaunchTerminal:
			plan.Commands = append(plan.Commands, Command{Kind: CommandSpawnTerminal, Value: step.Value})
		case restoreplan.StepLaunchEditor:
			plan.Commands = append(plan.Commands, Command{Kind: CommandSpawnEditor, Value: step.Value})
		case restoreplan.StepLaunchBrowser:
			plan.Commands = append(plan.Commands, Command{Kind: CommandSpawnBrowser, Value: step.Value})
		case restoreplan.StepPresentAttention:
			plan.Commands = append(plan.Commands, Command{Kind: CommandRaiseAttention, Value: step.Value})
		}
	}

	return plan
}

func parseWorkspace(value string) uint16 {
	n, err := strconv.ParseUint(value, 10, 16)
	if err != nil {
		return 1
	}
	return uint16(n)
}

// Execute runs every command in plan against adapter in order, stopping
// and returning the partial report on the first failure.
func Execute(plan Plan, adapter Adapter) (ExecutionReport, error) {
	report := ExecutionReport{Workspace: plan.Workspace}

	for _, command := range plan.Commands {
		var err error
		switch command.Kind {
		case CommandFocusWorkspace:
			err = adapter.FocusWorkspace(parseWorkspace(command.Value))
		case CommandSpawnTerminal:
			err = adapter.SpawnTerminal(command.Value)
		case CommandSpawnEditor:
			err = adapter.SpawnEditor(command.Value)
		case CommandSpawnBrowser:
			err = adapter.SpawnBrowser(command.Value)
		case CommandRaiseAttention:
			err = adapter.RaiseAttention(command.Value)
		}
		if err != nil {
			return report, err
		}
		report.Executed = append(report.Executed, command)
	}

	return report, nil
}

// RenderScript renders plan as a sequence of shell command lines, one
// per niri-shell command, suitable for a dry-run preview.
func RenderScript(plan Plan) string {
	lines := make([]string, 0, len(plan.Commands))

	for _, command := range plan.Commands {
		var line string
		switch command.Kind {
		case CommandFocusWorkspace:
			line = fmt.Sprintf("niri msg action focus-workspace %s", command.Value)
		case CommandSpawnTerminal:
			line = fmt.Sprintf("wezterm start -- bash -lc %s", Quote(command.Value))
		case CommandSpawnEditor:
			line = fmt.Sprintf("code %s", Quote(command.Value))
		case CommandSpawnBrowser:
			line = fmt.Sprintf("xdg-open %s", Quote(command.Value))
		case CommandRaiseAttention:
			line = fmt.Sprintf("notify-send 'Nexum Attention' %s", Quote(command.Value))
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// Quote single-quotes an arbitrary string for the rendered script,
// escaping embedded single quotes. Callers that post-process RenderScript
// output use it to reconstruct a rendered line exactly.
func Quote(input string) string {
	return "'" + escapeSingleQuotes(input) + "'"
}

func escapeSingleQuotes(input string) string {
	return strings.ReplaceAll(input, "'", `'"'"'`)
}
