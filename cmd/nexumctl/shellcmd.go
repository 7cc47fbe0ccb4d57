package main

import (
	"github.com/spf13/cobra"

	"github.com/edhor1608/Nexum/internal/capsule"
	"github.com/edhor1608/Nexum/internal/desktop"
	"github.com/edhor1608/Nexum/internal/restoreplan"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Render the desktop shell script for a restore, without executing it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		capsuleID, _ := cmd.Flags().GetString("capsule-id")
		displayName, _ := cmd.Flags().GetString("display-name")
		workspace, _ := cmd.Flags().GetUint16("workspace")
		signal, _ := cmd.Flags().GetString("signal")
		terminalCmd, _ := cmd.Flags().GetString("terminal-cmd")
		editorTarget, _ := cmd.Flags().GetString("editor-target")
		browserURL, _ := cmd.Flags().GetString("browser-url")

		sig := restoreplan.Signal(signal)
		switch sig {
		case restoreplan.SignalNeedsDecision, restoreplan.SignalCriticalFailure, restoreplan.SignalPassiveCompletion:
		default:
			return usageErrorf("invalid signal: %s", signal)
		}

		c := capsule.New(capsuleID, displayName, capsule.ModeHostDefault, workspace)
		plan := restoreplan.Build(restoreplan.Request{
			Capsule: c,
			Signal:  sig,
			Surfaces: restoreplan.Surfaces{
				TerminalCmd:  terminalCmd,
				EditorTarget: editorTarget,
				BrowserURL:   browserURL,
			},
		})
		shellPlan := desktop.BuildPlan(plan)
		script := desktop.RenderScript(shellPlan)

		return printJSON(map[string]string{"domain": c.Domain(), "shell_script": script})
	},
}

func init() {
	shellCmd.Flags().String("capsule-id", "", "Capsule id")
	shellCmd.Flags().String("display-name", "", "Capsule display name")
	shellCmd.Flags().Uint16("workspace", 1, "Desktop workspace index")
	shellCmd.Flags().String("signal", string(restoreplan.SignalNeedsDecision), "Restore signal")
	shellCmd.Flags().String("terminal-cmd", "", "Terminal command to relaunch")
	shellCmd.Flags().String("editor-target", "", "Editor target path")
	shellCmd.Flags().String("browser-url", "", "Browser URL to reopen")
	_ = shellCmd.MarkFlagRequired("capsule-id")
	_ = shellCmd.MarkFlagRequired("display-name")
}
