package main

import (
	"github.com/spf13/cobra"

	"github.com/edhor1608/Nexum/internal/cutover"
	"github.com/edhor1608/Nexum/internal/flags"
)

var cutoverCmd = &cobra.Command{
	Use:   "cutover",
	Short: "Evaluate and apply cutover gate decisions",
}

func init() {
	cutoverCmd.AddCommand(cutoverEvaluateCmd)
	cutoverCmd.AddCommand(cutoverApplyCmd)
	cutoverCmd.AddCommand(cutoverRollbackCmd)
}

var cutoverEvaluateCmd = &cobra.Command{
	Use:   "evaluate <capability>",
	Short: "Evaluate whether a capability may cut over",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		capability, ok := cutover.ParseCapability(args[0])
		if !ok {
			return usageErrorf("unknown capability: %s", args[0])
		}
		parityScore, _ := cmd.Flags().GetFloat64("parity-score")
		criticalEvents, _ := cmd.Flags().GetUint32("critical-events")

		f, err := flags.LoadOrDefault(cfg.FlagsPath())
		if err != nil {
			return err
		}

		decision := cutover.Evaluate(cutover.Input{
			Capability:        capability,
			ParityScore:       parityScore,
			MinParityScore:    cfg.MinParityScore(),
			CriticalEvents:    criticalEvents,
			MaxCriticalEvents: cfg.MaxCriticalEvents(),
			ShadowModeEnabled: f.ShadowMode,
		})
		return printJSON(decision)
	},
}

func init() {
	cutoverEvaluateCmd.Flags().Float64("parity-score", 0, "Observed shadow parity score")
	cutoverEvaluateCmd.Flags().Uint32("critical-events", 0, "Observed critical event count")
}

var cutoverApplyCmd = &cobra.Command{
	Use:   "apply <capability>",
	Short: "Apply an admitted cutover decision, flipping the capability's flag on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		capability, ok := cutover.ParseCapability(args[0])
		if !ok {
			return usageErrorf("unknown capability: %s", args[0])
		}
		parityScore, _ := cmd.Flags().GetFloat64("parity-score")
		criticalEvents, _ := cmd.Flags().GetUint32("critical-events")

		f, err := flags.LoadOrDefault(cfg.FlagsPath())
		if err != nil {
			return err
		}

		decision := cutover.Evaluate(cutover.Input{
			Capability:        capability,
			ParityScore:       parityScore,
			MinParityScore:    cfg.MinParityScore(),
			CriticalEvents:    criticalEvents,
			MaxCriticalEvents: cfg.MaxCriticalEvents(),
			ShadowModeEnabled: f.ShadowMode,
		})
		cutover.Apply(&f, decision)
		if err := flags.Save(cfg.FlagsPath(), f); err != nil {
			return err
		}
		return printJSON(map[string]any{"decision": decision, "flags": f})
	},
}

func init() {
	cutoverApplyCmd.Flags().Float64("parity-score", 0, "Observed shadow parity score")
	cutoverApplyCmd.Flags().Uint32("critical-events", 0, "Observed critical event count")
}

var cutoverRollbackCmd = &cobra.Command{
	Use:   "rollback <capability>",
	Short: "Unconditionally disable a capability's control-plane flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		capability, ok := cutover.ParseCapability(args[0])
		if !ok {
			return usageErrorf("unknown capability: %s", args[0])
		}

		f, err := flags.LoadOrDefault(cfg.FlagsPath())
		if err != nil {
			return err
		}
		cutover.Rollback(&f, capability)
		if err := flags.Save(cfg.FlagsPath(), f); err != nil {
			return err
		}
		return printJSON(f)
	},
}
