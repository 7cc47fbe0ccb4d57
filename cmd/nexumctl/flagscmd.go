package main

import (
	"github.com/spf13/cobra"

	"github.com/edhor1608/Nexum/internal/flags"
)

var flagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "Inspect and mutate cutover flags",
}

func init() {
	flagsCmd.AddCommand(flagsShowCmd)
	flagsCmd.AddCommand(flagsSetCmd)
}

var flagsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current cutover flags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := flags.LoadOrDefault(cfg.FlagsPath())
		if err != nil {
			return err
		}
		return printJSON(f)
	},
}

var flagsSetCmd = &cobra.Command{
	Use:   "set <name> <true|false>",
	Short: "Set one cutover flag and save it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := flags.Name(args[0])
		switch name {
		case flags.ShadowMode, flags.RoutingControlPlane, flags.RestoreControlPlane, flags.AttentionControlPlane:
		default:
			return usageErrorf("unknown flag: %s", args[0])
		}
		var value bool
		switch args[1] {
		case "true":
			value = true
		case "false":
			value = false
		default:
			return usageErrorf("value must be true or false, got %q", args[1])
		}

		f, err := flags.LoadOrDefault(cfg.FlagsPath())
		if err != nil {
			return err
		}
		flags.Set(&f, name, value)
		if err := flags.Save(cfg.FlagsPath(), f); err != nil {
			return err
		}
		return printJSON(f)
	},
}
