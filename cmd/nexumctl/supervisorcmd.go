package main

import (
	"github.com/spf13/cobra"

	"github.com/edhor1608/Nexum/internal/supervisor"
)

var supervisorCmd = &cobra.Command{
	Use:   "supervisor",
	Short: "Aggregate registry, event, and flag status",
}

func init() {
	supervisorCmd.AddCommand(supervisorStatusCmd)
	supervisorCmd.AddCommand(supervisorBlockersCmd)
}

func supervisorStatus() (supervisor.Report, error) {
	reg, err := openRegistry()
	if err != nil {
		return supervisor.Report{}, err
	}
	defer reg.Close()

	events, err := openEvents()
	if err != nil {
		return supervisor.Report{}, err
	}
	defer events.Close()

	return supervisor.Status(reg, events, cfg.FlagsPath())
}

var supervisorStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the aggregate status report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := supervisorStatus()
		if err != nil {
			return err
		}
		return printJSON(report)
	},
}

var supervisorBlockersCmd = &cobra.Command{
	Use:   "blockers",
	Short: "List capsules blocking progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		threshold, _ := cmd.Flags().GetInt("threshold")
		if threshold == 0 {
			threshold = cfg.BlockerThreshold()
		}

		report, err := supervisorStatus()
		if err != nil {
			return err
		}
		return printJSON(supervisor.Blockers(report, threshold))
	},
}

func init() {
	supervisorBlockersCmd.Flags().Int("threshold", 0, "Critical-event count at or above which a capsule blocks (0 uses the configured default)")
}
