package main

import (
	"github.com/spf13/cobra"

	"github.com/edhor1608/Nexum/internal/eventlog"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect the event log",
}

func init() {
	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsRecentCmd)
	eventsCmd.AddCommand(eventsSummaryCmd)
}

var eventsListCmd = &cobra.Command{
	Use:   "list <capsule-id>",
	Short: "List a capsule's events in insertion order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		store, err := openEvents()
		if err != nil {
			return err
		}
		defer store.Close()

		events, err := store.ListForCapsule(args[0], limit, offset)
		if err != nil {
			return err
		}
		return printJSON(events)
	},
}

func init() {
	eventsListCmd.Flags().Int("limit", 0, "Maximum rows to return (0 uses the default limit)")
	eventsListCmd.Flags().Int("offset", 0, "Rows to skip before applying limit")
}

var eventsRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the most recent events, optionally filtered",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		capsuleID, _ := cmd.Flags().GetString("capsule-id")
		level, _ := cmd.Flags().GetString("level")
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := openEvents()
		if err != nil {
			return err
		}
		defer store.Close()

		events, err := store.ListRecent(capsuleID, eventlog.Level(level), limit)
		if err != nil {
			return err
		}
		return printJSON(events)
	},
}

func init() {
	eventsRecentCmd.Flags().String("capsule-id", "", "Filter to one capsule")
	eventsRecentCmd.Flags().String("level", "", "Filter to one level (info|warn|error)")
	eventsRecentCmd.Flags().Int("limit", 0, "Maximum rows to return (0 uses the default limit)")
}

var eventsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print total/critical event counts globally and per capsule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openEvents()
		if err != nil {
			return err
		}
		defer store.Close()

		summary, err := store.Summary()
		if err != nil {
			return err
		}
		return printJSON(summary)
	},
}
