package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/edhor1608/Nexum/internal/dispatcher"
	"github.com/edhor1608/Nexum/internal/restoreplan"
)

// dispatchOptions builds dispatcher.Options from shared flags, opening
// the capsule registry and event log the caller requested.
func dispatchOptions(cmd *cobra.Command) (dispatcher.Options, func(), error) {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	failOnMissing, _ := cmd.Flags().GetBool("fail-on-missing-capsules")
	socket, _ := cmd.Flags().GetString("socket")
	if socket == "" {
		socket = cfg.SocketPath()
	}

	reg, err := openRegistry()
	if err != nil {
		return dispatcher.Options{}, func() {}, err
	}
	events, err := openEvents()
	if err != nil {
		reg.Close()
		return dispatcher.Options{}, func() {}, err
	}

	cleanup := func() {
		reg.Close()
		events.Close()
	}

	return dispatcher.Options{
		CapsuleDB:             reg,
		EventsDB:              events,
		TLSDir:                cfg.TLSDir(),
		RoutingSocket:         socket,
		FailOnMissingCapsules: failOnMissing,
		DryRun:                dryRun,
	}, cleanup, nil
}

func addDispatchFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("dry-run", false, "Validate and plan attention only; write nothing")
	cmd.Flags().Bool("fail-on-missing-capsules", false, "Abort the whole batch before any side effects if a capsule is unknown")
	cmd.Flags().String("socket", "", "Routing daemon socket path (defaults to the resolved runtime-dir socket)")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Dispatch a single restore event",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		capsuleID, _ := cmd.Flags().GetString("capsule-id")
		signal, _ := cmd.Flags().GetString("signal")
		upstream, _ := cmd.Flags().GetString("upstream")
		identityCollision, _ := cmd.Flags().GetBool("identity-collision")
		highRiskSecret, _ := cmd.Flags().GetBool("high-risk-secret-workflow")
		forceIsolated, _ := cmd.Flags().GetBool("force-isolated-mode")

		sig := restoreplan.Signal(signal)
		switch sig {
		case restoreplan.SignalNeedsDecision, restoreplan.SignalCriticalFailure, restoreplan.SignalPassiveCompletion:
		default:
			return usageErrorf("invalid signal: %s", signal)
		}

		opts, cleanup, err := dispatchOptions(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := dispatcher.DispatchBatch([]dispatcher.Event{{
			CapsuleID:              capsuleID,
			Signal:                 sig,
			Upstream:               upstream,
			IdentityCollision:      identityCollision,
			HighRiskSecretWorkflow: highRiskSecret,
			ForceIsolatedMode:      forceIsolated,
		}}, opts)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	runCmd.Flags().String("capsule-id", "", "Capsule id")
	runCmd.Flags().String("signal", string(restoreplan.SignalNeedsDecision), "Restore signal")
	runCmd.Flags().String("upstream", "", "Route upstream address")
	runCmd.Flags().Bool("identity-collision", false, "Force isolation: identity collision detected")
	runCmd.Flags().Bool("high-risk-secret-workflow", false, "Force isolation: high-risk secret workflow")
	runCmd.Flags().Bool("force-isolated-mode", false, "Force isolation unconditionally")
	addDispatchFlags(runCmd)
	_ = runCmd.MarkFlagRequired("capsule-id")
}

var steadCmd = &cobra.Command{
	Use:   "stead <events.json>",
	Short: "Dispatch a batch of restore events read from a JSON file",
	Long: `stead reads a JSON array of dispatch events from the given file and
runs each through the restore orchestrator.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return usageErrorf("read %s: %v", args[0], err)
		}
		var events []dispatcher.Event
		if err := json.Unmarshal(data, &events); err != nil {
			return usageErrorf("decode %s: %v", args[0], err)
		}

		opts, cleanup, err := dispatchOptions(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := dispatcher.DispatchBatch(events, opts)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	addDispatchFlags(steadCmd)
}
