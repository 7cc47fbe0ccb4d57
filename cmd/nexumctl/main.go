// Command nexumctl is the stateless control-plane CLI: thin flag-to-call
// shims over the internal/ packages. Each subcommand opens only the
// stores it needs, does one thing, and prints one JSON object to stdout.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edhor1608/Nexum/internal/config"
	"github.com/edhor1608/Nexum/internal/eventlog"
	"github.com/edhor1608/Nexum/internal/log"
	"github.com/edhor1608/Nexum/internal/registry"
)

var cfg *config.Config

// usageError marks a failure as a usage problem (exit code 2) rather
// than an operational one (exit code 1).
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ue usageError
		if errors.As(err, &ue) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "nexumctl",
	Short: "Nexum control-plane CLI",
	Long: `nexumctl is the stateless frontend over the capsule registry,
routing daemon, TLS material, cutover gate, and restore orchestrator.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	var err error
	cfg, err = config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.BindFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(capsuleCmd)
	rootCmd.AddCommand(flagsCmd)
	rootCmd.AddCommand(parityCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(routingCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(steadCmd)
	rootCmd.AddCommand(supervisorCmd)
	rootCmd.AddCommand(tlsCmd)
	rootCmd.AddCommand(cutoverCmd)
	rootCmd.AddCommand(runCmd)
}

func initLogging() {
	log.Init(log.Config{
		Level:      log.Level(cfg.LogLevel()),
		JSONOutput: cfg.LogJSON(),
	})
}

// printJSON writes v to stdout as one JSON object: one successful call
// writes exactly one JSON object to standard output.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func openRegistry() (*registry.Registry, error) {
	return registry.Open(cfg.RegistryPath())
}

func openEvents() (*eventlog.Store, error) {
	return eventlog.Open(cfg.EventsPath())
}
