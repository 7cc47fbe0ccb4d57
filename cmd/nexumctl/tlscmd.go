package main

import (
	"github.com/spf13/cobra"

	"github.com/edhor1608/Nexum/internal/tlsmaterial"
)

var tlsCmd = &cobra.Command{
	Use:   "tls",
	Short: "Manage per-domain TLS material",
}

func init() {
	tlsCmd.AddCommand(tlsEnsureCmd)
	tlsCmd.AddCommand(tlsRotateCmd)
}

var tlsEnsureCmd = &cobra.Command{
	Use:   "ensure <domain>",
	Short: "Ensure self-signed TLS material exists for a domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		validityDays, _ := cmd.Flags().GetInt("validity-days")
		record, err := tlsmaterial.Ensure(cfg.TLSDir(), args[0], validityDays)
		if err != nil {
			return err
		}
		return printJSON(record)
	},
}

func init() {
	tlsEnsureCmd.Flags().Int("validity-days", 30, "Certificate validity window in days")
}

var tlsRotateCmd = &cobra.Command{
	Use:   "rotate <domain>",
	Short: "Rotate a domain's TLS material if it is near expiry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		thresholdDays, _ := cmd.Flags().GetInt("threshold-days")
		result, err := tlsmaterial.Rotate(cfg.TLSDir(), args[0], thresholdDays)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	tlsRotateCmd.Flags().Int("threshold-days", 7, "Rotate when remaining validity is at or below this many days")
}
