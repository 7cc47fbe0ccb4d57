package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/edhor1608/Nexum/internal/shadow"
)

var parityCmd = &cobra.Command{
	Use:   "parity",
	Short: "Compare a primary and candidate execution result",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		primaryPath, _ := cmd.Flags().GetString("primary")
		candidatePath, _ := cmd.Flags().GetString("candidate")

		primary, err := readExecutionResult(primaryPath)
		if err != nil {
			return err
		}
		candidate, err := readExecutionResult(candidatePath)
		if err != nil {
			return err
		}

		report := shadow.CompareExecution(primary, candidate)
		return printJSON(report)
	},
}

func init() {
	parityCmd.Flags().String("primary", "", "Path to the primary ExecutionResult JSON file")
	parityCmd.Flags().String("candidate", "", "Path to the candidate ExecutionResult JSON file")
	_ = parityCmd.MarkFlagRequired("primary")
	_ = parityCmd.MarkFlagRequired("candidate")
}

func readExecutionResult(path string) (shadow.ExecutionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return shadow.ExecutionResult{}, usageErrorf("read %s: %v", path, err)
	}
	var result shadow.ExecutionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return shadow.ExecutionResult{}, usageErrorf("decode %s: %v", path, err)
	}
	return result, nil
}
