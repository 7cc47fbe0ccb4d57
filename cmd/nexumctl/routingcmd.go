package main

import (
	"github.com/spf13/cobra"

	"github.com/edhor1608/Nexum/internal/routing"
)

var routingCmd = &cobra.Command{
	Use:   "routing",
	Short: "Talk to the routing daemon",
}

func init() {
	routingCmd.AddCommand(routingHealthCmd)
	routingCmd.AddCommand(routingRegisterCmd)
	routingCmd.AddCommand(routingResolveCmd)
	routingCmd.AddCommand(routingRemoveCmd)
	routingCmd.AddCommand(routingListCmd)
}

func socketFlag(cmd *cobra.Command) string {
	socket, _ := cmd.Flags().GetString("socket")
	if socket == "" {
		return cfg.SocketPath()
	}
	return socket
}

func addSocketFlag(cmd *cobra.Command) {
	cmd.Flags().String("socket", "", "Routing daemon socket path (defaults to the resolved runtime-dir socket)")
}

var routingHealthCmd = &cobra.Command{
	Use:  "health",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outcome, err := routing.SendCommand(socketFlag(cmd), routing.Command{Cmd: routing.CmdHealth})
		if err != nil {
			return err
		}
		return printJSON(outcome)
	},
}

var routingRegisterCmd = &cobra.Command{
	Use:   "register <capsule-id> <domain> <upstream>",
	Short: "Register or upsert a route",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		outcome, err := routing.SendCommand(socketFlag(cmd), routing.Command{
			Cmd: routing.CmdRegister, CapsuleID: args[0], Domain: args[1], Upstream: args[2],
		})
		if err != nil {
			return err
		}
		return printJSON(outcome)
	},
}

var routingResolveCmd = &cobra.Command{
	Use:  "resolve <domain>",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outcome, err := routing.SendCommand(socketFlag(cmd), routing.Command{Cmd: routing.CmdResolve, Domain: args[0]})
		if err != nil {
			return err
		}
		return printJSON(outcome)
	},
}

var routingRemoveCmd = &cobra.Command{
	Use:  "remove <domain>",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outcome, err := routing.SendCommand(socketFlag(cmd), routing.Command{Cmd: routing.CmdRemove, Domain: args[0]})
		if err != nil {
			return err
		}
		return printJSON(outcome)
	},
}

var routingListCmd = &cobra.Command{
	Use:  "list",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		outcome, err := routing.SendCommand(socketFlag(cmd), routing.Command{Cmd: routing.CmdList})
		if err != nil {
			return err
		}
		return printJSON(outcome)
	},
}

func init() {
	for _, c := range []*cobra.Command{routingHealthCmd, routingRegisterCmd, routingResolveCmd, routingRemoveCmd, routingListCmd} {
		addSocketFlag(c)
	}
}
