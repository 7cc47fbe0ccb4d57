package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/edhor1608/Nexum/internal/capsule"
)

var capsuleCmd = &cobra.Command{
	Use:   "capsule",
	Short: "Manage capsule records",
}

func init() {
	capsuleCmd.AddCommand(capsuleCreateCmd)
	capsuleCmd.AddCommand(capsuleUpsertCmd)
	capsuleCmd.AddCommand(capsuleGetCmd)
	capsuleCmd.AddCommand(capsuleListCmd)
	capsuleCmd.AddCommand(capsuleRenameCmd)
	capsuleCmd.AddCommand(capsuleSetRepoPathCmd)
	capsuleCmd.AddCommand(capsuleExportCmd)
	capsuleCmd.AddCommand(capsuleAllocatePortCmd)
	capsuleCmd.AddCommand(capsulePortsCmd)
	capsuleCmd.AddCommand(capsuleReleasePortsCmd)
}

var capsuleCreateCmd = &cobra.Command{
	Use:   "create <display-name>",
	Short: "Create a capsule under a freshly generated capsule id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		workspace, _ := cmd.Flags().GetUint16("workspace")

		m := capsule.Mode(mode)
		if m != capsule.ModeHostDefault && m != capsule.ModeIsolatedNixShell {
			return usageErrorf("invalid mode %q", mode)
		}

		reg, err := openRegistry()
		if err != nil {
			return err
		}
		defer reg.Close()

		c := capsule.New(uuid.New().String(), args[0], m, workspace)
		if err := reg.Upsert(c); err != nil {
			return err
		}
		return printJSON(c)
	},
}

func init() {
	capsuleCreateCmd.Flags().String("mode", string(capsule.ModeHostDefault), "Capsule mode (host_default|isolated_nix_shell)")
	capsuleCreateCmd.Flags().Uint16("workspace", 1, "Desktop workspace index")
}

var capsuleUpsertCmd = &cobra.Command{
	Use:   "upsert <capsule-id> <display-name>",
	Short: "Create or update a capsule",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, _ := cmd.Flags().GetString("mode")
		workspace, _ := cmd.Flags().GetUint16("workspace")

		m := capsule.Mode(mode)
		if m != capsule.ModeHostDefault && m != capsule.ModeIsolatedNixShell {
			return usageErrorf("invalid mode %q", mode)
		}

		reg, err := openRegistry()
		if err != nil {
			return err
		}
		defer reg.Close()

		c := capsule.New(args[0], args[1], m, workspace)
		if err := reg.Upsert(c); err != nil {
			return err
		}
		return printJSON(c)
	},
}

func init() {
	capsuleUpsertCmd.Flags().String("mode", string(capsule.ModeHostDefault), "Capsule mode (host_default|isolated_nix_shell)")
	capsuleUpsertCmd.Flags().Uint16("workspace", 1, "Desktop workspace index")
}

var capsuleGetCmd = &cobra.Command{
	Use:   "get <capsule-id>",
	Short: "Show one capsule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		defer reg.Close()

		c, ok, err := reg.Get(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return usageErrorf("unknown capsule: %s", args[0])
		}
		return printJSON(c)
	},
}

var capsuleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every capsule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		defer reg.Close()

		capsules, err := reg.List()
		if err != nil {
			return err
		}
		return printJSON(capsules)
	},
}

var capsuleRenameCmd = &cobra.Command{
	Use:   "rename <capsule-id> <display-name>",
	Short: "Rename a capsule's display name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		defer reg.Close()

		if err := reg.RenameDisplayName(args[0], args[1]); err != nil {
			return err
		}
		c, _, err := reg.Get(args[0])
		if err != nil {
			return err
		}
		return printJSON(c)
	},
}

var capsuleSetRepoPathCmd = &cobra.Command{
	Use:   "set-repo-path <capsule-id> <path>",
	Short: "Set a capsule's working-tree path hint",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		defer reg.Close()

		if err := reg.SetRepoPath(args[0], args[1]); err != nil {
			return err
		}
		c, _, err := reg.Get(args[0])
		if err != nil {
			return err
		}
		return printJSON(c)
	},
}

var capsuleAllocatePortCmd = &cobra.Command{
	Use:   "allocate-port <capsule-id>",
	Short: "Allocate (or return the existing) port for a capsule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		defer reg.Close()

		start, end := cfg.PortRange()
		port, ok, err := reg.AllocatePort(args[0], start, end)
		if err != nil {
			return err
		}
		if !ok {
			return usageErrorf("port range [%d, %d] exhausted", start, end)
		}
		return printJSON(map[string]any{"capsule_id": args[0], "port": port})
	},
}

var capsulePortsCmd = &cobra.Command{
	Use:   "ports <capsule-id>",
	Short: "List a capsule's allocated ports, ascending",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		defer reg.Close()

		ports, err := reg.ListPorts(args[0])
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"capsule_id": args[0], "ports": ports})
	},
}

var capsuleReleasePortsCmd = &cobra.Command{
	Use:   "release-ports <capsule-id>",
	Short: "Release every port held by a capsule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		defer reg.Close()

		released, err := reg.ReleasePorts(args[0])
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"capsule_id": args[0], "released": released})
	},
}

var capsuleExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every capsule as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := openRegistry()
		if err != nil {
			return err
		}
		defer reg.Close()

		out, err := reg.ExportYAML()
		if err != nil {
			return err
		}
		return printJSON(map[string]string{"yaml": out})
	},
}
