package cmd

import (
	"github.com/spf13/cobra"

	"seccage/orchestrator"
)

// sandboxInitCmd runs inside the re-exec'd child, after the kernel has
// placed it in its new namespaces. It is never invoked directly by a
// user — the orchestrator constructs its argv itself.
var sandboxInitCmd = &cobra.Command{
	Use:                "__sandbox-init",
	Hidden:             true,
	DisableFlagParsing: true,
	Args:               cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return orchestrator.Init(args)
	},
}
