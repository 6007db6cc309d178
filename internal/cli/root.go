package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// Typically called by the main package with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the morph CLI and returns an error if any command fails.
//
// The root command wires up the transform, clean and render subcommands,
// attaches a logger to the context (debug level with --verbose), and
// executes the command tree.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:   "morph",
		Short: "morph rewrites BPMN process models by fragmentation or masking",
		Long: `morph transforms a BPMN process model under two mutually exclusive rewrite
modes: fragmentation, which partitions strongly-coupled activities into
labeled groups, and masking, which removes privacy-sensitive activities
while preserving reachability through synthesized bypass flows.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("morph %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newTransformCmd())
	root.AddCommand(newCleanCmd())
	root.AddCommand(newRenderCmd())

	return root.ExecuteContext(ctx)
}
