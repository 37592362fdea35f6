package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bannerlord/bannerlord/pkg/buildinfo"
)

// Execute runs the bannerlord CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands (create,
// recompose, plan, serve), configures logging based on the --verbose flag,
// and executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:   "bannerlord",
		Short: "Bannerlord composes promotional banners from a text prompt",
		Long: `Bannerlord is a CLI tool for creating promotional banners. It asks an AI
design advisor for guidance, sketches a layout plan, generates or synthesizes
a background, composes the text, and exports PNG, SVG, and metadata artifacts.`,
		Version:      buildinfo.Version,
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

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newCreateCmd())
	root.AddCommand(newRecomposeCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newServeCmd())

	return root.ExecuteContext(ctx)
}
