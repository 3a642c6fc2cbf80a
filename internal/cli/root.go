package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tiranuom/intrig/internal/config"
	"github.com/tiranuom/intrig/internal/logger"
)

// Version is overridden at build time with -ldflags.
var Version = "1.0.0"

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "intrig",
		Short: "intrig - generate typed API clients from OpenAPI documents",
		Long: `intrig reads the API sources listed in intrig.yaml and renders a
generator's templates for each of them.

Examples:
  intrig init                                  # Create intrig.yaml
  intrig add --name petstore --file pets.yaml  # Register a source
  intrig generate                              # Generate every source
  intrig generate --watch                      # Regenerate on change
  intrig inspect petstore                      # Print the extracted model`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,

		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.CountP("verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	flags.Bool("log-json", false, "Write logs as JSON")
	config.BindCommonFlags(root)

	root.AddCommand(
		InitCommand(),
		AddCommand(),
		RemoveCommand(),
		SourcesCommand(),
		GenerateCommand(),
		InspectCommand(),
	)

	return root
}

func newLogger(cmd *cobra.Command) (*zap.SugaredLogger, error) {
	verbosity, _ := cmd.Flags().GetCount("verbose")
	useJSON, _ := cmd.Flags().GetBool("log-json")
	return logger.New(logger.Options{JSON: useJSON, Verbosity: verbosity})
}
