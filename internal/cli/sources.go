package cli

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tiranuom/intrig/internal/codegen"
	"github.com/tiranuom/intrig/internal/config"
	"github.com/tiranuom/intrig/internal/errdefs"
)

func AddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an API source",
		Args:  cobra.NoArgs,
		RunE:  runAdd,
	}

	flags := cmd.Flags()
	flags.String("name", "", "Source name, also the output subdirectory")
	flags.String("file", "", "Path of the API document, relative to the config file")
	flags.String("url", "", "URL of the API document")
	flags.String("loader", "", "Document loader: "+strings.Join(codegen.LoaderKeys(), ", "))
	_ = cmd.MarkFlagRequired("name")
	cmd.MarkFlagsMutuallyExclusive("file", "url")
	cmd.MarkFlagsOneRequired("file", "url")

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}

	src := config.Source{}
	src.Name, _ = cmd.Flags().GetString("name")
	src.File, _ = cmd.Flags().GetString("file")
	src.URL, _ = cmd.Flags().GetString("url")
	src.Type, _ = cmd.Flags().GetString("loader")
	if src.URL != "" {
		src.SourceType = config.SourceTypeURL
	}
	if src.Type != "" {
		if _, err := codegen.NewLoader(src.Type, cfg.Dir(), nil); err != nil {
			return err
		}
	}

	if err := cfg.AddSource(src); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return err
	}

	pterm.Success.Printfln("Added source %s", src.Name)
	return nil
}

func RemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove an API source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}
			if err := cfg.RemoveSource(args[0]); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return err
			}
			pterm.Success.Printfln("Removed source %s", args[0])
			return nil
		},
	}
}

func SourcesCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "sources",
		Aliases: []string{"ls"},
		Short:   "List configured API sources",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}
			if len(cfg.Sources) == 0 {
				pterm.Info.Println("No sources configured")
				return nil
			}

			data := pterm.TableData{{"NAME", "TYPE", "LOCATION", "OUTPUT"}}
			for _, src := range cfg.Sources {
				data = append(data, []string{
					src.Name,
					src.Type,
					codegen.LoaderSource(src).Location(),
					cfg.OutputRoot(src.Name),
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}
}

// lookupSource returns the configured source name or a not-found error
// listing the known ones.
func lookupSource(cfg *config.Config, name string) (config.Source, error) {
	src, ok := cfg.Source(name)
	if ok {
		return src, nil
	}
	known := make([]string, len(cfg.Sources))
	for i, s := range cfg.Sources {
		known[i] = s.Name
	}
	return config.Source{}, &errdefs.SourceError{
		Source: name,
		Cause:  errors.Newf("not configured (known: %s)", strings.Join(known, ", ")),
	}
}
