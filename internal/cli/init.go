package cli

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/tiranuom/intrig/internal/codegen"
	"github.com/tiranuom/intrig/internal/config"
)

func InitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a config file with default settings",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
	cmd.Flags().Bool("force", false, "Overwrite an existing config file")
	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	path := config.ConfigPath(cmd)
	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(path); err == nil && !force {
		return errors.WithHint(
			errors.Newf("%s already exists", path),
			"pass --force to overwrite it",
		)
	}

	cfg := config.Default()
	for name, field := range map[string]*string{
		"type":   &cfg.Type,
		"lang":   &cfg.Lang,
		"output": &cfg.Output,
	} {
		if cmd.Flags().Changed(name) {
			*field, _ = cmd.Flags().GetString(name)
		}
	}
	if v, _ := cmd.Flags().GetString("templates"); v != "" {
		cfg.Templates.Dir = v
	}
	if v, _ := cmd.Flags().GetStringSlice("success-statuses"); len(v) > 0 {
		cfg.SuccessStatuses = v
	}
	if v, _ := cmd.Flags().GetStringSlice("additional-initialisms"); len(v) > 0 {
		cfg.Initialisms = v
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	templatesDir := cfg.Templates.Dir
	if templatesDir != "" && !filepath.IsAbs(templatesDir) {
		templatesDir = filepath.Join(filepath.Dir(path), templatesDir)
	}
	if _, err := codegen.TemplateUnits(cfg.Generator(), templatesDir); err != nil {
		return err
	}
	if err := cfg.SaveTo(path); err != nil {
		return err
	}

	pterm.Success.Printfln("Created %s (generator %s)", path, cfg.Generator())
	pterm.Info.Println("Register an API with 'intrig add --name <name> --file <path>'")
	return nil
}
