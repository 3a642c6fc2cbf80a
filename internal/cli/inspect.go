package cli

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v4"

	"github.com/tiranuom/intrig/internal/codegen"
	"github.com/tiranuom/intrig/internal/config"
)

func InspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <source>",
		Short: "Print the model extracted from one API source",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}
	cmd.Flags().String("format", "yaml", "Output format: yaml, json")
	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "yaml" && format != "json" {
		return errors.Newf("unknown format %q (valid: yaml, json)", format)
	}

	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}
	src, err := lookupSource(cfg, args[0])
	if err != nil {
		return err
	}

	driver, err := codegen.New(cfg, log, codegen.Options{DryRun: true})
	if err != nil {
		return err
	}
	doc, err := driver.Document(cmd.Context(), src)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding document")
	}
	if format == "yaml" {
		var tree any
		if err := json.Unmarshal(data, &tree); err != nil {
			return errors.Wrap(err, "encoding document")
		}
		if data, err = yaml.Marshal(tree); err != nil {
			return errors.Wrap(err, "encoding document")
		}
	} else {
		data = append(data, '\n')
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}
