package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tiranuom/intrig/internal/codegen"
	"github.com/tiranuom/intrig/internal/config"
	"github.com/tiranuom/intrig/internal/logger"
	"github.com/tiranuom/intrig/internal/watch"
)

func GenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate code for the configured API sources",
		Args:  cobra.NoArgs,
		RunE:  runGenerate,
	}

	flags := cmd.Flags()
	flags.Bool("dry-run", false, "Render without writing files")
	flags.StringSlice("source", nil, "Generate only the named sources")
	flags.BoolP("watch", "w", false, "Regenerate when the config, a source or a template changes")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	selected, _ := cmd.Flags().GetStringSlice("source")
	opts := codegen.Options{DryRun: dryRun, Sources: selected}

	watching, _ := cmd.Flags().GetBool("watch")
	if !watching {
		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}
		return generateOnce(cmd.Context(), cfg, log, opts)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return generateWatch(ctx, cmd, log, opts)
}

func generateOnce(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger, opts codegen.Options) error {
	driver, err := codegen.New(cfg, log, opts)
	if err != nil {
		return err
	}

	results, err := driver.Run(ctx)
	for _, r := range results {
		if r.Err != nil {
			pterm.Error.Printfln("%s: %v", r.Name, r.Err)
			continue
		}
		if opts.DryRun {
			pterm.Info.Printfln("%s: %d files would be written to %s", r.Name, r.Files(), r.Root)
			continue
		}
		pterm.Success.Printfln("%s: %d files written to %s", r.Name, r.Files(), r.Root)
	}
	return err
}

func generateWatch(ctx context.Context, cmd *cobra.Command, log *zap.SugaredLogger, opts codegen.Options) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}
	if err := generateOnce(ctx, cfg, log, opts); err != nil {
		log.Warnw("initial generation failed", logger.FieldError, err)
	}

	w, err := watch.New(watchTargets(cfg), func(ctx context.Context) error {
		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}
		return generateOnce(ctx, cfg, log, opts)
	}, log)
	if err != nil {
		return err
	}

	pterm.Info.Println("Watching for changes, press Ctrl+C to stop")
	return w.Run(ctx)
}

// watchTargets lists the files that affect generation. Sources and the
// templates directory added after startup are not picked up.
func watchTargets(cfg *config.Config) watch.Options {
	opts := watch.Options{Files: []string{cfg.Path()}}
	for _, src := range cfg.Sources {
		if src.SourceType == config.SourceTypeURL || src.File == "" {
			continue
		}
		path := src.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.Dir(), path)
		}
		opts.Files = append(opts.Files, path)
	}
	if dir := cfg.Templates.Dir; dir != "" {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(cfg.Dir(), dir)
		}
		opts.Dirs = append(opts.Dirs, dir)
	}
	return opts
}
