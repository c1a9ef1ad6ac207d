package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tsgonest/tsflatten/internal/config"
	"github.com/tsgonest/tsflatten/internal/diagnostic"
	"github.com/tsgonest/tsflatten/internal/errors"
	"github.com/tsgonest/tsflatten/internal/flatten"
	"github.com/tsgonest/tsflatten/internal/format"
	"github.com/tsgonest/tsflatten/internal/logger"
)

const version = "0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// cliFlags are the command line overrides of the config file.
type cliFlags struct {
	ConfigPath     string
	RootNames      []string
	ExportName     string
	ReuseThreshold int
	MinHoistSize   int
	Cycles         string
	Formatter      string
	DumpVisits     string
	Verbose        bool
	LogJSON        bool
}

func run(args []string, stdout, stderr io.Writer) int {
	if args == nil {
		args = []string{}
	}
	cmd := newRootCmd(stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errors.ErrUsage) {
			fmt.Fprintf(stderr, "error: %s\n", errors.UserMessage(err))
		}
		return 1
	}
	return 0
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	var f cliFlags
	cmd := &cobra.Command{
		Use:   "tsflatten [flags] <tsconfig.json> <router-file> <output-file>",
		Short: "Flatten a TypeScript router type into standalone declarations",
		Long: `tsflatten resolves the type of a router value (appRouter or api) in a
TypeScript project and writes it as self-contained type declarations with no
imports, so a client can use the router type without the server's sources.

Examples:
  tsflatten tsconfig.json src/router.ts client/router.d.ts
  tsflatten --root apiRouter --formatter prettier tsconfig.json src/api.ts out/api.ts
  tsflatten --dump-visits types.json tsconfig.json src/router.ts out/router.ts`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 3 {
				return nil
			}
			fmt.Fprint(stderr, cmd.UsageString())
			return errors.Mark(errors.Newf("expected 3 arguments, got %d", len(args)), errors.ErrUsage)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Initialize(f.Verbose, f.LogJSON); err != nil {
				return err
			}
			defer logger.Sync()

			cwd, err := os.Getwd()
			if err != nil {
				return errors.Wrap(err, "getting working directory")
			}
			loaded, err := loadOrDiscoverConfig(f.ConfigPath, cwd)
			if err != nil {
				return err
			}
			if loaded.Path != "" {
				logger.Logger.Debugw("loaded config", "path", loaded.Path)
			}
			cfg := loaded.Config
			if err := f.apply(cmd, cfg); err != nil {
				return err
			}

			job := &Job{
				TSConfig:    args[0],
				RouterFile:  args[1],
				Output:      args[2],
				Cwd:         cwd,
				Config:      cfg,
				Diagnostics: stderr,
				Quiet:       !f.Verbose,
			}
			report, err := job.Run(cmd.Context())
			if err != nil {
				return err
			}
			for _, d := range report.Diagnostics.Diagnostics() {
				if d.Severity == diagnostic.SeverityWarning {
					logger.Logger.Warnw(d.Message, "category", d.Category, "hint", d.Hint)
				} else {
					logger.Logger.Debugw(d.Message, "category", d.Category)
				}
			}
			logger.Logger.Infow("wrote router type",
				"output", report.Output,
				"export", report.ExportName,
				"declarations", report.Declarations,
				"issues", report.Diagnostics.Summary(),
				"elapsed", report.Elapsed.Round(time.Millisecond))
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.ConfigPath, "config", "", "Path to tsflatten.config.json (default: ./"+config.DefaultFileName+" if present)")
	fl.StringArrayVar(&f.RootNames, "root", nil, "Router variable name to flatten, repeatable in priority order (default: appRouter, api)")
	fl.StringVar(&f.ExportName, "export-name", "", "Name of the exported type (default: derived from the root name)")
	fl.IntVar(&f.ReuseThreshold, "reuse-threshold", flatten.DefaultReuseThreshold, "Visit count a type must exceed to become a named declaration")
	fl.IntVar(&f.MinHoistSize, "min-hoist-size", flatten.DefaultMinHoistSize, "Type text length a type must exceed to become a named declaration")
	fl.StringVar(&f.Cycles, "cycles", string(flatten.CycleReference), "Cycle handling: reference or erase")
	fl.StringVar(&f.Formatter, "formatter", string(format.EngineBuiltin), "Output formatter: builtin, prettier or none")
	fl.StringVar(&f.DumpVisits, "dump-visits", "", "Write the visit table as JSON to this path")
	fl.BoolVarP(&f.Verbose, "verbose", "v", false, "Enable debug logging")
	fl.BoolVar(&f.LogJSON, "log-json", false, "Log as JSON")
	return cmd
}

// apply overrides cfg with the flags set on the command line and
// revalidates it.
func (f *cliFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	fl := cmd.Flags()
	if fl.Changed("root") {
		cfg.RootNames = f.RootNames
	}
	if fl.Changed("export-name") {
		cfg.ExportName = f.ExportName
	}
	if fl.Changed("reuse-threshold") {
		cfg.Emit.ReuseThreshold = f.ReuseThreshold
	}
	if fl.Changed("min-hoist-size") {
		cfg.Emit.MinHoistSize = f.MinHoistSize
	}
	if fl.Changed("cycles") {
		cfg.Flatten.Cycles = flatten.CycleMode(f.Cycles)
	}
	if fl.Changed("formatter") {
		cfg.Format.Engine = format.Engine(f.Formatter)
	}
	if fl.Changed("dump-visits") {
		cfg.DumpVisits = f.DumpVisits
	}

	if err := cfg.Validate(); err != nil {
		return errors.WithHint(err, "check the flags and "+config.DefaultFileName)
	}
	return nil
}
