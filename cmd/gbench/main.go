// FILENAME: cmd/gbench/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/xkilldash9x/gbench/internal/bench"
	"github.com/xkilldash9x/gbench/internal/config"
	"github.com/xkilldash9x/gbench/internal/report"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// -- Signal Handling --
	// cancels the run on interrupt so partial stats still get printed
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	ipc       string
	star      string
	timeSec   int
	footprint string
	cfgFile   string
	pin       bool
	gc        bool
	outDir    string
	textfile  string
	debug     bool
}

func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var opts options
	cmd := &cobra.Command{
		Use:   "gbench",
		Short: "Measure thread wake-up latency under a star workload",
		Long: `gbench runs one coordinator thread and N worker threads. Every iteration
each worker wakes the coordinator and blocks until it is woken back, then
both sides compute for their run time and sleep for their wait time.`,
		Example:       "  gbench -i futex -s 1000:1000,1000:1000 -t 10",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd, opts, stdout, stderr)
		},
	}
	cmd.SetContext(ctx)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVarP(&opts.ipc, "ipc", "i", config.DefaultMechanism, "Wake mechanism: futex, pipe or sock")
	flags.StringVarP(&opts.star, "star", "s", "", "Workload as run:wait,run:wait,... in microseconds, coordinator first")
	flags.IntVarP(&opts.timeSec, "time", "t", int(config.DefaultDuration/time.Second), "Benchmark time in seconds")
	flags.StringVarP(&opts.footprint, "cache_footprint", "F", fmt.Sprint(config.DefaultFootprintKB), "Cache footprint per task in KB, or a size such as 1MiB")
	flags.StringVarP(&opts.cfgFile, "config", "c", "", "YAML config file; flags override it")
	flags.BoolVar(&opts.pin, "pin", false, "Pin task i to CPU i mod NumCPU")
	flags.BoolVar(&opts.gc, "gc", false, "Keep the Go GC enabled during the run")
	flags.StringVarP(&opts.outDir, "out", "o", "", "Directory for JSON and CSV artifacts")
	flags.StringVar(&opts.textfile, "textfile", "", "Write Prometheus textfile metrics to this path")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	return cmd.Execute()
}

func execute(cmd *cobra.Command, opts options, stdout, stderr io.Writer) error {
	logger := newLogger(stderr, opts.debug)
	defer logger.Sync()

	cfg, err := buildConfig(cmd, opts)
	if err != nil {
		return err
	}

	ctrl, err := bench.New(cfg, logger)
	if err != nil {
		return err
	}
	rep, err := ctrl.Run(cmd.Context())
	if err != nil {
		return err
	}

	if err := report.WriteTable(stdout, rep, isTerminal(stdout)); err != nil {
		return err
	}
	if opts.outDir != "" {
		paths, err := report.NewWriter(opts.outDir).WriteArtifacts(rep, config.ArtifactPrefix)
		if err != nil {
			return fmt.Errorf("writing artifacts: %w", err)
		}
		logger.Info("Artifacts written", zap.Strings("paths", paths))
	}
	if opts.textfile != "" {
		if err := report.WriteTextfile(opts.textfile, rep); err != nil {
			return fmt.Errorf("writing textfile: %w", err)
		}
		logger.Info("Textfile written", zap.String("path", opts.textfile))
	}
	return nil
}

// buildConfig layers defaults, then the config file, then any flag the user
// set explicitly.
func buildConfig(cmd *cobra.Command, opts options) (config.Config, error) {
	cfg := config.Default()
	if opts.cfgFile != "" {
		f, err := config.LoadFile(opts.cfgFile)
		if err != nil {
			return cfg, err
		}
		if err := f.Apply(&cfg); err != nil {
			return cfg, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("ipc") || opts.cfgFile == "" {
		m, err := config.ParseMechanism(opts.ipc)
		if err != nil {
			return cfg, err
		}
		cfg.Mechanism = m
	}
	if changed("star") {
		coord, workers, err := config.ParseWorkload(opts.star)
		if err != nil {
			return cfg, err
		}
		cfg.Coordinator, cfg.Workers = coord, workers
	}
	if changed("time") {
		cfg.Duration = time.Duration(opts.timeSec) * time.Second
	}
	if changed("cache_footprint") {
		kb, err := config.ParseFootprint(opts.footprint)
		if err != nil {
			return cfg, err
		}
		cfg.FootprintKB = kb
	}
	if changed("pin") {
		cfg.Pin = opts.pin
	}
	if changed("gc") {
		cfg.KeepGC = opts.gc
	}
	if len(cfg.Workers) == 0 {
		return cfg, fmt.Errorf("%w: --star is required", config.ErrInvalidConfig)
	}
	return cfg, nil
}

// -- Logging Setup --
// production encoder settings, written to stderr so the report on stdout
// stays machine readable
func newLogger(w io.Writer, debug bool) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
