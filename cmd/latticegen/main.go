// Command latticegen writes the .cell and .ctl simulator inputs for a
// photonic-crystal supercell described by a YAML configuration.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"latticegen/internal/blob"
	"latticegen/internal/config"
	"latticegen/internal/core"
)

var exitFunc = os.Exit

// options are the parsed command-line flags.
type options struct {
	configPath string
	pipeline   string
	shape      string
	outCell    string
	outCtl     string
	metricsOut string
	tracePath  string
	watch      bool
	listRuns   bool
	showRun    string
}

// main runs the command-line interface using the program arguments and exits
// the process with the status code returned by cli.
func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("latticegen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVar(&opts.configPath, "config", "", "path to a YAML run configuration")
	fs.StringVar(&opts.pipeline, "pipeline", "", "pipeline: ribbon (MEEP) or embedded (MPB)")
	fs.StringVar(&opts.shape, "shape", "", "particle type selector (ribbon: h r; embedded: h t p r)")
	fs.StringVar(&opts.outCell, "out-cell", "", "blob key of the .cell artifact")
	fs.StringVar(&opts.outCtl, "out-ctl", "", "blob key of the .ctl artifact")
	fs.StringVar(&opts.metricsOut, "metrics-out", "", "write Prometheus textfile metrics to this path after each run")
	fs.StringVar(&opts.tracePath, "trace", "", "append JSON trace spans to this file")
	fs.BoolVar(&opts.watch, "watch", false, "regenerate whenever the -config file changes")
	fs.BoolVar(&opts.listRuns, "list-runs", false, "print the run ledger and exit")
	fs.StringVar(&opts.showRun, "show-run", "", "print one ledger record as JSON and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return 2
	}
	if opts.watch && opts.configPath == "" {
		fmt.Fprintln(stderr, "-watch requires -config")
		return 2
	}
	inspecting := opts.listRuns || opts.showRun != ""
	if inspecting && (opts.watch || (opts.listRuns && opts.showRun != "")) {
		fmt.Fprintln(stderr, "-list-runs and -show-run exclude each other and -watch")
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	var err error
	if inspecting {
		err = inspect(ctx, opts, stdout)
	} else {
		err = run(ctx, opts, stdout, stderr)
	}
	if err != nil {
		fmt.Fprintf(stderr, "latticegen: %v\n", err)
		return 1
	}
	return 0
}

// app holds the long-lived dependencies shared by every generation in one process.
type app struct {
	opts    options
	loader  *config.Loader
	gen     *core.Generator
	metrics *core.PrometheusMetricsRecorder
	logger  *zap.Logger
	stdout  io.Writer
	stderr  io.Writer
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) (err error) {
	loader := &config.Loader{Path: opts.configPath, Pipeline: core.Pipeline(opts.pipeline)}
	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	logger, err := core.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	blobs, err := blob.Open(ctx)
	if err != nil {
		return fmt.Errorf("open artifact store: %w", err)
	}
	runs, err := core.OpenRunStore(ctx)
	if err != nil {
		return fmt.Errorf("open run ledger: %w", err)
	}
	defer func() {
		if cerr := runs.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close run ledger: %w", cerr)
		}
	}()

	metrics := core.NewPrometheusMetricsRecorder("")
	genOpts := []core.Option{
		core.WithLogger(logger),
		core.WithRunStore(runs),
		core.WithMetricsRecorder(metrics),
	}
	if opts.tracePath != "" {
		f, err := os.OpenFile(opts.tracePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open trace file: %w", err)
		}
		defer func() { _ = f.Close() }()
		genOpts = append(genOpts, core.WithTracer(core.NewJSONTracer(f)))
	}

	a := &app{
		opts:    opts,
		loader:  loader,
		gen:     core.NewGenerator(blobs, genOpts...),
		metrics: metrics,
		logger:  logger,
		stdout:  stdout,
		stderr:  stderr,
	}
	if err := a.generate(ctx, cfg); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}

	w, err := config.NewWatcher(opts.configPath, logger)
	if err != nil {
		return err
	}
	err = w.Run(ctx, func(ctx context.Context) error {
		cfg, err := a.loader.Load()
		if err != nil {
			return err
		}
		return a.generate(ctx, cfg)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// generate applies the flag overrides and runs one pass.
func (a *app) generate(ctx context.Context, cfg core.Config) error {
	if a.opts.shape != "" {
		cfg.ParticleType = a.opts.shape
	}
	if a.opts.outCell != "" {
		cfg.Output.CellKey = a.opts.outCell
	}
	if a.opts.outCtl != "" {
		cfg.Output.CtlKey = a.opts.outCtl
	}

	res, runErr := a.gen.Run(ctx, cfg)
	if a.opts.metricsOut != "" {
		if err := a.metrics.WriteTextfile(a.opts.metricsOut); err != nil {
			a.logger.Warn("metrics textfile not written", zap.Error(err))
		}
	}
	if runErr != nil {
		return runErr
	}
	for _, d := range res.Diagnostics {
		fmt.Fprintf(a.stderr, "warning: %s\n", d)
	}
	keys := make([]string, 0, len(res.Artifacts))
	for _, info := range res.Artifacts {
		keys = append(keys, info.Key)
	}
	fmt.Fprintf(a.stdout, "run %s: %s/%s %d clusters, %d topological, %d defect -> %s\n",
		res.RunID, res.Pipeline, res.Shape, res.Total, res.Topological, res.Defects, strings.Join(keys, ", "))
	return nil
}

// inspect prints the run ledger selected by LATTICEGEN_STORAGE_DRIVER.
func inspect(ctx context.Context, opts options, stdout io.Writer) (err error) {
	runs, err := core.OpenRunStore(ctx)
	if err != nil {
		return fmt.Errorf("open run ledger: %w", err)
	}
	defer func() {
		if cerr := runs.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close run ledger: %w", cerr)
		}
	}()

	if opts.showRun != "" {
		rec, ok, err := runs.GetRun(ctx, opts.showRun)
		if err != nil {
			return fmt.Errorf("read run ledger: %w", err)
		}
		if !ok {
			return fmt.Errorf("run %s not found", opts.showRun)
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	records, err := runs.ListRuns(ctx)
	if err != nil {
		return fmt.Errorf("read run ledger: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(stdout, "no runs recorded")
		return nil
	}
	for _, r := range records {
		fmt.Fprintf(stdout, "%s %s %s/%s %d clusters, %d topological, %d defect\n",
			r.ID, r.StartedAt.UTC().Format(time.RFC3339), r.Pipeline, r.ParticleType, r.Total, r.Topological, r.Defects)
	}
	return nil
}
