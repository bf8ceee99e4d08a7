package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/spikeforge/internal/decode"
	"github.com/roach88/spikeforge/internal/engine"
	"github.com/roach88/spikeforge/internal/metrics"
	"github.com/roach88/spikeforge/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Circuit   string
	Steps     int
	Database  string
	RecordAll bool
	Metrics   bool

	// IDs overrides the run ID generator (for testing).
	// If nil, the engine uses UUIDv7Generator.
	IDs engine.RunIDGenerator
}

// RunOutput is the result of one simulated run.
type RunOutput struct {
	RunID       string         `json:"run_id"`
	Seq         int64          `json:"seq"`
	Circuit     string         `json:"circuit"`
	Steps       int            `json:"steps"`
	Fingerprint string         `json:"fingerprint"`
	SpikeCount  int            `json:"spike_count"`
	TraceHash   string         `json:"trace_hash"`
	Stored      bool           `json:"stored"`
	Spikes      []decode.Named `json:"spikes"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <circuits-dir>",
		Short: "Simulate a circuit and print its spikes",
		Long: `Assemble a circuit from a CUE package, simulate it, and print the
recorded spikes. Only probed neurons are recorded unless --record-all is set.

With --db the finalized graph and the spike log are appended to a SQLite
database (created if missing) for later trace and replay.

Examples:
  spikeforge run ./circuits --circuit adder
  spikeforge run ./circuits --circuit adder --steps 60 --db ./runs.db
  spikeforge run ./circuits --circuit lis --record-all --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("steps") {
				opts.Steps = -1
			}
			return runCircuit(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Circuit, "circuit", "", "circuit to run (optional when the package defines one)")
	cmd.Flags().IntVar(&opts.Steps, "steps", 0, "override the circuit's step count")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database to record the run in")
	cmd.Flags().BoolVar(&opts.RecordAll, "record-all", false, "record every neuron, not only probes")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print run metrics to stderr")

	return cmd
}

func runCircuit(opts *RunOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	loaded, err := LoadCircuits(dir)
	if err != nil {
		code, msg := loadErrorParts(err)
		return outputCommandError(formatter, code, msg)
	}
	spec, err := loaded.SelectCircuit(opts.Circuit)
	if err != nil {
		code, msg := loadErrorParts(err)
		return outputCommandError(formatter, code, msg)
	}
	if opts.Steps >= 0 {
		spec.Steps = opts.Steps
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st *store.Store
	if opts.Database != "" {
		logger.Debug("opening database", "path", opts.Database)
		st, err = store.Open(opts.Database)
		if err != nil {
			return outputCommandError(formatter, ErrCodeStore, fmt.Sprintf("failed to open database: %v", err))
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
	}

	engineOpts := []engine.EngineOption{
		engine.WithLogger(logger),
		engine.WithRecordAll(opts.RecordAll),
		engine.WithIDGenerator(opts.IDs),
	}
	var reg *prometheus.Registry
	if opts.Metrics {
		reg = prometheus.NewRegistry()
		rec, err := metrics.NewRecorder(reg)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to register metrics", err)
		}
		engineOpts = append(engineOpts, engine.WithMetrics(rec))
	}

	eng, err := engine.New(ctx, st, engineOpts...)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStore, fmt.Sprintf("failed to start engine: %v", err))
	}

	res, err := eng.Run(ctx, spec)
	if err != nil {
		_ = formatter.Error(assemblyErrorCode(err), err.Error(), nil)
		return WrapExitError(ExitCommandError, fmt.Sprintf("circuit %s", spec.Name), err)
	}

	out := RunOutput{
		RunID:       res.Run.ID,
		Seq:         res.Run.Seq,
		Circuit:     res.Run.Circuit,
		Steps:       res.Run.Steps,
		Fingerprint: res.Run.GraphFingerprint,
		SpikeCount:  res.Run.SpikeCount,
		TraceHash:   res.Run.TraceHash,
		Stored:      st != nil,
		Spikes:      decode.Names(res.Circuit.Graph, res.Record),
	}

	if reg != nil {
		if err := printMetrics(formatter.GetErrWriter(), reg); err != nil {
			return WrapExitError(ExitCommandError, "failed to gather metrics", err)
		}
	}

	if formatter.JSON() {
		return formatter.Success(out)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Run %s (seq %d): circuit %s, %d step(s), %d spike(s)\n",
		out.RunID, out.Seq, out.Circuit, out.Steps, out.SpikeCount)
	fmt.Fprintf(w, "  graph %s\n", out.Fingerprint)
	fmt.Fprintf(w, "  trace %s\n", out.TraceHash)
	for _, s := range out.Spikes {
		fmt.Fprintf(w, "  step %4d  #%d %s\n", s.Step, s.Neuron, s.Name)
	}
	if out.Stored {
		fmt.Fprintf(w, "Recorded in %s\n", opts.Database)
	}
	return nil
}
