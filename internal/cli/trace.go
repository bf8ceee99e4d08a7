package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/spikeforge/internal/decode"
	"github.com/roach88/spikeforge/internal/ir"
	"github.com/roach88/spikeforge/internal/queryir"
	"github.com/roach88/spikeforge/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Neuron   string // optional name substring filter
	Circuit  string // listing filter
	From     int    // first step shown, -1 for unbounded
	To       int    // last step shown, -1 for unbounded
}

// TraceSpike is one spike of a stored run.
type TraceSpike struct {
	Step   int    `json:"step"`
	Neuron int    `json:"neuron"`
	Name   string `json:"name"`
}

// TraceResult holds a stored run and its spikes.
type TraceResult struct {
	Run      store.Run    `json:"run"`
	Timeline []TraceSpike `json:"timeline"`
	Stats    TraceStats   `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	Spikes       int `json:"spikes"`
	Neurons      int `json:"neurons"`
	FirstStep    int `json:"first_step"`
	LastStep     int `json:"last_step"`
	GraphNeurons int `json:"graph_neurons"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [run-id]",
		Short: "Show the spikes of a recorded run",
		Long: `Show the spike timeline of a run recorded with "run --db", with neuron
names resolved against the stored graph. Without a run ID the recorded
runs are listed, optionally only those of one circuit.

Examples:
  spikeforge trace --db ./runs.db
  spikeforge trace --db ./runs.db --circuit adder
  spikeforge trace 0190a5c4-... --db ./runs.db
  spikeforge trace 0190a5c4-... --db ./runs.db --neuron Sum --format json
  spikeforge trace 0190a5c4-... --db ./runs.db --from 10 --to 20`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runListRuns(opts, cmd)
			}
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Neuron, "neuron", "", "only show neurons whose name contains this")
	cmd.Flags().StringVar(&opts.Circuit, "circuit", "", "only list runs of this circuit")
	cmd.Flags().IntVar(&opts.From, "from", -1, "only show spikes at or after this step")
	cmd.Flags().IntVar(&opts.To, "to", -1, "only show spikes at or before this step")

	return cmd
}

func runListRuns(opts *TraceOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	st, err := store.Open(opts.Database)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStore, fmt.Sprintf("failed to open database: %v", err))
	}
	defer st.Close()

	var filter queryir.Predicate
	if opts.Circuit != "" {
		filter = queryir.Equals{Field: "circuit", Value: opts.Circuit}
	}
	runs, err := st.QueryRuns(context.Background(), filter)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStore, fmt.Sprintf("failed to list runs: %v", err))
	}

	if formatter.JSON() {
		return formatter.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(formatter.Writer, "%4d  %s  %s  %d step(s), %d spike(s)\n",
			r.Seq, r.ID, r.Circuit, r.Steps, r.SpikeCount)
	}
	return nil
}

func runTrace(opts *TraceOptions, runID string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	if opts.From >= 0 && opts.To >= 0 && opts.From > opts.To {
		return outputCommandError(formatter, ErrCodeInvalidFilter,
			fmt.Sprintf("--from %d is after --to %d", opts.From, opts.To))
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStore, fmt.Sprintf("failed to open database: %v", err))
	}
	defer st.Close()

	run, err := st.ReadRun(ctx, runID)
	if errors.Is(err, store.ErrNotFound) {
		return outputCommandError(formatter, ErrCodeRunNotFound, fmt.Sprintf("run not found: %s", runID))
	}
	if err != nil {
		return outputCommandError(formatter, ErrCodeStore, fmt.Sprintf("failed to read run: %v", err))
	}
	g, err := st.ReadGraph(ctx, run.GraphFingerprint)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStore, fmt.Sprintf("failed to read graph: %v", err))
	}
	events, err := st.QuerySpikes(ctx, runID, spikeFilter(opts, g))
	if err != nil {
		return outputCommandError(formatter, ErrCodeStore, fmt.Sprintf("failed to read spikes: %v", err))
	}

	result := TraceResult{
		Run:      run,
		Timeline: []TraceSpike{},
		Stats:    TraceStats{GraphNeurons: len(g.Neurons)},
	}
	neurons := make(map[int]bool)
	for _, e := range events {
		name := g.Name(e.Neuron)
		if len(result.Timeline) == 0 {
			result.Stats.FirstStep = e.Step
		}
		result.Stats.LastStep = e.Step
		neurons[e.Neuron] = true
		result.Timeline = append(result.Timeline, TraceSpike{Step: e.Step, Neuron: e.Neuron, Name: name})
	}
	result.Stats.Spikes = len(result.Timeline)
	result.Stats.Neurons = len(neurons)

	if formatter.JSON() {
		return formatter.Success(result)
	}
	return outputTraceText(formatter, result)
}

// spikeFilter turns the trace flags into a spike predicate, or nil when no
// filter flag is set. Neuron names resolve to IDs against the run's graph.
func spikeFilter(opts *TraceOptions, g *ir.Graph) queryir.Predicate {
	var preds []queryir.Predicate
	if opts.Neuron != "" {
		ids := decode.Match(g, opts.Neuron)
		values := make([]int64, len(ids))
		for i, id := range ids {
			values[i] = int64(id)
		}
		preds = append(preds, queryir.In{Field: "neuron_id", Values: values})
	}
	if opts.From >= 0 || opts.To >= 0 {
		r := queryir.Range{Field: "step"}
		if opts.From >= 0 {
			r.Min = queryir.Bound(int64(opts.From))
		}
		if opts.To >= 0 {
			r.Max = queryir.Bound(int64(opts.To))
		}
		preds = append(preds, r)
	}
	if len(preds) == 0 {
		return nil
	}
	return queryir.And{Predicates: preds}
}

func outputTraceText(f *OutputFormatter, result TraceResult) error {
	w := f.Writer
	r := result.Run
	fmt.Fprintf(w, "Run %s (seq %d)\n", r.ID, r.Seq)
	fmt.Fprintf(w, "  circuit %s, %d step(s), record_all=%t, engine %s\n", r.Circuit, r.Steps, r.RecordAll, r.EngineVersion)
	fmt.Fprintf(w, "  graph %s (%d neuron(s))\n", r.GraphFingerprint, result.Stats.GraphNeurons)
	fmt.Fprintf(w, "  trace %s\n\n", r.TraceHash)

	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "No spikes.")
		return nil
	}
	fmt.Fprintln(w, "Timeline:")
	for _, s := range result.Timeline {
		fmt.Fprintf(w, "  step %4d  #%d %s\n", s.Step, s.Neuron, s.Name)
	}
	fmt.Fprintf(w, "\n%d spike(s) from %d neuron(s), steps %d..%d\n",
		result.Stats.Spikes, result.Stats.Neurons, result.Stats.FirstStep, result.Stats.LastStep)
	return nil
}
