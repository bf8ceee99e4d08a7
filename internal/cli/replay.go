package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/spikeforge/internal/engine"
	"github.com/roach88/spikeforge/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID         string `json:"run_id"`
	Circuit       string `json:"circuit"`
	Steps         int    `json:"steps"`
	StoredSpikes  int    `json:"stored_spikes"`
	ReplaySpikes  int    `json:"replay_spikes"`
	StoredHash    string `json:"stored_hash"`
	ReplayHash    string `json:"replay_hash"`
	Deterministic bool   `json:"deterministic"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay [run-id]",
		Short: "Re-simulate recorded runs and verify determinism",
		Long: `Re-simulate recorded runs from their stored graphs and compare the
spike trace hash with the recorded one. Without a run ID every recorded
run is replayed.

Exit codes:
  0 - All runs reproduced their recorded trace
  1 - At least one run produced a different trace
  2 - Command error (database not found, unknown run, etc.)

Examples:
  spikeforge replay --db ./runs.db
  spikeforge replay 0190a5c4-... --db ./runs.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runReplay(opts, runID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReplay(opts *ReplayOptions, runID string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStore, fmt.Sprintf("failed to open database: %v", err))
	}
	defer st.Close()

	eng, err := engine.New(ctx, st, engine.WithLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr())))
	if err != nil {
		return outputCommandError(formatter, ErrCodeStore, fmt.Sprintf("failed to start engine: %v", err))
	}

	var ids []string
	if runID != "" {
		ids = []string{runID}
	} else {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return outputCommandError(formatter, ErrCodeStore, fmt.Sprintf("failed to list runs: %v", err))
		}
		for _, r := range runs {
			ids = append(ids, r.ID)
		}
	}

	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(ids)),
		TotalRuns:        len(ids),
		AllDeterministic: true,
	}
	for _, id := range ids {
		formatter.VerboseLog("Replaying run %s", id)
		rr, err := eng.Replay(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return outputCommandError(formatter, ErrCodeRunNotFound, fmt.Sprintf("run not found: %s", id))
		}
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", id), err)
		}

		result.Runs = append(result.Runs, ReplayRunResult{
			RunID:         rr.Run.ID,
			Circuit:       rr.Run.Circuit,
			Steps:         rr.Run.Steps,
			StoredSpikes:  rr.Stored.Len(),
			ReplaySpikes:  rr.Replayed.Len(),
			StoredHash:    rr.Run.TraceHash,
			ReplayHash:    rr.Hash,
			Deterministic: rr.Match,
		})
		if !rr.Match {
			result.AllDeterministic = false
		}
	}

	if formatter.JSON() {
		if !result.AllDeterministic {
			_ = formatter.Failure(ErrCodeNondeterministic, "replay produced a different trace", result)
			return NewExitError(ExitFailure, "determinism verification failed")
		}
		return formatter.Success(result)
	}

	w := formatter.Writer
	if len(result.Runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return nil
	}
	for _, r := range result.Runs {
		mark := "✓"
		if !r.Deterministic {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s  %s  %d step(s), %d spike(s)\n", mark, r.RunID, r.Circuit, r.Steps, r.ReplaySpikes)
		if !r.Deterministic {
			fmt.Fprintf(w, "    recorded %s\n    replayed %s\n", r.StoredHash, r.ReplayHash)
		}
	}
	fmt.Fprintln(w)
	if !result.AllDeterministic {
		fmt.Fprintln(w, "✗ Determinism verification failed")
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	fmt.Fprintf(w, "✓ %d run(s) replayed deterministically\n", len(result.Runs))
	return nil
}
