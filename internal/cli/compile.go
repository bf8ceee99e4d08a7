package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/spikeforge/internal/circuit"
	"github.com/roach88/spikeforge/internal/ir"
	"github.com/roach88/spikeforge/internal/scaffold"
	"github.com/roach88/spikeforge/internal/simulator"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output   string // output file path
	Describe int    // scaffold description verbosity, -1 for none
}

// CompiledCircuit summarizes one assembled circuit.
type CompiledCircuit struct {
	Name        string    `json:"name"`
	Steps       int       `json:"steps"`
	Fingerprint string    `json:"fingerprint"`
	Neurons     int       `json:"neurons"`
	Synapses    int       `json:"synapses"`
	Probes      int       `json:"probes"`
	MaxDelay    int       `json:"max_delay"`
	Graph       *ir.Graph `json:"graph,omitempty"`

	description string
}

// CompilationResult holds every compiled circuit of a directory.
type CompilationResult struct {
	Circuits []CompiledCircuit `json:"circuits"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <circuits-dir>",
		Short: "Assemble CUE circuits into finalized neuron graphs",
		Long: `Assemble every circuit defined in a CUE package into a finalized neuron
graph and compile its execution plan.

Reports neuron, synapse and probe counts with the graph fingerprint.
With --output the finalized graphs are written as JSON.

Examples:
  spikeforge compile ./circuits
  spikeforge compile ./circuits --describe 1
  spikeforge compile ./circuits --output graphs.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().IntVar(&opts.Describe, "describe", -1, "print scaffold description at verbosity 0, 1 or 2")

	return cmd
}

func runCompile(opts *CompileOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loaded, err := LoadCircuits(dir)
	if err != nil {
		code, msg := loadErrorParts(err)
		return outputCommandError(formatter, code, msg)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, dir)

	result := &CompilationResult{Circuits: make([]CompiledCircuit, 0, len(loaded.Circuits))}
	for _, spec := range loaded.Circuits {
		formatter.VerboseLog("Assembling circuit: %s", spec.Name)
		compiled, err := compileCircuit(spec, opts.Describe)
		if err != nil {
			_ = formatter.Error(assemblyErrorCode(err), fmt.Sprintf("circuit %s: %v", spec.Name, err), nil)
			return WrapExitError(ExitCommandError, fmt.Sprintf("circuit %s", spec.Name), err)
		}
		result.Circuits = append(result.Circuits, compiled)
	}

	if opts.Output != "" {
		if err := writeGraphs(result, opts.Output); err != nil {
			return outputCommandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	if formatter.JSON() {
		for i := range result.Circuits {
			result.Circuits[i].Graph = nil
		}
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d circuit(s)\n\n", len(result.Circuits))
	for _, c := range result.Circuits {
		fmt.Fprintf(w, "  %s: %d neuron(s), %d synapse(s), %d probe(s), max delay %d, %d step(s)\n",
			c.Name, c.Neurons, c.Synapses, c.Probes, c.MaxDelay, c.Steps)
		fmt.Fprintf(w, "    fingerprint %s\n", c.Fingerprint)
		if c.description != "" {
			for _, line := range strings.Split(strings.TrimRight(c.description, "\n"), "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}
	if opts.Output != "" {
		fmt.Fprintf(w, "\nWrote finalized graphs to %s\n", opts.Output)
	}
	return nil
}

// compileCircuit assembles spec and summarizes the finalized graph.
func compileCircuit(spec ir.CircuitSpec, describe int) (CompiledCircuit, error) {
	c, err := circuit.Assemble(spec)
	if err != nil {
		return CompiledCircuit{}, err
	}
	fp, err := ir.Fingerprint(c.Graph)
	if err != nil {
		return CompiledCircuit{}, err
	}

	out := CompiledCircuit{
		Name:        spec.Name,
		Steps:       spec.Steps,
		Fingerprint: fp,
		Neurons:     len(c.Graph.Neurons),
		Synapses:    len(c.Graph.Synapses),
		Probes:      len(c.Graph.Probes()),
		MaxDelay:    c.Graph.MaxDelay(),
		Graph:       c.Graph,
	}
	if describe >= 0 {
		out.description = c.Scaffold.Describe(describe)
	}
	return out, nil
}

// assemblyErrorCode returns the most specific code carried by an assembly error.
func assemblyErrorCode(err error) string {
	if code := scaffold.WiringCode(err); code != "" {
		return string(code)
	}
	if code := simulator.ErrorCode(err); code != "" {
		return string(code)
	}
	switch {
	case scaffold.IsConfigurationError(err):
		return "CONFIGURATION"
	case scaffold.IsIncompleteGraphError(err):
		return "INCOMPLETE_GRAPH"
	}
	return ErrCodeAssembly
}

// writeGraphs writes the finalized graphs as indented JSON.
func writeGraphs(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling graphs: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

// outputCommandError writes a single error and returns a command-level exit.
func outputCommandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}
