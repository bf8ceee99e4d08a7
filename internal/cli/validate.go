package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/spikeforge/internal/circuit"
	"github.com/roach88/spikeforge/internal/compiler"
)

// CircuitValidation holds the validation outcome of one circuit.
type CircuitValidation struct {
	Name   string                     `json:"name"`
	Valid  bool                       `json:"valid"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                `json:"valid"`
	Circuits []CircuitValidation `json:"circuits"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <circuits-dir>",
		Short: "Check circuits without simulating them",
		Long: `Check every circuit in a CUE package: static checks on brick types,
names, references and delays, then a trial assembly that surfaces
configuration, wiring and graph errors.

Exit codes:
  0 - All circuits are valid
  1 - One or more circuits are invalid
  2 - Command error (bad path, CUE that does not compile)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
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

	result := ValidationResult{Valid: true}
	for i := range loaded.Circuits {
		spec := &loaded.Circuits[i]
		formatter.VerboseLog("Validating circuit: %s", spec.Name)

		cv := CircuitValidation{Name: spec.Name, Errors: compiler.Validate(spec)}
		// Static errors make assembly failures redundant.
		if len(cv.Errors) == 0 {
			if _, err := circuit.Assemble(*spec); err != nil {
				cv.Errors = append(cv.Errors, compiler.ValidationError{
					Field:   "assembly",
					Code:    assemblyErrorCode(err),
					Message: err.Error(),
				})
			}
		}
		cv.Valid = len(cv.Errors) == 0
		if !cv.Valid {
			result.Valid = false
		}
		result.Circuits = append(result.Circuits, cv)
	}

	if result.Valid {
		if formatter.JSON() {
			return formatter.Success(result)
		}
		fmt.Fprintf(formatter.Writer, "✓ %d circuit(s) valid\n", len(result.Circuits))
		return nil
	}

	if formatter.JSON() {
		_ = formatter.Failure(ErrCodeCompile, "validation failed", result)
	} else {
		fmt.Fprintln(formatter.Writer, "✗ Validation failed")
		for _, cv := range result.Circuits {
			if cv.Valid {
				fmt.Fprintf(formatter.Writer, "  ✓ %s\n", cv.Name)
				continue
			}
			fmt.Fprintf(formatter.Writer, "  ✗ %s\n", cv.Name)
			for _, e := range cv.Errors {
				fmt.Fprintf(formatter.Writer, "      %s\n", e.Error())
			}
		}
	}
	return NewExitError(ExitFailure, "validation failed")
}
