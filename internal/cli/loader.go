package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/spikeforge/internal/compiler"
	"github.com/roach88/spikeforge/internal/ir"
)

// Error code constants shared by all commands.
const (
	ErrCodeGeneric          = "E001" // Generic/unknown error
	ErrCodeScanError        = "E002" // Directory scan error
	ErrCodeNoFiles          = "E003" // No CUE files found
	ErrCodeLoadFailed       = "E004" // CUE load failed
	ErrCodeNotFound         = "E005" // Path not found
	ErrCodeBuildFailed      = "E006" // CUE build failed
	ErrCodeWriteFailed      = "E007" // File write error
	ErrCodeNoCircuits       = "E008" // No circuit definitions
	ErrCodeUnknownCircuit   = "E009" // --circuit names no loaded circuit
	ErrCodeInvalidFilter    = "E010" // Trace filter flags are inconsistent
	ErrCodeCompile          = "E101" // Circuit definition does not compile
	ErrCodeAssembly         = "E102" // Circuit rejected by scaffold or simulator
	ErrCodeStore            = "E301" // Database error
	ErrCodeRunNotFound      = "E302" // Run ID not in the database
	ErrCodeNondeterministic = "E303" // Replay produced a different trace
	ErrCodeTestFailures     = "E401" // One or more scenarios failed
)

// LoadResult contains the circuits loaded from a directory.
type LoadResult struct {
	Circuits  []ir.CircuitSpec
	CUEValue  cue.Value
	FileCount int
}

// LoadError represents an error that occurred during circuit loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadCircuits loads the CUE package in dir and compiles every
// circuit.<name> definition in it.
func LoadCircuits(dir string) (*LoadResult, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("circuits directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing circuits directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	specs, err := compiler.CompileCircuits(value)
	if err != nil {
		return nil, convertCompileError(err)
	}
	if len(specs) == 0 {
		return nil, &LoadError{Code: ErrCodeNoCircuits, Message: fmt.Sprintf("no circuit definitions found in %s", dir)}
	}

	return &LoadResult{Circuits: specs, CUEValue: value, FileCount: len(cueFiles)}, nil
}

// SelectCircuit returns the circuit with the given name. An empty name
// selects the only circuit when exactly one was loaded.
func (r *LoadResult) SelectCircuit(name string) (ir.CircuitSpec, error) {
	if name == "" {
		if len(r.Circuits) == 1 {
			return r.Circuits[0], nil
		}
		return ir.CircuitSpec{}, &LoadError{
			Code:    ErrCodeUnknownCircuit,
			Message: fmt.Sprintf("%d circuits loaded, select one with --circuit", len(r.Circuits)),
		}
	}
	for _, c := range r.Circuits {
		if c.Name == name {
			return c, nil
		}
	}
	return ir.CircuitSpec{}, &LoadError{Code: ErrCodeUnknownCircuit, Message: fmt.Sprintf("circuit %q not found", name)}
}

// FindCUEFiles returns the .cue files directly in dir. Subdirectories hold
// other packages and are not loaded.
func FindCUEFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeCompile,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeCompile, Message: err.Error()}
}

// loadErrorParts returns the code and message of a loader error.
func loadErrorParts(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Error()
	}
	return ErrCodeGeneric, err.Error()
}
