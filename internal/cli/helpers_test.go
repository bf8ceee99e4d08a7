package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const circuitsDir = "testdata/circuits"

// writeCUE writes src as the only CUE file of a fresh directory.
func writeCUE(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "circuit.cue"), []byte(src), 0o644))
	return dir
}

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// decodeResponse parses a JSON envelope and decodes its data into v.
func decodeResponse(t *testing.T, out string, v any) CLIResponse {
	t.Helper()
	var raw struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *CLIError       `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw), out)
	if v != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, v))
	}
	return CLIResponse{Status: raw.Status, Error: raw.Error}
}

// recordRun runs the adder circuit into db and returns its run ID.
func recordRun(t *testing.T, db string) string {
	t.Helper()
	out, _, err := execute(NewRunCommand(&RootOptions{Format: "json"}),
		circuitsDir, "--circuit", "adder", "--db", db)
	require.NoError(t, err)
	var res RunOutput
	decodeResponse(t, out, &res)
	require.NotEmpty(t, res.RunID)
	return res.RunID
}
