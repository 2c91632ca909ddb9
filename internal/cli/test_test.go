package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runTestCommand(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// writeFailingScenario writes a check scenario whose expected decision is
// wrong, pointing at the shared fixtures by absolute path.
func writeFailingScenario(t *testing.T, dir string) {
	t.Helper()
	before, err := filepath.Abs(fixture("notes_before.yaml"))
	require.NoError(t, err)
	after, err := filepath.Abs(fixture("notes_after.yaml"))
	require.NoError(t, err)

	content := fmt.Sprintf(`name: wrong_decision
description: Expects proceed for a migration that drops data
kind: check
before: %s
after: %s
expect:
  decision: proceed
`, before, after)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong_decision.yaml"), []byte(content), 0644))
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := runTestCommand(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, err := runTestCommand(t, "text", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenarios directory not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	out, err := runTestCommand(t, "text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	out, err := runTestCommand(t, "json", t.TempDir())
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Data.Total)
	assert.Empty(t, resp.Data.Scenarios)
}

func TestTestCommandRunsScenarios(t *testing.T) {
	out, err := runTestCommand(t, "text", "--golden", goldenDir, scenariosDir)
	require.NoError(t, err, out)

	assert.Contains(t, out, "✓ drop_column_with_data")
	assert.Contains(t, out, "✓ reload_chain")
	assert.Contains(t, out, "✓ flow_unsupported")
	assert.Contains(t, out, "0 failed")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommandFilterJSON(t *testing.T) {
	out, err := runTestCommand(t, "json", "--golden", goldenDir, "--filter", "*_forced", scenariosDir)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "postgres_narrowing_forced", resp.Data.Scenarios[0].Name)
	assert.Equal(t, 1, resp.Data.Passed)
}

func TestTestCommandInvalidFilter(t *testing.T) {
	_, err := runTestCommand(t, "text", "--filter", "[", scenariosDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestTestCommandFailure(t *testing.T) {
	dir := t.TempDir()
	writeFailingScenario(t, dir)

	out, err := runTestCommand(t, "json", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Failed)
	assert.Equal(t, []string{"expected decision proceed, got needs_force"}, resp.Data.Scenarios[0].Errors)
}

func TestTestCommandUpdateGolden(t *testing.T) {
	golden := t.TempDir()

	out, err := runTestCommand(t, "text", "--golden", golden, "--update", "--filter", "reload_chain", scenariosDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ reload_chain (golden updated)")

	written, err := os.ReadFile(filepath.Join(golden, "reload_chain.golden"))
	require.NoError(t, err)
	shipped, err := os.ReadFile(filepath.Join(goldenDir, "reload_chain.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(shipped), string(written))

	// A golden file that no longer matches fails the scenario.
	require.NoError(t, os.WriteFile(filepath.Join(golden, "reload_chain.golden"), []byte("{}\n"), 0644))
	out, err = runTestCommand(t, "text", "--golden", golden, "--filter", "reload_chain", scenariosDir)
	require.Error(t, err)
	assert.Contains(t, out, "does not match golden file")
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("s", "golden", "x.golden"), goldenFilePath(filepath.Join("s", "a.yaml"), "x", ""))
	assert.Equal(t, filepath.Join("g", "x.golden"), goldenFilePath(filepath.Join("s", "a.yaml"), "x", "g"))
}
