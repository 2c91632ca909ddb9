package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Golden files are regenerated with:
//
//	go test ./internal/harness -run TestRunWithGolden -update
func TestRunWithGolden_DropColumnWithData(t *testing.T) {
	result, err := RunWithGolden(t, loadTestScenario(t, "drop_column_with_data"))
	require.NoError(t, err)
	assert.True(t, result.Pass)
}

func TestRunWithGolden_ReloadChain(t *testing.T) {
	result, err := RunWithGolden(t, loadTestScenario(t, "reload_chain"))
	require.NoError(t, err)
	assert.True(t, result.Pass)
}

func TestAssertGolden_TranslationError(t *testing.T) {
	scenario := loadTestScenario(t, "flow_unsupported")
	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	require.NoError(t, AssertGolden(t, scenario, result))
}

func TestSnapshot_Deterministic(t *testing.T) {
	scenario := loadTestScenario(t, "required_email_aborts")

	var snapshots []string
	for i := 0; i < 3; i++ {
		result, err := Run(context.Background(), scenario)
		require.NoError(t, err)
		data, err := Snapshot(scenario, result)
		require.NoError(t, err)
		snapshots = append(snapshots, string(data))
	}

	assert.Equal(t, snapshots[0], snapshots[1])
	assert.Equal(t, snapshots[1], snapshots[2])
	assert.Contains(t, snapshots[0], `"decision":"abort"`)
	assert.NotContains(t, snapshots[0], `"id"`)
}
