package harness

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestConformanceScenarios runs every scenario under testdata/scenarios
// against each backend and compares the results with its golden file.
func TestConformanceScenarios(t *testing.T) {
	scenarios, err := LoadScenarioDir("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, scenario := range scenarios {
		for _, backend := range Backends {
			t.Run(scenario.Name+"/"+string(backend), func(t *testing.T) {
				result := RunWithGolden(t, scenario, WithBackend(backend))
				require.True(t, result.Pass, "errors: %v", result.Errors)
			})
		}
	}
}
