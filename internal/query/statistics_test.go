package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatisticsWithPhaseIsolated(t *testing.T) {
	base := NewStatistics()
	planned := base.WithPlanningTime(5 * time.Millisecond)
	optimized := planned.WithOptimizationTime(2 * time.Millisecond)

	// Each With call returns a new value and leaves the receiver alone.
	assert.Equal(t, time.Duration(0), base.PlanningTime())
	assert.Equal(t, 5*time.Millisecond, planned.PlanningTime())
	assert.Equal(t, time.Duration(0), planned.OptimizationTime())

	assert.Equal(t, 5*time.Millisecond, optimized.PlanningTime())
	assert.Equal(t, 2*time.Millisecond, optimized.OptimizationTime())
	assert.Equal(t, time.Duration(0), optimized.ResultFormulationTime())
	assert.Equal(t, time.Duration(0), optimized.ExecutionTime())
	assert.Equal(t, 7*time.Millisecond, optimized.TotalTime())
}

func TestStatisticsClampNegative(t *testing.T) {
	s := NewStatistics().
		WithPlanningTime(-time.Second).
		WithOptimizationTime(-1).
		WithResultFormulationTime(-1).
		WithExecutionTime(3)

	assert.Equal(t, time.Duration(0), s.PlanningTime())
	assert.Equal(t, time.Duration(0), s.OptimizationTime())
	assert.Equal(t, time.Duration(0), s.ResultFormulationTime())
	assert.Equal(t, time.Duration(3), s.ExecutionTime())
	assert.Equal(t, "plan=0s opt=0s res=0s exec=3ns", s.String())
}
