package query

import (
	"fmt"
	"time"
)

// Statistics holds the duration of each engine phase.
//
// Statistics is an immutable value. Each phase produces a new value through
// its With*Time method, so a phase can only ever set its own duration.
// A phase that did not run keeps a duration of exactly zero.
type Statistics struct {
	planning          time.Duration
	optimization      time.Duration
	resultFormulation time.Duration
	execution         time.Duration
}

// NewStatistics returns statistics with every phase at zero.
func NewStatistics() Statistics {
	return Statistics{}
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// WithPlanningTime returns a copy with the planning duration set.
func (s Statistics) WithPlanningTime(d time.Duration) Statistics {
	s.planning = nonNegative(d)
	return s
}

// WithOptimizationTime returns a copy with the optimization duration set.
func (s Statistics) WithOptimizationTime(d time.Duration) Statistics {
	s.optimization = nonNegative(d)
	return s
}

// WithResultFormulationTime returns a copy with the result-formulation duration set.
func (s Statistics) WithResultFormulationTime(d time.Duration) Statistics {
	s.resultFormulation = nonNegative(d)
	return s
}

// WithExecutionTime returns a copy with the execution duration set.
func (s Statistics) WithExecutionTime(d time.Duration) Statistics {
	s.execution = nonNegative(d)
	return s
}

func (s Statistics) PlanningTime() time.Duration          { return s.planning }
func (s Statistics) OptimizationTime() time.Duration      { return s.optimization }
func (s Statistics) ResultFormulationTime() time.Duration { return s.resultFormulation }
func (s Statistics) ExecutionTime() time.Duration         { return s.execution }

// TotalTime is the sum of all phases.
func (s Statistics) TotalTime() time.Duration {
	return s.planning + s.optimization + s.resultFormulation + s.execution
}

func (s Statistics) String() string {
	return fmt.Sprintf("plan=%s opt=%s res=%s exec=%s",
		s.planning, s.optimization, s.resultFormulation, s.execution)
}
