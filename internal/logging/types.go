package logging

import (
	"time"

	"github.com/danielpatrickdp/wneura/internal/chemistry"
	"github.com/danielpatrickdp/wneura/internal/learner"
)

// Decisions recorded in step_log.
const (
	DecisionAccept = "accept"
	DecisionReject = "reject"
)

// #region step-entry
// StepEntry is a single row in the step_log table.
type StepEntry struct {
	RunID            string
	Step             int
	Phase            string
	Action           int
	Reward           float64
	StressSignal     float64
	StressPulse      float64
	UseCortisol      bool
	PredictionError  float64
	Cortisol         float64
	Agency           float64
	Resistance       float64
	LearningStepSize float64
	NewValue         float64
	EffectiveReward  float64
	ReceptorHealth   float64
	Encoded          bool
	Decision         string // "accept" | "reject"
	Reason           string
	CreatedAt        time.Time
}

// #endregion step-entry

// NewStepEntry flattens an accepted step. cortisol is the post-pulse level,
// which may differ from r.Cortisol.
func NewStepEntry(runID, phase string, step int, r learner.StepResult, c chemistry.State, cortisol float64, encoded bool) StepEntry {
	return StepEntry{
		RunID:            runID,
		Step:             step,
		Phase:            phase,
		Action:           r.Action,
		Reward:           r.Reward,
		PredictionError:  r.PredictionError,
		Cortisol:         cortisol,
		Agency:           r.Agency,
		Resistance:       r.Resistance,
		LearningStepSize: r.LearningStepSize,
		NewValue:         r.NewValue,
		EffectiveReward:  c.EffectiveReward,
		ReceptorHealth:   c.ReceptorHealth,
		Encoded:          encoded,
		Decision:         DecisionAccept,
	}
}

// RejectedEntry records an input the gate refused.
func RejectedEntry(runID, phase string, step, action int, reward float64, reason string) StepEntry {
	return StepEntry{
		RunID:    runID,
		Step:     step,
		Phase:    phase,
		Action:   action,
		Reward:   reward,
		Decision: DecisionReject,
		Reason:   reason,
	}
}
