// Package brain implements the coupled stress/agency state machine: a leaky
// cortisol integrator buffered by a homeostatic resistance, and a hysteretic
// agency variable eroded by stress and repaired by mastery.
package brain

import (
	"fmt"

	"github.com/danielpatrickdp/wneura/internal/bounds"
)

// #region stress-state

// StressState tracks cortisol in [0, 1] and resistance in [0.5, 1.5].
type StressState struct {
	config     StressConfig
	cortisol   float64
	resistance float64
}

// NewStressState creates a calm state: cortisol 0, resistance 1.
func NewStressState(config StressConfig) *StressState {
	return &StressState{
		config:     config,
		cortisol:   0,
		resistance: 1.0,
	}
}

// #endregion stress-state

// #region update-stress

// Update feeds one surprise signal through homeostasis and synthesis and
// returns the new cortisol level. Callers pass |prediction error|.
func (s *StressState) Update(surprise float64) (float64, error) {
	if err := bounds.Check("surprise", surprise); err != nil {
		return s.cortisol, fmt.Errorf("update stress: %w", err)
	}

	// 1. Homeostasis runs first, against the previous cortisol level
	s.applyHomeostasis()

	// 2. Low resistance amplifies the same nominal gain (burnout)
	effectiveGain := s.config.AmygdalaGain / s.resistance
	synthesis := effectiveGain * surprise

	// 3. Leaky integration
	s.cortisol = bounds.Clip(s.cortisol*s.config.CortisolDecay+synthesis, 0, 1)
	return s.cortisol, nil
}

func (s *StressState) applyHomeostasis() {
	if s.cortisol > burnoutCortisol {
		s.resistance *= resistanceErosion
	} else {
		s.resistance += resistanceRecovery
	}
	s.resistance = bounds.Clip(s.resistance, MinResistance, MaxResistance)
}

// #endregion update-stress

// #region accessors

// Cortisol returns the current cortisol level.
func (s *StressState) Cortisol() float64 { return s.cortisol }

// Resistance returns the current resistance.
func (s *StressState) Resistance() float64 { return s.resistance }

// Reading returns both values for handing to AgencyState.Update.
func (s *StressState) Reading() Reading {
	return Reading{Cortisol: s.cortisol, Resistance: s.resistance}
}

// Restore overwrites the state from a snapshot, clipping into range.
func (s *StressState) Restore(cortisol, resistance float64) {
	s.cortisol = bounds.Clip(cortisol, 0, 1)
	s.resistance = bounds.Clip(resistance, MinResistance, MaxResistance)
}

// #endregion accessors
