package signals

import "errors"

// ErrUnknownScenario is returned by ParseScenario for an unrecognized name.
var ErrUnknownScenario = errors.New("unknown scenario")

// #region scenario

// Scenario names a reward/stress generation policy.
type Scenario string

const (
	ScenarioMixed         Scenario = "mixed"
	ScenarioChaos         Scenario = "chaos"
	ScenarioTherapy       Scenario = "therapy"
	ScenarioStable        Scenario = "stable"
	ScenarioTraumaTherapy Scenario = "trauma-therapy"
	ScenarioHustleBurnout Scenario = "hustle-burnout-recovery"
)

// Scenarios lists every built-in scenario in display order.
func Scenarios() []Scenario {
	return []Scenario{
		ScenarioMixed, ScenarioChaos, ScenarioTherapy, ScenarioStable,
		ScenarioTraumaTherapy, ScenarioHustleBurnout,
	}
}

// #endregion scenario

// #region config

// ProducerConfig holds phase lengths and the constant rewards of calm phases.
type ProducerConfig struct {
	TraumaSteps    int // trauma-therapy: steps of trauma before therapy
	HustleSteps    int // hustle-burnout-recovery: end of the hustle phase
	BurnoutSteps   int // hustle-burnout-recovery: end of the burnout phase
	TherapyReward  float64
	RecoveryReward float64
}

// DefaultProducerConfig returns the phase layout of the reference experiments.
func DefaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		TraumaSteps:    40,
		HustleSteps:    30,
		BurnoutSteps:   60,
		TherapyReward:  5,
		RecoveryReward: 3,
	}
}

// #endregion config

// #region signal

// Signal is what the environment hands the engine for one step.
type Signal struct {
	Reward float64 `json:"reward"`
	// Stress is an external stress pulse on top of the learner's own surprise.
	Stress float64 `json:"stress"`
	Phase  string  `json:"phase"`
}

// #endregion signal
