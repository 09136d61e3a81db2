// Package signals produces the per-step reward and stress observations that
// drive the engine under a named scenario.
package signals

import (
	"fmt"
	"math/rand"
)

// #region producer

// Producer generates signals for one scenario. Not safe for concurrent use.
type Producer struct {
	scenario Scenario
	config   ProducerConfig
	rng      *rand.Rand
}

// NewProducer creates a Producer. rng must not be nil.
func NewProducer(scenario Scenario, config ProducerConfig, rng *rand.Rand) *Producer {
	return &Producer{scenario: scenario, config: config, rng: rng}
}

// ParseScenario resolves a scenario name.
func ParseScenario(name string) (Scenario, error) {
	for _, s := range Scenarios() {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScenario, name)
}

// Scenario returns the scenario being produced.
func (p *Producer) Scenario() Scenario { return p.scenario }

// #endregion producer

// #region produce

// Next returns the signal for step t.
func (p *Producer) Next(t int) Signal {
	switch p.scenario {
	case ScenarioChaos:
		return Signal{Reward: p.intRange(-5, -1), Phase: "chaos"}
	case ScenarioTherapy:
		return Signal{Reward: p.config.TherapyReward, Phase: "therapy"}
	case ScenarioStable:
		return Signal{Reward: 0, Phase: "stable"}
	case ScenarioTraumaTherapy:
		return p.traumaTherapy(t)
	case ScenarioHustleBurnout:
		return p.hustleBurnout(t)
	default:
		return Signal{Reward: p.intRange(-5, 4), Phase: "mixed"}
	}
}

// traumaTherapy: random punishment, then consistent reward.
func (p *Producer) traumaTherapy(t int) Signal {
	if t < p.config.TraumaSteps {
		return Signal{Reward: p.intRange(-5, -1), Phase: "trauma"}
	}
	return Signal{Reward: p.config.TherapyReward, Phase: "therapy"}
}

// hustleBurnout: high reward under moderate stress, then punishment under
// high stress, then calm steady reward.
func (p *Producer) hustleBurnout(t int) Signal {
	switch {
	case t < p.config.HustleSteps:
		return Signal{Reward: p.intRange(2, 7), Stress: p.uniform(0.1, 0.4), Phase: "hustle"}
	case t < p.config.BurnoutSteps:
		return Signal{Reward: p.intRange(-5, -1), Stress: p.uniform(0.5, 0.9), Phase: "burnout"}
	default:
		return Signal{Reward: p.config.RecoveryReward, Stress: 0, Phase: "recovery"}
	}
}

// #endregion produce

// #region helpers

// intRange draws an integer-valued reward from [lo, hi].
func (p *Producer) intRange(lo, hi int) float64 {
	return float64(lo + p.rng.Intn(hi-lo+1))
}

// uniform draws from [lo, hi).
func (p *Producer) uniform(lo, hi float64) float64 {
	return lo + p.rng.Float64()*(hi-lo)
}

// #endregion helpers
