package gate

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/wneura/internal/bounds"
	"github.com/danielpatrickdp/wneura/internal/learner"
)

// #region gate
// Gate decides whether a proposed step may reach the engine.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// Evaluate checks hard vetoes first, then scores soft signals.
func (g *Gate) Evaluate(in Input) GateDecision {
	var vetoes []VetoSignal

	// --- Hard veto pass ---

	// 1. Action outside the value table
	if in.Action < 0 || in.Action >= in.Actions {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoActionRange,
			Reason: fmt.Sprintf("action %d not in [0, %d)", in.Action, in.Actions),
		})
	}

	// 2. Non-finite inputs
	for _, f := range []struct {
		name string
		v    float64
	}{{"reward", in.Reward}, {"stress_signal", in.StressSignal}} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			vetoes = append(vetoes, VetoSignal{
				Type:   VetoNonFinite,
				Reason: fmt.Sprintf("%s is %v", f.name, f.v),
			})
		}
	}

	// 3. Reward magnitude cap
	if g.config.MaxAbsReward > 0 && math.Abs(in.Reward) > g.config.MaxAbsReward {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoRewardBound,
			Reason: fmt.Sprintf("|reward| %.4f exceeds cap %.4f", math.Abs(in.Reward), g.config.MaxAbsReward),
		})
	}

	// 4. Stress magnitude cap
	if g.config.MaxAbsStress > 0 && math.Abs(in.StressSignal) > g.config.MaxAbsStress {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoStressBound,
			Reason: fmt.Sprintf("|stress_signal| %.4f exceeds cap %.4f", math.Abs(in.StressSignal), g.config.MaxAbsStress),
		})
	}

	if len(vetoes) > 0 {
		return GateDecision{
			Action:      "reject",
			Reason:      fmt.Sprintf("hard veto: %s", vetoes[0].Reason),
			Vetoed:      true,
			VetoSignals: vetoes,
			SoftScore:   0,
		}
	}

	// --- Soft scoring ---
	softScore := computeSoftScore(in)

	return GateDecision{
		Action:      "accept",
		Reason:      fmt.Sprintf("passed gate: soft_score=%.4f", softScore),
		Vetoed:      false,
		VetoSignals: nil,
		SoftScore:   softScore,
	}
}

// Err converts a rejection into the sentinel error of its first veto.
// Returns nil for an accepted step.
func (d GateDecision) Err() error {
	if !d.Vetoed || len(d.VetoSignals) == 0 {
		return nil
	}
	v := d.VetoSignals[0]
	if v.Type == VetoActionRange {
		return fmt.Errorf("%w: %s", learner.ErrInvalidAction, v.Reason)
	}
	return fmt.Errorf("%w: %s", bounds.ErrInvalidInput, v.Reason)
}

// #endregion gate

// #region helpers
// computeSoftScore produces a 0-1 composite from how expected the reward was,
// how calm the agent is, and how much agency it has left. Logged, never blocks.
func computeSoftScore(in Input) float64 {
	var score float64

	// Familiarity: small prediction errors score high (weight 0.4)
	score += 0.4 / (1 + math.Abs(in.Reward-in.Expected))

	// Calm: low cortisol (weight 0.3)
	score += 0.3 * (1 - bounds.Clip(in.Cortisol, 0, 1))

	// Agency (weight 0.3)
	score += 0.3 * bounds.Clip(in.Agency, 0, 1)

	return score
}

// #endregion helpers
