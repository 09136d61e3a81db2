// Package chemistry models three neuromodulator pools (reward, mood, arousal)
// and the tolerance law that adapts receptor sensitivity to sustained levels.
// It observes the learning loop; nothing here feeds back into stress or agency.
package chemistry

import (
	"fmt"

	"github.com/danielpatrickdp/wneura/internal/bounds"
)

// #region adaptation

// ReceptorAdaptation owns the three pools. Not safe for concurrent use.
type ReceptorAdaptation struct {
	config  Config
	reward  Pool
	mood    Pool
	arousal Pool
}

// New creates pools at baseline with unit sensitivity.
func New(config Config) *ReceptorAdaptation {
	return &ReceptorAdaptation{
		config:  config,
		reward:  Pool{Level: Baseline, Sensitivity: 1.0, Adaptive: true},
		mood:    Pool{Level: Baseline, Sensitivity: 1.0, Adaptive: config.AdaptMood},
		arousal: Pool{Level: Baseline, Sensitivity: 1.0, Adaptive: config.AdaptArousal},
	}
}

// #endregion adaptation

// #region update

// Update advances every pool by one step and returns the effective levels.
func (r *ReceptorAdaptation) Update(reward, stress float64, actionTaken bool) (State, error) {
	if err := bounds.Finite([]string{"reward_signal", "stress_signal"}, reward, stress); err != nil {
		return r.State(), fmt.Errorf("update chemistry: %w", err)
	}
	c := r.config

	// Reward: proportional gain, flat penalty
	if reward > 0 {
		r.reward.Level += c.RewardGain * reward
	} else {
		r.reward.Level -= c.RewardPenalty
	}

	// Mood: stress depletes it, calm action restores it
	if stress > c.MoodStressThreshold {
		r.mood.Level -= c.MoodStressGain * stress
	} else if actionTaken {
		r.mood.Level += c.MoodActionBonus
	}

	// Arousal: lagged tracker of a stress-driven target
	target := Baseline + stress*c.ArousalStressGain
	r.arousal.Level += (target - r.arousal.Level) * c.ArousalRate

	// Reuptake
	r.reward.Level += (Baseline - r.reward.Level) * c.ReuptakeRate
	r.mood.Level += (Baseline - r.mood.Level) * c.ReuptakeRate
	r.arousal.Level += (Baseline - r.arousal.Level) * c.ArousalReuptakeRate

	r.adapt(&r.reward)
	r.adapt(&r.mood)
	r.adapt(&r.arousal)

	return r.State(), nil
}

// adapt applies the tolerance law to an adaptive pool.
func (r *ReceptorAdaptation) adapt(p *Pool) {
	if !p.Adaptive {
		return
	}
	switch {
	case p.Level > r.config.ToleranceHigh:
		p.Sensitivity -= r.config.AdaptationStep
	case p.Level < r.config.ToleranceLow:
		p.Sensitivity += r.config.AdaptationStep
	}
	p.Sensitivity = bounds.Clip(p.Sensitivity, MinSensitivity, MaxSensitivity)
}

// #endregion update

// #region accessors

// State reports the current effective levels without advancing.
func (r *ReceptorAdaptation) State() State {
	return State{
		EffectiveReward:  r.reward.Effective(),
		EffectiveMood:    r.mood.Effective(),
		EffectiveArousal: r.arousal.Effective(),
		ReceptorHealth:   r.reward.Sensitivity,
		RewardLevel:      r.reward.Level,
		MoodLevel:        r.mood.Level,
		ArousalLevel:     r.arousal.Level,
	}
}

// Pools returns copies of the reward, mood and arousal pools.
func (r *ReceptorAdaptation) Pools() (reward, mood, arousal Pool) {
	return r.reward, r.mood, r.arousal
}

// RestoreRewardLevel sets the reward pool level from a snapshot.
func (r *ReceptorAdaptation) RestoreRewardLevel(level float64) error {
	if err := bounds.Check("reward_chemical_level", level); err != nil {
		return fmt.Errorf("restore chemistry: %w", err)
	}
	r.reward.Level = level
	return nil
}

// #endregion accessors
