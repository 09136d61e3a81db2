package brain

import (
	"fmt"
	"time"
)

// #region bounds

const (
	// MinResistance and MaxResistance bound the homeostatic buffer.
	MinResistance = 0.5
	MaxResistance = 1.5

	// burnoutCortisol is the level above which resistance erodes instead of recovering.
	burnoutCortisol = 0.8
	// resistanceErosion is the multiplicative loss per step above burnoutCortisol.
	resistanceErosion = 0.99
	// resistanceRecovery is the additive gain per step at or below burnoutCortisol.
	resistanceRecovery = 0.01

	// erosionScale multiplies the quadratic stress-gap term.
	erosionScale = 5.0
)

// #endregion bounds

// #region stress-config

// StressConfig holds the coefficients read by StressState.
type StressConfig struct {
	CortisolDecay float64 // multiplicative retention per step, in (0, 1)
	AmygdalaGain  float64 // nominal surprise-to-cortisol gain
}

// DefaultStressConfig returns the reference coefficients.
func DefaultStressConfig() StressConfig {
	return StressConfig{
		CortisolDecay: 0.95,
		AmygdalaGain:  0.5,
	}
}

// Warnings reports coefficients outside their meaningful range. None are fatal.
func (c StressConfig) Warnings() []string {
	var out []string
	if c.CortisolDecay <= 0 || c.CortisolDecay >= 1 {
		out = append(out, fmt.Sprintf("cortisol_decay %.4f is outside (0, 1); cortisol will not behave as a leaky integrator", c.CortisolDecay))
	}
	return out
}

// #endregion stress-config

// #region agency-config

// AgencyConfig holds the coefficients read by AgencyState.
type AgencyConfig struct {
	StressThreshold  float64 // cortisol above this erodes agency
	InitialAgency    float64
	ErosionRate      float64
	RepairRate       float64
	MasteryThreshold float64 // prediction error above this counts as mastery
	HistoryLimit     int     // capacity of the audit ring
}

// DefaultAgencyConfig returns the reference coefficients.
func DefaultAgencyConfig() AgencyConfig {
	return AgencyConfig{
		StressThreshold:  0.6,
		InitialAgency:    1.0,
		ErosionRate:      0.05,
		RepairRate:       0.01,
		MasteryThreshold: 0.1,
		HistoryLimit:     1000,
	}
}

// HysteresisEnabled reports whether damage accrues faster than it heals.
func (c AgencyConfig) HysteresisEnabled() bool {
	return c.ErosionRate > c.RepairRate
}

// Warnings reports configurations that disable the intended dynamics. None are fatal.
func (c AgencyConfig) Warnings() []string {
	var out []string
	if !c.HysteresisEnabled() {
		out = append(out, fmt.Sprintf("erosion_rate (%.4f) <= repair_rate (%.4f): hysteresis disabled, damage heals as fast as it accrues", c.ErosionRate, c.RepairRate))
	}
	return out
}

// #endregion agency-config

// #region reading

// Reading is the stress state observed at one instant. AgencyState consumes it
// explicitly so the stress-before-agency ordering is visible at the call site.
type Reading struct {
	Cortisol   float64
	Resistance float64
}

// #endregion reading

// #region agency-record

// AgencyRecord is one entry of the agency audit ring.
type AgencyRecord struct {
	Cortisol    float64   `json:"cortisol"`
	Agency      float64   `json:"agency"`
	DeltaAgency float64   `json:"delta_agency"`
	Resistance  float64   `json:"resistance"`
	Timestamp   time.Time `json:"timestamp"`
}

// #endregion agency-record
