package gate

// #region veto-type
// VetoType enumerates hard veto categories.
type VetoType string

const (
	VetoNonFinite   VetoType = "non_finite"
	VetoActionRange VetoType = "action_range"
	VetoRewardBound VetoType = "reward_bound"
	VetoStressBound VetoType = "stress_bound"
)

// #endregion veto-type

// #region veto-signal
// VetoSignal represents a detected hard veto condition.
type VetoSignal struct {
	Type   VetoType
	Reason string
}

// #endregion veto-signal

// #region gate-config
// GateConfig holds the bounds a step must respect. A zero bound disables its check.
type GateConfig struct {
	MaxAbsReward float64 `json:"max_abs_reward,omitempty"` // |reward| above this is vetoed
	MaxAbsStress float64 `json:"max_abs_stress,omitempty"` // |stress_signal| above this is vetoed
}

// DefaultGateConfig makes no assumption about reward or stress magnitude:
// only non-finite values and out-of-range actions are vetoed.
func DefaultGateConfig() GateConfig {
	return GateConfig{}
}

// #endregion gate-config

// #region input
// Input is one proposed step, plus the state it would be applied to.
type Input struct {
	Action       int
	Actions      int     // size of the value table
	Reward       float64
	StressSignal float64
	Expected     float64 // current value estimate of Action
	Agency       float64
	Cortisol     float64
}

// #endregion input

// #region gate-decision
// GateDecision is the output of the gate evaluation.
type GateDecision struct {
	Action      string // "accept" | "reject"
	Reason      string
	Vetoed      bool
	VetoSignals []VetoSignal // non-empty if vetoed
	SoftScore   float64      // 0-1 composite of soft signals (for logging)
}

// #endregion gate-decision
