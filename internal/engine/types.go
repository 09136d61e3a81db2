package engine

import (
	"github.com/danielpatrickdp/wneura/internal/chemistry"
	"github.com/danielpatrickdp/wneura/internal/config"
	"github.com/danielpatrickdp/wneura/internal/gate"
	"github.com/danielpatrickdp/wneura/internal/learner"
)

// #region config

// Config assembles every subsystem's configuration.
type Config struct {
	Brain     config.BrainConfig
	Actions   int
	Chemistry chemistry.Config
	Gate      gate.GateConfig
	Seed      int64 // 0 seeds from the clock
}

// DefaultConfig returns a single-action engine with reference coefficients.
func DefaultConfig() Config {
	return Config{
		Brain:     config.Default(),
		Actions:   1,
		Chemistry: chemistry.DefaultConfig(),
		Gate:      gate.DefaultGateConfig(),
	}
}

// #endregion config

// #region step-input

// StepInput is the driver's contribution to one step. State is an opaque
// payload carried into episodic memory.
type StepInput[S any] struct {
	Action       int
	Reward       float64
	StressSignal float64 // stress observation for chemistry
	// UseCortisol drives chemistry with the learner's cortisol, read before any
	// StressPulse, instead of StressSignal.
	UseCortisol bool
	// StressPulse is an external surprise fed to the stress state after learning.
	StressPulse float64
	ActionTaken bool
	State       S
}

// #endregion step-input

// #region step-report

// StepReport is the full outcome of one step.
type StepReport struct {
	Step       int                `json:"step"`
	Learner    learner.StepResult `json:"learner"`
	Chemistry  chemistry.State    `json:"chemistry"`
	Cortisol   float64            `json:"cortisol"` // after any stress pulse
	Encoded    bool               `json:"encoded"`
	MemorySize int                `json:"memory_size"`
	SoftScore  float64            `json:"soft_score"`
}

// #endregion step-report
