// Package engine wires the learner, chemistry and episodic memory into one
// owner that advances them together, one Step per simulation tick.
//
// An Engine is single-owner: it is not safe for concurrent use, and parallel
// trials must each build their own.
package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mudler/xlog"

	"github.com/danielpatrickdp/wneura/internal/bounds"
	"github.com/danielpatrickdp/wneura/internal/brain"
	"github.com/danielpatrickdp/wneura/internal/chemistry"
	"github.com/danielpatrickdp/wneura/internal/eval"
	"github.com/danielpatrickdp/wneura/internal/gate"
	"github.com/danielpatrickdp/wneura/internal/learner"
	"github.com/danielpatrickdp/wneura/internal/memory"
)

// #region engine

// Engine owns one agent's subsystems.
type Engine[S any] struct {
	config  Config
	learner *learner.ModulatedLearner
	chem    *chemistry.ReceptorAdaptation
	memory  *memory.EpisodicMemory[S]
	gate    *gate.Gate
	step    int
}

// New validates the configuration and builds every subsystem.
func New[S any](cfg Config) (*Engine[S], error) {
	if err := cfg.Brain.Validate(); err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	l, err := learner.New(
		cfg.Brain.Learner(cfg.Actions),
		cfg.Brain.Stress(),
		cfg.Brain.Agency(),
		rand.New(rand.NewSource(seed)),
	)
	if err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}

	return &Engine[S]{
		config:  cfg,
		learner: l,
		chem:    chemistry.New(cfg.Chemistry),
		memory:  memory.New[S](cfg.Brain.Memory()),
		gate:    gate.NewGate(cfg.Gate),
	}, nil
}

// #endregion engine

// #region step

// SelectAction picks an action with agency-gated exploration.
func (e *Engine[S]) SelectAction(explorationRate float64) int {
	return e.learner.SelectAction(explorationRate)
}

// Step gates the input, learns from it, then lets chemistry and memory observe
// the outcome. A rejected input changes nothing.
func (e *Engine[S]) Step(in StepInput[S]) (StepReport, error) {
	values := e.learner.Values()
	expected := 0.0
	if in.Action >= 0 && in.Action < len(values) {
		expected = values[in.Action]
	}
	decision := e.gate.Evaluate(gate.Input{
		Action:       in.Action,
		Actions:      len(values),
		Reward:       in.Reward,
		StressSignal: in.StressSignal,
		Expected:     expected,
		Agency:       e.learner.Agency().Agency(),
		Cortisol:     e.learner.Stress().Cortisol(),
	})
	if err := decision.Err(); err != nil {
		xlog.Warn("Step rejected", "step", e.step, "reason", decision.Reason)
		return StepReport{}, fmt.Errorf("step %d: %w", e.step, err)
	}
	if err := bounds.Check("stress_pulse", in.StressPulse); err != nil {
		return StepReport{}, fmt.Errorf("step %d: %w", e.step, err)
	}

	result, err := e.learner.Update(in.Action, in.Reward)
	if err != nil {
		return StepReport{}, fmt.Errorf("step %d: %w", e.step, err)
	}

	cortisol := result.Cortisol
	if in.StressPulse != 0 {
		if cortisol, err = e.learner.InjectStress(in.StressPulse); err != nil {
			return StepReport{}, fmt.Errorf("step %d: %w", e.step, err)
		}
	}

	stress := in.StressSignal
	if in.UseCortisol {
		stress = result.Cortisol
	}
	chem, err := e.chem.Update(in.Reward, stress, in.ActionTaken)
	if err != nil {
		return StepReport{}, fmt.Errorf("step %d: %w", e.step, err)
	}

	encoded, err := e.memory.Encode(memory.Experience[S]{
		Step:     e.step,
		State:    in.State,
		Action:   in.Action,
		Reward:   in.Reward,
		Surprise: result.PredictionError,
		Cortisol: cortisol,
	})
	if err != nil {
		return StepReport{}, fmt.Errorf("step %d: %w", e.step, err)
	}

	report := StepReport{
		Step:       e.step,
		Learner:    result,
		Chemistry:  chem,
		Cortisol:   cortisol,
		Encoded:    encoded,
		MemorySize: e.memory.Len(),
		SoftScore:  decision.SoftScore,
	}
	xlog.Debug("Step", "step", e.step, "reward", in.Reward, "rpe", result.PredictionError,
		"agency", result.Agency, "cortisol", cortisol, "memory", report.MemorySize)
	e.step++
	return report, nil
}

// #endregion step

// #region memory

// DecayMemories runs one decay pass and returns the number of traces pruned.
func (e *Engine[S]) DecayMemories() int {
	return e.memory.Decay()
}

// ReplayBatch returns the n most important traces.
func (e *Engine[S]) ReplayBatch(n int) []memory.Trace[S] {
	return e.memory.ReplayBatch(n)
}

// Traces returns every stored trace in insertion order.
func (e *Engine[S]) Traces() []memory.Trace[S] {
	return e.memory.Traces()
}

// #endregion memory

// #region snapshot

// Snapshot captures the persisted biological state.
func (e *Engine[S]) Snapshot() brain.Snapshot {
	return brain.Snapshot{
		Cortisol:            e.learner.Stress().Cortisol(),
		Agency:              e.learner.Agency().Agency(),
		Resistance:          e.learner.Stress().Resistance(),
		RewardChemicalLevel: e.chem.State().RewardLevel,
	}
}

// Restore loads a snapshot and, when values is non-nil, the value table.
func (e *Engine[S]) Restore(s brain.Snapshot, values []float64) error {
	if err := e.learner.RestoreValues(values); err != nil {
		return fmt.Errorf("restore engine: %w", err)
	}
	if err := e.chem.RestoreRewardLevel(s.RewardChemicalLevel); err != nil {
		return fmt.Errorf("restore engine: %w", err)
	}
	e.learner.Stress().Restore(s.Cortisol, s.Resistance)
	e.learner.Agency().Restore(s.Agency)
	return nil
}

// #endregion snapshot

// #region accessors

// Values returns a copy of the value table.
func (e *Engine[S]) Values() []float64 { return e.learner.Values() }

// StepCount returns the number of accepted steps.
func (e *Engine[S]) StepCount() int { return e.step }

// Warnings returns the configuration warnings raised at construction.
func (e *Engine[S]) Warnings() []string { return e.learner.Warnings() }

// History returns the learner's bounded step history.
func (e *Engine[S]) History() []learner.StepResult { return e.learner.History() }

// AgencyHistory returns the agency audit ring.
func (e *Engine[S]) AgencyHistory() []brain.AgencyRecord { return e.learner.Agency().History() }

// Chemistry returns the current effective chemical levels.
func (e *Engine[S]) Chemistry() chemistry.State { return e.chem.State() }

// Health summarizes the state for eval.
func (e *Engine[S]) Health() eval.Health {
	return eval.Health{
		Agency:         e.learner.Agency().Agency(),
		Cortisol:       e.learner.Stress().Cortisol(),
		Resistance:     e.learner.Stress().Resistance(),
		ReceptorHealth: e.chem.State().ReceptorHealth,
	}
}

// Config returns the configuration the engine was built with.
func (e *Engine[S]) Config() Config { return e.config }

// #endregion accessors
