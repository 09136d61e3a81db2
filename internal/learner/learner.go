// Package learner implements a single-state tabular value learner whose
// exploration and step size are both scaled by the agent's agency.
package learner

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/mudler/xlog"

	"github.com/danielpatrickdp/wneura/internal/bounds"
	"github.com/danielpatrickdp/wneura/internal/brain"
	"github.com/danielpatrickdp/wneura/internal/ring"
)

// #region learner

// ModulatedLearner owns the value table and the stress/agency state that
// modulates it. Not safe for concurrent use.
type ModulatedLearner struct {
	config  Config
	values  []float64
	stress  *brain.StressState
	agency  *brain.AgencyState
	history *ring.Buffer[StepResult]
	rng     *rand.Rand

	warnings []string
}

// New creates a learner with a zeroed value table. rng may be nil, in which
// case a time-seeded source is used. Configuration warnings are logged and
// kept for Warnings; none of them stop construction.
func New(config Config, stress brain.StressConfig, agency brain.AgencyConfig, rng *rand.Rand) (*ModulatedLearner, error) {
	if config.Actions < 1 {
		return nil, fmt.Errorf("new learner: %w: actions must be >= 1, got %d", bounds.ErrInvalidInput, config.Actions)
	}
	if err := bounds.Check("base_learning_rate", config.BaseLearningRate); err != nil {
		return nil, fmt.Errorf("new learner: %w", err)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	l := &ModulatedLearner{
		config:  config,
		values:  make([]float64, config.Actions),
		stress:  brain.NewStressState(stress),
		agency:  brain.NewAgencyState(agency),
		history: ring.New[StepResult](config.HistoryLimit),
		rng:     rng,
	}
	l.warnings = append(l.warnings, stress.Warnings()...)
	l.warnings = append(l.warnings, agency.Warnings()...)
	for _, w := range l.warnings {
		xlog.Warn("Configuration warning", "warning", w)
	}
	return l, nil
}

// #endregion learner

// #region select-action

// SelectAction explores uniformly with probability explorationRate*agency and
// otherwise returns the argmax of the value table (first index on ties).
func (l *ModulatedLearner) SelectAction(explorationRate float64) int {
	if l.rng.Float64() < explorationRate*l.agency.Agency() {
		return l.rng.Intn(len(l.values))
	}
	return l.argmax()
}

func (l *ModulatedLearner) argmax() int {
	best := 0
	for i := 1; i < len(l.values); i++ {
		if l.values[i] > l.values[best] {
			best = i
		}
	}
	return best
}

// #endregion select-action

// #region update

// Update learns from one (action, reward) observation. Stress is updated
// before agency, and the step size uses the agency just computed.
func (l *ModulatedLearner) Update(action int, reward float64) (StepResult, error) {
	if action < 0 || action >= len(l.values) {
		return StepResult{}, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidAction, action, len(l.values))
	}
	if err := bounds.Check("reward", reward); err != nil {
		return StepResult{}, fmt.Errorf("update learner: %w", err)
	}

	predictionError := reward - l.values[action]

	cortisol, err := l.stress.Update(math.Abs(predictionError))
	if err != nil {
		return StepResult{}, fmt.Errorf("update learner: %w", err)
	}
	agency, err := l.agency.Update(predictionError, l.stress.Reading())
	if err != nil {
		return StepResult{}, fmt.Errorf("update learner: %w", err)
	}

	stepSize := l.config.BaseLearningRate * agency
	l.values[action] += stepSize * predictionError

	result := StepResult{
		Action:           action,
		Reward:           reward,
		PredictionError:  predictionError,
		Agency:           agency,
		Cortisol:         cortisol,
		Resistance:       l.stress.Resistance(),
		LearningStepSize: stepSize,
		NewValue:         l.values[action],
	}
	l.history.Push(result)
	return result, nil
}

// InjectStress feeds an external surprise pulse into the stress state without
// touching agency or the value table. Returns the new cortisol.
func (l *ModulatedLearner) InjectStress(surprise float64) (float64, error) {
	cortisol, err := l.stress.Update(surprise)
	if err != nil {
		return cortisol, fmt.Errorf("inject stress: %w", err)
	}
	return cortisol, nil
}

// #endregion update

// #region accessors

// Actions returns the size of the value table.
func (l *ModulatedLearner) Actions() int { return len(l.values) }

// Values returns a copy of the value table.
func (l *ModulatedLearner) Values() []float64 {
	out := make([]float64, len(l.values))
	copy(out, l.values)
	return out
}

// History returns the step history ring, oldest first.
func (l *ModulatedLearner) History() []StepResult { return l.history.Slice() }

// Stress exposes the stress state for snapshots.
func (l *ModulatedLearner) Stress() *brain.StressState { return l.stress }

// Agency exposes the agency state for snapshots.
func (l *ModulatedLearner) Agency() *brain.AgencyState { return l.agency }

// Warnings returns the configuration warnings raised at construction.
func (l *ModulatedLearner) Warnings() []string {
	out := make([]string, len(l.warnings))
	copy(out, l.warnings)
	return out
}

// RestoreValues replaces the value table. A nil slice leaves it unchanged.
func (l *ModulatedLearner) RestoreValues(values []float64) error {
	if values == nil {
		return nil
	}
	if len(values) != len(l.values) {
		return fmt.Errorf("restore values: %w: expected %d values, got %d", bounds.ErrInvalidInput, len(l.values), len(values))
	}
	for i, v := range values {
		if err := bounds.Check(fmt.Sprintf("values[%d]", i), v); err != nil {
			return fmt.Errorf("restore values: %w", err)
		}
	}
	copy(l.values, values)
	return nil
}

// #endregion accessors
