package learner

import "errors"

// ErrInvalidAction is returned when an action index is outside [0, Actions).
var ErrInvalidAction = errors.New("invalid action")

// #region config

// Config holds the learner's own coefficients. Stress and agency coefficients
// are passed separately to New.
type Config struct {
	Actions          int     // size of the value table
	BaseLearningRate float64 // step size at full agency
	HistoryLimit     int     // capacity of the step history ring
}

// DefaultConfig returns a two-action learner with the reference learning rate.
func DefaultConfig() Config {
	return Config{
		Actions:          2,
		BaseLearningRate: 0.1,
		HistoryLimit:     1000,
	}
}

// #endregion config

// #region result

// StepResult is the diagnostic tuple of one Update.
type StepResult struct {
	Action           int     `json:"action"`
	Reward           float64 `json:"reward"`
	PredictionError  float64 `json:"prediction_error"`
	Agency           float64 `json:"agency"`
	Cortisol         float64 `json:"cortisol"`
	Resistance       float64 `json:"resistance"`
	LearningStepSize float64 `json:"learning_step_size"`
	NewValue         float64 `json:"new_value"`
}

// #endregion result
