package eval

// #region eval-config
// EvalConfig holds thresholds for post-run health checks.
type EvalConfig struct {
	MinAgency         float64 // below this the agent has collapsed
	MinReceptorHealth float64 // below this the reward receptor is tolerant
	MaxCortisol       float64 // above this the agent is burnt out
	FullRecovery      float64 // agency above this is a full recovery
	PartialRecovery   float64 // agency above this is a partial recovery
}

// DefaultEvalConfig returns the thresholds the experiments report against.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		MinAgency:         0.2,
		MinReceptorHealth: 0.8,
		MaxCortisol:       0.8,
		FullRecovery:      0.8,
		PartialRecovery:   0.4,
	}
}

// #endregion eval-config

// #region health
// Health is the end-of-run state being evaluated.
type Health struct {
	Agency         float64
	Cortisol       float64
	Resistance     float64
	ReceptorHealth float64
}

// #endregion health

// #region status
// Status is the recovery verdict for a run.
type Status string

const (
	StatusFullRecovery    Status = "full_recovery"
	StatusPartialRecovery Status = "partial_recovery"
	StatusFailed          Status = "failed"
)

// #endregion status

// #region eval-metric
// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Pass  bool    `json:"pass"`
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the output of a health evaluation.
type EvalResult struct {
	Passed  bool         `json:"passed"`
	Metrics []EvalMetric `json:"metrics"`
	Reason  string       `json:"reason"`
	Status  Status       `json:"status"`
}

// #endregion eval-result
