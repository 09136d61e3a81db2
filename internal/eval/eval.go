package eval

import (
	"fmt"
)

// #region eval-harness
// EvalHarness runs post-run health checks on the biological state.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run checks agency collapse, receptor tolerance and burnout, and attaches
// the recovery status.
func (h *EvalHarness) Run(health Health) EvalResult {
	var metrics []EvalMetric
	passed := true
	var failReasons []string

	// 1. Agency collapse
	agencyPass := health.Agency >= h.config.MinAgency
	metrics = append(metrics, EvalMetric{
		Name:  "agency",
		Value: health.Agency,
		Pass:  agencyPass,
	})
	if !agencyPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("agency collapsed: %.4f < %.4f", health.Agency, h.config.MinAgency))
	}

	// 2. Receptor tolerance
	receptorPass := health.ReceptorHealth >= h.config.MinReceptorHealth
	metrics = append(metrics, EvalMetric{
		Name:  "receptor_health",
		Value: health.ReceptorHealth,
		Pass:  receptorPass,
	})
	if !receptorPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("receptor tolerance: %.4f < %.4f", health.ReceptorHealth, h.config.MinReceptorHealth))
	}

	// 3. Burnout
	cortisolPass := health.Cortisol <= h.config.MaxCortisol
	metrics = append(metrics, EvalMetric{
		Name:  "cortisol",
		Value: health.Cortisol,
		Pass:  cortisolPass,
	})
	if !cortisolPass {
		passed = false
		failReasons = append(failReasons, fmt.Sprintf("burnout: cortisol %.4f > %.4f", health.Cortisol, h.config.MaxCortisol))
	}

	// 4. Resistance: informational only
	metrics = append(metrics, EvalMetric{
		Name:  "resistance",
		Value: health.Resistance,
		Pass:  health.Resistance >= 1.0,
	})

	reason := "all checks passed"
	if !passed {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}

	return EvalResult{
		Passed:  passed,
		Metrics: metrics,
		Reason:  reason,
		Status:  h.RecoveryStatus(health.Agency),
	}
}

// RecoveryStatus bands a final agency value.
func (h *EvalHarness) RecoveryStatus(agency float64) Status {
	switch {
	case agency > h.config.FullRecovery:
		return StatusFullRecovery
	case agency > h.config.PartialRecovery:
		return StatusPartialRecovery
	default:
		return StatusFailed
	}
}

// #endregion eval-harness
