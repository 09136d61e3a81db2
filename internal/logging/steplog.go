// Package logging persists the per-step audit trail next to the state store.
package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region log-step
// LogStep writes a step entry to the step_log table.
func LogStep(db *sql.DB, entry StepEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO step_log (run_id, step, phase, action, reward, stress_signal, stress_pulse, use_cortisol,
		 prediction_error, cortisol, agency, resistance, learning_step_size, new_value, effective_reward,
		 receptor_health, encoded, decision, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.Step,
		nullIfEmpty(entry.Phase),
		entry.Action,
		entry.Reward,
		entry.StressSignal,
		entry.StressPulse,
		entry.UseCortisol,
		entry.PredictionError,
		entry.Cortisol,
		entry.Agency,
		entry.Resistance,
		entry.LearningStepSize,
		entry.NewValue,
		entry.EffectiveReward,
		entry.ReceptorHealth,
		entry.Encoded,
		entry.Decision,
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log step: %w", err)
	}
	return nil
}

// #endregion log-step

// #region list-steps
// ListSteps returns the last limit entries of a run in step order.
func ListSteps(db *sql.DB, runID string, limit int) ([]StepEntry, error) {
	rows, err := db.Query(
		`SELECT run_id, step, phase, action, reward, stress_signal, stress_pulse, use_cortisol,
		        prediction_error, cortisol, agency, resistance,
		        learning_step_size, new_value, effective_reward, receptor_health, encoded, decision, reason, created_at
		 FROM (SELECT * FROM step_log WHERE run_id = ? ORDER BY id DESC LIMIT ?)
		 ORDER BY id ASC`, runID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list steps: %w", err)
	}
	defer rows.Close()

	var out []StepEntry
	for rows.Next() {
		var e StepEntry
		var phase, reason sql.NullString
		var createdStr string
		if err := rows.Scan(&e.RunID, &e.Step, &phase, &e.Action, &e.Reward,
			&e.StressSignal, &e.StressPulse, &e.UseCortisol, &e.PredictionError,
			&e.Cortisol, &e.Agency, &e.Resistance, &e.LearningStepSize, &e.NewValue,
			&e.EffectiveReward, &e.ReceptorHealth, &e.Encoded, &e.Decision, &reason, &createdStr); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		e.Phase = phase.String
		e.Reason = reason.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion list-steps

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
