// Package replay feeds recorded interactions through an engine and tallies the
// outcome. Runs entirely in memory.
package replay

import (
	"encoding/json"

	"github.com/danielpatrickdp/wneura/internal/brain"
	"github.com/danielpatrickdp/wneura/internal/engine"
	"github.com/danielpatrickdp/wneura/internal/eval"
)

// Actions recorded per interaction.
const (
	ActionAccept = "accept"
	ActionReject = "reject"
)

// #region types
// Interaction is a single recorded step.
type Interaction struct {
	ID           string          `json:"id"`
	Action       int             `json:"action"`
	Reward       float64         `json:"reward"`
	StressSignal float64         `json:"stress_signal"`
	StressPulse  float64         `json:"stress_pulse,omitempty"`
	UseCortisol  bool            `json:"use_cortisol,omitempty"`
	ActionTaken  bool            `json:"action_taken"`
	State        json.RawMessage `json:"state,omitempty"`
}

// Result captures the outcome of replaying one interaction.
type Result struct {
	ID     string `json:"id"`
	Action string `json:"action"` // "accept" | "reject"
	Reason string `json:"reason,omitempty"`

	// nil when rejected
	Report *engine.StepReport `json:"report,omitempty"`
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	Total    int            `json:"total"`
	Accepted int            `json:"accepted"`
	Rejected int            `json:"rejected"`
	Encoded  int            `json:"encoded"`
	Final    brain.Snapshot `json:"final"`
	Status   eval.Status    `json:"status"`
}

// #endregion types

// #region replay
// Replay steps e once per interaction. A rejected interaction leaves the
// engine untouched and the run continues.
func Replay(e *engine.Engine[json.RawMessage], interactions []Interaction) []Result {
	results := make([]Result, 0, len(interactions))

	for _, in := range interactions {
		report, err := e.Step(engine.StepInput[json.RawMessage]{
			Action:       in.Action,
			Reward:       in.Reward,
			StressSignal: in.StressSignal,
			UseCortisol:  in.UseCortisol,
			StressPulse:  in.StressPulse,
			ActionTaken:  in.ActionTaken,
			State:        in.State,
		})
		if err != nil {
			results = append(results, Result{
				ID:     in.ID,
				Action: ActionReject,
				Reason: err.Error(),
			})
			continue
		}
		results = append(results, Result{
			ID:     in.ID,
			Action: ActionAccept,
			Report: &report,
		})
	}

	return results
}

// Summarize computes aggregate stats from replay results. final is the
// engine snapshot after the run.
func Summarize(results []Result, final brain.Snapshot) Summary {
	s := Summary{
		Total:  len(results),
		Final:  final,
		Status: eval.NewEvalHarness(eval.DefaultEvalConfig()).RecoveryStatus(final.Agency),
	}
	for _, r := range results {
		switch r.Action {
		case ActionAccept:
			s.Accepted++
			if r.Report.Encoded {
				s.Encoded++
			}
		case ActionReject:
			s.Rejected++
		}
	}
	return s
}

// #endregion replay
