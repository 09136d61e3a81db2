package cli

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/mudler/xlog"

	"github.com/danielpatrickdp/wneura/internal/brain"
	"github.com/danielpatrickdp/wneura/internal/config"
	"github.com/danielpatrickdp/wneura/internal/engine"
	"github.com/danielpatrickdp/wneura/internal/gate"
	"github.com/danielpatrickdp/wneura/internal/logging"
	"github.com/danielpatrickdp/wneura/internal/signals"
	"github.com/danielpatrickdp/wneura/internal/state"
)

// explorationRate matches the agent's default act() policy.
const explorationRate = 0.1

// origin records where an engine started, so a persisted run can be rebuilt.
// The zero value is a fresh engine.
type origin struct {
	parentID    string // version resumed from
	start       *brain.Snapshot
	startValues []float64
}

// runManifest is stored as a version's metrics: everything needed to rebuild
// the engine the run started with, plus the caller's stats.
type runManifest struct {
	Brain       config.BrainConfig `json:"brain"`
	Gate        gate.GateConfig    `json:"gate"`
	Actions     int                `json:"actions"`
	Start       *brain.Snapshot    `json:"start,omitempty"`
	StartValues []float64          `json:"start_values,omitempty"`
	Stats       interface{}        `json:"stats,omitempty"`
}

// session drives one engine with one scenario producer.
type session struct {
	engine   *engine.Engine[signals.Signal]
	producer *signals.Producer
	store    *state.Store // nil disables persistence
	runID    string
	origin   origin
	// lab feeds the scenario stress as an extra pulse and drives chemistry with cortisol
	lab bool
}

func newSession(cfg engine.Config, scenario signals.Scenario, pc signals.ProducerConfig, store *state.Store) (*session, error) {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	e, err := engine.New[signals.Signal](cfg)
	if err != nil {
		return nil, err
	}
	return &session{
		engine:   e,
		producer: signals.NewProducer(scenario, pc, rand.New(rand.NewSource(cfg.Seed+1))),
		store:    store,
		runID:    uuid.New().String(),
	}, nil
}

// resume restores the engine from the store's active version.
func (s *session) resume() error {
	cur, err := s.store.GetCurrent()
	if err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	if err := s.engine.Restore(cur.Snapshot, cur.Values); err != nil {
		return fmt.Errorf("resume %s: %w", cur.VersionID, err)
	}
	snap := cur.Snapshot
	s.origin = origin{parentID: cur.VersionID, start: &snap, startValues: cur.Values}
	return nil
}

// restore starts the engine from a snapshot that is not a stored version.
func (s *session) restore(snap brain.Snapshot) error {
	if err := s.engine.Restore(snap, nil); err != nil {
		return err
	}
	s.origin = origin{start: &snap}
	return nil
}

// step advances the engine by scenario step t.
func (s *session) step(t int) (signals.Signal, engine.StepReport, error) {
	sig := s.producer.Next(t)
	in := engine.StepInput[signals.Signal]{
		Action:       s.engine.SelectAction(explorationRate),
		Reward:       sig.Reward,
		StressSignal: sig.Stress,
		ActionTaken:  true,
		State:        sig,
	}
	if s.lab {
		in.UseCortisol = true
		in.StressPulse = sig.Stress
	}

	report, err := s.engine.Step(in)
	if err != nil {
		if s.store != nil {
			entry := logging.RejectedEntry(s.runID, sig.Phase, s.engine.StepCount(), in.Action, sig.Reward, err.Error())
			if logErr := logging.LogStep(s.store.DB(), withStress(entry, in)); logErr != nil {
				xlog.Warn("Could not log rejected step", "run", s.runID, "step", entry.Step, "error", logErr)
			}
		}
		return sig, engine.StepReport{}, err
	}
	if s.store != nil {
		entry := logging.NewStepEntry(s.runID, sig.Phase, report.Step, report.Learner, report.Chemistry, report.Cortisol, report.Encoded)
		if err := logging.LogStep(s.store.DB(), withStress(entry, in)); err != nil {
			return sig, report, err
		}
	}
	return sig, report, nil
}

func withStress[S any](e logging.StepEntry, in engine.StepInput[S]) logging.StepEntry {
	e.StressSignal = in.StressSignal
	e.StressPulse = in.StressPulse
	e.UseCortisol = in.UseCortisol
	return e
}

// persist commits the engine's state and memory traces as a new version in
// one transaction. The version's parent is from.parentID.
func persist[S any](store *state.Store, runID string, from origin, e *engine.Engine[S], stats interface{}) (state.StateRecord, error) {
	cfg := e.Config()
	manifest := runManifest{
		Brain:       cfg.Brain,
		Gate:        cfg.Gate,
		Actions:     cfg.Actions,
		Start:       from.start,
		StartValues: from.startValues,
		Stats:       stats,
	}
	metrics, err := json.Marshal(manifest)
	if err != nil {
		return state.StateRecord{}, fmt.Errorf("encode metrics: %w", err)
	}

	rec := state.NewRecord(state.StateRecord{VersionID: from.parentID, RunID: runID}, e.Snapshot(), e.Values(), e.StepCount())
	rec.MetricsJSON = string(metrics)

	traces := e.Traces()
	records := make([]state.TraceRecord, 0, len(traces))
	for _, tr := range traces {
		payload, err := json.Marshal(tr.State)
		if err != nil {
			return state.StateRecord{}, fmt.Errorf("encode trace %s: %w", tr.ID, err)
		}
		records = append(records, state.TraceRecord{
			TraceID:     tr.ID,
			Step:        tr.Step,
			Action:      tr.Action,
			Reward:      tr.Reward,
			Surprise:    tr.Surprise,
			Cortisol:    tr.Cortisol,
			Importance:  tr.Importance,
			PayloadJSON: string(payload),
			CreatedAt:   tr.CreatedAt,
		})
	}
	if err := store.CommitWithTraces(rec, records); err != nil {
		return state.StateRecord{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}
