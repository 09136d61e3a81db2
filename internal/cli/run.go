package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/mudler/xlog"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/wneura/internal/brain"
	"github.com/danielpatrickdp/wneura/internal/config"
	"github.com/danielpatrickdp/wneura/internal/engine"
	"github.com/danielpatrickdp/wneura/internal/signals"
)

const replayBatchSize = 5

type runParameters struct {
	Steps           int     `json:"steps"`
	Scenario        string  `json:"scenario"`
	Output          string  `json:"output"`
	Erosion         float64 `json:"erosion"`
	Repair          float64 `json:"repair"`
	StressThreshold float64 `json:"stress_threshold"`
	InitialAgency   float64 `json:"initial_agency"`
	Seed            int64   `json:"seed"`
	BrainDump       string  `json:"brain_dump,omitempty"`
	Consolidate     int     `json:"consolidate_every,omitempty"`
}

type finalStats struct {
	FinalAgency   float64 `json:"final_agency"`
	FinalCortisol float64 `json:"final_cortisol"`
	Memories      int     `json:"memories"`
}

type memoryRow struct {
	Step       int     `json:"step"`
	Action     int     `json:"action"`
	Reward     float64 `json:"reward"`
	Importance float64 `json:"importance"`
}

type runTimeline struct {
	Step     []int     `json:"step"`
	Cortisol []float64 `json:"cortisol"`
	Agency   []float64 `json:"agency"`
	RPE      []float64 `json:"rpe"`
	Action   []int     `json:"action"`
}

type runOutput struct {
	Status       string        `json:"status"` // "success" | "error"
	ErrorMessage string        `json:"error_message,omitempty"`
	Parameters   runParameters `json:"parameters"`
	FinalStats   *finalStats   `json:"final_stats,omitempty"`
	Timeline     *runTimeline  `json:"timeline,omitempty"`
	Replay       []memoryRow   `json:"replay,omitempty"`
	VersionID    string        `json:"version_id,omitempty"`
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	def := config.Default()
	p := runParameters{
		Erosion:         def.ErosionRate,
		Repair:          def.RepairRate,
		StressThreshold: def.StressThreshold,
		InitialAgency:   def.InitialAgency,
	}
	var resume bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a headless simulation and write the result as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			bc := opts.brainConfig()
			f := cmd.Flags()
			if !f.Changed("erosion") {
				p.Erosion = bc.ErosionRate
			}
			if !f.Changed("repair") {
				p.Repair = bc.RepairRate
			}
			if !f.Changed("stress-threshold") {
				p.StressThreshold = bc.StressThreshold
			}
			if !f.Changed("initial-agency") {
				p.InitialAgency = bc.InitialAgency
			}
			out := simulate(opts, bc, p, resume)
			if out.Status != "success" {
				xlog.Error("Simulation failed", "error", out.ErrorMessage)
			}
			data, err := jsonBytes(out)
			if err != nil {
				return err
			}
			if err := os.WriteFile(p.Output, data, 0o644); err != nil {
				return fmt.Errorf("could not write %s: %w", p.Output, err)
			}
			xlog.Info("Results saved", "path", p.Output, "status", out.Status)
			return nil
		},
	}

	names := make([]string, 0, len(signals.Scenarios()))
	for _, s := range signals.Scenarios() {
		names = append(names, string(s))
	}
	f := cmd.Flags()
	f.IntVar(&p.Steps, "steps", 100, "Number of simulation steps")
	f.StringVar(&p.Scenario, "scenario", string(signals.ScenarioMixed), "Scenario: "+strings.Join(names, "|"))
	f.StringVar(&p.Output, "output", "simulation_result.json", "Output JSON file")
	f.Float64Var(&p.Erosion, "erosion", p.Erosion, "Agency erosion rate")
	f.Float64Var(&p.Repair, "repair", p.Repair, "Agency repair rate")
	f.Float64Var(&p.StressThreshold, "stress-threshold", p.StressThreshold, "Cortisol level above which agency erodes")
	f.Float64Var(&p.InitialAgency, "initial-agency", p.InitialAgency, "Starting agency")
	f.Int64Var(&p.Seed, "seed", 0, "Random seed (0 seeds from the clock)")
	f.BoolVar(&resume, "resume", false, "Start from the active snapshot in --db")
	f.StringVar(&p.BrainDump, "brain-dump", "", "Snapshot file loaded at start when present and written at the end")
	f.IntVar(&p.Consolidate, "consolidate", 0, "Decay episodic memory every N steps (0 disables)")
	return cmd
}

// simulate never returns an error: failures are reported in the output document.
func simulate(opts *rootOptions, bc config.BrainConfig, p runParameters, resume bool) runOutput {
	fail := func(err error) runOutput {
		return runOutput{Status: "error", ErrorMessage: err.Error(), Parameters: p}
	}

	scenario, err := signals.ParseScenario(p.Scenario)
	if err != nil {
		return fail(err)
	}
	if p.Steps < 1 {
		return fail(fmt.Errorf("steps must be >= 1, got %d", p.Steps))
	}

	cfg := engine.DefaultConfig()
	cfg.Brain = bc
	cfg.Brain.ErosionRate = p.Erosion
	cfg.Brain.RepairRate = p.Repair
	cfg.Brain.StressThreshold = p.StressThreshold
	cfg.Brain.InitialAgency = p.InitialAgency
	cfg.Seed = p.Seed

	store, err := opts.openStore()
	if err != nil {
		return fail(err)
	}
	if store != nil {
		defer store.Close()
	}

	sess, err := newSession(cfg, scenario, signals.DefaultProducerConfig(), store)
	if err != nil {
		return fail(err)
	}
	if resume {
		if store == nil {
			return fail(errNoDB)
		}
		if err := sess.resume(); err != nil {
			return fail(err)
		}
	} else if p.BrainDump != "" {
		if _, err := os.Stat(p.BrainDump); err == nil {
			if err := sess.restore(brain.LoadSnapshot(p.BrainDump)); err != nil {
				return fail(err)
			}
		}
	}
	xlog.Info("Engine started", "steps", p.Steps, "scenario", scenario, "run", sess.runID)

	tl := &runTimeline{}
	for t := 0; t < p.Steps; t++ {
		_, report, err := sess.step(t)
		if err != nil {
			return fail(err)
		}
		tl.Step = append(tl.Step, t)
		tl.Cortisol = append(tl.Cortisol, report.Learner.Cortisol)
		tl.Agency = append(tl.Agency, report.Learner.Agency)
		tl.RPE = append(tl.RPE, report.Learner.PredictionError)
		tl.Action = append(tl.Action, report.Learner.Action)

		if p.Consolidate > 0 && (t+1)%p.Consolidate == 0 {
			if pruned := sess.engine.DecayMemories(); pruned > 0 {
				xlog.Debug("Memories pruned", "step", t, "pruned", pruned)
			}
		}

		if p.Steps >= 10 && t%(p.Steps/10) == 0 {
			xlog.Info("Progress", "percent", t*100/p.Steps)
		}
	}

	out := runOutput{
		Status:     "success",
		Parameters: p,
		FinalStats: &finalStats{
			FinalAgency:   tl.Agency[len(tl.Agency)-1],
			FinalCortisol: tl.Cortisol[len(tl.Cortisol)-1],
			Memories:      len(sess.engine.Traces()),
		},
		Timeline: tl,
	}
	for _, tr := range sess.engine.ReplayBatch(replayBatchSize) {
		out.Replay = append(out.Replay, memoryRow{
			Step:       tr.Step,
			Action:     tr.Action,
			Reward:     tr.Reward,
			Importance: tr.Importance,
		})
	}
	if p.BrainDump != "" {
		if err := brain.SaveSnapshot(p.BrainDump, sess.engine.Snapshot()); err != nil {
			return fail(err)
		}
	}
	if store != nil {
		rec, err := persist(store, sess.runID, sess.origin, sess.engine, out.FinalStats)
		if err != nil {
			return fail(err)
		}
		out.VersionID = rec.VersionID
	}
	return out
}
