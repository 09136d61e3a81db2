package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mudler/xlog"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/wneura/internal/engine"
	"github.com/danielpatrickdp/wneura/internal/eval"
	"github.com/danielpatrickdp/wneura/internal/signals"
	"github.com/danielpatrickdp/wneura/internal/state"
)

type therapyTimeline struct {
	Step     []int     `json:"step"`
	Agency   []float64 `json:"agency"`
	Cortisol []float64 `json:"cortisol"`
	Phase    []string  `json:"phase"`
}

type therapyResult struct {
	Experiment string `json:"experiment"`
	Parameters struct {
		RepairRate float64 `json:"repair_rate"`
	} `json:"parameters"`
	Result     eval.Status `json:"result"`
	PostTrauma float64     `json:"post_trauma_agency"`
	FinalStats struct {
		Agency float64 `json:"agency"`
	} `json:"final_stats"`
	Timeline  therapyTimeline `json:"timeline"`
	VersionID string          `json:"version_id,omitempty"`
}

func newTherapyCmd(opts *rootOptions) *cobra.Command {
	var (
		repairs      []float64
		traumaSteps  int
		therapySteps int
		seed         int64
		logDir       string
	)

	cmd := &cobra.Command{
		Use:   "therapy",
		Short: "Trauma induction followed by therapy, once per repair rate",
		RunE: func(cmd *cobra.Command, args []string) error {
			if traumaSteps < 0 || therapySteps < 1 {
				return fmt.Errorf("need trauma-steps >= 0 and therapy-steps >= 1")
			}
			store, err := opts.openStore()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			results := make([]therapyResult, 0, len(repairs))
			for _, r := range repairs {
				cfg := engine.DefaultConfig()
				cfg.Brain = opts.brainConfig()
				cfg.Brain.InitialAgency = 1.0
				cfg.Brain.RepairRate = r
				cfg.Seed = seed

				pc := signals.DefaultProducerConfig()
				pc.TraumaSteps = traumaSteps
				res, err := runTherapySession(cfg, pc, therapySteps, store)
				if err != nil {
					return fmt.Errorf("therapy session repair=%v: %w", r, err)
				}
				xlog.Info("Therapy session finished", "repair_rate", r,
					"post_trauma_agency", res.PostTrauma, "final_agency", res.FinalStats.Agency, "status", res.Result)

				if logDir != "" {
					name := "therapy_result_" + strings.ReplaceAll(res.Experiment, " ", "_") + ".json"
					data, err := jsonBytes(res)
					if err != nil {
						return err
					}
					if err := os.WriteFile(filepath.Join(logDir, name), data, 0o644); err != nil {
						return fmt.Errorf("write therapy log: %w", err)
					}
				}
				results = append(results, res)
			}
			return printJSON(cmd.OutOrStdout(), results)
		},
	}

	f := cmd.Flags()
	f.Float64SliceVar(&repairs, "repair", []float64{0.01, 0.05}, "Repair rates to compare, one session each")
	f.IntVar(&traumaSteps, "trauma-steps", 40, "Steps of random punishment")
	f.IntVar(&therapySteps, "therapy-steps", 40, "Steps of constant reward")
	f.Int64Var(&seed, "seed", 0, "Random seed (0 seeds from the clock)")
	f.StringVar(&logDir, "log-dir", "", "Also write one therapy_result_*.json per session here")
	return cmd
}

func runTherapySession(cfg engine.Config, pc signals.ProducerConfig, therapySteps int, store *state.Store) (therapyResult, error) {
	sess, err := newSession(cfg, signals.ScenarioTraumaTherapy, pc, store)
	if err != nil {
		return therapyResult{}, err
	}

	var res therapyResult
	res.Experiment = fmt.Sprintf("repair %g", cfg.Brain.RepairRate)
	res.Parameters.RepairRate = cfg.Brain.RepairRate
	res.PostTrauma = sess.engine.Snapshot().Agency

	total := pc.TraumaSteps + therapySteps
	for t := 0; t < total; t++ {
		sig, report, err := sess.step(t)
		if err != nil {
			return therapyResult{}, err
		}
		res.Timeline.Step = append(res.Timeline.Step, t)
		res.Timeline.Agency = append(res.Timeline.Agency, report.Learner.Agency)
		res.Timeline.Cortisol = append(res.Timeline.Cortisol, report.Learner.Cortisol)
		res.Timeline.Phase = append(res.Timeline.Phase, sig.Phase)
		if t == pc.TraumaSteps-1 {
			res.PostTrauma = report.Learner.Agency
		}
	}

	final := sess.engine.Snapshot().Agency
	res.FinalStats.Agency = final
	res.Result = eval.NewEvalHarness(eval.DefaultEvalConfig()).RecoveryStatus(final)

	if store != nil {
		rec, err := persist(store, sess.runID, sess.origin, sess.engine, map[string]interface{}{
			"repair_rate": res.Parameters.RepairRate,
			"status":      res.Result,
		})
		if err != nil {
			return therapyResult{}, err
		}
		res.VersionID = rec.VersionID
	}
	return res, nil
}
