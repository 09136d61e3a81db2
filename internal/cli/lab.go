package cli

import (
	"github.com/mudler/xlog"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/wneura/internal/engine"
	"github.com/danielpatrickdp/wneura/internal/eval"
	"github.com/danielpatrickdp/wneura/internal/signals"
)

// Coefficients of the hustle/burnout/recovery experiment.
const (
	labStressThreshold = 0.5
	labErosionRate     = 0.05
	labRepairRate      = 0.02
)

type labRow struct {
	Step            int     `json:"step"`
	Phase           string  `json:"phase"`
	Cortisol        float64 `json:"cortisol"`
	Agency          float64 `json:"agency"`
	EffectiveReward float64 `json:"effective_reward"`
	ReceptorHealth  float64 `json:"receptor_health"`
}

type labOutput struct {
	Timeline            []labRow        `json:"timeline"`
	FinalAgency         float64         `json:"final_agency"`
	FinalReceptorHealth float64         `json:"final_receptor_health"`
	ReceptorTolerance   bool            `json:"receptor_tolerance"`
	AgencyCollapse      bool            `json:"agency_collapse"`
	Eval                eval.EvalResult `json:"eval"`
	VersionID           string          `json:"version_id,omitempty"`
}

func newLabCmd(opts *rootOptions) *cobra.Command {
	var (
		steps int
		seed  int64
	)

	cmd := &cobra.Command{
		Use:   "lab",
		Short: "Hustle, burnout and recovery with receptor chemistry",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			cfg := engine.DefaultConfig()
			cfg.Brain = opts.brainConfig()
			cfg.Brain.StressThreshold = labStressThreshold
			cfg.Brain.ErosionRate = labErosionRate
			cfg.Brain.RepairRate = labRepairRate
			cfg.Seed = seed

			sess, err := newSession(cfg, signals.ScenarioHustleBurnout, signals.DefaultProducerConfig(), store)
			if err != nil {
				return err
			}
			sess.lab = true

			var out labOutput
			for t := 0; t < steps; t++ {
				sig, report, err := sess.step(t)
				if err != nil {
					return err
				}
				out.Timeline = append(out.Timeline, labRow{
					Step:            t,
					Phase:           sig.Phase,
					Cortisol:        report.Learner.Cortisol,
					Agency:          report.Learner.Agency,
					EffectiveReward: report.Chemistry.EffectiveReward,
					ReceptorHealth:  report.Chemistry.ReceptorHealth,
				})
			}

			evalCfg := eval.DefaultEvalConfig()
			health := sess.engine.Health()
			out.FinalAgency = health.Agency
			out.FinalReceptorHealth = health.ReceptorHealth
			out.ReceptorTolerance = health.ReceptorHealth < evalCfg.MinReceptorHealth
			out.AgencyCollapse = health.Agency < evalCfg.MinAgency
			out.Eval = eval.NewEvalHarness(evalCfg).Run(health)

			if out.ReceptorTolerance {
				xlog.Warn("Receptor tolerance detected", "receptor_health", out.FinalReceptorHealth)
			}
			if out.AgencyCollapse {
				xlog.Warn("Agency collapse detected", "agency", out.FinalAgency)
			}

			if store != nil {
				rec, err := persist(store, sess.runID, sess.origin, sess.engine, out.Eval)
				if err != nil {
					return err
				}
				out.VersionID = rec.VersionID
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 90, "Total steps across the three phases")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 seeds from the clock)")
	return cmd
}
