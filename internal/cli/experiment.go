package cli

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/mudler/xlog"
	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/wneura/internal/config"
	"github.com/danielpatrickdp/wneura/internal/engine"
)

// arm is one agent in a comparison experiment.
type arm struct {
	name   string
	brain  config.BrainConfig
	reward func(t int, rng *rand.Rand) float64
}

type experiment struct {
	steps      int
	switchStep int // 0 when the reward schedule never changes
	arms       func(base config.BrainConfig) []arm
}

var experiments = map[string]experiment{
	// Agency damaged by 100 punishing steps stays damaged through 100 neutral ones.
	"hysteresis": {
		steps:      200,
		switchStep: 100,
		arms: func(base config.BrainConfig) []arm {
			b := base
			b.ErosionRate = 0.1
			b.RepairRate = 0.02
			punish := []float64{-1, -5, -2}
			return []arm{{name: "agent", brain: b, reward: func(t int, rng *rand.Rand) float64 {
				if t < 100 {
					return punish[rng.Intn(len(punish))]
				}
				return 0
			}}}
		},
	},
	// Uncertainty alone does not erode agency; helplessness stops learning a sure reward.
	"dissociation": {
		steps: 100,
		arms: func(base config.BrainConfig) []arm {
			healthy, helpless := base, base
			healthy.ErosionRate = 0
			helpless.InitialAgency = 0.01
			return []arm{
				{name: "healthy", brain: healthy, reward: func(_ int, rng *rand.Rand) float64 {
					return float64(rng.Intn(11) - 5)
				}},
				{name: "helpless", brain: helpless, reward: func(int, *rand.Rand) float64 { return 2 }},
			}
		},
	},
	// A helpless agent misses the switch from a poor to a rich contingency.
	"contingency": {
		steps:      100,
		switchStep: 50,
		arms: func(base config.BrainConfig) []arm {
			healthy, helpless := base, base
			healthy.InitialAgency = 1.0
			healthy.RepairRate = 0
			helpless.InitialAgency = 0
			helpless.RepairRate = 0.01
			schedule := func(t int, _ *rand.Rand) float64 {
				if t < 50 {
					return 0.1
				}
				return 10
			}
			return []arm{
				{name: "healthy", brain: healthy, reward: schedule},
				{name: "helpless", brain: helpless, reward: schedule},
			}
		},
	},
}

type armResult struct {
	Name        string             `json:"name"`
	Config      config.BrainConfig `json:"config"`
	Value       []float64          `json:"q"`
	Agency      []float64          `json:"agency"`
	Cortisol    []float64          `json:"cortisol"`
	FinalValue  float64            `json:"final_q"`
	FinalAgency float64            `json:"final_agency"`
}

type experimentOutput struct {
	Experiment string      `json:"experiment"`
	Steps      int         `json:"steps"`
	SwitchStep int         `json:"switch_step,omitempty"`
	Arms       []armResult `json:"arms"`
}

func experimentNames() []string {
	names := make([]string, 0, len(experiments))
	for name := range experiments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newExperimentCmd(opts *rootOptions) *cobra.Command {
	var seed int64

	cmd := &cobra.Command{
		Use:       "experiment <name>",
		Short:     "Compare single-action agents under a fixed reward schedule",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: experimentNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			exp := experiments[args[0]]
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			out, err := runExperiment(args[0], exp, opts.brainConfig(), seed)
			if err != nil {
				return err
			}
			for _, a := range out.Arms {
				xlog.Info("Experiment arm finished", "experiment", out.Experiment, "arm", a.Name,
					"final_q", a.FinalValue, "final_agency", a.FinalAgency)
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 seeds from the clock)")
	return cmd
}

func runExperiment(name string, exp experiment, base config.BrainConfig, seed int64) (experimentOutput, error) {
	out := experimentOutput{Experiment: name, Steps: exp.steps, SwitchStep: exp.switchStep}
	for i, a := range exp.arms(base) {
		cfg := engine.DefaultConfig()
		cfg.Brain = a.brain
		cfg.Seed = seed + int64(i)
		e, err := engine.New[int](cfg)
		if err != nil {
			return experimentOutput{}, fmt.Errorf("arm %s: %w", a.name, err)
		}
		rng := rand.New(rand.NewSource(seed + int64(i) + 100))

		res := armResult{Name: a.name, Config: a.brain}
		for t := 0; t < exp.steps; t++ {
			report, err := e.Step(engine.StepInput[int]{
				Action:      e.SelectAction(explorationRate),
				Reward:      a.reward(t, rng),
				ActionTaken: true,
				State:       t,
			})
			if err != nil {
				return experimentOutput{}, fmt.Errorf("arm %s: %w", a.name, err)
			}
			res.Value = append(res.Value, report.Learner.NewValue)
			res.Agency = append(res.Agency, report.Learner.Agency)
			res.Cortisol = append(res.Cortisol, report.Learner.Cortisol)
		}
		res.FinalValue = res.Value[len(res.Value)-1]
		res.FinalAgency = res.Agency[len(res.Agency)-1]
		out.Arms = append(out.Arms, res)
	}
	return out, nil
}
