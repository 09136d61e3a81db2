package engine_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/danielpatrickdp/wneura/internal/bounds"
	"github.com/danielpatrickdp/wneura/internal/brain"
	"github.com/danielpatrickdp/wneura/internal/chemistry"
	"github.com/danielpatrickdp/wneura/internal/engine"
	"github.com/danielpatrickdp/wneura/internal/learner"
)

type cell struct{ Row, Col int }

var _ = Describe("Engine", func() {
	var (
		cfg engine.Config
		e   *engine.Engine[cell]
	)

	BeforeEach(func() {
		cfg = engine.DefaultConfig()
		cfg.Actions = 2
		cfg.Seed = 42
		var err error
		e, err = engine.New[cell](cfg)
		Expect(err).ToNot(HaveOccurred())
	})

	Describe("Step", func() {
		It("advances learner, chemistry and memory together", func() {
			report, err := e.Step(engine.StepInput[cell]{
				Action:       0,
				Reward:       5,
				StressSignal: 0.2,
				ActionTaken:  true,
				State:        cell{Row: 1, Col: 2},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(report.Step).To(Equal(0))
			Expect(report.Learner.PredictionError).To(Equal(5.0))
			Expect(report.Chemistry.ReceptorHealth).To(BeNumerically("~", 0.99, 1e-12))
			Expect(report.Encoded).To(BeTrue())
			Expect(report.MemorySize).To(Equal(1))
			Expect(e.StepCount()).To(Equal(1))

			traces := e.Traces()
			Expect(traces).To(HaveLen(1))
			Expect(traces[0].State).To(Equal(cell{Row: 1, Col: 2}))
		})

		It("rejects an out-of-range action without touching state", func() {
			before := e.Snapshot()
			_, err := e.Step(engine.StepInput[cell]{Action: 2, Reward: 1})
			Expect(err).To(MatchError(learner.ErrInvalidAction))
			_, err = e.Step(engine.StepInput[cell]{Action: -1, Reward: 1})
			Expect(err).To(MatchError(learner.ErrInvalidAction))

			Expect(e.Snapshot()).To(Equal(before))
			Expect(e.StepCount()).To(Equal(0))
			Expect(e.Traces()).To(BeEmpty())
		})

		It("rejects non-finite signals with ErrInvalidInput", func() {
			_, err := e.Step(engine.StepInput[cell]{Action: 0, Reward: math.NaN()})
			Expect(err).To(MatchError(bounds.ErrInvalidInput))
			_, err = e.Step(engine.StepInput[cell]{Action: 0, Reward: 1, StressPulse: math.Inf(1)})
			Expect(err).To(MatchError(bounds.ErrInvalidInput))
			Expect(e.History()).To(BeEmpty())
		})

		It("drives chemistry from cortisol when asked", func() {
			report, err := e.Step(engine.StepInput[cell]{
				Action:      0,
				Reward:      -5,
				UseCortisol: true,
				ActionTaken: true,
			})
			Expect(err).ToNot(HaveOccurred())
			// cortisol saturates on a surprise of 5, so mood is depleted
			Expect(report.Cortisol).To(Equal(1.0))
			Expect(report.Chemistry.MoodLevel).To(BeNumerically("<", 1.0))
		})

		It("reads cortisol for chemistry before the stress pulse lands", func() {
			report, err := e.Step(engine.StepInput[cell]{
				Action:      0,
				Reward:      0.5,
				UseCortisol: true,
				StressPulse: 1.0,
				ActionTaken: true,
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(report.Cortisol).To(BeNumerically(">", report.Learner.Cortisol))

			want, err := chemistry.New(cfg.Chemistry).Update(0.5, report.Learner.Cortisol, true)
			Expect(err).ToNot(HaveOccurred())
			Expect(report.Chemistry).To(Equal(want))
		})

		It("accepts large finite rewards by default", func() {
			report, err := e.Step(engine.StepInput[cell]{Action: 0, Reward: 5000})
			Expect(err).ToNot(HaveOccurred())
			Expect(report.Learner.PredictionError).To(Equal(5000.0))
		})

		It("applies an external stress pulse after learning", func() {
			calm, err := engine.New[cell](cfg)
			Expect(err).ToNot(HaveOccurred())
			pulsed, err := engine.New[cell](cfg)
			Expect(err).ToNot(HaveOccurred())

			a, err := calm.Step(engine.StepInput[cell]{Action: 0, Reward: 0.1})
			Expect(err).ToNot(HaveOccurred())
			b, err := pulsed.Step(engine.StepInput[cell]{Action: 0, Reward: 0.1, StressPulse: 0.5})
			Expect(err).ToNot(HaveOccurred())

			Expect(b.Learner.Cortisol).To(Equal(a.Learner.Cortisol))
			Expect(b.Cortisol).To(BeNumerically(">", a.Cortisol))
			Expect(pulsed.Snapshot().Cortisol).To(Equal(b.Cortisol))
		})
	})

	Describe("Hysteresis", func() {
		It("does not undo stress damage in an equal number of good steps", func() {
			cfg.Brain.ErosionRate = 0.1
			cfg.Brain.RepairRate = 0.02
			cfg.Brain.StressThreshold = 0.5
			e, err := engine.New[cell](cfg)
			Expect(err).ToNot(HaveOccurred())

			for i := 0; i < 100; i++ {
				_, err := e.Step(engine.StepInput[cell]{Action: 0, Reward: -5 - float64(i)})
				Expect(err).ToNot(HaveOccurred())
			}
			for i := 0; i < 100; i++ {
				_, err := e.Step(engine.StepInput[cell]{Action: 0, Reward: 5})
				Expect(err).ToNot(HaveOccurred())
			}
			Expect(e.Snapshot().Agency).To(BeNumerically("<", cfg.Brain.InitialAgency))
		})
	})

	Describe("Memory", func() {
		It("keeps at most the configured capacity", func() {
			cfg.Brain.MemoryCapacity = 4
			e, err := engine.New[cell](cfg)
			Expect(err).ToNot(HaveOccurred())
			for i := 0; i < 40; i++ {
				report, err := e.Step(engine.StepInput[cell]{Action: i % 2, Reward: float64(i%7) - 3})
				Expect(err).ToNot(HaveOccurred())
				Expect(report.MemorySize).To(BeNumerically("<=", 4))
			}
		})

		It("replays the most important traces first", func() {
			for _, r := range []float64{1, 8, 3} {
				_, err := e.Step(engine.StepInput[cell]{Action: 0, Reward: r})
				Expect(err).ToNot(HaveOccurred())
			}
			batch := e.ReplayBatch(5)
			Expect(batch).To(HaveLen(3))
			for i := 1; i < len(batch); i++ {
				Expect(batch[i-1].Importance).To(BeNumerically(">=", batch[i].Importance))
			}
		})

		It("prunes on decay only when asked", func() {
			cfg.Brain.MemoryDecayRate = 0.9
			e, err := engine.New[cell](cfg)
			Expect(err).ToNot(HaveOccurred())
			_, err = e.Step(engine.StepInput[cell]{Action: 0, Reward: 0.2})
			Expect(err).ToNot(HaveOccurred())
			Expect(e.Traces()).To(HaveLen(1))

			pruned := 0
			for i := 0; i < 10; i++ {
				pruned += e.DecayMemories()
			}
			Expect(pruned).To(Equal(1))
			Expect(e.Traces()).To(BeEmpty())
		})
	})

	Describe("Snapshot", func() {
		It("restores biological state and values", func() {
			snap := brain.Snapshot{Cortisol: 0.4, Agency: 0.3, Resistance: 0.9, RewardChemicalLevel: 1.7}
			Expect(e.Restore(snap, []float64{0.5, -0.5})).To(Succeed())

			Expect(e.Snapshot()).To(Equal(snap))
			Expect(e.Values()).To(Equal([]float64{0.5, -0.5}))
		})

		It("rejects a value table of the wrong size", func() {
			err := e.Restore(brain.DefaultLoadedSnapshot(), []float64{1})
			Expect(err).To(MatchError(bounds.ErrInvalidInput))
		})
	})

	Describe("Warnings", func() {
		It("surfaces disabled hysteresis without failing construction", func() {
			cfg.Brain.ErosionRate = 0.01
			cfg.Brain.RepairRate = 0.02
			e, err := engine.New[cell](cfg)
			Expect(err).ToNot(HaveOccurred())
			Expect(e.Warnings()).To(HaveLen(1))
			Expect(e.Warnings()[0]).To(ContainSubstring("hysteresis disabled"))
		})

		It("fails construction on an invalid configuration", func() {
			cfg.Brain.HistoryLimit = 0
			_, err := engine.New[cell](cfg)
			Expect(err).To(MatchError(bounds.ErrInvalidInput))
		})
	})
})
