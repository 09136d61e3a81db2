package gate

import (
	"errors"
	"math"
	"testing"

	"github.com/danielpatrickdp/wneura/internal/bounds"
	"github.com/danielpatrickdp/wneura/internal/brain"
	"github.com/danielpatrickdp/wneura/internal/learner"
)

func makeInput() Input {
	return Input{
		Action:       0,
		Actions:      2,
		Reward:       1,
		StressSignal: 0.2,
		Expected:     0,
		Agency:       1,
		Cortisol:     0,
	}
}

func TestGateAcceptOnCleanInput(t *testing.T) {
	g := NewGate(DefaultGateConfig())

	decision := g.Evaluate(makeInput())

	if decision.Action != "accept" {
		t.Fatalf("expected accept, got %s: %s", decision.Action, decision.Reason)
	}
	if decision.Vetoed {
		t.Fatal("should not be vetoed")
	}
	if err := decision.Err(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestGateRejectOnActionRange(t *testing.T) {
	g := NewGate(DefaultGateConfig())

	for _, a := range []int{-1, 2} {
		in := makeInput()
		in.Action = a
		decision := g.Evaluate(in)

		if decision.Action != "reject" {
			t.Fatalf("action %d: expected reject, got %s", a, decision.Action)
		}
		if decision.VetoSignals[0].Type != VetoActionRange {
			t.Fatalf("expected VetoActionRange, got %s", decision.VetoSignals[0].Type)
		}
		if !errors.Is(decision.Err(), learner.ErrInvalidAction) {
			t.Fatalf("expected ErrInvalidAction, got %v", decision.Err())
		}
	}
}

func TestGateRejectOnNonFinite(t *testing.T) {
	g := NewGate(DefaultGateConfig())
	in := makeInput()
	in.StressSignal = math.NaN()

	decision := g.Evaluate(in)

	if !decision.Vetoed {
		t.Fatal("should be vetoed")
	}
	if decision.VetoSignals[0].Type != VetoNonFinite {
		t.Fatalf("expected VetoNonFinite, got %s", decision.VetoSignals[0].Type)
	}
	if !errors.Is(decision.Err(), bounds.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", decision.Err())
	}
}

func TestGateRejectOnRewardBound(t *testing.T) {
	config := DefaultGateConfig()
	config.MaxAbsReward = 10
	g := NewGate(config)
	in := makeInput()
	in.Reward = -11

	decision := g.Evaluate(in)

	if decision.Action != "reject" {
		t.Fatalf("expected reject for large reward, got %s: %s", decision.Action, decision.Reason)
	}
	if decision.VetoSignals[0].Type != VetoRewardBound {
		t.Fatalf("expected VetoRewardBound, got %s", decision.VetoSignals[0].Type)
	}
}

func TestGateZeroBoundDisablesCheck(t *testing.T) {
	g := NewGate(GateConfig{})
	in := makeInput()
	in.Reward = 1e9
	in.StressSignal = -1e9

	if decision := g.Evaluate(in); decision.Vetoed {
		t.Fatalf("expected accept with disabled caps, got %s", decision.Reason)
	}
}

func TestGateMultipleVetoes(t *testing.T) {
	g := NewGate(DefaultGateConfig())
	in := makeInput()
	in.Action = 9
	in.Reward = math.Inf(-1)

	decision := g.Evaluate(in)

	if decision.Action != "reject" {
		t.Fatalf("expected reject, got %s", decision.Action)
	}
	if len(decision.VetoSignals) < 2 {
		t.Fatalf("expected at least 2 veto signals, got %d", len(decision.VetoSignals))
	}
	// the action range is checked first, as the learner does
	if !errors.Is(decision.Err(), learner.ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction first, got %v", decision.Err())
	}
	if errors.Is(decision.Err(), bounds.ErrInvalidInput) {
		t.Fatalf("expected a single sentinel, got %v", decision.Err())
	}
}

func TestGateMatchesLearnerOnNaNRewardBadAction(t *testing.T) {
	g := NewGate(DefaultGateConfig())
	in := makeInput()
	in.Action = -1
	in.Reward = math.NaN()

	l, err := learner.New(learner.Config{Actions: 2, BaseLearningRate: 0.1, HistoryLimit: 10},
		brain.DefaultStressConfig(), brain.DefaultAgencyConfig(), nil)
	if err != nil {
		t.Fatalf("learner.New: %v", err)
	}
	_, learnErr := l.Update(in.Action, in.Reward)

	gateErr := g.Evaluate(in).Err()
	if !errors.Is(gateErr, learner.ErrInvalidAction) || !errors.Is(learnErr, learner.ErrInvalidAction) {
		t.Fatalf("expected both to report ErrInvalidAction, gate=%v learner=%v", gateErr, learnErr)
	}
}

func TestDefaultGateAcceptsLargeFiniteMagnitudes(t *testing.T) {
	g := NewGate(DefaultGateConfig())
	in := makeInput()
	in.Reward = 5000
	in.StressSignal = -1e12

	decision := g.Evaluate(in)
	if decision.Vetoed {
		t.Fatalf("expected accept for finite magnitudes, got %s", decision.Reason)
	}
}

func TestSoftScoreRange(t *testing.T) {
	g := NewGate(DefaultGateConfig())
	for _, in := range []Input{
		{Actions: 1, Reward: 0, Expected: 0, Agency: 1, Cortisol: 0},
		{Actions: 1, Reward: 500, Expected: -500, Agency: 0, Cortisol: 1},
		{Actions: 1, Reward: 1, Agency: 7, Cortisol: -3},
	} {
		decision := g.Evaluate(in)
		if decision.SoftScore < 0 || decision.SoftScore > 1.0 {
			t.Fatalf("soft score %.4f out of [0, 1] range for %+v", decision.SoftScore, in)
		}
	}
}

func TestSoftScoreCalmExpected(t *testing.T) {
	score := computeSoftScore(Input{Reward: 2, Expected: 2, Agency: 1, Cortisol: 0})

	// familiarity 0.4 + calm 0.3 + agency 0.3 = 1.0
	if math.Abs(score-1.0) > 1e-12 {
		t.Errorf("expected 1.0, got %.4f", score)
	}
}

func TestSoftScoreStressedSurprised(t *testing.T) {
	score := computeSoftScore(Input{Reward: 5, Expected: 1, Agency: 0.5, Cortisol: 1})

	// familiarity 0.4/5 = 0.08 + calm 0 + agency 0.15 = 0.23
	if math.Abs(score-0.23) > 1e-12 {
		t.Errorf("expected 0.23, got %.4f", score)
	}
}
