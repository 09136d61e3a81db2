package signals

import (
	"errors"
	"math/rand"
	"testing"
)

func newProducer(s Scenario) *Producer {
	return NewProducer(s, DefaultProducerConfig(), rand.New(rand.NewSource(11)))
}

// #region scenario-tests

func TestParseScenario(t *testing.T) {
	for _, s := range Scenarios() {
		got, err := ParseScenario(string(s))
		if err != nil || got != s {
			t.Errorf("ParseScenario(%q) = %q, %v", s, got, err)
		}
	}
	if _, err := ParseScenario("panic"); !errors.Is(err, ErrUnknownScenario) {
		t.Fatalf("expected ErrUnknownScenario, got %v", err)
	}
}

func TestMixedRange(t *testing.T) {
	p := newProducer(ScenarioMixed)
	seen := map[float64]bool{}
	for i := 0; i < 2000; i++ {
		r := p.Next(i).Reward
		if r < -5 || r > 4 {
			t.Fatalf("mixed reward %v out of [-5, 4]", r)
		}
		seen[r] = true
	}
	if len(seen) != 10 {
		t.Errorf("expected all 10 integer rewards, saw %d", len(seen))
	}
}

func TestChaosAlwaysPunishes(t *testing.T) {
	p := newProducer(ScenarioChaos)
	for i := 0; i < 1000; i++ {
		if r := p.Next(i).Reward; r < -5 || r > -1 {
			t.Fatalf("chaos reward %v out of [-5, -1]", r)
		}
	}
}

func TestConstantScenarios(t *testing.T) {
	if r := newProducer(ScenarioTherapy).Next(0).Reward; r != 5 {
		t.Errorf("therapy: expected 5, got %v", r)
	}
	if r := newProducer(ScenarioStable).Next(0).Reward; r != 0 {
		t.Errorf("stable: expected 0, got %v", r)
	}
}

// #endregion scenario-tests

// #region phase-tests

func TestTraumaTherapyPhases(t *testing.T) {
	p := newProducer(ScenarioTraumaTherapy)
	for i := 0; i < 80; i++ {
		s := p.Next(i)
		if i < 40 {
			if s.Phase != "trauma" || s.Reward > -1 {
				t.Fatalf("step %d: expected trauma, got %+v", i, s)
			}
		} else if s.Phase != "therapy" || s.Reward != 5 {
			t.Fatalf("step %d: expected therapy, got %+v", i, s)
		}
	}
}

func TestHustleBurnoutPhases(t *testing.T) {
	p := newProducer(ScenarioHustleBurnout)
	for i := 0; i < 90; i++ {
		s := p.Next(i)
		switch {
		case i < 30:
			if s.Phase != "hustle" || s.Reward < 2 || s.Reward > 7 || s.Stress < 0.1 || s.Stress >= 0.4 {
				t.Fatalf("step %d: bad hustle signal %+v", i, s)
			}
		case i < 60:
			if s.Phase != "burnout" || s.Reward > -1 || s.Stress < 0.5 || s.Stress >= 0.9 {
				t.Fatalf("step %d: bad burnout signal %+v", i, s)
			}
		default:
			if s.Phase != "recovery" || s.Reward != 3 || s.Stress != 0 {
				t.Fatalf("step %d: bad recovery signal %+v", i, s)
			}
		}
	}
}

func TestDeterministicForSeed(t *testing.T) {
	a := NewProducer(ScenarioMixed, DefaultProducerConfig(), rand.New(rand.NewSource(5)))
	b := NewProducer(ScenarioMixed, DefaultProducerConfig(), rand.New(rand.NewSource(5)))
	for i := 0; i < 100; i++ {
		if a.Next(i) != b.Next(i) {
			t.Fatalf("step %d: producers diverged", i)
		}
	}
}

// #endregion phase-tests
