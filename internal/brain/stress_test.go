package brain

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/danielpatrickdp/wneura/internal/bounds"
)

const eps = 1e-12

func TestStressFirstStep(t *testing.T) {
	s := NewStressState(DefaultStressConfig())

	c, err := s.Update(0.1)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	// resistance recovers first (cortisol 0 <= 0.8), then synthesis uses it
	wantRes := 1.01
	if math.Abs(s.Resistance()-wantRes) > eps {
		t.Fatalf("expected resistance %.4f, got %.12f", wantRes, s.Resistance())
	}
	wantC := 0.5 / 1.01 * 0.1
	if math.Abs(c-wantC) > eps {
		t.Fatalf("expected cortisol %.12f, got %.12f", wantC, c)
	}
}

func TestStressBurnoutAmplifiesGain(t *testing.T) {
	s := NewStressState(DefaultStressConfig())
	s.Restore(0.9, MinResistance)

	c, err := s.Update(0.1)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	// cortisol 0.9 > 0.8 erodes resistance, which is already at the floor
	if s.Resistance() != MinResistance {
		t.Fatalf("expected resistance at floor, got %f", s.Resistance())
	}
	want := 0.9*0.95 + (0.5/MinResistance)*0.1
	if math.Abs(c-want) > eps {
		t.Fatalf("expected cortisol %.12f, got %.12f", want, c)
	}
}

func TestStressResistanceErodesUnderSustainedStress(t *testing.T) {
	s := NewStressState(DefaultStressConfig())
	for i := 0; i < 20; i++ {
		if _, err := s.Update(5); err != nil {
			t.Fatalf("Update: %v", err)
		}
	}
	if s.Cortisol() != 1 {
		t.Fatalf("expected saturated cortisol, got %f", s.Cortisol())
	}
	if s.Resistance() >= 1.0 {
		t.Fatalf("expected eroded resistance, got %f", s.Resistance())
	}
}

func TestStressClippingInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	configs := []StressConfig{
		DefaultStressConfig(),
		{CortisolDecay: 0.5, AmygdalaGain: 3.0},
		{CortisolDecay: 0.999, AmygdalaGain: 0.01},
	}

	for ci, cfg := range configs {
		s := NewStressState(cfg)
		for i := 0; i < 10000; i++ {
			// mostly small surprises with occasional spikes
			surprise := rng.ExpFloat64()
			if rng.Intn(20) == 0 {
				surprise *= 50
			}
			c, err := s.Update(surprise)
			if err != nil {
				t.Fatalf("config %d step %d: %v", ci, i, err)
			}
			if c < 0 || c > 1 {
				t.Fatalf("config %d step %d: cortisol %f out of [0,1]", ci, i, c)
			}
			if r := s.Resistance(); r < MinResistance || r > MaxResistance {
				t.Fatalf("config %d step %d: resistance %f out of range", ci, i, r)
			}
		}
	}
}

func TestStressRejectsNonFinite(t *testing.T) {
	s := NewStressState(DefaultStressConfig())
	before := s.Reading()

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := s.Update(v)
		if !errors.Is(err, bounds.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %v, got %v", v, err)
		}
	}
	if s.Reading() != before {
		t.Fatal("state mutated by rejected input")
	}
}

func TestStressConfigWarnings(t *testing.T) {
	if w := DefaultStressConfig().Warnings(); len(w) != 0 {
		t.Fatalf("expected no warnings, got %v", w)
	}
	if w := (StressConfig{CortisolDecay: 1.0, AmygdalaGain: 0.5}).Warnings(); len(w) != 1 {
		t.Fatalf("expected 1 warning for decay=1, got %v", w)
	}
}
