package learner

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/danielpatrickdp/wneura/internal/bounds"
	"github.com/danielpatrickdp/wneura/internal/brain"
)

func newLearner(t *testing.T, agency brain.AgencyConfig) *ModulatedLearner {
	t.Helper()
	l, err := New(DefaultConfig(), brain.DefaultStressConfig(), agency, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l
}

// goldenAgency keeps the first step free of erosion: cortisol saturates at 1,
// which does not exceed a threshold of 1.
func goldenAgency() brain.AgencyConfig {
	cfg := brain.DefaultAgencyConfig()
	cfg.StressThreshold = 1.0
	cfg.InitialAgency = 1.0
	return cfg
}

func TestUpdateGoldenFirstStep(t *testing.T) {
	l := newLearner(t, goldenAgency())

	r, err := l.Update(0, 5)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if r.PredictionError != 5.0 {
		t.Errorf("prediction error: expected 5.0, got %v", r.PredictionError)
	}
	if r.NewValue != 0.5 {
		t.Errorf("new value: expected 0.5, got %v", r.NewValue)
	}
	if r.Agency != 1.0 || r.LearningStepSize != 0.1 {
		t.Errorf("expected agency 1.0 and step 0.1, got %v and %v", r.Agency, r.LearningStepSize)
	}
	if r.Cortisol != 1.0 {
		t.Errorf("expected saturated cortisol, got %v", r.Cortisol)
	}
}

func TestUpdateFirstStepWithDefaults(t *testing.T) {
	l := newLearner(t, brain.DefaultAgencyConfig())

	r, err := l.Update(0, 5)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	// gap 0.4: erosion 0.05*0.16*5 = 0.04, repair 0.01
	if math.Abs(r.Agency-0.97) > 1e-12 {
		t.Errorf("expected agency 0.97, got %v", r.Agency)
	}
	if math.Abs(r.NewValue-0.485) > 1e-12 {
		t.Errorf("expected new value 0.485, got %v", r.NewValue)
	}
}

func TestUpdateInvalidAction(t *testing.T) {
	l := newLearner(t, brain.DefaultAgencyConfig())

	for _, a := range []int{-1, l.Actions()} {
		_, err := l.Update(a, 0)
		if !errors.Is(err, ErrInvalidAction) {
			t.Fatalf("action %d: expected ErrInvalidAction, got %v", a, err)
		}
	}
	if len(l.History()) != 0 {
		t.Fatal("failed updates must not be recorded")
	}
	if l.Stress().Cortisol() != 0 {
		t.Fatal("failed updates must not touch stress")
	}
}

func TestUpdateRejectsNonFiniteReward(t *testing.T) {
	l := newLearner(t, brain.DefaultAgencyConfig())
	_, err := l.Update(0, math.NaN())
	if !errors.Is(err, bounds.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if v := l.Values(); v[0] != 0 {
		t.Fatalf("value table mutated: %v", v)
	}
}

func TestSelectActionShutdownAtZeroAgency(t *testing.T) {
	cfg := brain.DefaultAgencyConfig()
	cfg.InitialAgency = 0
	l, err := New(Config{Actions: 3, BaseLearningRate: 0.1, HistoryLimit: 10},
		brain.DefaultStressConfig(), cfg, rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := l.RestoreValues([]float64{0.2, 0.9, 0.1}); err != nil {
		t.Fatalf("RestoreValues: %v", err)
	}

	for i := 0; i < 5000; i++ {
		if a := l.SelectAction(1.0); a != 1 {
			t.Fatalf("trial %d: expected argmax 1, got %d", i, a)
		}
	}
}

func TestSelectActionTiesPickFirstIndex(t *testing.T) {
	cfg := brain.DefaultAgencyConfig()
	cfg.InitialAgency = 0
	l := newLearner(t, cfg)
	for i := 0; i < 100; i++ {
		if a := l.SelectAction(1.0); a != 0 {
			t.Fatalf("expected first index on ties, got %d", a)
		}
	}
}

func TestSelectActionExploresAtFullAgency(t *testing.T) {
	l, err := New(Config{Actions: 4, BaseLearningRate: 0.1, HistoryLimit: 10},
		brain.DefaultStressConfig(), brain.DefaultAgencyConfig(), rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	seen := map[int]bool{}
	for i := 0; i < 1000; i++ {
		seen[l.SelectAction(1.0)] = true
	}
	if len(seen) != 4 {
		t.Fatalf("expected every action explored, saw %v", seen)
	}
}

func TestZeroAgencyStopsLearning(t *testing.T) {
	cfg := brain.DefaultAgencyConfig()
	cfg.InitialAgency = 0
	l := newLearner(t, cfg)

	for i := 0; i < 10; i++ {
		r, err := l.Update(0, -5)
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if r.LearningStepSize != 0 || r.NewValue != 0 {
			t.Fatalf("step %d: expected no learning at agency 0, got %+v", i, r)
		}
	}
}

func TestHistoryBounded(t *testing.T) {
	l, err := New(Config{Actions: 2, BaseLearningRate: 0.1, HistoryLimit: 5},
		brain.DefaultStressConfig(), brain.DefaultAgencyConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 12; i++ {
		l.Update(i%2, float64(i))
	}
	h := l.History()
	if len(h) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(h))
	}
	if h[0].Reward != 7 || h[4].Reward != 11 {
		t.Fatalf("expected rewards 7..11, got first=%v last=%v", h[0].Reward, h[4].Reward)
	}
}

func TestWarningsSurfacedWithoutFailing(t *testing.T) {
	cfg := brain.DefaultAgencyConfig()
	cfg.ErosionRate = 0.01
	cfg.RepairRate = 0.05
	l := newLearner(t, cfg)
	if len(l.Warnings()) != 1 {
		t.Fatalf("expected 1 warning, got %v", l.Warnings())
	}
	if _, err := l.Update(0, 1); err != nil {
		t.Fatalf("learner should still run: %v", err)
	}
}

func TestNewRejectsEmptyTable(t *testing.T) {
	_, err := New(Config{Actions: 0, BaseLearningRate: 0.1}, brain.DefaultStressConfig(), brain.DefaultAgencyConfig(), nil)
	if !errors.Is(err, bounds.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRestoreValuesLengthMismatch(t *testing.T) {
	l := newLearner(t, brain.DefaultAgencyConfig())
	if err := l.RestoreValues([]float64{1, 2, 3}); !errors.Is(err, bounds.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
