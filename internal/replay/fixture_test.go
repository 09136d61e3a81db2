package replay

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/wneura/internal/brain"
	"github.com/danielpatrickdp/wneura/internal/eval"
)

// #region fixture-tests

// runFixture loads a fixture, replays it and checks every expected result.
func runFixture(t *testing.T, name string) ([]Result, Summary) {
	t.Helper()
	f, err := LoadFixture(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	e, err := f.NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	results := Replay(e, f.Interactions)
	if len(results) != len(f.ExpectedResults) {
		t.Fatalf("expected %d results, got %d", len(f.ExpectedResults), len(results))
	}

	for i, expected := range f.ExpectedResults {
		actual := results[i]
		if actual.ID != expected.ID {
			t.Errorf("step %d: expected id=%s, got %s", i, expected.ID, actual.ID)
		}
		if actual.Action != expected.Action {
			t.Errorf("step %d (%s): expected action=%s, got action=%s (reason: %s)",
				i, expected.ID, expected.Action, actual.Action, actual.Reason)
			continue
		}
		if expected.NewValue != nil {
			got := actual.Report.Learner.NewValue
			if math.Abs(got-*expected.NewValue) > 1e-9 {
				t.Errorf("step %d (%s): expected new_value=%v, got %v", i, expected.ID, *expected.NewValue, got)
			}
		}
	}

	summary := Summarize(results, e.Snapshot())
	if f.ExpectedStatus != "" && string(summary.Status) != f.ExpectedStatus {
		t.Errorf("expected status %s, got %s (agency %.4f)", f.ExpectedStatus, summary.Status, summary.Final.Agency)
	}
	return results, summary
}

func TestFixture_Golden(t *testing.T) {
	results, summary := runFixture(t, "golden.json")

	if summary.Accepted != 3 || summary.Rejected != 2 {
		t.Fatalf("expected 3 accepted / 2 rejected, got %+v", summary)
	}
	if results[0].Report.Learner.PredictionError != 5.0 {
		t.Errorf("expected prediction error 5.0, got %v", results[0].Report.Learner.PredictionError)
	}
	if summary.Final.Agency != 1.0 {
		t.Errorf("expected agency to stay at 1.0 with threshold 1.0, got %v", summary.Final.Agency)
	}
}

func TestFixture_Trauma(t *testing.T) {
	_, summary := runFixture(t, "trauma.json")

	if summary.Final.Agency >= 0.2 {
		t.Errorf("expected agency collapse below 0.2, got %.4f", summary.Final.Agency)
	}
	if summary.Final.Cortisol <= 0.6 {
		t.Errorf("expected cortisol above threshold, got %.4f", summary.Final.Cortisol)
	}
}

func TestLoadFixture_DefaultsBrainKeys(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "golden.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if f.Config.Brain.StressThreshold != 1.0 {
		t.Errorf("expected stress_threshold 1.0, got %v", f.Config.Brain.StressThreshold)
	}
	if f.Config.Brain.ErosionRate != 0.05 || f.Config.Brain.BaseLearningRate != 0.1 {
		t.Errorf("expected absent keys to keep defaults, got %+v", f.Config.Brain)
	}
}

func TestLoadFixture_NotFound(t *testing.T) {
	_, err := LoadFixture("testdata/nonexistent.json")
	if err == nil {
		t.Fatal("expected error for missing fixture")
	}
}

func TestLoadFixture_Malformed(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(tmp, []byte(`{invalid json`), 0644); err != nil {
		t.Fatalf("write temp: %v", err)
	}
	_, err := LoadFixture(tmp)
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestFixture_NewEngineRejectsBadConfig(t *testing.T) {
	f := &Fixture{Config: FixtureConfig{Actions: 0}}
	if _, err := f.NewEngine(); err == nil {
		t.Fatal("expected error for zero-valued brain config")
	}
}

// #endregion fixture-tests

// #region harness-tests

func TestFixture_StartStateRestored(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "golden.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	f.StartValues = []float64{4.0, 0}
	e, err := f.NewEngine()
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	results := Replay(e, f.Interactions[:1])
	if got := results[0].Report.Learner.PredictionError; got != 1.0 {
		t.Fatalf("expected prediction error 1.0 from restored value 4.0, got %v", got)
	}
}

func TestReplay_Deterministic(t *testing.T) {
	_, a := runFixture(t, "trauma.json")
	_, b := runFixture(t, "trauma.json")
	if a.Final != b.Final {
		t.Fatalf("replay not deterministic:\n%+v\n%+v", a.Final, b.Final)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, brain.Snapshot{})
	if s.Total != 0 || s.Accepted != 0 || s.Rejected != 0 {
		t.Fatalf("expected empty summary, got %+v", s)
	}
	if s.Status != eval.StatusFailed {
		t.Fatalf("expected failed status for zero agency, got %s", s.Status)
	}
}

// #endregion harness-tests
