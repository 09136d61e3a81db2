package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/wneura/internal/brain"
	"github.com/danielpatrickdp/wneura/internal/config"
	"github.com/danielpatrickdp/wneura/internal/engine"
	"github.com/danielpatrickdp/wneura/internal/gate"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string                  `json:"description"`
	Config          FixtureConfig           `json:"config"`
	Start           *brain.Snapshot         `json:"start,omitempty"`
	StartValues     []float64               `json:"start_values,omitempty"`
	Interactions    []Interaction           `json:"interactions"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results"`
	ExpectedStatus  string                  `json:"expected_status,omitempty"`
}

// FixtureConfig is the engine configuration for a replay run. Brain keys absent
// from the file keep their defaults; an absent gate vetoes only invalid input.
type FixtureConfig struct {
	Brain   config.BrainConfig `json:"brain"`
	Gate    gate.GateConfig    `json:"gate"`
	Actions int                `json:"actions"`
	Seed    int64              `json:"seed"`
}

// FixtureExpectedResult captures the expected outcome per interaction.
type FixtureExpectedResult struct {
	ID       string   `json:"id"`
	Action   string   `json:"action"`
	NewValue *float64 `json:"new_value,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	f := Fixture{Config: FixtureConfig{Brain: config.Default(), Actions: 1, Seed: 1}}
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// NewEngine builds the engine described by the fixture and restores its start
// state, if any.
func (f *Fixture) NewEngine() (*engine.Engine[json.RawMessage], error) {
	cfg := engine.DefaultConfig()
	cfg.Brain = f.Config.Brain
	cfg.Gate = f.Config.Gate
	cfg.Actions = f.Config.Actions
	cfg.Seed = f.Config.Seed

	e, err := engine.New[json.RawMessage](cfg)
	if err != nil {
		return nil, fmt.Errorf("fixture engine: %w", err)
	}
	if f.Start != nil || f.StartValues != nil {
		start := e.Snapshot()
		if f.Start != nil {
			start = *f.Start
		}
		if err := e.Restore(start, f.StartValues); err != nil {
			return nil, fmt.Errorf("fixture engine: %w", err)
		}
	}
	return e, nil
}

// #endregion fixture-loader
