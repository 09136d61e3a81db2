// Package config is the flat coefficient set shared by the engine's
// subsystems, with JSON persistence and per-subsystem projections.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mudler/xlog"

	"github.com/danielpatrickdp/wneura/internal/bounds"
	"github.com/danielpatrickdp/wneura/internal/brain"
	"github.com/danielpatrickdp/wneura/internal/learner"
	"github.com/danielpatrickdp/wneura/internal/memory"
)

// #region brain-config

// BrainConfig is every named coefficient. It is passed by value and never
// mutated by the engine.
type BrainConfig struct {
	CortisolDecay    float64 `json:"cortisol_decay"`
	AmygdalaGain     float64 `json:"amygdala_gain"`
	StressThreshold  float64 `json:"stress_threshold"`
	BaseLearningRate float64 `json:"base_learning_rate"`
	InitialAgency    float64 `json:"initial_agency"`
	ErosionRate      float64 `json:"erosion_rate"`
	RepairRate       float64 `json:"repair_rate"`
	MasteryThreshold float64 `json:"mastery_threshold"`

	HistoryLimit    int     `json:"history_limit"`
	MemoryCapacity  int     `json:"memory_capacity"`
	MemoryDecayRate float64 `json:"memory_decay_rate"`
}

// Default returns the reference coefficients.
func Default() BrainConfig {
	return BrainConfig{
		CortisolDecay:    0.95,
		AmygdalaGain:     0.5,
		StressThreshold:  0.6,
		BaseLearningRate: 0.1,
		InitialAgency:    1.0,
		ErosionRate:      0.05,
		RepairRate:       0.01,
		MasteryThreshold: 0.1,
		HistoryLimit:     1000,
		MemoryCapacity:   50,
		MemoryDecayRate:  0.05,
	}
}

// #endregion brain-config

// #region projections

// Stress returns the coefficients read by StressState.
func (c BrainConfig) Stress() brain.StressConfig {
	return brain.StressConfig{
		CortisolDecay: c.CortisolDecay,
		AmygdalaGain:  c.AmygdalaGain,
	}
}

// Agency returns the coefficients read by AgencyState.
func (c BrainConfig) Agency() brain.AgencyConfig {
	return brain.AgencyConfig{
		StressThreshold:  c.StressThreshold,
		InitialAgency:    c.InitialAgency,
		ErosionRate:      c.ErosionRate,
		RepairRate:       c.RepairRate,
		MasteryThreshold: c.MasteryThreshold,
		HistoryLimit:     c.HistoryLimit,
	}
}

// Learner returns the learner coefficients for a table of the given size.
func (c BrainConfig) Learner(actions int) learner.Config {
	return learner.Config{
		Actions:          actions,
		BaseLearningRate: c.BaseLearningRate,
		HistoryLimit:     c.HistoryLimit,
	}
}

// Memory returns the episodic memory configuration.
func (c BrainConfig) Memory() memory.Config {
	m := memory.DefaultConfig()
	m.Capacity = c.MemoryCapacity
	m.DecayRate = c.MemoryDecayRate
	return m
}

// #endregion projections

// #region checks

// Warnings returns non-fatal problems with the coefficients.
func (c BrainConfig) Warnings() []string {
	out := c.Stress().Warnings()
	out = append(out, c.Agency().Warnings()...)
	if c.MemoryDecayRate < 0 || c.MemoryDecayRate >= 1 {
		out = append(out, fmt.Sprintf("memory_decay_rate %.4f is outside [0, 1)", c.MemoryDecayRate))
	}
	return out
}

// Validate rejects coefficients no subsystem can run with.
func (c BrainConfig) Validate() error {
	names := []string{
		"cortisol_decay", "amygdala_gain", "stress_threshold", "base_learning_rate",
		"initial_agency", "erosion_rate", "repair_rate", "mastery_threshold", "memory_decay_rate",
	}
	if err := bounds.Finite(names,
		c.CortisolDecay, c.AmygdalaGain, c.StressThreshold, c.BaseLearningRate,
		c.InitialAgency, c.ErosionRate, c.RepairRate, c.MasteryThreshold, c.MemoryDecayRate); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("validate config: %w: history_limit must be >= 1, got %d", bounds.ErrInvalidInput, c.HistoryLimit)
	}
	if c.MemoryCapacity < 1 {
		return fmt.Errorf("validate config: %w: memory_capacity must be >= 1, got %d", bounds.ErrInvalidInput, c.MemoryCapacity)
	}
	return nil
}

// HysteresisEnabled reports whether erosion outpaces repair.
func (c BrainConfig) HysteresisEnabled() bool {
	return c.Agency().HysteresisEnabled()
}

// #endregion checks

// #region persistence

// Load reads a config file over the defaults. Unknown keys are ignored and
// absent keys keep their default. A missing or corrupt file yields Default
// with a logged warning.
func Load(path string) BrainConfig {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			xlog.Warn("Config file not found, using defaults", "path", path)
		} else {
			xlog.Warn("Config file not readable, using defaults", "path", path, "error", err)
		}
		return cfg
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		xlog.Warn("Config file corrupt, using defaults", "path", path, "error", err)
		return Default()
	}
	return cfg
}

// Save writes the config as indented JSON.
func (c BrainConfig) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// #endregion persistence
