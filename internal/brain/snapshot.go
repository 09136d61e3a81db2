package brain

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mudler/xlog"

	"github.com/danielpatrickdp/wneura/internal/bounds"
)

// #region snapshot

// Snapshot is the persisted biological state.
type Snapshot struct {
	Cortisol            float64 `json:"cortisol"`
	Agency              float64 `json:"agency"`
	Resistance          float64 `json:"resistance"`
	RewardChemicalLevel float64 `json:"reward_chemical_level"`
}

// Defaults used for keys absent from a persisted snapshot. Agency falls back to
// 0.5 (unknown, assume neutral) rather than the fresh-start value of 1.0.
const (
	DefaultLoadedCortisol    = 0.0
	DefaultLoadedAgency      = 0.5
	DefaultLoadedResistance  = 1.0
	DefaultLoadedRewardLevel = 1.0
)

// DefaultLoadedSnapshot is what a missing or corrupt snapshot file yields.
func DefaultLoadedSnapshot() Snapshot {
	return Snapshot{
		Cortisol:            DefaultLoadedCortisol,
		Agency:              DefaultLoadedAgency,
		Resistance:          DefaultLoadedResistance,
		RewardChemicalLevel: DefaultLoadedRewardLevel,
	}
}

// #endregion snapshot

// #region codec

// snapshotWire detects absent keys.
type snapshotWire struct {
	Cortisol            *float64 `json:"cortisol"`
	Agency              *float64 `json:"agency"`
	Resistance          *float64 `json:"resistance"`
	RewardChemicalLevel *float64 `json:"reward_chemical_level"`
}

// Encode renders the snapshot as indented JSON.
func (s Snapshot) Encode() ([]byte, error) {
	if err := bounds.Finite([]string{"cortisol", "agency", "resistance", "reward_chemical_level"},
		s.Cortisol, s.Agency, s.Resistance, s.RewardChemicalLevel); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return json.MarshalIndent(s, "", "    ")
}

// DecodeSnapshot parses a snapshot, filling absent keys with the load defaults
// and clipping present values into their ranges.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var w snapshotWire
	if err := json.Unmarshal(data, &w); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	s := DefaultLoadedSnapshot()
	if w.Cortisol != nil {
		s.Cortisol = bounds.Clip(*w.Cortisol, 0, 1)
	}
	if w.Agency != nil {
		s.Agency = bounds.Clip(*w.Agency, 0, 1)
	}
	if w.Resistance != nil {
		s.Resistance = bounds.Clip(*w.Resistance, MinResistance, MaxResistance)
	}
	if w.RewardChemicalLevel != nil {
		s.RewardChemicalLevel = *w.RewardChemicalLevel
	}
	return s, nil
}

// #endregion codec

// #region files

// SaveSnapshot writes the snapshot to path.
func SaveSnapshot(path string, s Snapshot) error {
	data, err := s.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

// LoadSnapshot reads a snapshot from path. A missing or corrupt file degrades to
// DefaultLoadedSnapshot with a logged warning so long-running drivers survive
// partial writes.
func LoadSnapshot(path string) Snapshot {
	data, err := os.ReadFile(path)
	if err != nil {
		xlog.Warn("Snapshot not readable, using defaults", "path", path, "error", err)
		return DefaultLoadedSnapshot()
	}
	s, err := DecodeSnapshot(data)
	if err != nil {
		xlog.Warn("Snapshot corrupt, using defaults", "path", path, "error", err)
		return DefaultLoadedSnapshot()
	}
	xlog.Debug("Snapshot loaded", "path", path, "agency", s.Agency)
	return s
}

// #endregion files
