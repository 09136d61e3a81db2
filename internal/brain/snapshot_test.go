package brain

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brain_dump.json")
	in := Snapshot{
		Cortisol:            0.7312345678901234,
		Agency:              0.1234567890123456,
		Resistance:          0.6789012345678901,
		RewardChemicalLevel: 1.9876,
	}

	if err := SaveSnapshot(path, in); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	out := LoadSnapshot(path)

	if out != in {
		t.Fatalf("round trip mismatch:\n in=%+v\nout=%+v", in, out)
	}
}

func TestSnapshotMissingAgencyDefaultsToNeutral(t *testing.T) {
	s, err := DecodeSnapshot([]byte(`{"cortisol": 0.4, "resistance": 1.2}`))
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	if s.Agency != 0.5 {
		t.Fatalf("expected agency 0.5, got %f", s.Agency)
	}
	if s.Cortisol != 0.4 || s.Resistance != 1.2 {
		t.Fatalf("present keys not kept: %+v", s)
	}
	if s.RewardChemicalLevel != DefaultLoadedRewardLevel {
		t.Fatalf("expected default reward level, got %f", s.RewardChemicalLevel)
	}
}

func TestSnapshotClipsOutOfRange(t *testing.T) {
	s, err := DecodeSnapshot([]byte(`{"cortisol": 3, "agency": -1, "resistance": 9}`))
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	if s.Cortisol != 1 || s.Agency != 0 || s.Resistance != MaxResistance {
		t.Fatalf("expected clipped values, got %+v", s)
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	s := LoadSnapshot(filepath.Join(t.TempDir(), "nope.json"))
	if s != DefaultLoadedSnapshot() {
		t.Fatalf("expected defaults, got %+v", s)
	}
}

func TestLoadSnapshotCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	if err := os.WriteFile(path, []byte(`{"cortisol": 0.9, "agen`), 0o644); err != nil {
		t.Fatal(err)
	}
	s := LoadSnapshot(path)
	if s.Agency != 0.5 {
		t.Fatalf("expected neutral agency on corrupt file, got %f", s.Agency)
	}
}
