package state

import (
	"time"

	"github.com/danielpatrickdp/wneura/internal/brain"
)

// #region state-record
// StateRecord is a versioned snapshot of one agent: its biological state and
// its value table.
type StateRecord struct {
	VersionID   string
	ParentID    string
	RunID       string
	Step        int // steps taken when the snapshot was captured
	Snapshot    brain.Snapshot
	Values      []float64
	CreatedAt   time.Time
	MetricsJSON string
}

// #endregion state-record

// #region trace-record
// TraceRecord is an archived episodic memory trace. The payload is stored as
// opaque JSON.
type TraceRecord struct {
	TraceID     string
	VersionID   string
	Step        int
	Action      int
	Reward      float64
	Surprise    float64
	Cortisol    float64
	Importance  float64
	PayloadJSON string
	CreatedAt   time.Time
}

// #endregion trace-record
