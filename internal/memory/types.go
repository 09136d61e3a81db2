package memory

import "time"

// #region config

// Config holds the store's capacity and importance thresholds.
type Config struct {
	Capacity           int     // maximum number of traces held at once
	DecayRate          float64 // fractional importance loss per Decay call
	AdmissionThreshold float64 // experiences below this importance are not stored
	Floor              float64 // traces at or below this importance are pruned on Decay
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		Capacity:           50,
		DecayRate:          0.05,
		AdmissionThreshold: 0.1,
		Floor:              0.05,
	}
}

// DefaultReplayBatch is the batch size used when callers have no preference.
const DefaultReplayBatch = 5

// cortisolWeight scales stress in the importance score.
const cortisolWeight = 1.5

// #endregion config

// #region experience

// Experience is what the caller offers for encoding. State is opaque to the store.
type Experience[S any] struct {
	Step     int
	State    S
	Action   int
	Reward   float64
	Surprise float64
	Cortisol float64
}

// #endregion experience

// #region trace

// Trace is a stored experience. Only Importance changes after creation.
type Trace[S any] struct {
	ID         string    `json:"id"`
	Step       int       `json:"step_id"`
	State      S         `json:"state"`
	Action     int       `json:"action"`
	Reward     float64   `json:"reward"`
	Surprise   float64   `json:"surprise"`
	Cortisol   float64   `json:"cortisol"`
	Importance float64   `json:"importance"`
	CreatedAt  time.Time `json:"created_at"`
}

// #endregion trace
