package brain

import (
	"fmt"
	"time"

	"github.com/danielpatrickdp/wneura/internal/bounds"
	"github.com/danielpatrickdp/wneura/internal/ring"
)

// #region agency-state

// AgencyState tracks agency in [0, 1] and keeps a bounded audit ring of updates.
type AgencyState struct {
	config  AgencyConfig
	agency  float64
	history *ring.Buffer[AgencyRecord]
	now     func() time.Time
}

// NewAgencyState creates an agency state at config.InitialAgency (clipped to [0, 1]).
func NewAgencyState(config AgencyConfig) *AgencyState {
	return &AgencyState{
		config:  config,
		agency:  bounds.Clip(config.InitialAgency, 0, 1),
		history: ring.New[AgencyRecord](config.HistoryLimit),
		now:     time.Now,
	}
}

// #endregion agency-state

// #region update-agency

// Update applies one erosion/repair step. stress must be the reading taken
// after this step's StressState.Update.
func (a *AgencyState) Update(predictionError float64, stress Reading) (float64, error) {
	if err := bounds.Finite([]string{"prediction_error", "cortisol", "resistance"},
		predictionError, stress.Cortisol, stress.Resistance); err != nil {
		return a.agency, fmt.Errorf("update agency: %w", err)
	}

	// Erosion is quadratic in the excursion above threshold
	var erosion float64
	if gap := stress.Cortisol - a.config.StressThreshold; gap > 0 {
		erosion = a.config.ErosionRate * gap * gap * erosionScale
	}

	// Repair is a flat increment gated on mastery, not proportional to error
	var repair float64
	if predictionError > a.config.MasteryThreshold {
		repair = a.config.RepairRate
	}

	delta := repair - erosion
	a.agency = bounds.Clip(a.agency+delta, 0, 1)

	a.history.Push(AgencyRecord{
		Cortisol:    stress.Cortisol,
		Agency:      a.agency,
		DeltaAgency: delta,
		Resistance:  stress.Resistance,
		Timestamp:   a.now().UTC(),
	})
	return a.agency, nil
}

// #endregion update-agency

// #region accessors

// Agency returns the current agency.
func (a *AgencyState) Agency() float64 { return a.agency }

// History returns the audit ring, oldest first.
func (a *AgencyState) History() []AgencyRecord { return a.history.Slice() }

// Restore overwrites agency from a snapshot, clipping into range. History is kept.
func (a *AgencyState) Restore(agency float64) {
	a.agency = bounds.Clip(agency, 0, 1)
}

// #endregion accessors
