// Package memory is a capacity-bounded episodic store ordered by importance,
// not recency. Importance combines surprise and stress at encoding time and
// decays only when the caller asks for it.
package memory

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/danielpatrickdp/wneura/internal/bounds"
)

// #region store

// EpisodicMemory holds at most Capacity traces. Not safe for concurrent use.
type EpisodicMemory[S any] struct {
	config  Config
	traces  []Trace[S]
	entropy *rand.Rand
	now     func() time.Time
}

// New creates an empty store. Capacity < 1 is treated as 1.
func New[S any](config Config) *EpisodicMemory[S] {
	if config.Capacity < 1 {
		config.Capacity = 1
	}
	return &EpisodicMemory[S]{
		config:  config,
		traces:  make([]Trace[S], 0, config.Capacity+1),
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}
}

// Importance is the emotional weight of an experience.
func Importance(surprise, cortisol float64) float64 {
	return math.Abs(surprise) + cortisolWeight*cortisol
}

// #endregion store

// #region encode

// Encode scores exp and stores it when it clears the admission threshold.
// It reports whether the new trace is held after eviction.
func (m *EpisodicMemory[S]) Encode(exp Experience[S]) (bool, error) {
	if err := bounds.Finite([]string{"reward", "surprise", "cortisol"},
		exp.Reward, exp.Surprise, exp.Cortisol); err != nil {
		return false, fmt.Errorf("encode experience: %w", err)
	}

	importance := Importance(exp.Surprise, exp.Cortisol)
	if importance < m.config.AdmissionThreshold {
		return false, nil
	}

	now := m.now()
	id := ulid.MustNew(ulid.Timestamp(now), m.entropy).String()
	m.traces = append(m.traces, Trace[S]{
		ID:         id,
		Step:       exp.Step,
		State:      exp.State,
		Action:     exp.Action,
		Reward:     exp.Reward,
		Surprise:   exp.Surprise,
		Cortisol:   exp.Cortisol,
		Importance: importance,
		CreatedAt:  now.UTC(),
	})

	stored := true
	for len(m.traces) > m.config.Capacity {
		if m.evictLeastImportant() == id {
			stored = false
		}
	}
	return stored, nil
}

// evictLeastImportant removes the lowest-importance trace (oldest on ties) and returns its ID.
func (m *EpisodicMemory[S]) evictLeastImportant() string {
	lowest := 0
	for i := 1; i < len(m.traces); i++ {
		if m.traces[i].Importance < m.traces[lowest].Importance {
			lowest = i
		}
	}
	id := m.traces[lowest].ID
	m.traces = append(m.traces[:lowest], m.traces[lowest+1:]...)
	return id
}

// #endregion encode

// #region decay

// Decay scales every importance by (1 - DecayRate) and prunes traces at or
// below the floor. Returns the number pruned.
func (m *EpisodicMemory[S]) Decay() int {
	keep := m.traces[:0]
	for _, t := range m.traces {
		t.Importance *= 1 - m.config.DecayRate
		if t.Importance > m.config.Floor {
			keep = append(keep, t)
		}
	}
	pruned := len(m.traces) - len(keep)
	// clear the tail so dropped payloads can be collected
	for i := len(keep); i < len(m.traces); i++ {
		m.traces[i] = Trace[S]{}
	}
	m.traces = keep
	return pruned
}

// #endregion decay

// #region replay

// ReplayBatch returns up to n traces, highest importance first. The store is not modified.
func (m *EpisodicMemory[S]) ReplayBatch(n int) []Trace[S] {
	if n <= 0 {
		return []Trace[S]{}
	}
	out := m.Traces()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Importance > out[j].Importance
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// #endregion replay

// #region accessors

// Len returns the number of stored traces.
func (m *EpisodicMemory[S]) Len() int { return len(m.traces) }

// Capacity returns the configured capacity.
func (m *EpisodicMemory[S]) Capacity() int { return m.config.Capacity }

// Traces returns a copy of the stored traces in insertion order.
func (m *EpisodicMemory[S]) Traces() []Trace[S] {
	out := make([]Trace[S], len(m.traces))
	copy(out, m.traces)
	return out
}

// #endregion accessors
