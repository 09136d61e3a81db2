package chemistry

// #region bounds

const (
	// MinSensitivity and MaxSensitivity bound every receptor.
	MinSensitivity = 0.5
	MaxSensitivity = 1.5

	// Baseline is the level every pool is pulled back toward.
	Baseline = 1.0
)

// #endregion bounds

// #region config

// Config holds the coefficients of the three pools and the tolerance law.
type Config struct {
	RewardGain    float64 // level gain per unit of positive reward
	RewardPenalty float64 // flat loss on non-positive reward

	MoodStressThreshold float64 // stress above this depletes mood
	MoodStressGain      float64 // depletion per unit of stress
	MoodActionBonus     float64 // flat gain when calm and an action was taken

	ArousalStressGain float64 // target = Baseline + gain*stress
	ArousalRate       float64 // fraction of the gap to target closed per step

	ReuptakeRate        float64 // pull toward Baseline for reward and mood
	ArousalReuptakeRate float64 // pull toward Baseline for arousal

	AdaptationStep float64 // receptor change per step outside the tolerance band
	ToleranceHigh  float64 // level above this downregulates the receptor
	ToleranceLow   float64 // level below this upregulates the receptor

	// Only the reward receptor adapts unless these are set.
	AdaptMood    bool
	AdaptArousal bool
}

// DefaultConfig returns the reference coefficients.
func DefaultConfig() Config {
	return Config{
		RewardGain:          0.2,
		RewardPenalty:       0.1,
		MoodStressThreshold: 0.5,
		MoodStressGain:      0.05,
		MoodActionBonus:     0.02,
		ArousalStressGain:   1.5,
		ArousalRate:         0.1,
		ReuptakeRate:        0.05,
		ArousalReuptakeRate: 0.025,
		AdaptationStep:      0.01,
		ToleranceHigh:       1.5,
		ToleranceLow:        0.8,
	}
}

// #endregion config

// #region pool

// Pool is one chemical: a raw level and the receptor sensitivity it is felt through.
type Pool struct {
	Level       float64 `json:"level"`
	Sensitivity float64 `json:"sensitivity"`
	Adaptive    bool    `json:"adaptive"`
}

// Effective is the felt value of the pool.
func (p Pool) Effective() float64 { return p.Level * p.Sensitivity }

// #endregion pool

// #region state

// State is the observable output of one update.
type State struct {
	EffectiveReward  float64 `json:"effective_reward"`
	EffectiveMood    float64 `json:"effective_mood"`
	EffectiveArousal float64 `json:"effective_arousal"`
	ReceptorHealth   float64 `json:"receptor_health"`
	RewardLevel      float64 `json:"reward_level"`
	MoodLevel        float64 `json:"mood_level"`
	ArousalLevel     float64 `json:"arousal_level"`
}

// #endregion state
