package domain

// Level is the ordered severity of a single verification tier.
// The ordering matters: aggregate level is the max of constituent levels.
type Level int

const (
	LevelUnknown Level = iota // check could not run; contributes nothing
	LevelOK
	LevelWarning
	LevelDanger
)

// String returns the canonical upper-case name used in logs and reasons.
func (l Level) String() string {
	switch l {
	case LevelOK:
		return "OK"
	case LevelWarning:
		return "WARNING"
	case LevelDanger:
		return "DANGER"
	default:
		return "UNKNOWN"
	}
}

// TierVerdict is the result of one verification tier for one candidate.
type TierVerdict struct {
	Tier   string // tier name, stable across runs
	Level  Level
	Reason string // human-readable explanation
}

// Unknown builds the degraded verdict a tier returns when its external
// data source is unavailable. Unknown never blocks the pipeline.
func Unknown(tier, reason string) TierVerdict {
	return TierVerdict{Tier: tier, Level: LevelUnknown, Reason: reason}
}

// SafetyResult aggregates all tier verdicts into one safety assessment.
type SafetyResult struct {
	OverallLevel Level
	Score        float64 // 0-100, starts at 100, tier penalties subtracted
	DangerFlags  []string
	WarningFlags []string
	Verdicts     []TierVerdict // in tier execution order
	Pass         bool          // false iff any tier returned danger
}
