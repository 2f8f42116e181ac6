package domain

// Phase is the binary timing classification of a token's pump cycle.
type Phase int

const (
	PhaseEarly Phase = iota
	PhaseLate
)

func (p Phase) String() string {
	if p == PhaseEarly {
		return "EARLY"
	}
	return "LATE"
}

// Assessment is the external relevance collaborator's verdict on how well
// a token fits the narrative that admitted it.
type Assessment struct {
	RelevanceScore    float64 // 0-100
	AuthenticityScore float64 // 0-100
	Confidence        float64 // 0-100
	Reasoning         string
}

// CompositeScore fuses safety, timing, momentum and relevance into one
// alert-gating number. All sub-scores are clamped to [0,100].
type CompositeScore struct {
	Composite float64
	Safety    float64
	Timing    float64
	Momentum  float64
	Relevance float64
	Alert     bool // true iff composite and every sub-score clear their floors
}

// SubScores returns the four dimensions in canonical order.
func (c CompositeScore) SubScores() [4]float64 {
	return [4]float64{c.Safety, c.Timing, c.Momentum, c.Relevance}
}
