// Package domain defines the core types passed through the detection pipeline.
package domain

import "time"

// Candidate represents a token observed on the ingestion stream, pending
// verification. Immutable after creation; discarded after one pipeline pass.
type Candidate struct {
	Mint             string    // token mint address (identity)
	Name             string    // display name, may be empty
	Symbol           string    // ticker symbol, may be empty
	ProgramID        string    // program that emitted the originating log
	TxSignature      string    // originating transaction signature
	DetectedAt       time.Time // when the stream admitted the event
	MatchedNarrative string    // keyword that admitted it, empty in pass-through mode
}

// NarrativeEvent is one ranked entry from the prediction-market feed.
type NarrativeEvent struct {
	Title     string
	Volume    float64 // cumulative volume in USD
	Liquidity float64
}
