package stream

import (
	"testing"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// onCurveAddress returns a deterministic valid on-curve base58 address.
func onCurveAddress() string {
	return base58.Encode(edwards25519.NewGeneratorPoint().Bytes())
}

func TestExtractJSONPayload(t *testing.T) {
	mint := onCurveAddress()
	logs := []string{
		"Program 6EF8rQNxjNDoERZkwPost5FDE7vaKc27NSMqRyAZLt4e invoke [1]",
		`Program log: {"name":"Fed Cut Token","symbol":"FEDCUT","mint":"` + mint + `"}`,
		"Program 6EF8rQNxjNDoERZkwPost5FDE7vaKc27NSMqRyAZLt4e success",
	}

	meta, ok := Extract(logs)
	require.True(t, ok)
	assert.Equal(t, "Fed Cut Token", meta.Name)
	assert.Equal(t, "FEDCUT", meta.Symbol)
	assert.Equal(t, mint, meta.Mint)
}

func TestExtractKeyValuePayload(t *testing.T) {
	mint := onCurveAddress()
	logs := []string{
		"Program log: Create name=Election symbol=VOTE mint=" + mint,
	}

	meta, ok := Extract(logs)
	require.True(t, ok)
	assert.Equal(t, "Election", meta.Name)
	assert.Equal(t, "VOTE", meta.Symbol)
	assert.Equal(t, mint, meta.Mint)
}

func TestExtractMintHeuristic(t *testing.T) {
	mint := onCurveAddress()
	logs := []string{
		"Program log: Instruction: InitializeMint2",
		"Program log: minted " + mint + " supply=1000000000",
	}

	meta, ok := Extract(logs)
	require.True(t, ok)
	assert.Equal(t, mint, meta.Mint)
	assert.Empty(t, meta.Name)
}

func TestExtractNothingUsable(t *testing.T) {
	logs := []string{
		"Program 675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8 invoke [1]",
		"Program log: Instruction: Swap",
		"Program log: ray_log: A3f=",
	}

	_, ok := Extract(logs)
	assert.False(t, ok, "no mint means no candidate")
}

func TestExtractMalformedJSONFallsThrough(t *testing.T) {
	mint := onCurveAddress()
	logs := []string{
		`Program log: {"name": broken`,
		"Program log: mint=" + mint,
	}

	meta, ok := Extract(logs)
	require.True(t, ok)
	assert.Equal(t, mint, meta.Mint)
}
