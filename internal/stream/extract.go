package stream

import (
	"encoding/json"
	"strings"

	"tokenradar/internal/solana"
)

const programLogPrefix = "Program log: "

// TokenMeta is the best-effort token metadata pulled out of one
// transaction's log lines.
type TokenMeta struct {
	Mint   string
	Name   string
	Symbol string
}

// Extract scans log lines for token metadata. Launchpads are not
// consistent about log shape, so three strategies run in order: a JSON
// payload, key=value pairs, and finally a bare address heuristic for
// the mint. Extraction succeeds when a plausible mint is found.
func Extract(logs []string) (TokenMeta, bool) {
	var meta TokenMeta

	for _, line := range logs {
		content, ok := strings.CutPrefix(line, programLogPrefix)
		if !ok {
			continue
		}

		if extractJSON(content, &meta) {
			continue
		}
		extractKeyValues(content, &meta)
	}

	if meta.Mint == "" {
		meta.Mint = findMintAddress(logs)
	}
	return meta, meta.Mint != ""
}

// extractJSON fills meta from a JSON object log payload.
func extractJSON(content string, meta *TokenMeta) bool {
	if !strings.HasPrefix(content, "{") {
		return false
	}
	var payload struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
		Mint   string `json:"mint"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return false
	}
	if meta.Name == "" {
		meta.Name = payload.Name
	}
	if meta.Symbol == "" {
		meta.Symbol = payload.Symbol
	}
	if meta.Mint == "" && solana.ValidAddress(payload.Mint) {
		meta.Mint = payload.Mint
	}
	return true
}

// extractKeyValues fills meta from "name=X symbol=Y mint=Z" style logs.
func extractKeyValues(content string, meta *TokenMeta) {
	for _, field := range strings.Fields(content) {
		key, value, ok := strings.Cut(field, "=")
		if !ok || value == "" {
			continue
		}
		switch strings.ToLower(key) {
		case "name":
			if meta.Name == "" {
				meta.Name = strings.Trim(value, `"',`)
			}
		case "symbol", "ticker":
			if meta.Symbol == "" {
				meta.Symbol = strings.Trim(value, `"',`)
			}
		case "mint", "token":
			v := strings.Trim(value, `"',`)
			if meta.Mint == "" && solana.ValidAddress(v) {
				meta.Mint = v
			}
		}
	}
}

// findMintAddress falls back to scanning for a bare base58 address.
// Only on-curve addresses qualify: launchpad mints come from keypairs,
// while pool and vault accounts are PDAs and sit off-curve.
func findMintAddress(logs []string) string {
	for _, line := range logs {
		content, ok := strings.CutPrefix(line, programLogPrefix)
		if !ok {
			continue
		}
		for _, field := range strings.Fields(content) {
			token := strings.Trim(field, `"',:()`)
			if solana.ValidAddress(token) && solana.IsOnCurve(token) {
				return token
			}
		}
	}
	return ""
}
