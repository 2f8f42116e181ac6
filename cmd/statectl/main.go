// Package main inspects and resets the radar's quota state file.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
)

type stateFile struct {
	SchemaVersion string   `json:"schema_version"`
	Date          string   `json:"date"`
	AlertsToday   int      `json:"alerts_today"`
	AlertedTokens []string `json:"alerted_tokens"`
	TracedTokens  []string `json:"traced_tokens"`
	LastReset     string   `json:"last_reset"`
}

func main() {
	path := flag.String("state", "state.json", "Path to the state file")
	maxPerDay := flag.Int("max-per-day", 3, "Daily alert quota, for the remaining count")
	reset := flag.Bool("reset", false, "Delete the state file, restoring the full quota")
	flag.Parse()

	if *reset {
		if err := os.Remove(*path); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "remove %s: %v\n", *path, err)
			os.Exit(1)
		}
		fmt.Printf("state reset, %d alert slots available\n", *maxPerDay)
		return
	}

	data, err := os.ReadFile(*path)
	if os.IsNotExist(err) {
		fmt.Printf("no state file at %s, %d alert slots available\n", *path, *maxPerDay)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", *path, err)
		os.Exit(1)
	}

	var st stateFile
	if err := json.Unmarshal(data, &st); err != nil {
		fmt.Fprintf(os.Stderr, "parse %s: %v\n", *path, err)
		os.Exit(1)
	}

	remaining := *maxPerDay - st.AlertsToday
	if remaining < 0 {
		remaining = 0
	}

	fmt.Printf("date:           %s\n", st.Date)
	fmt.Printf("alerts today:   %d of %d (%d remaining)\n", st.AlertsToday, *maxPerDay, remaining)
	fmt.Printf("last reset:     %s\n", st.LastReset)
	fmt.Printf("alerted tokens: %d\n", len(st.AlertedTokens))
	for _, mint := range st.AlertedTokens {
		fmt.Printf("  %s\n", mint)
	}
	fmt.Printf("traced tokens:  %d\n", len(st.TracedTokens))
}
