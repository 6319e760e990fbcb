// Package glossary simplifies protocol text for readers: a term table
// with inline definitions, reading-level estimation and detection of
// chunks the simplification made worse.
package glossary

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Entry is one glossary term.
type Entry struct {
	Term         string   `json:"term"`
	Definition   string   `json:"definition"`
	Variants     []string `json:"variants,omitempty"`
	Category     string   `json:"category,omitempty"`
	Analogy      string   `json:"analogy,omitempty"`
	WhyItMatters string   `json:"why_it_matters,omitempty"`
	Example      string   `json:"example,omitempty"`
	ReadingLevel float64  `json:"reading_level,omitempty"`
}

// Load reads a glossary JSON file (an array of entries).
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading glossary %s: %w", path, err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing glossary %s: %w", path, err)
	}
	return entries, nil
}

// quality scores an entry so duplicates keep the richest definition.
func quality(e Entry) float64 {
	score := 0.0
	if e.Definition != "" {
		score += 10
	}
	if e.Analogy != "" {
		score += 7
	}
	if e.WhyItMatters != "" {
		score += 6
	}
	if e.Example != "" {
		score += 5
	}
	score += float64(len(e.Definition)) / 100

	level := e.ReadingLevel
	if level == 0 {
		level = 10
	}
	score -= level * 0.5
	return score
}

// DedupReport summarizes a deduplication pass.
type DedupReport struct {
	Original      int      `json:"original"`
	Deduplicated  int      `json:"deduplicated"`
	Removed       int      `json:"removed"`
	DuplicateSets []string `json:"duplicate_sets,omitempty"`
}

// Deduplicate removes case-insensitive duplicate terms, keeping the
// highest-quality entry of each set. Input order is preserved for the
// surviving entries.
func Deduplicate(entries []Entry) ([]Entry, DedupReport) {
	report := DedupReport{Original: len(entries)}

	best := make(map[string]int, len(entries))
	dupes := make(map[string]bool)
	for i, e := range entries {
		key := strings.ToLower(e.Term)
		prev, seen := best[key]
		if !seen {
			best[key] = i
			continue
		}
		if quality(e) > quality(entries[prev]) {
			best[key] = i
		}
		if !dupes[key] {
			dupes[key] = true
			report.DuplicateSets = append(report.DuplicateSets, key)
		}
	}

	kept := make([]Entry, 0, len(best))
	for i, e := range entries {
		if best[strings.ToLower(e.Term)] == i {
			kept = append(kept, e)
		}
	}

	report.Deduplicated = len(kept)
	report.Removed = report.Original - report.Deduplicated
	return kept, report
}
