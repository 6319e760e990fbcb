package glossary

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// DefaultMaxTerms caps inline definitions per chunk so the text stays
// readable.
const DefaultMaxTerms = 5

type termMatch struct {
	term       string
	start, end int
	definition string
	category   string
	priority   float64
}

// findTerms locates glossary terms in a text, longest terms first so a
// shorter term never claims part of a longer one, keeping the first
// non-overlapping occurrences.
func findTerms(text string, entries []Entry) []termMatch {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Term) > len(sorted[j].Term)
	})

	var all []termMatch
	for _, e := range sorted {
		if e.Term == "" {
			continue
		}
		names := append([]string{e.Term}, e.Variants...)
		for _, name := range names {
			re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)
			if err != nil {
				continue
			}
			for _, loc := range re.FindAllStringIndex(text, -1) {
				all = append(all, termMatch{
					term:       text[loc[0]:loc[1]],
					start:      loc[0],
					end:        loc[1],
					definition: e.Definition,
					category:   e.Category,
				})
			}
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].start < all[j].start })

	var kept []termMatch
	for _, m := range all {
		overlaps := false
		for _, k := range kept {
			if m.start < k.end && k.start < m.end {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, m)
		}
	}
	return kept
}

// Apply annotates up to maxTerms glossary terms in a text with inline
// definitions using {{term||definition}} markup. It returns the
// annotated text and the terms used.
func Apply(text string, entries []Entry, maxTerms int) (string, map[string]string) {
	if maxTerms <= 0 {
		maxTerms = DefaultMaxTerms
	}

	matches := findTerms(text, entries)
	if len(matches) == 0 {
		return text, nil
	}

	// Earlier position, longer definition and neuroscience terms win
	// when the cap forces a choice.
	for i := range matches {
		categoryWeight := 50.0
		if matches[i].category == "neuroscience" {
			categoryWeight = 100
		}
		matches[i].priority = float64(1000-matches[i].start)*0.4 +
			float64(len(matches[i].definition))*0.3 +
			categoryWeight*0.3
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].priority > matches[j].priority
	})
	if len(matches) > maxTerms {
		matches = matches[:maxTerms]
	}

	// Inject from the end so earlier offsets stay valid.
	sort.Slice(matches, func(i, j int) bool { return matches[i].start > matches[j].start })

	used := make(map[string]string, len(matches))
	out := text
	for _, m := range matches {
		out = out[:m.start] + fmt.Sprintf("{{%s||%s}}", m.term, m.definition) + out[m.end:]
		used[m.term] = m.definition
	}
	return out, used
}

// Issue is one problem found in a simplified chunk.
type Issue string

const (
	IssueDegradedLevel  Issue = "reading_level_degraded"
	IssueUnbalancedBold Issue = "unbalanced_bold_markers"
	IssueUnbalancedStar Issue = "unbalanced_italic_markers"
	IssueTruncated      Issue = "truncated_text"
)

// Inspect flags simplified chunks that came out worse than the
// original: a higher reading level, unbalanced markdown markers, or a
// cut-off ending.
func Inspect(simplified string, levelBefore, levelAfter float64) []Issue {
	var issues []Issue

	if levelBefore > 0 && levelAfter > levelBefore {
		issues = append(issues, IssueDegradedLevel)
	}

	boldCount := strings.Count(simplified, "**")
	if boldCount%2 != 0 {
		issues = append(issues, IssueUnbalancedBold)
	}
	if (strings.Count(simplified, "*")-boldCount*2)%2 != 0 {
		issues = append(issues, IssueUnbalancedStar)
	}

	trimmed := strings.TrimSpace(simplified)
	if trimmed != "" {
		last, _ := utf8.DecodeLastRuneInString(trimmed)
		if !strings.ContainsRune(".!?:\"')}…", last) {
			issues = append(issues, IssueTruncated)
		}
	}

	return issues
}
