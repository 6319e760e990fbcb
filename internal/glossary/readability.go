package glossary

import (
	"math"
	"regexp"
	"strings"
)

var (
	nonAlphaRe    = regexp.MustCompile(`[^a-z]`)
	vowelGroupRe  = regexp.MustCompile(`[aeiouy]+`)
	wordRe        = regexp.MustCompile(`\b[a-zA-Z]+\b`)
	abbrevRe      = regexp.MustCompile(`(?i)\b(Dr|Mr|Mrs|Ms|etc|i\.e|e\.g)\.`)
	sentenceEndRe = regexp.MustCompile(`[.!?]+`)
	boldRe        = regexp.MustCompile(`\*\*`)
	headerRe      = regexp.MustCompile(`#{1,6}\s`)
	linkRe        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
)

// countSyllables counts vowel groups, dropping a trailing silent e.
// Every word has at least one syllable.
func countSyllables(word string) int {
	word = nonAlphaRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(word)), "")
	if word == "" {
		return 0
	}

	n := len(vowelGroupRe.FindAllString(word, -1))
	if strings.HasSuffix(word, "e") && n > 1 {
		n--
	}
	if n < 1 {
		n = 1
	}
	return n
}

func countSentences(text string) int {
	text = abbrevRe.ReplaceAllString(text, "$1")
	n := 0
	for _, part := range sentenceEndRe.Split(text, -1) {
		if strings.TrimSpace(part) != "" {
			n++
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}

// stripMarkdown removes formatting that would skew the word counts.
func stripMarkdown(text string) string {
	text = boldRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "*", "")
	text = headerRe.ReplaceAllString(text, "")
	text = linkRe.ReplaceAllString(text, "$1")
	return text
}

// ReadingLevel estimates the Flesch-Kincaid grade level of a text:
// 0.39*(words/sentences) + 11.8*(syllables/words) - 15.59.
func ReadingLevel(text string) float64 {
	clean := stripMarkdown(text)

	words := wordRe.FindAllString(clean, -1)
	if len(words) == 0 {
		return 0
	}

	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}
	sentences := countSentences(clean)

	grade := 0.39*(float64(len(words))/float64(sentences)) +
		11.8*(float64(syllables)/float64(len(words))) - 15.59
	return math.Round(grade*100) / 100
}
