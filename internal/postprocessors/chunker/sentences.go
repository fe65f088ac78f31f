package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// splitUnits breaks text into sentence-like units. A unit ends after
// terminal punctuation (. ! ?) followed by whitespace, or at a newline.
// Each unit keeps its trailing whitespace, so concatenating the units
// reproduces the input exactly.
func splitUnits(text string) []string {
	var units []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		boundary := false
		switch {
		case r == '\n':
			boundary = true
		case r == '.' || r == '!' || r == '?':
			boundary = i+1 < len(runes) && unicode.IsSpace(runes[i+1])
		}
		if !boundary {
			continue
		}
		// Absorb the separator run into this unit.
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		units = append(units, string(runes[start:j]))
		start = j
		i = j - 1
	}
	if start < len(runes) {
		units = append(units, string(runes[start:]))
	}
	return units
}

// runeLen returns the number of characters in s after trimming.
func runeLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

// packGreedy accumulates units into passages of at most maxSize characters.
// A single unit longer than maxSize is emitted whole.
func packGreedy(units []string, maxSize int) []string {
	var passages []string
	var current strings.Builder

	flush := func() {
		if p := strings.TrimSpace(current.String()); p != "" {
			passages = append(passages, p)
		}
		current.Reset()
	}

	for _, u := range units {
		if current.Len() > 0 && runeLen(current.String()+u) > maxSize {
			flush()
		}
		current.WriteString(u)
	}
	flush()
	return passages
}
