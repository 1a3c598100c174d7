package adapt

import (
	"fmt"
	"regexp"
	"strings"
)

// ReadabilityMetrics summarizes how readable a text is. Syllable counting
// is heuristic; treat the scores as coarse signals, not measurements.
type ReadabilityMetrics struct {
	FleschEase    float64 // 0 (hardest) .. 100 (easiest)
	GradeLevel    float64
	WordCount     int
	SentenceCount int
}

// Validation is the outcome of sanity-checking one adaptation result.
type Validation struct {
	Valid       bool
	Issues      []string
	LengthRatio float64
}

var sentenceEnd = regexp.MustCompile(`[.!?]+`)

// Readability computes Flesch reading ease and an approximate grade level.
func Readability(text string) ReadabilityMetrics {
	words := strings.Fields(text)
	sentences := 0
	for _, s := range sentenceEnd.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}

	m := ReadabilityMetrics{WordCount: len(words), SentenceCount: sentences}
	if len(words) == 0 || sentences == 0 {
		return m
	}

	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}

	wordsPerSentence := float64(len(words)) / float64(sentences)
	syllablesPerWord := float64(syllables) / float64(len(words))

	m.FleschEase = clampF(206.835-1.015*wordsPerSentence-84.6*syllablesPerWord, 0, 100)
	m.GradeLevel = max(0, 0.39*wordsPerSentence+11.8*syllablesPerWord-15.59)
	return m
}

// ValidateAdaptation checks an adaptation result for the failure shapes the
// generation service produces: unchanged output, near-empty output, refusal
// phrasing, and runaway length changes.
func ValidateAdaptation(original, adapted string) Validation {
	v := Validation{Valid: true}

	if original == adapted && len(strings.TrimSpace(original)) > 10 {
		v.Valid = false
		v.Issues = append(v.Issues, "adapted text is identical to original")
	}

	if len(strings.TrimSpace(adapted)) < 2 {
		v.Valid = false
		v.Issues = append(v.Issues, "adapted text is empty or too short")
	}

	head := adapted
	if len(head) > 100 {
		head = head[:100]
	}
	for _, indicator := range refusalIndicators {
		if strings.Contains(head, indicator) {
			v.Valid = false
			v.Issues = append(v.Issues, fmt.Sprintf("adapted text contains refusal indicator %q", indicator))
			break
		}
	}

	if len(original) > 0 && len(adapted) > 0 {
		v.LengthRatio = float64(len(adapted)) / float64(len(original))
		if v.LengthRatio > 10.0 || v.LengthRatio < 0.1 {
			v.Valid = false
			v.Issues = append(v.Issues, fmt.Sprintf("extreme length ratio: %.2f", v.LengthRatio))
		}
	}

	return v
}

// refusalIndicators mark responses where the service declined instead of adapting.
var refusalIndicators = []string{
	"I cannot", "I'm sorry", "I can't", "Unable to",
	"Error:", "Failed to", "Not possible", "Cannot process",
}

// countSyllables estimates syllables by counting vowel group onsets,
// with the usual silent-e and -le adjustments.
func countSyllables(word string) int {
	word = strings.ToLower(word)
	word = strings.TrimFunc(word, func(r rune) bool {
		return r < 'a' || r > 'z'
	})
	if word == "" {
		return 1
	}

	isVowel := func(b byte) bool {
		return strings.IndexByte("aeiouy", b) >= 0
	}

	count := 0
	if isVowel(word[0]) {
		count++
	}
	for i := 1; i < len(word); i++ {
		if isVowel(word[i]) && !isVowel(word[i-1]) {
			count++
		}
	}
	if strings.HasSuffix(word, "e") {
		count--
	}
	if strings.HasSuffix(word, "le") {
		count++
	}
	if count <= 0 {
		count = 1
	}
	return count
}

// clampF constrains v to [lo, hi].
func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
