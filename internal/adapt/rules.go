package adapt

import (
	"regexp"
	"strings"

	"readapt/internal/profile"
)

// Rule-based adaptation: the offline path used when no generation service
// is configured. Deliberately crude — the goal is a readable degradation,
// not parity with the external service.

// vocabularyReplacements maps formal words to plain equivalents.
var vocabularyReplacements = map[string]string{
	"utilize":      "use",
	"implement":    "do",
	"demonstrate":  "show",
	"facilitate":   "help",
	"subsequently": "then",
	"additional":   "more",
	"numerous":     "many",
}

var (
	vocabularyPattern  *regexp.Regexp
	sentenceBoundary   = regexp.MustCompile(`([.!?])\s+`)
	clauseConjunction  = regexp.MustCompile(`,\s*(?:and|but|or)\s+`)
	longSentenceLength = 150
)

func init() {
	words := make([]string, 0, len(vocabularyReplacements))
	for w := range vocabularyReplacements {
		words = append(words, w)
	}
	vocabularyPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(words, "|") + `)\b`)
}

// ApplyRules adapts text using the profile's enabled rule passes.
// With no rules enabled the text is returned unchanged.
func ApplyRules(text string, rules profile.Rules) string {
	if rules.SimplifyVocabulary {
		text = simplifyVocabulary(text)
	}
	if rules.ShortenSentences {
		text = shortenSentences(text)
	}
	if rules.UseBullets {
		text = convertToBullets(text)
	}
	return text
}

// simplifyVocabulary replaces formal words with plain equivalents,
// case-insensitively.
func simplifyVocabulary(text string) string {
	return vocabularyPattern.ReplaceAllStringFunc(text, func(match string) string {
		return vocabularyReplacements[strings.ToLower(match)]
	})
}

// shortenSentences breaks long sentences at coordinating conjunctions.
func shortenSentences(text string) string {
	sentences := splitSentences(text)
	shortened := make([]string, 0, len(sentences))

	for _, sentence := range sentences {
		if len(sentence) > longSentenceLength {
			shortened = append(shortened, clauseConjunction.Split(sentence, -1)...)
		} else {
			shortened = append(shortened, sentence)
		}
	}

	return strings.Join(shortened, " ")
}

// convertToBullets rewrites paragraphs of four or more sentences as a
// bulleted list. Shorter text keeps its paragraph form.
func convertToBullets(text string) string {
	sentences := splitSentences(text)
	if len(sentences) <= 3 {
		return text
	}

	bullets := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if s = strings.TrimSpace(s); s != "" {
			bullets = append(bullets, "• "+s)
		}
	}
	return strings.Join(bullets, "\n")
}

// splitSentences splits text at sentence-ending punctuation, keeping the
// punctuation with its sentence.
func splitSentences(text string) []string {
	marked := sentenceBoundary.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")

	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}
