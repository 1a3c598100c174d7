// Package profile holds the reader-adaptation profiles: visual styling for
// reconstruction and instruction text injected into adaptation prompts.
// The built-in set can be extended or overridden from a YAML file; the core
// consumes profiles as opaque configuration and never mutates them.
package profile

import (
	"fmt"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
)

// Built-in profile identifiers.
// Use these instead of string literals for compile-time safety.
const (
	Default  = "default"
	Dyslexia = "dyslexia"
	ADHD     = "adhd"
	ESL      = "esl"
	Vision   = "vision"
)

// Tint is a low-opacity page tint applied by the raster reconstruction tiers.
type Tint struct {
	Color   colorful.Color
	Opacity float64 // 0..1
}

// Style holds the visual settings reconstruction applies for a profile.
type Style struct {
	// Tint is nil when the profile applies no page tint.
	Tint *Tint

	// Highlight is the text color for adapted text.
	Highlight colorful.Color

	// FontPreference selects the replacement font family: "sans", "serif",
	// "mono", or empty to keep each block's original family.
	FontPreference string
}

// Rules enables the offline rule-based adaptation passes for a profile.
type Rules struct {
	SimplifyVocabulary bool
	ShortenSentences   bool
	UseBullets         bool
}

// Profile is one named reader-adaptation configuration.
type Profile struct {
	ID   string
	Name string

	Style Style

	// BatchInstructions is the plain-text guidance prepended to batched
	// adaptation prompts for this profile.
	BatchInstructions string

	Rules Rules
}

// Registry holds the available profiles. Construct with NewRegistry;
// the zero value is not usable.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry creates a registry populated with the built-in profiles.
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[string]Profile)}
	for _, p := range builtins() {
		r.profiles[p.ID] = p
	}
	return r
}

// Get returns the profile for id.
// Returns ErrUnknown if the identifier is not registered.
func (r *Registry) Get(id string) (Profile, error) {
	if id == "" {
		return Profile{}, fmt.Errorf("profile identifier cannot be empty: %w", ErrUnknown)
	}
	p, ok := r.profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q: %w", id, ErrUnknown)
	}
	return p, nil
}

// StyleOr returns the style for id, falling back to the default profile's
// style when the identifier is unknown. Reconstruction uses this so an
// unconfigured profile degrades to neutral styling instead of failing.
func (r *Registry) StyleOr(id string) Style {
	if p, ok := r.profiles[id]; ok {
		return p.Style
	}
	return r.profiles[Default].Style
}

// IDs returns the registered profile identifiers, sorted for deterministic output.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.profiles))
	for id := range r.profiles {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// put registers or replaces a profile.
func (r *Registry) put(p Profile) {
	r.profiles[p.ID] = p
}

// mustHex parses a compile-time hex color constant.
func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in color %q: %v", s, err))
	}
	return c
}

// builtins returns the built-in profile set. Tints are light page washes;
// highlight colors are the adapted-text colors.
func builtins() []Profile {
	return []Profile{
		{
			ID:   Default,
			Name: "Default",
			Style: Style{
				Highlight: mustHex("#000000"),
			},
			BatchInstructions: "Adapt the following texts for clarity: plain language, short sentences, keep meaning intact.",
		},
		{
			ID:   Dyslexia,
			Name: "Dyslexia",
			Style: Style{
				Tint:           &Tint{Color: mustHex("#fffef5"), Opacity: 0.12},
				Highlight:      mustHex("#0066cc"),
				FontPreference: "sans",
			},
			BatchInstructions: "Adapt the following texts for dyslexia users: short sentences (max 15 words), simple words, active voice, bullet points where appropriate. Keep meaning intact.",
			Rules: Rules{
				SimplifyVocabulary: true,
				ShortenSentences:   true,
				UseBullets:         true,
			},
		},
		{
			ID:   ADHD,
			Name: "ADHD",
			Style: Style{
				Tint:           &Tint{Color: mustHex("#f5fffe"), Opacity: 0.12},
				Highlight:      mustHex("#008000"),
				FontPreference: "sans",
			},
			BatchInstructions: "Adapt the following texts for ADHD users: clear structure, short chunks, bullet points, highlight key info, remove unnecessary details. Keep meaning intact.",
			Rules: Rules{
				ShortenSentences: true,
				UseBullets:       true,
			},
		},
		{
			ID:   ESL,
			Name: "English learners",
			Style: Style{
				Highlight: mustHex("#000000"),
			},
			BatchInstructions: "Adapt the following texts for English learners: simpler words (original in parentheses), short sentences, explain idioms, consistent terms. Keep meaning intact.",
			Rules: Rules{
				SimplifyVocabulary: true,
				ShortenSentences:   true,
			},
		},
		{
			ID:   Vision,
			Name: "Low vision",
			Style: Style{
				Tint:      &Tint{Color: mustHex("#ffffe6"), Opacity: 0.16},
				Highlight: mustHex("#000000"),
			},
			BatchInstructions: "Adapt the following texts for low-vision readers: short lines, concrete wording, no dense paragraphs. Keep meaning intact.",
		},
	}
}
