package profile

import (
	"fmt"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// configFile is the YAML shape of a profile configuration file.
//
//	profiles:
//	  dyslexia:
//	    name: Dyslexia (school)
//	    tint: "#fffef5"
//	    tint_opacity: 0.12
//	    highlight: "#0066cc"
//	    font: sans
//	    instructions: Adapt the following texts ...
//	    rules:
//	      simplify_vocabulary: true
//	      shorten_sentences: true
//	      use_bullets: true
type configFile struct {
	Profiles map[string]profileConfig `yaml:"profiles"`
}

type profileConfig struct {
	Name         string       `yaml:"name"`
	Tint         string       `yaml:"tint"`
	TintOpacity  *float64     `yaml:"tint_opacity"`
	Highlight    string       `yaml:"highlight"`
	Font         string       `yaml:"font"`
	Instructions string       `yaml:"instructions"`
	Rules        *rulesConfig `yaml:"rules"`
}

type rulesConfig struct {
	SimplifyVocabulary bool `yaml:"simplify_vocabulary"`
	ShortenSentences   bool `yaml:"shorten_sentences"`
	UseBullets         bool `yaml:"use_bullets"`
}

// defaultTintOpacity applies when a tint color is configured without an opacity.
const defaultTintOpacity = 0.12

// LoadFile merges profiles from a YAML file over the registry. Existing
// profiles are updated field-by-field; unknown identifiers create new
// profiles. Returns ErrInvalidConfig for unreadable or malformed input.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- user-specified configuration file
	if err != nil {
		return fmt.Errorf("cannot read profile configuration %s: %w", path, ErrInvalidConfig)
	}

	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("cannot parse profile configuration %s: %v: %w", path, err, ErrInvalidConfig)
	}

	for id, pc := range cfg.Profiles {
		if id == "" {
			return fmt.Errorf("profile identifier cannot be empty: %w", ErrInvalidConfig)
		}

		p, ok := r.profiles[id]
		if !ok {
			p = Profile{ID: id, Name: id, Style: r.profiles[Default].Style}
		}

		if err := applyConfig(&p, pc); err != nil {
			return fmt.Errorf("profile %q: %w", id, err)
		}
		r.put(p)
	}

	return nil
}

// applyConfig overlays non-empty config fields onto p.
func applyConfig(p *Profile, pc profileConfig) error {
	if pc.Name != "" {
		p.Name = pc.Name
	}
	if pc.Instructions != "" {
		p.BatchInstructions = pc.Instructions
	}
	if pc.Font != "" {
		p.Style.FontPreference = pc.Font
	}

	if pc.Tint != "" {
		c, err := colorful.Hex(pc.Tint)
		if err != nil {
			return fmt.Errorf("invalid tint color %q: %w", pc.Tint, ErrInvalidConfig)
		}
		opacity := defaultTintOpacity
		if pc.TintOpacity != nil {
			opacity = *pc.TintOpacity
		}
		if opacity < 0 || opacity > 1 {
			return fmt.Errorf("tint opacity %v out of range [0,1]: %w", opacity, ErrInvalidConfig)
		}
		p.Style.Tint = &Tint{Color: c, Opacity: opacity}
	}

	if pc.Highlight != "" {
		c, err := colorful.Hex(pc.Highlight)
		if err != nil {
			return fmt.Errorf("invalid highlight color %q: %w", pc.Highlight, ErrInvalidConfig)
		}
		p.Style.Highlight = c
	}

	if pc.Rules != nil {
		p.Rules = Rules{
			SimplifyVocabulary: pc.Rules.SimplifyVocabulary,
			ShortenSentences:   pc.Rules.ShortenSentences,
			UseBullets:         pc.Rules.UseBullets,
		}
	}

	return nil
}
