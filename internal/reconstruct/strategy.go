// Package reconstruct rebuilds output pages from adapted text using a
// fixed ladder of strategies: in-place replacement, image overlay, tinted
// overlay, and finally a plain-text rendering that cannot fail. Each tier
// degrades visual fidelity but raises the chance of success; a document is
// never lost to a reconstruction failure.
package reconstruct

import (
	"fmt"
	"image"

	"readapt/internal/doc"
	"readapt/internal/profile"
	"readapt/internal/progress"
)

// Tier identifies a reconstruction strategy, ordered best-first.
type Tier int

const (
	TierInPlace Tier = iota + 1
	TierImageOverlay
	TierTintedOverlay
	TierPlainText
)

func (t Tier) String() string {
	switch t {
	case TierInPlace:
		return "in-place"
	case TierImageOverlay:
		return "image overlay"
	case TierTintedOverlay:
		return "tinted overlay"
	case TierPlainText:
		return "plain text"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// PageHandle is the minimal view of a source page every strategy needs.
// Strategies probe for further capabilities at runtime: pages that
// additionally support in-place editing or rasterization unlock the
// higher tiers.
type PageHandle interface {
	Number() int
	Size() (w, h float64)
}

type editablePage interface {
	BeginEdit() (*doc.PageEdit, error)
}

type rasterPage interface {
	Rasterize() (image.Image, error)
}

// Strategy is one reconstruction tier. Attempt either produces a complete
// output page or fails with an error wrapping ErrTierFailed, in which case
// the pipeline moves on to the next tier.
type Strategy interface {
	Tier() Tier
	Attempt(page PageHandle, blocks []doc.TextBlock, adapted []string, style profile.Style) (*doc.OutputPage, error)
}

// Pipeline runs strategies best-first until one succeeds.
type Pipeline struct {
	strategies []Strategy
	reporter   progress.Reporter
	pages      int
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithReporter installs a progress reporter. Strategies use it for
// non-fatal placement warnings; the pipeline itself reports each page's
// completion.
func WithReporter(r progress.Reporter) Option {
	return func(p *Pipeline) {
		p.reporter = progress.OrNop(r)
	}
}

// WithPageCount sets the document's page count so per-page completion
// reports carry a meaningful percentage.
func WithPageCount(n int) Option {
	return func(p *Pipeline) {
		p.pages = n
	}
}

// withStrategies replaces the default strategy ladder. Test hook.
func withStrategies(strategies ...Strategy) Option {
	return func(p *Pipeline) {
		p.strategies = strategies
	}
}

// NewPipeline builds a pipeline with the full four-tier ladder.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{reporter: progress.Nop{}}
	for _, opt := range opts {
		opt(p)
	}
	if p.strategies == nil {
		p.strategies = []Strategy{
			&inPlace{reporter: p.reporter},
			&imageOverlay{reporter: p.reporter},
			&tintedOverlay{reporter: p.reporter},
			&plainText{},
		}
	}
	return p
}

// ReconstructPage rebuilds one page from its blocks and their adapted
// texts, returning the output page and the tier that produced it. adapted
// must have one entry per block, aligned by index.
func (p *Pipeline) ReconstructPage(page PageHandle, blocks []doc.TextBlock, adapted []string, style profile.Style) (*doc.OutputPage, Tier, error) {
	if len(adapted) != len(blocks) {
		return nil, 0, fmt.Errorf("%w: %d texts for %d blocks", ErrBlockMismatch, len(adapted), len(blocks))
	}

	var lastErr error
	for _, s := range p.strategies {
		out, err := s.Attempt(page, blocks, adapted, style)
		if err != nil {
			lastErr = err
			continue
		}
		p.reportPage(page.Number(), s.Tier())
		return out, s.Tier(), nil
	}
	return nil, 0, fmt.Errorf("page %d: all reconstruction tiers failed: %w", page.Number(), lastErr)
}

func (p *Pipeline) reportPage(number int, tier Tier) {
	percent := 100
	if p.pages > 0 {
		percent = number * 100 / p.pages
	}
	p.reporter.Report(fmt.Sprintf("page %d reconstructed (%s)", number, tier), progress.Clamp(percent))
}
