package reconstruct

import (
	"fmt"

	"readapt/internal/doc"
	"readapt/internal/profile"
	"readapt/internal/progress"
)

// inPlace replaces each block's text inside its original bounding box,
// preserving per-block font family, size, and color. Highest fidelity,
// strictest requirements: the page must support editing and at least one
// block must yield a usable target area.
type inPlace struct {
	reporter progress.Reporter
}

func (*inPlace) Tier() Tier { return TierInPlace }

func (s *inPlace) Attempt(page PageHandle, blocks []doc.TextBlock, adapted []string, style profile.Style) (*doc.OutputPage, error) {
	ep, ok := page.(editablePage)
	if !ok {
		return nil, fmt.Errorf("%w: page %d does not support editing", ErrTierFailed, page.Number())
	}
	edit, err := ep.BeginEdit()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTierFailed, err)
	}

	w, h := page.Size()
	fill := "#ffffff"
	if style.Tint != nil {
		fill = style.Tint.Color.Hex()
	}

	failed := 0
	clipped := 0
	for i, b := range blocks {
		area := b.BBox.Expand(blockClearMargin, blockClearMargin).Clamp(w, h)
		if area.IsDegenerate() {
			failed++
			continue
		}

		family := MapFontFamily(b.FontFamily, style.FontPreference)
		size := b.FontSize
		if size <= 0 {
			size = defaultFontSize
		}
		fc, err := face(family, size)
		if err != nil {
			failed++
			continue
		}

		if err := edit.Clear(area, fill); err != nil {
			failed++
			continue
		}

		overflow := !textFits(adapted[i], fc, area.Width(), area.Height())
		if overflow {
			clipped++
		}
		if err := edit.Place(doc.PlacedText{
			Rect:    area,
			Text:    adapted[i],
			Font:    family,
			Size:    size,
			Color:   textColor(b),
			Clipped: overflow,
		}); err != nil {
			failed++
		}
	}

	if len(blocks) > 0 && failed == len(blocks) {
		return nil, fmt.Errorf("%w: page %d: no block could be replaced in place", ErrTierFailed, page.Number())
	}
	if clipped > 0 {
		s.reporter.Report(fmt.Sprintf("page %d: %d block(s) clipped, text may be truncated", page.Number(), clipped), 0)
	}
	return edit.Finish(), nil
}

func textColor(b doc.TextBlock) string {
	if b.Color != "" {
		return b.Color
	}
	return "#000000"
}
