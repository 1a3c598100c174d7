package reconstruct

import (
	"fmt"

	"readapt/internal/doc"
	"readapt/internal/profile"
)

// US Letter, the stand-in size when the source page reports no usable
// dimensions.
const (
	fallbackPageWidth  = 612.0
	fallbackPageHeight = 792.0

	plainTextMargin  = 50.0
	plainHeadingSize = 16.0
	plainHeadingDrop = 30.0
)

// plainText lays the adapted text out on a fresh page with default
// styling. The last rung of the ladder: it needs nothing from the source
// page and never fails, so every document yields readable output.
type plainText struct{}

func (*plainText) Tier() Tier { return TierPlainText }

func (*plainText) Attempt(page PageHandle, _ []doc.TextBlock, adapted []string, style profile.Style) (*doc.OutputPage, error) {
	w, h := page.Size()
	if w <= 0 || h <= 0 {
		w, h = fallbackPageWidth, fallbackPageHeight
	}

	family := MapFontFamily("", style.FontPreference)
	heading := doc.PlacedText{
		Rect:  doc.Rect{X0: plainTextMargin, Y0: plainTextMargin, X1: w - plainTextMargin, Y1: plainTextMargin + plainHeadingDrop},
		Text:  fmt.Sprintf("Page %d (adapted)", page.Number()),
		Font:  MapFontFamily("bold", style.FontPreference),
		Size:  plainHeadingSize,
		Color: style.Highlight.Hex(),
	}

	body := doc.PlacedText{
		Rect:  doc.Rect{X0: plainTextMargin, Y0: plainTextMargin + plainHeadingDrop, X1: w - plainTextMargin, Y1: h - plainTextMargin},
		Text:  combineAdapted(adapted),
		Font:  family,
		Size:  defaultFontSize,
		Color: "#000000",
	}
	if fc, err := face(family, defaultFontSize); err == nil {
		body.Clipped = !textFits(body.Text, fc, body.Rect.Width(), body.Rect.Height())
	}

	return &doc.OutputPage{
		Number: page.Number(),
		Width:  w,
		Height: h,
		Texts:  []doc.PlacedText{heading, body},
	}, nil
}
