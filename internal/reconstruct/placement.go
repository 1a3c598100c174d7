package reconstruct

import "readapt/internal/doc"

const (
	// blockClearMargin expands each covered block so original glyph edges
	// do not peek out from under the replacement.
	blockClearMargin = 2.0

	// Unified-area margins: the union of block boxes grows slightly, then
	// is pulled inside the page edge.
	unifiedMarginX = 10.0
	unifiedMarginY = 5.0
	pageEdgeMargin = 20.0

	defaultFontSize = 12.0
)

// UnifiedArea computes the single text region covering all block positions
// on the page. When no block carries a usable box the full content area
// inside the page margins is used instead.
func UnifiedArea(blocks []doc.TextBlock, pageW, pageH float64) doc.Rect {
	var union doc.Rect
	for _, b := range blocks {
		union = union.Union(b.BBox)
	}
	if union.IsDegenerate() {
		return contentArea(pageW, pageH)
	}

	area := doc.Rect{
		X0: max(union.X0-unifiedMarginX, pageEdgeMargin),
		Y0: max(union.Y0-unifiedMarginY, pageEdgeMargin),
		X1: min(union.X1+unifiedMarginX, pageW-pageEdgeMargin),
		Y1: min(union.Y1+unifiedMarginY, pageH-pageEdgeMargin),
	}
	if area.IsDegenerate() {
		return contentArea(pageW, pageH)
	}
	return area
}

func contentArea(pageW, pageH float64) doc.Rect {
	return doc.Rect{
		X0: pageEdgeMargin,
		Y0: pageEdgeMargin,
		X1: pageW - pageEdgeMargin,
		Y1: pageH - pageEdgeMargin,
	}
}

// AverageFontSize returns the mean font size of the blocks that declare
// one, falling back to a readable default.
func AverageFontSize(blocks []doc.TextBlock) float64 {
	var sum float64
	var n int
	for _, b := range blocks {
		if b.FontSize > 0 {
			sum += b.FontSize
			n++
		}
	}
	if n == 0 {
		return defaultFontSize
	}
	return sum / float64(n)
}

// dominantFamily returns the first declared font family, the closest thing
// the block list has to a page-level typeface.
func dominantFamily(blocks []doc.TextBlock) string {
	for _, b := range blocks {
		if b.FontFamily != "" {
			return b.FontFamily
		}
	}
	return ""
}
