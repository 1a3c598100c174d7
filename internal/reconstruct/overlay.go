package reconstruct

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"readapt/internal/doc"
	"readapt/internal/profile"
	"readapt/internal/progress"
)

// Opacity of the white panels painted over original content before adapted
// text is drawn on top.
const coverOpacity = 0.85

// imageOverlay renders the original page to an image, covers each block
// with a translucent white panel, and draws all adapted text in one
// unified area. Original visuals outside the text blocks survive.
type imageOverlay struct {
	reporter progress.Reporter
}

func (*imageOverlay) Tier() Tier { return TierImageOverlay }

func (s *imageOverlay) Attempt(page PageHandle, blocks []doc.TextBlock, adapted []string, style profile.Style) (*doc.OutputPage, error) {
	if len(blocks) > 0 && allDegenerate(blocks) {
		return nil, fmt.Errorf("%w: page %d block geometry is unreliable", ErrTierFailed, page.Number())
	}
	canvas, sx, sy, err := rasterCanvas(page)
	if err != nil {
		return nil, err
	}

	tintCanvas(canvas, style)
	cover := coverColor()
	for _, b := range blocks {
		area := b.BBox.Expand(blockClearMargin, blockClearMargin)
		if area.IsDegenerate() {
			continue
		}
		fillRect(canvas, scaleRect(area, sx, sy), cover)
	}

	return drawUnified(s.reporter, page, canvas, sx, sy, blocks, adapted, style)
}

// tintedOverlay renders the original page, lays the profile tint over the
// whole image, and draws adapted text on a single covering panel. Used
// when block geometry is too degraded for per-block covering.
type tintedOverlay struct {
	reporter progress.Reporter
}

func (*tintedOverlay) Tier() Tier { return TierTintedOverlay }

func (s *tintedOverlay) Attempt(page PageHandle, blocks []doc.TextBlock, adapted []string, style profile.Style) (*doc.OutputPage, error) {
	canvas, sx, sy, err := rasterCanvas(page)
	if err != nil {
		return nil, err
	}

	tintCanvas(canvas, style)
	w, h := page.Size()
	area := UnifiedArea(blocks, w, h)
	fillRect(canvas, scaleRect(area, sx, sy), coverColor())

	return drawUnified(s.reporter, page, canvas, sx, sy, blocks, adapted, style)
}

// rasterCanvas renders the page and returns a mutable copy plus the
// point-to-pixel scale factors.
func rasterCanvas(page PageHandle) (*image.RGBA, float64, float64, error) {
	rp, ok := page.(rasterPage)
	if !ok {
		return nil, 0, 0, fmt.Errorf("%w: page %d does not support rasterization", ErrTierFailed, page.Number())
	}
	img, err := rp.Rasterize()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%w: %v", ErrTierFailed, err)
	}

	w, h := page.Size()
	b := img.Bounds()
	if w <= 0 || h <= 0 || b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, 0, 0, fmt.Errorf("%w: page %d rasterized to an empty image", ErrTierFailed, page.Number())
	}

	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), img, b.Min, draw.Src)
	return canvas, float64(b.Dx()) / w, float64(b.Dy()) / h, nil
}

// drawUnified places the combined adapted text in the page's unified area
// and wraps the canvas into an output page.
func drawUnified(reporter progress.Reporter, page PageHandle, canvas *image.RGBA, sx, sy float64, blocks []doc.TextBlock, adapted []string, style profile.Style) (*doc.OutputPage, error) {
	w, h := page.Size()
	area := UnifiedArea(blocks, w, h)

	family := MapFontFamily(dominantFamily(blocks), style.FontPreference)
	size := AverageFontSize(blocks) * sy
	fc, err := face(family, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTierFailed, err)
	}

	if clipped := drawTextBox(canvas, scaleRect(area, sx, sy), combineAdapted(adapted), fc, color.Black); clipped {
		progress.OrNop(reporter).Report(
			fmt.Sprintf("page %d: adapted text exceeds the available area, trailing text clipped", page.Number()), 0)
	}

	return &doc.OutputPage{
		Number: page.Number(),
		Width:  w,
		Height: h,
		Raster: canvas,
	}, nil
}

func tintCanvas(canvas *image.RGBA, style profile.Style) {
	if style.Tint == nil {
		return
	}
	draw.Draw(canvas, canvas.Bounds(),
		image.NewUniform(withOpacity(style.Tint.Color, style.Tint.Opacity)),
		image.Point{}, draw.Over)
}

func coverColor() color.Color {
	alpha := coverOpacity * 255
	return color.NRGBA{R: 255, G: 255, B: 255, A: uint8(alpha)}
}

func withOpacity(c colorful.Color, opacity float64) color.Color {
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(opacity * 255)}
}

func fillRect(canvas *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(canvas, r.Intersect(canvas.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}

func scaleRect(r doc.Rect, sx, sy float64) image.Rectangle {
	return image.Rect(
		int(r.X0*sx), int(r.Y0*sy),
		int(r.X1*sx), int(r.Y1*sy),
	)
}

func allDegenerate(blocks []doc.TextBlock) bool {
	for _, b := range blocks {
		if !b.BBox.IsDegenerate() {
			return false
		}
	}
	return true
}

// combineAdapted joins the per-block texts into one body, blank blocks
// omitted.
func combineAdapted(adapted []string) string {
	parts := make([]string, 0, len(adapted))
	for _, t := range adapted {
		if strings.TrimSpace(t) != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}
