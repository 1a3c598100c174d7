package doc

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
)

// MemoryPage is the in-memory page handle handed to the reconstruction
// pipeline. It wraps an extracted Page and optionally a background raster
// supplied by the extraction collaborator.
type MemoryPage struct {
	page       Page
	background image.Image
}

// PageOption customizes a MemoryPage.
type PageOption func(*MemoryPage)

// WithBackground supplies a rendered image of the original page. When set,
// Rasterize returns it instead of a blank canvas.
func WithBackground(img image.Image) PageOption {
	return func(m *MemoryPage) {
		m.background = img
	}
}

func NewMemoryPage(page Page, opts ...PageOption) *MemoryPage {
	m := &MemoryPage{page: page}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemoryPage) Number() int { return m.page.Number }

func (m *MemoryPage) Size() (w, h float64) { return m.page.Width, m.page.Height }

// Blocks returns the page's text blocks in extraction order.
func (m *MemoryPage) Blocks() []TextBlock { return m.page.Blocks }

// BeginEdit opens an in-place editing session. It fails when the page's
// source format does not expose editable text objects.
func (m *MemoryPage) BeginEdit() (*PageEdit, error) {
	if m.page.RasterOnly {
		return nil, fmt.Errorf("page %d: %w", m.page.Number, ErrEditingUnsupported)
	}
	if m.page.Width <= 0 || m.page.Height <= 0 {
		return nil, fmt.Errorf("page %d has no usable area: %w", m.page.Number, ErrEditingUnsupported)
	}
	return &PageEdit{
		out: &OutputPage{
			Number: m.page.Number,
			Width:  m.page.Width,
			Height: m.page.Height,
		},
	}, nil
}

// Rasterize renders the page to an image at one pixel per point. The
// collaborator-supplied background is used when present; otherwise the
// original visuals are unknown to the in-memory model and a white canvas
// of the page's dimensions stands in for them.
func (m *MemoryPage) Rasterize() (image.Image, error) {
	if m.background != nil {
		return m.background, nil
	}
	w := int(math.Ceil(m.page.Width))
	h := int(math.Ceil(m.page.Height))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("page %d has no usable area: %w", m.page.Number, ErrRasterFailed)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img, nil
}

// PageEdit accumulates in-place edits and produces the resulting output
// page. Fills and placements keep their call order so later edits paint
// over earlier ones.
type PageEdit struct {
	out *OutputPage
}

// Clear covers a rectangle with a solid color, hiding the original content
// beneath it.
func (e *PageEdit) Clear(r Rect, colorHex string) error {
	clamped := r.Clamp(e.out.Width, e.out.Height)
	if clamped.IsDegenerate() {
		return fmt.Errorf("clear %v outside page %d: %w", r, e.out.Number, ErrPlacement)
	}
	e.out.Fills = append(e.out.Fills, Fill{Rect: clamped, Color: colorHex})
	return nil
}

// Place adds a positioned text run to the page.
func (e *PageEdit) Place(t PlacedText) error {
	clamped := t.Rect.Clamp(e.out.Width, e.out.Height)
	if clamped.IsDegenerate() {
		return fmt.Errorf("place %v outside page %d: %w", t.Rect, e.out.Number, ErrPlacement)
	}
	t.Rect = clamped
	e.out.Texts = append(e.out.Texts, t)
	return nil
}

// Finish returns the edited page. The edit must not be used afterwards.
func (e *PageEdit) Finish() *OutputPage {
	return e.out
}
