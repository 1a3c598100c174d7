// Package doc defines the intermediate document representation exchanged
// with extraction collaborators: pages of positioned text blocks plus the
// reconstructed output pages produced from them.
package doc

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// TextBlock is one extracted run of text with its position and styling on
// the page. Paragraph and Run preserve the reading order assigned by the
// extractor.
type TextBlock struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	BBox       Rect    `json:"bbox"`
	FontFamily string  `json:"font_family,omitempty"`
	FontSize   float64 `json:"font_size,omitempty"`
	Color      string  `json:"color,omitempty"`
	Paragraph  int     `json:"paragraph"`
	Run        int     `json:"run"`
}

// Page is one source page. RasterOnly marks pages whose source format does
// not expose editable text objects, forcing overlay reconstruction.
type Page struct {
	Number     int         `json:"number"`
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	RasterOnly bool        `json:"raster_only,omitempty"`
	Blocks     []TextBlock `json:"blocks"`
}

// Document is the interchange form produced by an extraction collaborator.
type Document struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	Pages []Page `json:"pages"`
}

// DecodeDocument reads a JSON document and normalizes it: missing document
// and block IDs are assigned, page numbers default to their sequence
// position, and structural problems are rejected.
func DecodeDocument(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var d Document
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := d.normalize(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Encode writes the document as indented JSON.
func (d *Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return nil
}

func (d *Document) normalize() error {
	if len(d.Pages) == 0 {
		return fmt.Errorf("%w: document has no pages", ErrInvalidDocument)
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	for pi := range d.Pages {
		p := &d.Pages[pi]
		if p.Number == 0 {
			p.Number = pi + 1
		}
		if p.Width <= 0 || p.Height <= 0 {
			return fmt.Errorf("%w: page %d has non-positive dimensions %gx%g",
				ErrInvalidDocument, p.Number, p.Width, p.Height)
		}
		for bi := range p.Blocks {
			b := &p.Blocks[bi]
			if b.ID == "" {
				b.ID = fmt.Sprintf("p%d-b%d", p.Number, bi+1)
			}
		}
	}
	return nil
}
