package doc

import "image"

// PlacedText is one piece of adapted text positioned on an output page.
// Clipped marks text that did not fully fit its rectangle; placement
// overflow is reported but never fatal.
type PlacedText struct {
	Rect    Rect    `json:"rect"`
	Text    string  `json:"text"`
	Font    string  `json:"font,omitempty"`
	Size    float64 `json:"size,omitempty"`
	Color   string  `json:"color,omitempty"`
	Clipped bool    `json:"clipped,omitempty"`
}

// Fill is a solid rectangle painted beneath placed text, used to cover the
// original content when editing a page in place.
type Fill struct {
	Rect  Rect   `json:"rect"`
	Color string `json:"color"`
}

// OutputPage is one reconstructed page. Vector tiers populate Fills and
// Texts; raster tiers populate Raster instead, with the text already drawn
// into the image.
type OutputPage struct {
	Number int          `json:"number"`
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Fills  []Fill       `json:"fills,omitempty"`
	Texts  []PlacedText `json:"texts,omitempty"`
	Raster *image.RGBA  `json:"-"`
}
