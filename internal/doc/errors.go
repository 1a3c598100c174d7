package doc

import "errors"

var (
	// ErrInvalidDocument indicates a document representation that cannot be processed.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEditingUnsupported indicates the page's source does not expose
	// editable text objects.
	ErrEditingUnsupported = errors.New("page editing unsupported")

	// ErrRasterFailed indicates the page could not be rendered to an image.
	ErrRasterFailed = errors.New("page rasterization failed")

	// ErrPlacement indicates a hard text-placement failure (no usable target area).
	ErrPlacement = errors.New("text placement failed")
)
