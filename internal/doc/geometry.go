package doc

// Rect is an axis-aligned rectangle in page coordinates (points, origin
// top-left, y growing downward).
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

func (r Rect) Width() float64  { return r.X1 - r.X0 }
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// IsDegenerate reports whether the rectangle has no usable area.
func (r Rect) IsDegenerate() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Union returns the smallest rectangle covering both r and o. A degenerate
// operand is ignored so that accumulating a union over a mixed block list
// does not drag in zero-area boxes.
func (r Rect) Union(o Rect) Rect {
	if r.IsDegenerate() {
		return o
	}
	if o.IsDegenerate() {
		return r
	}
	return Rect{
		X0: min(r.X0, o.X0),
		Y0: min(r.Y0, o.Y0),
		X1: max(r.X1, o.X1),
		Y1: max(r.Y1, o.Y1),
	}
}

// Expand grows the rectangle by dx horizontally and dy vertically on each side.
func (r Rect) Expand(dx, dy float64) Rect {
	return Rect{X0: r.X0 - dx, Y0: r.Y0 - dy, X1: r.X1 + dx, Y1: r.Y1 + dy}
}

// Clamp restricts the rectangle to the page area [0,w] x [0,h].
func (r Rect) Clamp(w, h float64) Rect {
	return Rect{
		X0: max(r.X0, 0),
		Y0: max(r.Y0, 0),
		X1: min(r.X1, w),
		Y1: min(r.Y1, h),
	}
}
