package model

// Point is a 2D coordinate in diagram space.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in diagram space.
type Rect struct {
	X, Y, W, H float64
}

// MaxX returns the right edge of the rectangle.
func (r Rect) MaxX() float64 { return r.X + r.W }

// MaxY returns the bottom edge of the rectangle.
func (r Rect) MaxY() float64 { return r.Y + r.H }

// Center returns the rectangle's center point.
func (r Rect) Center() Point { return Point{X: r.X + r.W/2, Y: r.Y + r.H/2} }

// Expand grows the rectangle by margin on all four sides.
func (r Rect) Expand(margin float64) Rect {
	return Rect{X: r.X - margin, Y: r.Y - margin, W: r.W + 2*margin, H: r.H + 2*margin}
}

// UnionRects returns the bounding box of all given rectangles.
// The zero Rect is returned for an empty input.
func UnionRects(rects []Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	minX, minY := rects[0].X, rects[0].Y
	maxX, maxY := rects[0].MaxX(), rects[0].MaxY()
	for _, r := range rects[1:] {
		minX = min(minX, r.X)
		minY = min(minY, r.Y)
		maxX = max(maxX, r.MaxX())
		maxY = max(maxY, r.MaxY())
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// AnchorPoints computes edge anchor points on the facing sides of two boxes.
// The side is chosen by the dominant axis of the center displacement:
// left/right when |dx| >= |dy|, top/bottom otherwise. Each anchor starts at
// its own box's center projected onto the facing side, with the perpendicular
// coordinate clamped to the opposite box's extent so the connector meets both
// boxes squarely.
func AnchorPoints(a, b Rect) (Point, Point) {
	ca, cb := a.Center(), b.Center()
	dx, dy := cb.X-ca.X, cb.Y-ca.Y

	if abs(dx) >= abs(dy) {
		pa := Point{Y: clamp(ca.Y, b.Y, b.MaxY())}
		pb := Point{Y: clamp(cb.Y, a.Y, a.MaxY())}
		if dx >= 0 {
			pa.X, pb.X = a.MaxX(), b.X
		} else {
			pa.X, pb.X = a.X, b.MaxX()
		}
		return pa, pb
	}

	pa := Point{X: clamp(ca.X, b.X, b.MaxX())}
	pb := Point{X: clamp(cb.X, a.X, a.MaxX())}
	if dy >= 0 {
		pa.Y, pb.Y = a.MaxY(), b.Y
	} else {
		pa.Y, pb.Y = a.Y, b.MaxY()
	}
	return pa, pb
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
