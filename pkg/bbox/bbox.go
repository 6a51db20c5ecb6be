package bbox

import (
	"errors"
	"image"
	"math"
)

// DefaultMinSize is the minimum crop edge length in pixels
const DefaultMinSize = 16

// ErrInvalidPolygon is returned when a field carries no vertices
var ErrInvalidPolygon = errors.New("invalid polygon: no vertices")

// Point is a polygon vertex as reported by the recognition service
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is an axis-aligned rectangle with Left <= Right and Upper <= Lower
type Box struct {
	Left  float64
	Upper float64
	Right float64
	Lower float64
}

// Width returns the horizontal extent of the box
func (b Box) Width() float64 { return b.Right - b.Left }

// Height returns the vertical extent of the box
func (b Box) Height() float64 { return b.Lower - b.Upper }

// Points returns the top-left and bottom-right corners
func (b Box) Points() [][2]float64 {
	return [][2]float64{{b.Left, b.Upper}, {b.Right, b.Lower}}
}

// Pixels rounds each edge of the box to the nearest pixel
func (b Box) Pixels() image.Rectangle {
	return image.Rect(
		int(math.Round(b.Left)), int(math.Round(b.Upper)),
		int(math.Round(b.Right)), int(math.Round(b.Lower)),
	)
}

// Rect converts the box to pixel coordinates, rounding each edge to the
// nearest pixel and clamping the result to bounds
func (b Box) Rect(bounds image.Rectangle) image.Rectangle {
	p := b.Pixels()
	x1 := clamp(p.Min.X, bounds.Min.X, bounds.Max.X)
	y1 := clamp(p.Min.Y, bounds.Min.Y, bounds.Max.Y)
	x2 := clamp(p.Max.X, bounds.Min.X, bounds.Max.X)
	y2 := clamp(p.Max.Y, bounds.Min.Y, bounds.Max.Y)
	return image.Rect(x1, y1, x2, y2)
}

// ComputeBoundingBox returns the minimal axis-aligned box enclosing polygon.
// Vertex order and duplicate vertices do not affect the result.
func ComputeBoundingBox(polygon []Point) (Box, error) {
	if len(polygon) == 0 {
		return Box{}, ErrInvalidPolygon
	}

	box := Box{
		Left:  polygon[0].X,
		Upper: polygon[0].Y,
		Right: polygon[0].X,
		Lower: polygon[0].Y,
	}
	for _, p := range polygon[1:] {
		box.Left = math.Min(box.Left, p.X)
		box.Upper = math.Min(box.Upper, p.Y)
		box.Right = math.Max(box.Right, p.X)
		box.Lower = math.Max(box.Lower, p.Y)
	}

	return box, nil
}

// IsAcceptable reports whether both edges of box are at least minSize long
func IsAcceptable(box Box, minSize float64) bool {
	if box.Width() < minSize || box.Height() < minSize {
		return false
	}
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
