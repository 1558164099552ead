package pose

import "math"

// Point is a 2D position in pixel space. All angle and offset computations
// run in pixel space (normalized coordinates scaled by image dimensions) so
// asymmetry magnitudes are comparable to physical image size.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// AngleBetweenPoints returns the angle in degrees at vertex between the rays
// vertex→p1 and vertex→p3, via the normalized dot product. The cosine is
// clamped to [-1, 1] before acos so floating-point drift can never produce a
// domain error. Degenerate input (either ray has zero length) returns 0
// rather than NaN; callers treating 0° as a real reading should cross-check
// the visibility that produced the points.
func AngleBetweenPoints(p1, vertex, p3 Point) float64 {
	v1x := p1.X - vertex.X
	v1y := p1.Y - vertex.Y
	v2x := p3.X - vertex.X
	v2y := p3.Y - vertex.Y

	len1 := math.Hypot(v1x, v1y)
	len2 := math.Hypot(v2x, v2y)
	if len1 == 0 || len2 == 0 {
		return 0
	}

	cos := (v1x*v2x + v1y*v2y) / (len1 * len2)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// AngleToHorizontal returns the angle in degrees at vertex between the ray
// vertex→p and a horizontal reference ray through vertex. Used for level
// metrics (shoulder/pelvic tilt) and the cranio-vertebral angle.
func AngleToHorizontal(p, vertex Point) float64 {
	ref := Point{X: vertex.X + 1, Y: vertex.Y}
	return AngleBetweenPoints(p, vertex, ref)
}

// HorizontalOffset is the signed pixel displacement a.X − b.X. Positive means
// a sits rightward of b (anterior in a left-facing sagittal capture).
func HorizontalOffset(a, b Point) float64 {
	return a.X - b.X
}

// VerticalGap is the absolute vertical pixel distance between two points.
func VerticalGap(a, b Point) float64 {
	return math.Abs(a.Y - b.Y)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}
