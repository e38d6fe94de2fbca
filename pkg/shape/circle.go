package shape

import (
	"math"

	"volmeasure/pkg/errs"
	"volmeasure/pkg/geom"
)

// scanline rows below these limits are degenerate
const (
	minDiscriminant = 1e-7
	minHalfWidth    = 0.5
)

func invalid(format string, args ...any) error {
	return errs.Invalid("shape: "+format, args...)
}

// Circle is a circle of given center and radius.
type Circle struct {
	center geom.Point2D
	radius float64
}

// NewCircle creates a circle. The radius must be finite and not negative.
func NewCircle(center geom.Point2D, radius float64) (Circle, error) {
	if err := checkFinite(center); err != nil {
		return Circle{}, err
	}
	if math.IsNaN(radius) || math.IsInf(radius, 0) || radius < 0 {
		return Circle{}, invalid("invalid circle radius %v", radius)
	}
	return Circle{center: center, radius: radius}, nil
}

func (Circle) sealed() {}

func (c Circle) Kind() Kind             { return KindCircle }
func (c Circle) Center() geom.Point2D   { return c.center }
func (c Circle) Radius() float64        { return c.radius }
func (c Circle) Centroid() geom.Point2D { return c.center }
func (c Circle) Points() []geom.Point2D { return []geom.Point2D{c.center} }
func (c Circle) Surface() float64       { return math.Pi * c.radius * c.radius }

func (c Circle) Equals(rhs Shape) bool {
	o, ok := rhs.(Circle)
	return ok && c.center.Equals(o.center) && c.radius == o.radius
}

func (c Circle) Bounds() (min, max geom.Point2D) {
	return c.center.Add(-c.radius, -c.radius), c.center.Add(c.radius, c.radius)
}

func (c Circle) Translate(dx, dy float64) Shape {
	return Circle{center: c.center.Add(dx, dy), radius: c.radius}
}

func (c Circle) WorldSurface(sp geom.Spacing2D) (float64, bool) {
	return worldSurface(c.Surface(), sp)
}

// Segments returns the pixel rows covered by the circle.
func (c Circle) Segments() []Segment {
	return ellipseSegments(c.center, c.radius, c.radius)
}

// Quantify returns the surface and, when the image allows it, the pixel
// statistics of the circle.
func (c Circle) Quantify(access ImageAccess, at Position, flags []string) Quantification {
	return quantifyArea(c, access, at, flags)
}

// ellipseSegments solves x = cx ± a*sqrt(1 - ((y-cy)/b)²) per integer row.
func ellipseSegments(center geom.Point2D, a, b float64) []Segment {
	if a == 0 || b == 0 {
		return nil
	}
	var segments []Segment
	for y := math.Ceil(center.Y - b); y < center.Y+b; y++ {
		dy := (y - center.Y) / b
		diff := 1 - dy*dy
		if diff < minDiscriminant {
			continue
		}
		xd := a * math.Sqrt(diff)
		if xd < minHalfWidth {
			continue
		}
		segments = append(segments, Segment{
			X:     int(math.Round(center.X - xd)),
			Y:     int(y),
			Width: int(math.Round(2 * xd)),
		})
	}
	return segments
}

// quantifyArea is the quantification shared by the area shapes.
func quantifyArea(s AreaShape, access ImageAccess, at Position, flags []string) Quantification {
	q := Quantification{}
	if surface, ok := s.WorldSurface(access.Spacing2D()); ok {
		q[KeySurface] = Value{Value: surface / 100, Unit: UnitSquareCentimetre}
	}
	if !access.CanQuantifyImage() {
		return q
	}
	addStats(q, s.regionValues(access, at), flags, access.PixelUnit())
	return q
}

func (c Circle) regionValues(access ImageAccess, at Position) []float64 {
	return access.ImageVariableRegionValues(c.Segments(), at)
}
