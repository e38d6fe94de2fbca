package shape

import (
	"math"

	"volmeasure/pkg/geom"
)

// Ellipse is an axis aligned ellipse with radii A (x) and B (y).
type Ellipse struct {
	center geom.Point2D
	a, b   float64
}

// NewEllipse creates an ellipse. Radii must be finite and not negative.
func NewEllipse(center geom.Point2D, a, b float64) (Ellipse, error) {
	if err := checkFinite(center); err != nil {
		return Ellipse{}, err
	}
	for _, r := range []float64{a, b} {
		if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
			return Ellipse{}, invalid("invalid ellipse radius %v", r)
		}
	}
	return Ellipse{center: center, a: a, b: b}, nil
}

func (Ellipse) sealed() {}

func (e Ellipse) Kind() Kind             { return KindEllipse }
func (e Ellipse) Center() geom.Point2D   { return e.center }
func (e Ellipse) A() float64             { return e.a }
func (e Ellipse) B() float64             { return e.b }
func (e Ellipse) Centroid() geom.Point2D { return e.center }
func (e Ellipse) Points() []geom.Point2D { return []geom.Point2D{e.center} }
func (e Ellipse) Surface() float64       { return math.Pi * e.a * e.b }

func (e Ellipse) Equals(rhs Shape) bool {
	o, ok := rhs.(Ellipse)
	return ok && e.center.Equals(o.center) && e.a == o.a && e.b == o.b
}

func (e Ellipse) Bounds() (min, max geom.Point2D) {
	return e.center.Add(-e.a, -e.b), e.center.Add(e.a, e.b)
}

func (e Ellipse) Translate(dx, dy float64) Shape {
	return Ellipse{center: e.center.Add(dx, dy), a: e.a, b: e.b}
}

func (e Ellipse) WorldSurface(sp geom.Spacing2D) (float64, bool) {
	return worldSurface(e.Surface(), sp)
}

func (e Ellipse) Segments() []Segment {
	return ellipseSegments(e.center, e.a, e.b)
}

func (e Ellipse) Quantify(access ImageAccess, at Position, flags []string) Quantification {
	return quantifyArea(e, access, at, flags)
}

func (e Ellipse) regionValues(access ImageAccess, at Position) []float64 {
	return access.ImageVariableRegionValues(e.Segments(), at)
}
