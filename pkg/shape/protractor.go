package shape

import (
	"math"
	"slices"

	"volmeasure/pkg/geom"
)

// Protractor measures the angle at its middle point.
type Protractor struct {
	points [3]geom.Point2D
}

// NewProtractor creates a protractor from exactly three points.
func NewProtractor(points []geom.Point2D) (Protractor, error) {
	if len(points) != 3 {
		return Protractor{}, invalid("protractor needs 3 points, got %d", len(points))
	}
	if err := checkFinite(points...); err != nil {
		return Protractor{}, err
	}
	return Protractor{points: [3]geom.Point2D{points[0], points[1], points[2]}}, nil
}

func (Protractor) sealed() {}

func (p Protractor) Kind() Kind               { return KindProtractor }
func (p Protractor) Point(i int) geom.Point2D { return p.points[i] }
func (p Protractor) Points() []geom.Point2D   { return slices.Clone(p.points[:]) }

// Centroid returns the vertex.
func (p Protractor) Centroid() geom.Point2D { return p.points[1] }

func (p Protractor) Equals(rhs Shape) bool {
	o, ok := rhs.(Protractor)
	return ok && p.points == o.points
}

func (p Protractor) Bounds() (min, max geom.Point2D) { return boundsOf(p.points[:]) }

func (p Protractor) Translate(dx, dy float64) Shape {
	var res Protractor
	for i, pt := range p.points {
		res.points[i] = pt.Add(dx, dy)
	}
	return res
}

// WithPoint returns a copy with point i replaced.
func (p Protractor) WithPoint(i int, pt geom.Point2D) Protractor {
	res := p
	res.points[i] = pt
	return res
}

// Angle returns the angle in degrees in [0, 180] between the segments
// 0-1 and 1-2.
func (p Protractor) Angle() float64 {
	return AngleBetween(p.points[0], p.points[1], p.points[1], p.points[2])
}

// AngleBetween returns the angle in degrees between lines a0-a1 and b0-b1,
// reflected to be at most 180.
func AngleBetween(a0, a1, b0, b1 geom.Point2D) float64 {
	dx0, dy0 := a1.X-a0.X, a1.Y-a0.Y
	dx1, dy1 := b1.X-b0.X, b1.Y-b0.Y
	dot := dx0*dx1 + dy0*dy1
	det := dx0*dy1 - dy0*dx1
	angle := 180 - math.Atan2(det, dot)*180/math.Pi
	if angle > 180 {
		angle = 360 - angle
	}
	return angle
}

// Quantify returns the angle; it does not depend on image data.
func (p Protractor) Quantify(_ ImageAccess, _ Position, _ []string) Quantification {
	return Quantification{KeyAngle: {Value: p.Angle(), Unit: UnitDegree}}
}
