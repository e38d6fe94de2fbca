package shape

import (
	"math"

	"volmeasure/pkg/geom"
)

// Line is a segment between two points.
type Line struct {
	begin, end geom.Point2D
}

// NewLine creates a line from exactly two points.
func NewLine(points []geom.Point2D) (Line, error) {
	if len(points) != 2 {
		return Line{}, invalid("line needs 2 points, got %d", len(points))
	}
	if err := checkFinite(points...); err != nil {
		return Line{}, err
	}
	return Line{begin: points[0], end: points[1]}, nil
}

func (Line) sealed() {}

func (l Line) Kind() Kind             { return KindLine }
func (l Line) Begin() geom.Point2D    { return l.begin }
func (l Line) End() geom.Point2D      { return l.end }
func (l Line) Points() []geom.Point2D { return []geom.Point2D{l.begin, l.end} }
func (l Line) Centroid() geom.Point2D { return l.begin.Midpoint(l.end) }
func (l Line) Length() float64        { return l.begin.Distance(l.end) }
func (l Line) DeltaX() float64        { return l.end.X - l.begin.X }
func (l Line) DeltaY() float64        { return l.end.Y - l.begin.Y }

func (l Line) Equals(rhs Shape) bool {
	o, ok := rhs.(Line)
	return ok && l.begin.Equals(o.begin) && l.end.Equals(o.end)
}

func (l Line) Bounds() (min, max geom.Point2D) {
	return boundsOf([]geom.Point2D{l.begin, l.end})
}

func (l Line) Translate(dx, dy float64) Shape {
	return Line{begin: l.begin.Add(dx, dy), end: l.end.Add(dx, dy)}
}

// WorldLength returns the length in mm, false when the spacing is unknown.
func (l Line) WorldLength(sp geom.Spacing2D) (float64, bool) {
	if !sp.Valid() {
		return 0, false
	}
	return math.Hypot(l.DeltaX()*sp.X, l.DeltaY()*sp.Y), true
}

// Inclination returns the angle with the x axis in degrees, in [0, 360).
func (l Line) Inclination() float64 {
	angle := math.Atan2(-l.DeltaY(), l.DeltaX()) * 180 / math.Pi
	if angle < 0 {
		angle += 360
	}
	return angle
}

func (l Line) Quantify(access ImageAccess, _ Position, _ []string) Quantification {
	q := Quantification{}
	if length, ok := l.WorldLength(access.Spacing2D()); ok {
		q[KeyLength] = Value{Value: length, Unit: UnitMillimetre}
	}
	return q
}
