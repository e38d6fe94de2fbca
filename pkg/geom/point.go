package geom

import (
	"math"
	"strconv"
	"strings"

	"volmeasure/pkg/errs"
)

// Point is an immutable N-dimensional world coordinate. The first three
// components are physical (mm); a fourth component, when present, is the
// time point / frame.
type Point struct {
	values []float64
}

// NewPoint creates a point. Values must be non-empty and finite.
func NewPoint(values ...float64) (Point, error) {
	if len(values) == 0 {
		return Point{}, errs.Invalid("point: empty values")
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Point{}, errs.Invalid("point: non-finite value %v at %d", v, i)
		}
	}
	v := make([]float64, len(values))
	copy(v, values)
	return Point{values: v}, nil
}

// MustPoint is NewPoint for literals known to be valid. It panics on error.
func MustPoint(values ...float64) Point {
	p, err := NewPoint(values...)
	if err != nil {
		panic(err)
	}
	return p
}

// PointFrom3D creates a point from a Point3D and optional extra dimensions.
func PointFrom3D(p Point3D, extra ...float64) Point {
	v := make([]float64, 0, 3+len(extra))
	v = append(v, p.X, p.Y, p.Z)
	v = append(v, extra...)
	return Point{values: v}
}

// Get returns the value at dimension i.
func (p Point) Get(i int) float64 { return p.values[i] }

// Len returns the number of dimensions.
func (p Point) Len() int { return len(p.values) }

// Values returns a copy of the point values.
func (p Point) Values() []float64 {
	v := make([]float64, len(p.values))
	copy(v, p.values)
	return v
}

// CanCompare reports whether both points have the same length.
func (p Point) CanCompare(rhs Point) bool {
	return len(p.values) != 0 && len(p.values) == len(rhs.values)
}

// Equals reports whether both points hold the same values.
func (p Point) Equals(rhs Point) bool {
	if !p.CanCompare(rhs) {
		return false
	}
	for i, v := range p.values {
		if v != rhs.values[i] {
			return false
		}
	}
	return true
}

// IsSimilar reports whether both points are equal within tol per component.
func (p Point) IsSimilar(rhs Point, tol float64) bool {
	if !p.CanCompare(rhs) {
		return false
	}
	for i, v := range p.values {
		if math.Abs(v-rhs.values[i]) > tol {
			return false
		}
	}
	return true
}

// Get3D returns the first three components. Missing ones are zero.
func (p Point) Get3D() Point3D {
	var q [3]float64
	copy(q[:], p.values)
	return Point3D{X: q[0], Y: q[1], Z: q[2]}
}

// MergeWith3D returns a copy with the first three components replaced.
func (p Point) MergeWith3D(p3 Point3D) Point {
	v := p.Values()
	if len(v) < 3 {
		v = append(v, make([]float64, 3-len(v))...)
	}
	v[0], v[1], v[2] = p3.X, p3.Y, p3.Z
	return Point{values: v}
}

// String returns the point as "(x,y,z)".
func (p Point) String() string {
	parts := make([]string, len(p.values))
	for i, v := range p.values {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// Point2D is a 2D coordinate in a view plane.
type Point2D struct {
	X, Y float64
}

// Equals reports whether both points are identical.
func (p Point2D) Equals(rhs Point2D) bool { return p.X == rhs.X && p.Y == rhs.Y }

// IsSimilar reports whether both points are equal within tol per axis.
func (p Point2D) IsSimilar(rhs Point2D, tol float64) bool {
	return math.Abs(p.X-rhs.X) <= tol && math.Abs(p.Y-rhs.Y) <= tol
}

// Distance returns the euclidean distance to rhs.
func (p Point2D) Distance(rhs Point2D) float64 {
	return math.Hypot(p.X-rhs.X, p.Y-rhs.Y)
}

// Add returns the point moved by (dx, dy).
func (p Point2D) Add(dx, dy float64) Point2D { return Point2D{X: p.X + dx, Y: p.Y + dy} }

// Round returns the point with both coordinates rounded to the nearest integer.
func (p Point2D) Round() Point2D { return Point2D{X: math.Round(p.X), Y: math.Round(p.Y)} }

// IsFinite reports whether both coordinates are finite.
func (p Point2D) IsFinite() bool { return isFinite(p.X) && isFinite(p.Y) }

// Midpoint returns the point halfway between p and rhs.
func (p Point2D) Midpoint(rhs Point2D) Point2D {
	return Point2D{X: (p.X + rhs.X) / 2, Y: (p.Y + rhs.Y) / 2}
}

// Point3D is a 3D world coordinate.
type Point3D struct {
	X, Y, Z float64
}

// Equals reports whether both points are identical.
func (p Point3D) Equals(rhs Point3D) bool {
	return p.X == rhs.X && p.Y == rhs.Y && p.Z == rhs.Z
}

// IsSimilar reports whether both points are equal within tol per axis.
func (p Point3D) IsSimilar(rhs Point3D, tol float64) bool {
	return math.Abs(p.X-rhs.X) <= tol &&
		math.Abs(p.Y-rhs.Y) <= tol &&
		math.Abs(p.Z-rhs.Z) <= tol
}

// Distance returns the euclidean distance to rhs.
func (p Point3D) Distance(rhs Point3D) float64 {
	return p.Minus(rhs).Norm()
}

// Minus returns the vector from rhs to p.
func (p Point3D) Minus(rhs Point3D) Vector3D {
	return Vector3D{X: p.X - rhs.X, Y: p.Y - rhs.Y, Z: p.Z - rhs.Z}
}

// Plus returns p moved by v.
func (p Point3D) Plus(v Vector3D) Point3D {
	return Point3D{X: p.X + v.X, Y: p.Y + v.Y, Z: p.Z + v.Z}
}

// Closest returns the index of the closest point of the list, -1 if empty.
func (p Point3D) Closest(list []Point3D) int {
	closest := -1
	minDist := math.Inf(1)
	for i, q := range list {
		if d := p.Distance(q); d < minDist {
			minDist = d
			closest = i
		}
	}
	return closest
}

// IsFinite reports whether all coordinates are finite.
func (p Point3D) IsFinite() bool { return isFinite(p.X) && isFinite(p.Y) && isFinite(p.Z) }

// String returns the point as "(x,y,z)".
func (p Point3D) String() string {
	return PointFrom3D(p).String()
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
