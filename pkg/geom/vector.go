package geom

import (
	"math"

	"github.com/golang/geo/r3"
)

// Vector3D is an immutable 3D displacement.
type Vector3D struct {
	X, Y, Z float64
}

func (v Vector3D) r3() r3.Vector { return r3.Vector(v) }

// Norm returns the euclidean length.
func (v Vector3D) Norm() float64 { return v.r3().Norm() }

// Dot returns the dot product with rhs.
func (v Vector3D) Dot(rhs Vector3D) float64 { return v.r3().Dot(rhs.r3()) }

// Cross returns the cross product v x rhs.
func (v Vector3D) Cross(rhs Vector3D) Vector3D { return Vector3D(v.r3().Cross(rhs.r3())) }

// Scale returns v multiplied by m.
func (v Vector3D) Scale(m float64) Vector3D { return Vector3D(v.r3().Mul(m)) }

// Add returns v + rhs.
func (v Vector3D) Add(rhs Vector3D) Vector3D { return Vector3D(v.r3().Add(rhs.r3())) }

// Normalize returns the unit vector with the same direction; the zero vector stays zero.
func (v Vector3D) Normalize() Vector3D { return Vector3D(v.r3().Normalize()) }

// IsCodirectional reports whether both vectors point the same way (dot > 0).
func (v Vector3D) IsCodirectional(rhs Vector3D) bool { return v.Dot(rhs) > 0 }

// Equals reports whether both vectors are identical.
func (v Vector3D) Equals(rhs Vector3D) bool {
	return v.X == rhs.X && v.Y == rhs.Y && v.Z == rhs.Z
}

// IsSimilar reports whether both vectors are equal within tol per axis.
func (v Vector3D) IsSimilar(rhs Vector3D, tol float64) bool {
	return math.Abs(v.X-rhs.X) <= tol &&
		math.Abs(v.Y-rhs.Y) <= tol &&
		math.Abs(v.Z-rhs.Z) <= tol
}

// String returns the vector as "(x,y,z)".
func (v Vector3D) String() string {
	return Point3D(v).String()
}
