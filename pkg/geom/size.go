package geom

import (
	"math"

	"volmeasure/pkg/errs"
)

// Size is an immutable number of voxels per dimension.
type Size struct {
	values []int
}

// NewSize creates a size. Values must be non-empty and strictly positive.
func NewSize(values ...int) (Size, error) {
	if len(values) == 0 {
		return Size{}, errs.Invalid("size: empty values")
	}
	for i, v := range values {
		if v <= 0 {
			return Size{}, errs.Invalid("size: non-positive value %d at %d", v, i)
		}
	}
	v := make([]int, len(values))
	copy(v, values)
	return Size{values: v}, nil
}

// MustSize is NewSize for literals known to be valid. It panics on error.
func MustSize(values ...int) Size {
	s, err := NewSize(values...)
	if err != nil {
		panic(err)
	}
	return s
}

// Get returns the size of dimension i, 1 for dimensions beyond the length.
func (s Size) Get(i int) int {
	if i >= len(s.values) {
		return 1
	}
	return s.values[i]
}

// Len returns the number of dimensions.
func (s Size) Len() int { return len(s.values) }

// Values returns a copy of the size values.
func (s Size) Values() []int {
	v := make([]int, len(s.values))
	copy(v, s.values)
	return v
}

// Equals reports whether both sizes hold the same values.
func (s Size) Equals(rhs Size) bool {
	if len(s.values) != len(rhs.values) {
		return false
	}
	for i, v := range s.values {
		if v != rhs.values[i] {
			return false
		}
	}
	return true
}

// MoreThanOne reports whether dimension dim holds more than one element.
func (s Size) MoreThanOne(dim int) bool { return s.Get(dim) > 1 }

// Is3D reports whether the third dimension holds more than one slice.
func (s Size) Is3D() bool { return s.MoreThanOne(2) }

// TotalSize returns the number of elements from dimension start upwards.
func (s Size) TotalSize(start int) int {
	total := 1
	for i := start; i < len(s.values); i++ {
		total *= s.values[i]
	}
	return total
}

// DimSize returns the number of elements covered by one step along dim.
func (s Size) DimSize(dim int) int {
	total := 1
	for i := 0; i < dim && i < len(s.values); i++ {
		total *= s.values[i]
	}
	return total
}

// CanScroll reports whether a view with the given orientation has more than
// one slice to scroll through.
func (s Size) CanScroll(viewOrientation Matrix33) bool {
	return s.MoreThanOne(viewOrientation.ThirdColMajorDirection())
}

// With returns a copy with dimension dim set to value, growing if needed.
func (s Size) With(dim, value int) Size {
	n := len(s.values)
	if dim >= n {
		n = dim + 1
	}
	v := make([]int, n)
	for i := range v {
		v[i] = 1
	}
	copy(v, s.values)
	v[dim] = value
	return Size{values: v}
}

// IsInBounds reports whether index lies within the size on the given
// dimensions (all index dimensions when dirs is empty).
func (s Size) IsInBounds(idx Index, dirs ...int) bool {
	if idx.Len() == 0 || idx.Len() > len(s.values) {
		return false
	}
	if len(dirs) == 0 {
		dirs = make([]int, idx.Len())
		for i := range dirs {
			dirs[i] = i
		}
	}
	for _, d := range dirs {
		if d < 0 || d >= idx.Len() {
			return false
		}
		if v := idx.Get(d); v < 0 || v > s.values[d]-1 {
			return false
		}
	}
	return true
}

// Get2D returns the first two dimensions.
func (s Size) Get2D() (x, y int) { return s.Get(0), s.Get(1) }

// Spacing is the immutable physical distance between voxels per dimension (mm).
type Spacing struct {
	values []float64
}

// NewSpacing creates a spacing. Values must be non-empty, finite and strictly positive.
func NewSpacing(values ...float64) (Spacing, error) {
	if len(values) == 0 {
		return Spacing{}, errs.Invalid("spacing: empty values")
	}
	for i, v := range values {
		if !isFinite(v) || v <= 0 {
			return Spacing{}, errs.Invalid("spacing: invalid value %v at %d", v, i)
		}
	}
	v := make([]float64, len(values))
	copy(v, values)
	return Spacing{values: v}, nil
}

// MustSpacing is NewSpacing for literals known to be valid. It panics on error.
func MustSpacing(values ...float64) Spacing {
	s, err := NewSpacing(values...)
	if err != nil {
		panic(err)
	}
	return s
}

// Get returns the spacing of dimension i, 1 for dimensions beyond the length.
func (s Spacing) Get(i int) float64 {
	if i >= len(s.values) {
		return 1
	}
	return s.values[i]
}

// Len returns the number of dimensions.
func (s Spacing) Len() int { return len(s.values) }

// Values returns a copy of the spacing values.
func (s Spacing) Values() []float64 {
	v := make([]float64, len(s.values))
	copy(v, s.values)
	return v
}

// Equals reports whether both spacings hold the same values.
func (s Spacing) Equals(rhs Spacing) bool {
	if len(s.values) != len(rhs.values) {
		return false
	}
	for i, v := range s.values {
		if v != rhs.values[i] {
			return false
		}
	}
	return true
}

// Get2D returns the spacing of the first two dimensions.
func (s Spacing) Get2D() Spacing2D { return Spacing2D{X: s.Get(0), Y: s.Get(1)} }

// Get3D returns the spacing of the first three dimensions as a vector.
func (s Spacing) Get3D() Vector3D { return Vector3D{X: s.Get(0), Y: s.Get(1), Z: s.Get(2)} }

// Spacing2D is the in-plane spacing of a view. The zero value means unknown.
type Spacing2D struct {
	X, Y float64
}

// Valid reports whether both spacings are known (finite and positive).
func (s Spacing2D) Valid() bool {
	return isFinite(s.X) && isFinite(s.Y) && s.X > 0 && s.Y > 0
}

// NumberRange is a closed [Min, Max] interval.
type NumberRange struct {
	Min, Max float64
}

// Contains reports whether v lies within the range.
func (r NumberRange) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// Clamp returns v limited to the range.
func (r NumberRange) Clamp(v float64) float64 { return math.Min(math.Max(v, r.Min), r.Max) }
