// Package geom provides the immutable geometric primitives used across
// volmeasure: voxel indices, world points, vectors, 3x3 orientation matrices,
// sizes and spacings.
//
// All types are values. Methods never modify the receiver; operations that
// change a value return a new one.
package geom

import (
	"fmt"
	"strconv"
	"strings"

	"volmeasure/pkg/errs"
)

// Index is an immutable voxel coordinate (i, j, k[, t, ...]).
type Index struct {
	values []int
}

// NewIndex creates an index from its values. At least one value is required.
func NewIndex(values ...int) (Index, error) {
	if len(values) == 0 {
		return Index{}, errs.Invalid("index: empty values")
	}
	v := make([]int, len(values))
	copy(v, values)
	return Index{values: v}, nil
}

// MustIndex is NewIndex for literals known to be valid. It panics on error.
func MustIndex(values ...int) Index {
	idx, err := NewIndex(values...)
	if err != nil {
		panic(err)
	}
	return idx
}

// Get returns the value at dimension i.
func (idx Index) Get(i int) int { return idx.values[i] }

// Len returns the number of dimensions.
func (idx Index) Len() int { return len(idx.values) }

// Values returns a copy of the index values.
func (idx Index) Values() []int {
	v := make([]int, len(idx.values))
	copy(v, idx.values)
	return v
}

// CanCompare reports whether both indices have the same length.
func (idx Index) CanCompare(rhs Index) bool {
	return len(idx.values) != 0 && len(idx.values) == len(rhs.values)
}

// Equals reports whether both indices hold the same values.
func (idx Index) Equals(rhs Index) bool {
	if !idx.CanCompare(rhs) {
		return false
	}
	for i, v := range idx.values {
		if v != rhs.values[i] {
			return false
		}
	}
	return true
}

// Compare returns the dimensions where the indices differ, or ok=false if
// they cannot be compared.
func (idx Index) Compare(rhs Index) (diffDims []int, ok bool) {
	if !idx.CanCompare(rhs) {
		return nil, false
	}
	for i, v := range idx.values {
		if v != rhs.values[i] {
			diffDims = append(diffDims, i)
		}
	}
	return diffDims, true
}

// Add returns the element-wise sum, or ok=false if the lengths differ.
func (idx Index) Add(rhs Index) (Index, bool) {
	if !idx.CanCompare(rhs) {
		return Index{}, false
	}
	v := make([]int, len(idx.values))
	for i := range v {
		v[i] = idx.values[i] + rhs.values[i]
	}
	return Index{values: v}, true
}

// WithNew2D returns a copy with the first two values replaced.
func (idx Index) WithNew2D(i, j int) Index {
	v := idx.Values()
	v[0] = i
	if len(v) > 1 {
		v[1] = j
	}
	return Index{values: v}
}

// With returns a copy with dimension dim set to value, growing the index if needed.
func (idx Index) With(dim, value int) Index {
	n := len(idx.values)
	if dim >= n {
		n = dim + 1
	}
	v := make([]int, n)
	copy(v, idx.values)
	v[dim] = value
	return Index{values: v}
}

// String returns the index as "(i,j,k)".
func (idx Index) String() string {
	parts := make([]string, len(idx.values))
	for i, v := range idx.values {
		parts[i] = strconv.Itoa(v)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// ToStringID returns a string id built from the given dimensions, for
// example "#2-10_#3-1". With no dims, all dimensions are used.
func (idx Index) ToStringID(dims ...int) string {
	if len(dims) == 0 {
		dims = make([]int, len(idx.values))
		for i := range dims {
			dims[i] = i
		}
	}
	parts := make([]string, 0, len(dims))
	for _, d := range dims {
		if d < 0 || d >= len(idx.values) {
			continue
		}
		parts = append(parts, fmt.Sprintf("#%d-%d", d, idx.values[d]))
	}
	return strings.Join(parts, "_")
}
