package geom

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Matrix33 is an immutable 3x3 matrix stored row-major:
//
//	| m[0] m[1] m[2] |
//	| m[3] m[4] m[5] |
//	| m[6] m[7] m[8] |
//
// Orientation matrices hold the row, column and normal direction cosines
// as their columns.
type Matrix33 [9]float64

// Identity33 returns the identity matrix (axial orientation).
func Identity33() Matrix33 {
	return Matrix33{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// IsIdentity33 reports whether m is the identity matrix.
func IsIdentity33(m Matrix33) bool {
	return m.Equals(Identity33())
}

// Coronal33 returns the coronal view orientation.
func Coronal33() Matrix33 {
	return Matrix33{1, 0, 0, 0, 0, 1, 0, -1, 0}
}

// Sagittal33 returns the sagittal view orientation.
func Sagittal33() Matrix33 {
	return Matrix33{0, 0, -1, 1, 0, 0, 0, -1, 0}
}

// Get returns the value at (row, col).
func (m Matrix33) Get(row, col int) float64 { return m[row*3+col] }

// Equals reports whether both matrices are identical.
func (m Matrix33) Equals(rhs Matrix33) bool { return m == rhs }

// IsSimilar reports whether both matrices are equal within tol per element.
func (m Matrix33) IsSimilar(rhs Matrix33, tol float64) bool {
	for i := range m {
		if math.Abs(m[i]-rhs[i]) > tol {
			return false
		}
	}
	return true
}

// Multiply returns m x rhs.
func (m Matrix33) Multiply(rhs Matrix33) Matrix33 {
	var res Matrix33
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			res[r*3+c] = m[r*3]*rhs[c] + m[r*3+1]*rhs[3+c] + m[r*3+2]*rhs[6+c]
		}
	}
	return res
}

// MultiplyArray3D returns m x (x, y, z).
func (m Matrix33) MultiplyArray3D(x, y, z float64) (float64, float64, float64) {
	return m[0]*x + m[1]*y + m[2]*z,
		m[3]*x + m[4]*y + m[5]*z,
		m[6]*x + m[7]*y + m[8]*z
}

// MultiplyVector3D returns m x v.
func (m Matrix33) MultiplyVector3D(v Vector3D) Vector3D {
	x, y, z := m.MultiplyArray3D(v.X, v.Y, v.Z)
	return Vector3D{X: x, Y: y, Z: z}
}

// MultiplyPoint3D returns m x p.
func (m Matrix33) MultiplyPoint3D(p Point3D) Point3D {
	x, y, z := m.MultiplyArray3D(p.X, p.Y, p.Z)
	return Point3D{X: x, Y: y, Z: z}
}

// MultiplyIndex3D returns m x index, rounded, keeping dimensions above 3.
func (m Matrix33) MultiplyIndex3D(idx Index) Index {
	v := idx.Values()
	if len(v) < 3 {
		return idx
	}
	x, y, z := m.MultiplyArray3D(float64(v[0]), float64(v[1]), float64(v[2]))
	v[0], v[1], v[2] = int(math.Round(x)), int(math.Round(y)), int(math.Round(z))
	return Index{values: v}
}

func (m Matrix33) dense() *mat.Dense {
	data := make([]float64, 9)
	copy(data, m[:])
	return mat.NewDense(3, 3, data)
}

// Determinant returns det(m).
func (m Matrix33) Determinant() float64 {
	return mat.Det(m.dense())
}

// Inverse returns the inverse matrix, or ok=false if m is singular.
func (m Matrix33) Inverse() (Matrix33, bool) {
	if m.Determinant() == 0 {
		return Matrix33{}, false
	}
	var inv mat.Dense
	if err := inv.Inverse(m.dense()); err != nil {
		// gonum reports near-singular matrices as a Condition error while
		// still filling the result; keep only exact failures out.
		if _, ok := err.(mat.Condition); !ok {
			return Matrix33{}, false
		}
	}
	var res Matrix33
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			res[r*3+c] = cleanZero(inv.At(r, c))
		}
	}
	return res, true
}

// Transpose returns the transposed matrix.
func (m Matrix33) Transpose() Matrix33 {
	return Matrix33{m[0], m[3], m[6], m[1], m[4], m[7], m[2], m[5], m[8]}
}

// Abs returns the element-wise absolute value.
func (m Matrix33) Abs() Matrix33 {
	var res Matrix33
	for i, v := range m {
		res[i] = math.Abs(v)
	}
	return res
}

// AbsMax is the signed value and position of the largest absolute value
// in a row or column.
type AbsMax struct {
	Value float64
	Index int
}

// RowAbsMax returns the largest absolute value of a row.
func (m Matrix33) RowAbsMax(row int) AbsMax {
	return absMax(m.Get(row, 0), m.Get(row, 1), m.Get(row, 2))
}

// ColAbsMax returns the largest absolute value of a column.
func (m Matrix33) ColAbsMax(col int) AbsMax {
	return absMax(m.Get(0, col), m.Get(1, col), m.Get(2, col))
}

func absMax(values ...float64) AbsMax {
	res := AbsMax{Value: values[0], Index: 0}
	for i := 1; i < len(values); i++ {
		if math.Abs(values[i]) > math.Abs(res.Value) {
			res = AbsMax{Value: values[i], Index: i}
		}
	}
	return res
}

// AsOneAndZeros reduces m to a signed permutation matrix: per row, the
// element with the largest absolute value becomes ±1, the others 0.
func (m Matrix33) AsOneAndZeros() Matrix33 {
	var res Matrix33
	for row := 0; row < 3; row++ {
		rowMax := m.RowAbsMax(row)
		sign := 1.0
		if rowMax.Value < 0 {
			sign = -1
		}
		res[row*3+rowMax.Index] = sign
	}
	return res
}

// ThirdColMajorDirection returns the index of the largest absolute value of
// the third column: the native axis a view scrolls along.
func (m Matrix33) ThirdColMajorDirection() int {
	return m.ColAbsMax(2).Index
}

// Col returns column c as a vector.
func (m Matrix33) Col(c int) Vector3D {
	return Vector3D{X: m.Get(0, c), Y: m.Get(1, c), Z: m.Get(2, c)}
}

// String returns the matrix rows as "[a, b, c; d, e, f; g, h, i]".
func (m Matrix33) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, v := range m {
		if i != 0 {
			if i%3 == 0 {
				sb.WriteString("; ")
			} else {
				sb.WriteString(", ")
			}
		}
		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	sb.WriteString("]")
	return sb.String()
}

// cleanZero turns -0 into 0 so inverses of permutation matrices compare equal.
func cleanZero(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}
