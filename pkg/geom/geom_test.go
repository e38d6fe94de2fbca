package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volmeasure/pkg/errs"
)

func TestNewIndex(t *testing.T) {
	_, err := NewIndex()
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	idx, err := NewIndex(1, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, 2, idx.Get(1))
	assert.Equal(t, "(1,2,3)", idx.String())
	assert.Equal(t, "#2-3", idx.ToStringID(2))
	assert.Equal(t, "#0-1_#1-2_#2-3", idx.ToStringID())

	// values are copied
	v := idx.Values()
	v[0] = 42
	assert.Equal(t, 1, idx.Get(0))
}

func TestIndexCompare(t *testing.T) {
	a := MustIndex(1, 2, 3)
	b := MustIndex(1, 5, 3)
	c := MustIndex(1, 2)

	assert.True(t, a.Equals(MustIndex(1, 2, 3)))
	assert.False(t, a.Equals(b))
	assert.False(t, a.Equals(c))

	diff, ok := a.Compare(b)
	require.True(t, ok)
	assert.Equal(t, []int{1}, diff)

	_, ok = a.Compare(c)
	assert.False(t, ok)

	sum, ok := a.Add(b)
	require.True(t, ok)
	assert.Equal(t, []int{2, 7, 6}, sum.Values())

	assert.Equal(t, []int{4, 5, 3}, a.WithNew2D(4, 5).Values())
	assert.Equal(t, []int{1, 2, 3, 7}, a.With(3, 7).Values())
}

func TestNewPoint(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		wantErr bool
	}{
		{"empty", nil, true},
		{"nan", []float64{1, math.NaN()}, true},
		{"inf", []float64{math.Inf(1)}, true},
		{"3d", []float64{1, 2, 3}, false},
		{"4d", []float64{1, 2, 3, 4}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPoint(tt.values...)
			if tt.wantErr {
				assert.ErrorIs(t, err, errs.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.values, p.Values())
		})
	}
}

func TestPoint3D(t *testing.T) {
	p := Point3D{X: 1, Y: 2, Z: 3}
	q := Point3D{X: 4, Y: 6, Z: 3}

	assert.InDelta(t, 5.0, p.Distance(q), 1e-12)
	assert.Equal(t, Vector3D{X: 3, Y: 4, Z: 0}, q.Minus(p))
	assert.True(t, p.IsSimilar(Point3D{X: 1.0001, Y: 2, Z: 3}, 1e-3))
	assert.Equal(t, 1, Point3D{X: 4, Y: 5, Z: 3}.Closest([]Point3D{p, q}))
	assert.Equal(t, -1, p.Closest(nil))

	pt := PointFrom3D(p, 2)
	assert.Equal(t, 4, pt.Len())
	assert.Equal(t, p, pt.Get3D())
	assert.Equal(t, []float64{9, 9, 9, 2}, pt.MergeWith3D(Point3D{X: 9, Y: 9, Z: 9}).Values())
}

func TestVector3D(t *testing.T) {
	x := Vector3D{X: 1}
	y := Vector3D{Y: 1}

	assert.Equal(t, Vector3D{Z: 1}, x.Cross(y))
	assert.Equal(t, 0.0, x.Dot(y))
	assert.InDelta(t, math.Sqrt(2), x.Add(y).Norm(), 1e-12)
	assert.True(t, x.IsCodirectional(Vector3D{X: 2, Y: 1}))
	assert.False(t, x.IsCodirectional(Vector3D{X: -1}))
	assert.False(t, x.IsCodirectional(y))
}

func TestMatrix33Inverse(t *testing.T) {
	m := Matrix33{2, 0, 0, 0, 4, 0, 0, 0, 8}
	inv, ok := m.Inverse()
	require.True(t, ok)
	assert.True(t, inv.IsSimilar(Matrix33{0.5, 0, 0, 0, 0.25, 0, 0, 0, 0.125}, 1e-12))
	assert.True(t, m.Multiply(inv).IsSimilar(Identity33(), 1e-12))

	_, ok = Matrix33{1, 2, 3, 2, 4, 6, 0, 0, 1}.Inverse()
	assert.False(t, ok)

	cor, ok := Coronal33().Inverse()
	require.True(t, ok)
	assert.True(t, cor.IsSimilar(Coronal33().Transpose(), 1e-12))
}

func TestMatrix33AbsMax(t *testing.T) {
	m := Matrix33{
		0.1, -0.9, 0.2,
		0.8, 0.1, -0.3,
		0.2, 0.3, -0.95,
	}

	assert.Equal(t, AbsMax{Value: -0.9, Index: 1}, m.RowAbsMax(0))
	assert.Equal(t, AbsMax{Value: -0.95, Index: 2}, m.ColAbsMax(2))
	assert.Equal(t, Matrix33{0, -1, 0, 1, 0, 0, 0, 0, -1}, m.AsOneAndZeros())
	assert.Equal(t, 2, m.ThirdColMajorDirection())
	assert.Equal(t, Matrix33{0.1, 0.9, 0.2, 0.8, 0.1, 0.3, 0.2, 0.3, 0.95}, m.Abs())
}

func TestMatrixFromName(t *testing.T) {
	tests := []struct {
		name   Orientation
		scroll int
	}{
		{Axial, 2},
		{Coronal, 1},
		{Sagittal, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			m, ok := MatrixFromName(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.scroll, m.ThirdColMajorDirection())
			assert.Equal(t, tt.name, OrientationName(m))
		})
	}

	_, ok := MatrixFromName("oblique")
	assert.False(t, ok)
}

func TestOrientationFromCosines(t *testing.T) {
	m := OrientationFromCosines([6]float64{1, 0, 0, 0, 1, 0})
	assert.True(t, IsIdentity33(m))

	m = OrientationFromCosines([6]float64{1, 0, 0, 0, 0, -1})
	assert.Equal(t, Vector3D{Y: 1}, m.Col(2))
	assert.Equal(t, Coronal, OrientationName(m))
}

func TestSize(t *testing.T) {
	_, err := NewSize(1, 0)
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	s := MustSize(4, 3, 2)
	assert.True(t, s.Is3D())
	assert.Equal(t, 24, s.TotalSize(0))
	assert.Equal(t, 12, s.DimSize(2))
	assert.Equal(t, 1, s.Get(3))
	assert.True(t, s.CanScroll(Identity33()))
	assert.False(t, MustSize(4, 3, 1).CanScroll(Identity33()))

	assert.True(t, s.IsInBounds(MustIndex(3, 2, 1)))
	assert.False(t, s.IsInBounds(MustIndex(4, 2, 1)))
	assert.False(t, s.IsInBounds(MustIndex(0, 0, 0, 0)))
	assert.True(t, s.IsInBounds(MustIndex(0, 9, 0), 0, 2))
	assert.False(t, s.IsInBounds(MustIndex(0, 0), 5))

	assert.Equal(t, []int{4, 3, 2, 5}, s.With(3, 5).Values())
}

func TestSpacing(t *testing.T) {
	_, err := NewSpacing(1, -1)
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	s := MustSpacing(0.5, 0.25, 2)
	assert.Equal(t, Spacing2D{X: 0.5, Y: 0.25}, s.Get2D())
	assert.True(t, s.Get2D().Valid())
	assert.False(t, Spacing2D{}.Valid())
	assert.Equal(t, Vector3D{X: 0.5, Y: 0.25, Z: 2}, s.Get3D())
}

func TestNumberRange(t *testing.T) {
	r := NumberRange{Min: -1, Max: 1}
	assert.True(t, r.Contains(0))
	assert.False(t, r.Contains(2))
	assert.Equal(t, 1.0, r.Clamp(3))
	assert.Equal(t, -1.0, r.Clamp(-3))
}
