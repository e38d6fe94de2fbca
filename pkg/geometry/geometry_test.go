package geometry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volmeasure/pkg/errs"
	"volmeasure/pkg/geom"
)

// irregular returns an axial geometry with decreasing, irregularly spaced
// slice origins at z = 10, 8 and 5.
func irregular(t *testing.T) *Geometry {
	t.Helper()
	origins := []geom.Point3D{{Z: 10}, {Z: 8}, {Z: 5}}
	g, err := New(origins, geom.MustSize(4, 6, 3), geom.MustSpacing(0.5, 0.5, 2), geom.Identity33(), 0)
	require.NoError(t, err)
	return g
}

func TestNewValidation(t *testing.T) {
	origins := []geom.Point3D{{}, {Z: 1}}

	tests := []struct {
		name        string
		origins     []geom.Point3D
		size        geom.Size
		orientation geom.Matrix33
	}{
		{"no origins", nil, geom.MustSize(2, 2, 2), geom.Identity33()},
		{"2d size", origins, geom.MustSize(2, 2), geom.Identity33()},
		{"slice count mismatch", origins, geom.MustSize(2, 2, 3), geom.Identity33()},
		{"singular orientation", origins, geom.MustSize(2, 2, 2), geom.Matrix33{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.origins, tt.size, geom.MustSpacing(1, 1, 1), tt.orientation, 0)
			assert.ErrorIs(t, err, errs.ErrInvalidInput)
		})
	}
}

func TestIndexWorldRoundTrip(t *testing.T) {
	g := irregular(t)

	tests := []struct {
		name  string
		index geom.Index
		world geom.Point3D
	}{
		{"first slice", geom.MustIndex(0, 0, 0), geom.Point3D{Z: 10}},
		{"middle slice", geom.MustIndex(2, 4, 1), geom.Point3D{X: 1, Y: 2, Z: 8}},
		{"last slice", geom.MustIndex(3, 5, 2), geom.Point3D{X: 1.5, Y: 2.5, Z: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := g.IndexToWorld(tt.index)
			assert.True(t, w.Get3D().IsSimilar(tt.world, 1e-9), "got %s", w)

			idx, ok := g.WorldToIndex(w)
			require.True(t, ok)
			assert.Equal(t, tt.index.Values(), idx.Values())
			assert.True(t, g.IsInBounds(w))
		})
	}
}

func TestWorldToIndexBetweenSlices(t *testing.T) {
	g := irregular(t)

	// halfway between z=8 (k=1) and z=5 (k=2)
	pt, ok := g.WorldToPoint(geom.Point3D{X: 1, Y: 2, Z: 6.5}, 0)
	require.True(t, ok)
	assert.InDelta(t, 1.5, pt.Z, 1e-12)

	idx, ok := g.WorldToIndex(geom.MustPoint(1, 2, 7))
	require.True(t, ok)
	assert.Equal(t, []int{2, 4, 1}, idx.Values())
}

func TestOutOfBounds(t *testing.T) {
	g := irregular(t)

	idx, ok := g.WorldToIndex(geom.MustPoint(0, 0, 20))
	require.True(t, ok)
	assert.Less(t, idx.Get(2), 0)
	assert.False(t, g.IsInBounds(geom.MustPoint(0, 0, 20)))
	assert.False(t, g.IsInBounds(geom.MustPoint(0, 0, -2)))
	assert.False(t, g.IsInBounds(geom.MustPoint(-1, 0, 8)))

	// in-plane only
	assert.True(t, g.IsInBounds(geom.MustPoint(0, 0, 20), 0, 1))

	_, ok = g.WorldToIndex(geom.MustPoint(1, 2))
	assert.False(t, ok)
}

func TestSingleSlice(t *testing.T) {
	g, err := New([]geom.Point3D{{}}, geom.MustSize(4, 4, 1), geom.MustSpacing(1, 1, 3), geom.Identity33(), 0)
	require.NoError(t, err)

	w := g.PointToWorld(geom.Point3D{Z: 1}, 0)
	assert.True(t, w.IsSimilar(geom.Point3D{Z: -3}, 1e-12))

	pt, ok := g.WorldToPoint(geom.Point3D{Z: -3}, 0)
	require.True(t, ok)
	assert.InDelta(t, 1.0, pt.Z, 1e-12)
}

func TestCoronalOrientation(t *testing.T) {
	origins := []geom.Point3D{{Y: 2}, {Y: 1}, {}}
	g, err := New(origins, geom.MustSize(4, 4, 3), geom.MustSpacing(1, 2, 3), geom.Coronal33(), 0)
	require.NoError(t, err)

	w := g.IndexToWorld(geom.MustIndex(3, 1, 1))
	assert.True(t, w.Get3D().IsSimilar(geom.Point3D{X: 3, Y: 1, Z: -2}, 1e-9), "got %s", w)

	idx, ok := g.WorldToIndex(w)
	require.True(t, ok)
	assert.Equal(t, []int{3, 1, 1}, idx.Values())

	assert.Equal(t, []float64{1, 3, 2}, g.RealSpacing().Values())
}

func TestSliceIndex(t *testing.T) {
	g, err := New([]geom.Point3D{{Z: 2}, {Z: 1}, {}}, geom.MustSize(2, 2, 3), geom.MustSpacing(1, 1, 1), geom.Identity33(), 0)
	require.NoError(t, err)

	tests := []struct {
		name string
		z    float64
		want int
	}{
		{"above first", 3, 0},
		{"below last", -1, 3},
		{"just above middle", 1.4, 1},
		{"just below middle", 0.6, 2},
		{"between first two", 1.5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.SliceIndex(geom.Point3D{Z: tt.z}, 0))
		})
	}

	assert.Equal(t, 0, g.SliceIndex(geom.Point3D{}, 5))
}

func TestAppendOrigin(t *testing.T) {
	g, err := New([]geom.Point3D{{Z: 2}, {}}, geom.MustSize(2, 2, 2), geom.MustSpacing(1, 1, 1), geom.Identity33(), 0)
	require.NoError(t, err)

	p := geom.Point3D{Z: 1}
	require.NoError(t, g.AppendOrigin(p, g.SliceIndex(p, 0), 0))
	assert.Equal(t, []geom.Point3D{{Z: 2}, {Z: 1}, {}}, g.Origins())
	assert.Equal(t, []int{2, 2, 3}, g.Size().Values())
	assert.True(t, g.IncludesOrigin(geom.Point3D{Z: 1.0001}, 1e-3))

	err = g.AppendOrigin(p, 9, 0)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestFrames(t *testing.T) {
	g := irregular(t)
	origins := g.Origins()

	require.NoError(t, g.AppendFrame(origins[0], 1))
	require.NoError(t, g.AppendOrigin(origins[1], 1, 1))
	require.NoError(t, g.AppendOrigin(origins[2], 2, 1))
	require.NoError(t, g.AppendFrame(origins[0], 2))

	assert.ErrorIs(t, g.AppendFrame(origins[0], 1), errs.ErrInvalidInput)
	assert.Equal(t, []int{0, 1, 2}, g.Times())
	assert.Equal(t, []int{4, 6, 3, 3}, g.Size().Values())

	w := g.IndexToWorld(geom.MustIndex(2, 4, 1, 1))
	assert.Equal(t, 4, w.Len())
	assert.Equal(t, 1.0, w.Get(3))

	idx, ok := g.WorldToIndex(w)
	require.True(t, ok)
	assert.Equal(t, []int{2, 4, 1, 1}, idx.Values())

	// frame 2 only has its first slice
	assert.True(t, g.IsIndexInBounds(geom.MustIndex(0, 0, 0, 2)))
	assert.False(t, g.IsIndexInBounds(geom.MustIndex(0, 0, 1, 2)))
	assert.False(t, g.IsIndexInBounds(geom.MustIndex(0, 0, 0, 3)))
}

func TestConcurrentAppend(t *testing.T) {
	g := irregular(t)
	origins := g.Origins()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for time := 1; time <= 50; time++ {
			assert.NoError(t, g.AppendFrame(origins[0], time))
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				idx, ok := g.WorldToIndex(geom.MustPoint(1, 2, 8))
				assert.True(t, ok)
				assert.Equal(t, []int{2, 4, 1}, idx.Values())
				assert.GreaterOrEqual(t, g.Size().Len(), 3)
			}
		}()
	}
	wg.Wait()

	assert.Len(t, g.Times(), 51)
}
