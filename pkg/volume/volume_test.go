package volume

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volmeasure/pkg/annotation"
	"volmeasure/pkg/errs"
	"volmeasure/pkg/event"
	"volmeasure/pkg/geom"
	"volmeasure/pkg/geometry"
	"volmeasure/pkg/shape"
)

// testVolume returns a 4x3x2 volume whose voxel (i, j, k) holds 100k+10j+i.
func testVolume(t *testing.T, info Info) *Volume {
	t.Helper()
	g, err := geometry.New(
		[]geom.Point3D{{}, {Z: 1}},
		geom.MustSize(4, 3, 2),
		geom.MustSpacing(1, 1, 1),
		geom.Identity33(),
		0,
	)
	require.NoError(t, err)

	data := make([]float64, 0, 24)
	for k := 0; k < 2; k++ {
		for j := 0; j < 3; j++ {
			for i := 0; i < 4; i++ {
				data = append(data, float64(100*k+10*j+i))
			}
		}
	}
	v, err := New(g, data, info)
	require.NoError(t, err)
	return v
}

func TestNew(t *testing.T) {
	v := testVolume(t, Info{Modality: "MR"})
	require.Len(t, v.Info().ImageUIDs, 2)
	for _, uid := range v.Info().ImageUIDs {
		assert.True(t, strings.HasPrefix(uid, "2.25."), uid)
	}
	assert.NotEqual(t, v.Info().ImageUIDs[0], v.Info().ImageUIDs[1])

	min, max := v.Range()
	assert.Equal(t, 0.0, min)
	assert.Equal(t, 123.0, max)

	val, ok := v.Value(3, 2, 1)
	assert.True(t, ok)
	assert.Equal(t, 123.0, val)
	_, ok = v.Value(4, 0, 0)
	assert.False(t, ok)

	_, err := New(v.Geometry(), make([]float64, 3), Info{})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	_, err = New(v.Geometry(), make([]float64, 24), Info{ImageUIDs: []string{"1"}})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	_, err = New(nil, nil, Info{})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestAxialView(t *testing.T) {
	v := testVolume(t, Info{Modality: "CT", PixelUnit: "HU", ImageUIDs: []string{"1.1", "1.2"}})
	view := v.NewView(geom.Identity33())

	assert.True(t, view.IsAquisitionOrientation())
	assert.Equal(t, 2, view.ScrollDimIndex())
	assert.Equal(t, geom.MustIndex(2, 1, 1), view.CurrentIndex())
	assert.Equal(t, 1, view.Slice())
	assert.Equal(t, "1.2", view.CurrentImageUID())
	assert.Equal(t, geom.Spacing2D{X: 1, Y: 1}, view.Spacing2D())

	origin, ok := view.OriginForImageUID("1.2")
	require.True(t, ok)
	assert.Equal(t, geom.Point3D{Z: 1}, origin)
	_, ok = view.OriginForImageUID("9.9")
	assert.False(t, ok)

	w, h, d := view.PlaneSize()
	assert.Equal(t, []int{4, 3, 2}, []int{w, h, d})

	at := shape.Position{K: 1}
	assert.Equal(t, []float64{100, 101}, view.ImageRegionValues(geom.Point2D{}, geom.Point2D{X: 2, Y: 1}, at))
	assert.Equal(t, []float64{21, 22}, view.ImageVariableRegionValues([]shape.Segment{{X: 1, Y: 2, Width: 2}}, shape.Position{}))
	// pixels outside the plane are skipped
	assert.Equal(t, []float64{113}, view.ImageRegionValues(geom.Point2D{X: 3, Y: 1}, geom.Point2D{X: 6, Y: 2}, at))
}

func TestAnnotationOnView(t *testing.T) {
	v := testVolume(t, Info{Modality: "CT", PixelUnit: "HU"})
	view := v.NewView(geom.Identity33())

	r, err := shape.NewRectangle(geom.Point2D{}, geom.Point2D{X: 2, Y: 2})
	require.NoError(t, err)
	a := annotation.New()
	a.MathShape = r
	a.TextExpr = "{mean}"
	require.NoError(t, a.Init(view))

	assert.Equal(t, 1, a.Position().K)
	assert.Equal(t, view.CurrentImageUID(), a.ReferencedSOPInstanceUID)
	assert.Equal(t, &geom.Point3D{Z: 1}, a.PlaneOrigin)
	assert.Nil(t, a.PlanePoints)
	assert.Equal(t, "105.5 HU", a.Text())

	c, ok := a.Centroid()
	require.True(t, ok)
	assert.Equal(t, geom.MustPoint(1, 1, 1), c)
}

func TestScroll(t *testing.T) {
	view := testVolume(t, Info{}).NewView(geom.Identity33())
	var changes []event.PositionChange
	view.PositionChanges.Subscribe(func(e event.PositionChange) { changes = append(changes, e) })

	require.NoError(t, view.Scroll(-1))
	require.Len(t, changes, 1)
	assert.Equal(t, geom.MustIndex(2, 1, 0), changes[0].Index)
	assert.Equal(t, geom.MustPoint(2, 1, 0), changes[0].Position)

	assert.ErrorIs(t, view.Scroll(-1), errs.ErrInvalidInput)
	assert.Len(t, changes, 1)

	// same index: no event
	require.NoError(t, view.SetIndex(geom.MustIndex(2, 1, 0)))
	assert.Len(t, changes, 1)

	require.NoError(t, view.SetPosition(geom.MustPoint(3, 2, 1)))
	assert.Equal(t, geom.MustIndex(3, 2, 1), view.CurrentIndex())
	assert.Len(t, changes, 2)
}

func TestCoronalView(t *testing.T) {
	view := testVolume(t, Info{}).NewView(geom.Coronal33())

	assert.False(t, view.IsAquisitionOrientation())
	assert.Equal(t, 1, view.ScrollDimIndex())
	w, h, d := view.PlaneSize()
	assert.Equal(t, []int{4, 2, 3}, []int{w, h, d})

	// plane (x, y) on slice K is the native voxel (x, K, y)
	assert.Equal(t, []float64{121}, view.ImageRegionValues(geom.Point2D{X: 1, Y: 1}, geom.Point2D{X: 2, Y: 2}, shape.Position{K: 2}))

	a := view.PlanePoints(geom.Point3D{X: 1, Y: 2})
	b := view.PlanePoints(geom.Point3D{X: 3, Y: 2, Z: 1})
	assert.Equal(t, a, b)
	assert.Equal(t, geom.Point3D{Y: 2}, a.Origin)
	assert.True(t, a.IsCompatible(view.Cosines(), 1e-6))
}

func TestImage(t *testing.T) {
	view := testVolume(t, Info{}).NewView(geom.Identity33())
	img := view.Image()
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 3, img.Bounds().Dy())
	assert.Less(t, img.Gray16At(0, 0).Y, img.Gray16At(3, 2).Y)
	assert.Equal(t, uint16(65535), img.Gray16At(3, 2).Y)

	path := filepath.Join(t.TempDir(), "slice.png")
	require.NoError(t, view.SaveImage(path, 8))
	saved, err := imaging.Open(path)
	require.NoError(t, err)
	assert.Equal(t, 8, saved.Bounds().Dx())
	assert.Equal(t, 6, saved.Bounds().Dy())
}
