package annotation

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volmeasure/pkg/errs"
	"volmeasure/pkg/event"
	"volmeasure/pkg/geom"
	"volmeasure/pkg/plane"
	"volmeasure/pkg/shape"
)

type fakeFrame struct {
	idx         geom.Index
	acquisition bool
	values      []float64
}

func (f *fakeFrame) ImageRegionValues(_, _ geom.Point2D, _ shape.Position) []float64 {
	return f.values
}

func (f *fakeFrame) ImageVariableRegionValues(_ []shape.Segment, _ shape.Position) []float64 {
	return f.values
}

func (f *fakeFrame) Spacing2D() geom.Spacing2D     { return geom.Spacing2D{X: 1, Y: 1} }
func (f *fakeFrame) CanQuantifyImage() bool        { return true }
func (f *fakeFrame) PixelUnit() string             { return "HU" }
func (f *fakeFrame) CurrentPosition() geom.Point   { return geom.MustPoint(1, 2, 3) }
func (f *fakeFrame) CurrentIndex() geom.Index      { return f.idx }
func (f *fakeFrame) CurrentImageUID() string       { return "1.2.3" }
func (f *fakeFrame) IsAquisitionOrientation() bool { return f.acquisition }
func (f *fakeFrame) Modality() string              { return "CT" }
func (f *fakeFrame) SOPClassUID() string           { return "1.2.840.10008.5.1.4.1.1.2" }

func (f *fakeFrame) ScrollDimIndex() int {
	if f.acquisition {
		return 2
	}
	return 1
}

func (f *fakeFrame) OriginForImageUID(uid string) (geom.Point3D, bool) {
	return geom.Point3D{Z: 3}, uid == "1.2.3"
}

func (f *fakeFrame) PlanePoints(position geom.Point3D) plane.Points {
	return plane.Points{Origin: position, Row: geom.Vector3D{X: 1}, Column: geom.Vector3D{Z: 1}}
}

func (f *fakeFrame) PositionFromPlanePoint(p geom.Point2D, k float64, _ int) geom.Point3D {
	return geom.Point3D{X: p.X, Y: p.Y, Z: k}
}

type fakeView struct {
	acquisition bool
	cosines     [6]float64
}

func (v fakeView) IsAquisitionOrientation() bool { return v.acquisition }
func (v fakeView) Cosines() [6]float64           { return v.cosines }

func circle(t *testing.T, x, y, r float64) shape.Circle {
	t.Helper()
	c, err := shape.NewCircle(geom.Point2D{X: x, Y: y}, r)
	require.NoError(t, err)
	return c
}

func TestInit(t *testing.T) {
	a := New()
	a.MathShape = circle(t, 2, 2, 2)
	a.TextExpr = "{mean}"
	assert.NotEqual(t, a.ID, a.TrackingUID)
	assert.False(t, a.IsInitialised())

	frame := &fakeFrame{idx: geom.MustIndex(4, 5, 6), acquisition: true, values: []float64{0, 1}}
	require.NoError(t, a.Init(frame))

	assert.Equal(t, "1.2.3", a.ReferencedSOPInstanceUID)
	assert.Equal(t, "1.2.840.10008.5.1.4.1.1.2", a.ReferencedSOPClassUID)
	assert.Equal(t, 0, a.ReferencedFrameNumber)
	assert.Equal(t, shape.Position{K: 6}, a.Position())
	assert.Equal(t, &geom.Point3D{Z: 3}, a.PlaneOrigin)
	assert.Nil(t, a.PlanePoints)
	assert.Equal(t, 0.5, a.Quantification[shape.KeyMean].Value)
	assert.Equal(t, "0.5 HU", a.Text())

	err := a.Init(frame)
	assert.ErrorIs(t, err, errs.ErrAlreadyInitialised)
	assert.Same(t, frame, a.Frame())
}

func TestInitRejectsBadFrames(t *testing.T) {
	assert.ErrorIs(t, New().Init(nil), errs.ErrInvalidInput)

	a := New()
	err := a.Init(&fakeFrame{idx: geom.MustIndex(1, 2), acquisition: true})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	assert.False(t, a.IsInitialised())
}

func TestIsCompatibleView(t *testing.T) {
	axial := fakeView{acquisition: true, cosines: [6]float64{1, 0, 0, 0, 1, 0}}
	coronal := fakeView{cosines: [6]float64{1, 0, 0, 0, 0, 1}}

	native := New()
	require.NoError(t, native.Init(&fakeFrame{idx: geom.MustIndex(0, 0, 0), acquisition: true}))
	assert.True(t, native.IsCompatibleView(axial))
	assert.False(t, native.IsCompatibleView(coronal))

	reformat := New()
	require.NoError(t, reformat.Init(&fakeFrame{idx: geom.MustIndex(0, 7, 0)}))
	require.NotNil(t, reformat.PlanePoints)
	assert.Equal(t, shape.Position{K: 7}, reformat.Position())
	assert.True(t, reformat.IsCompatibleView(coronal))
	assert.False(t, reformat.IsCompatibleView(axial))

	origin, ok := reformat.KeyOrigin()
	require.True(t, ok)
	assert.Equal(t, geom.Point3D{X: 1, Y: 2, Z: 3}, origin)
}

func TestCentroid(t *testing.T) {
	a := New()
	_, ok := a.Centroid()
	assert.False(t, ok)

	a.MathShape = circle(t, 2, 3, 1)
	require.NoError(t, a.Init(&fakeFrame{idx: geom.MustIndex(0, 0, 4), acquisition: true}))
	c, ok := a.Centroid()
	require.True(t, ok)
	assert.Equal(t, []float64{2, 3, 4}, c.Values())

	b := New()
	b.MathShape = circle(t, 2, 3, 1)
	require.NoError(t, b.Init(&fakeFrame{idx: geom.MustIndex(0, 0, 4, 2), acquisition: true}))
	c, ok = b.Centroid()
	require.True(t, ok)
	assert.Equal(t, []float64{2, 3, 4, 2}, c.Values())
	assert.Equal(t, 3, b.ReferencedFrameNumber)
}

func TestSnapshotApply(t *testing.T) {
	a := New()
	a.MathShape = circle(t, 2, 2, 2)
	a.TextExpr = "{surface}"
	require.NoError(t, a.Init(&fakeFrame{idx: geom.MustIndex(0, 0, 0), acquisition: true}))

	keys := []Key{KeyMathShape, KeyLabelPosition, KeyColour}
	before := a.Snapshot(keys)
	surface := a.Quantification[shape.KeySurface].Value

	a.Apply(keys, Props{
		MathShape:     circle(t, 2, 2, 4),
		LabelPosition: &geom.Point2D{X: 9, Y: 9},
		Colour:        colorful.Color{R: 1},
	})
	assert.InDelta(t, 4*surface, a.Quantification[shape.KeySurface].Value, 1e-12)
	assert.False(t, EqualProps(keys, before, a.Snapshot(keys)))

	a.Apply(keys, before)
	assert.True(t, EqualProps(keys, before, a.Snapshot(keys)))
	assert.InDelta(t, surface, a.Quantification[shape.KeySurface].Value, 1e-12)
	assert.Nil(t, a.LabelPosition)
}

func TestGroupEvents(t *testing.T) {
	g := NewGroup()
	var events []Event
	record := func(e Event) { events = append(events, e) }
	g.Added.Subscribe(record)
	g.Updated.Subscribe(record)
	g.Removed.Subscribe(record)

	a, b, c := New(), New(), New()
	require.NoError(t, g.Add(a))
	require.NoError(t, g.Add(b))
	require.NoError(t, g.Insert(1, c))
	assert.Equal(t, []*Annotation{a, c, b}, g.List())
	assert.Equal(t, 1, g.IndexOf(c.ID))

	assert.ErrorIs(t, g.Add(a), errs.ErrInvalidInput)
	assert.ErrorIs(t, g.Insert(9, New()), errs.ErrInvalidInput)

	require.NoError(t, g.Update(c, []Key{KeyColour}))
	require.NoError(t, g.Remove(a.ID))
	assert.ErrorIs(t, g.Remove(a.ID), errs.ErrNotFound)
	assert.Nil(t, g.Find(a.ID))
	assert.Equal(t, 2, g.Len())

	require.Len(t, events, 5)
	assert.Equal(t, event.AnnotationAdd, events[0].Type)
	assert.Equal(t, event.AnnotationUpdate, events[3].Type)
	assert.Equal(t, []Key{KeyColour}, events[3].Keys)
	assert.Equal(t, event.AnnotationRemove, events[4].Type)
	assert.Same(t, a, events[4].Annotation)
}

func TestGroupSettings(t *testing.T) {
	g := NewGroup()
	var changes []bool
	g.EditableChanged.Subscribe(func(v bool) { changes = append(changes, v) })

	assert.True(t, g.IsEditable())
	g.SetEditable(true)
	g.SetEditable(false)
	assert.Equal(t, []bool{false}, changes)

	g.SetMetaValue("SeriesDescription", "follow-up")
	g.SetMetaValue("Modality", "CT")
	assert.True(t, g.HasMeta("Modality"))
	v, ok := g.MetaValue("SeriesDescription")
	require.True(t, ok)
	assert.Equal(t, "follow-up", v)
	assert.Equal(t, []string{"Modality", "SeriesDescription"}, g.MetaKeys())

	g.SetColour(colorful.Color{B: 1})
	assert.Equal(t, colorful.Color{B: 1}, g.Colour())
}
