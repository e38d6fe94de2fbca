package shape

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volmeasure/pkg/errs"
	"volmeasure/pkg/geom"
)

// fakeAccess returns fixed values for any region.
type fakeAccess struct {
	values   []float64
	spacing  geom.Spacing2D
	noImage  bool
	regions  int
	segments []Segment
}

func (f *fakeAccess) ImageRegionValues(_, _ geom.Point2D, _ Position) []float64 {
	f.regions++
	return f.values
}

func (f *fakeAccess) ImageVariableRegionValues(segments []Segment, _ Position) []float64 {
	f.segments = segments
	return f.values
}

func (f *fakeAccess) Spacing2D() geom.Spacing2D { return f.spacing }
func (f *fakeAccess) CanQuantifyImage() bool    { return !f.noImage }
func (f *fakeAccess) PixelUnit() string         { return "" }

func TestCircleEndToEnd(t *testing.T) {
	c, err := NewCircle(geom.Point2D{X: 2, Y: 2}, 2)
	require.NoError(t, err)

	access := &fakeAccess{
		values:  []float64{0, 1, 1, 0, 0, 1, 1, 0},
		spacing: geom.Spacing2D{X: 1, Y: 1},
	}
	q := c.Quantify(access, Position{}, nil)

	assert.Equal(t, 0.0, q[KeyMin].Value)
	assert.Equal(t, 1.0, q[KeyMax].Value)
	assert.InDelta(t, 0.5, q[KeyMean].Value, 1e-12)
	assert.InDelta(t, 0.5, q[KeyStdDev].Value, 1e-12)
	assert.InDelta(t, 0.1257, q[KeySurface].Value, 1e-4)
	assert.Equal(t, UnitSquareCentimetre, q[KeySurface].Unit)
	assert.NotContains(t, q, KeyMedian)
	assert.NotEmpty(t, access.segments)

	// deterministic
	assert.True(t, q.Equals(c.Quantify(access, Position{}, nil)))
}

func TestQuantifyWithoutSpacingOrImage(t *testing.T) {
	c, err := NewCircle(geom.Point2D{X: 2, Y: 2}, 2)
	require.NoError(t, err)

	q := c.Quantify(&fakeAccess{values: []float64{1}}, Position{}, nil)
	assert.NotContains(t, q, KeySurface)
	assert.Contains(t, q, KeyMean)

	_, ok := c.WorldSurface(geom.Spacing2D{})
	assert.False(t, ok)

	q = c.Quantify(&fakeAccess{spacing: geom.Spacing2D{X: 1, Y: 1}, noImage: true}, Position{}, nil)
	assert.Equal(t, []string{KeySurface}, keys(q))
}

func keys(q Quantification) []string {
	var res []string
	for k := range q {
		res = append(res, k)
	}
	return res
}

func TestFullStats(t *testing.T) {
	r, err := NewRectangle(geom.Point2D{}, geom.Point2D{X: 2, Y: 2})
	require.NoError(t, err)

	access := &fakeAccess{values: []float64{15, 20, 35, 40, 50}, spacing: geom.Spacing2D{X: 1, Y: 1}}
	q := r.Quantify(access, Position{}, []string{KeyMedian})

	assert.Equal(t, 1, access.regions)
	assert.Equal(t, 35.0, q[KeyMedian].Value)
	assert.Equal(t, 20.0, q[KeyP25].Value)
	assert.Equal(t, 40.0, q[KeyP75].Value)
	assert.InDelta(t, 0.04, q[KeySurface].Value, 1e-12)
}

func TestPercentile(t *testing.T) {
	values := []float64{15, 20, 35, 40, 50}

	tests := []struct {
		ratio float64
		want  float64
	}{
		{0, 15},
		{1, 50},
		{0.5, 35},
		{0.4, 29},
		{0.25, 20},
	}

	for _, tt := range tests {
		got, err := Percentile(values, tt.ratio)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-12, "ratio %v", tt.ratio)
	}

	_, err := Percentile(nil, 0.5)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	_, err = Percentile(values, 1.5)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	_, err = Percentile(values, math.NaN())
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestRectangleNormalization(t *testing.T) {
	a, err := NewRectangle(geom.Point2D{X: 1, Y: 5}, geom.Point2D{X: 4, Y: 2})
	require.NoError(t, err)
	b, err := NewRectangle(geom.Point2D{X: 4, Y: 2}, geom.Point2D{X: 1, Y: 5})
	require.NoError(t, err)

	assert.True(t, a.Equals(b))
	assert.Equal(t, geom.Point2D{X: 1, Y: 2}, a.Begin())
	assert.Equal(t, geom.Point2D{X: 4, Y: 5}, a.End())
	assert.Equal(t, 9.0, a.Surface())
	assert.Len(t, a.Segments(), 3)
}

func TestProtractorAngle(t *testing.T) {
	tests := []struct {
		name   string
		points []geom.Point2D
		want   float64
	}{
		{"right angle", []geom.Point2D{{}, {X: 1}, {X: 1, Y: 1}}, 90},
		{"right angle other side", []geom.Point2D{{}, {X: 1}, {X: 1, Y: -1}}, 90},
		{"straight", []geom.Point2D{{}, {X: 1}, {X: 2}}, 180},
		{"folded", []geom.Point2D{{}, {X: 1}, {}}, 0},
		{"45", []geom.Point2D{{}, {X: 1}, {X: 0, Y: 1}}, 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProtractor(tt.points)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, p.Angle(), 1e-9)
			assert.InDelta(t, tt.want, p.Quantify(nil, Position{}, nil)[KeyAngle].Value, 1e-9)
		})
	}
}

func TestConstructorsFailFast(t *testing.T) {
	_, err := NewCircle(geom.Point2D{}, -1)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	_, err = NewCircle(geom.Point2D{X: math.NaN()}, 1)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	_, err = NewEllipse(geom.Point2D{}, 1, math.Inf(1))
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	_, err = NewProtractor([]geom.Point2D{{}, {}})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	_, err = NewLine([]geom.Point2D{{}})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	_, err = NewROI([]geom.Point2D{{}, {X: 1}})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestCircleScanlines(t *testing.T) {
	for _, r := range []float64{5, 20, 50} {
		c, err := NewCircle(geom.Point2D{X: 100, Y: 100}, r)
		require.NoError(t, err)

		total := 0
		for _, s := range c.Segments() {
			assert.GreaterOrEqual(t, s.Width, 1)
			total += s.Width
		}
		area := math.Pi * r * r
		assert.InEpsilon(t, area, float64(total), 0.05, "radius %v", r)
	}

	tiny, err := NewCircle(geom.Point2D{X: 1, Y: 1}, 0.2)
	require.NoError(t, err)
	assert.Empty(t, tiny.Segments())
}

func TestEllipseScanlines(t *testing.T) {
	e, err := NewEllipse(geom.Point2D{X: 50, Y: 50}, 30, 10)
	require.NoError(t, err)

	total := 0
	for _, s := range e.Segments() {
		assert.GreaterOrEqual(t, s.Width, 1)
		total += s.Width
	}
	assert.InEpsilon(t, e.Surface(), float64(total), 0.05)
}

func TestROI(t *testing.T) {
	square, err := NewROI([]geom.Point2D{{}, {X: 10}, {X: 10, Y: 10}, {Y: 10}})
	require.NoError(t, err)

	assert.Equal(t, 100.0, square.Surface())
	assert.True(t, square.Centroid().IsSimilar(geom.Point2D{X: 5, Y: 5}, 1e-12))

	total := 0
	for _, s := range square.Segments() {
		total += s.Width
	}
	assert.Equal(t, 100, total)

	moved := square.Translate(1, 2)
	assert.False(t, moved.Equals(square))
	min, max := moved.Bounds()
	assert.Equal(t, geom.Point2D{X: 1, Y: 2}, min)
	assert.Equal(t, geom.Point2D{X: 11, Y: 12}, max)

	// triangle
	tri, err := NewROI([]geom.Point2D{{}, {X: 10}, {Y: 10}})
	require.NoError(t, err)
	assert.Equal(t, 50.0, tri.Surface())
}

func TestROISegmentsDropNarrowRuns(t *testing.T) {
	sliver, err := NewROI([]geom.Point2D{{}, {X: 0.6}, {X: 0.6, Y: 3}, {Y: 3}})
	require.NoError(t, err)
	assert.Empty(t, sliver.Segments())

	strip, err := NewROI([]geom.Point2D{{}, {X: 1.2}, {X: 1.2, Y: 3}, {Y: 3}})
	require.NoError(t, err)
	segments := strip.Segments()
	require.Len(t, segments, 3)
	for _, s := range segments {
		assert.Equal(t, 1, s.Width)
	}
}

func TestAreaSampling(t *testing.T) {
	rect, err := NewRectangle(geom.Point2D{}, geom.Point2D{X: 4, Y: 4})
	require.NoError(t, err)
	circle, err := NewCircle(geom.Point2D{X: 4, Y: 4}, 2)
	require.NoError(t, err)
	ellipse, err := NewEllipse(geom.Point2D{X: 4, Y: 4}, 3, 2)
	require.NoError(t, err)
	roi, err := NewROI([]geom.Point2D{{}, {X: 4}, {X: 4, Y: 4}})
	require.NoError(t, err)

	for _, tc := range []struct {
		shape   AreaShape
		regions int
	}{
		{rect, 1},
		{circle, 0},
		{ellipse, 0},
		{roi, 0},
	} {
		access := &fakeAccess{values: []float64{1, 2}, spacing: geom.Spacing2D{X: 1, Y: 1}}
		q := tc.shape.Quantify(access, Position{}, nil)
		assert.Equal(t, tc.regions, access.regions, tc.shape.Kind().String())
		assert.Equal(t, tc.regions == 0, len(access.segments) != 0, tc.shape.Kind().String())
		assert.Equal(t, 1.5, q[KeyMean].Value, tc.shape.Kind().String())
	}
}

func TestLineQuantify(t *testing.T) {
	l, err := NewLine([]geom.Point2D{{}, {X: 3, Y: 4}})
	require.NoError(t, err)

	q := l.Quantify(&fakeAccess{spacing: geom.Spacing2D{X: 2, Y: 2}}, Position{}, nil)
	assert.InDelta(t, 10.0, q[KeyLength].Value, 1e-12)
	assert.Equal(t, UnitMillimetre, q[KeyLength].Unit)

	assert.Empty(t, l.Quantify(&fakeAccess{}, Position{}, nil))
	assert.Equal(t, geom.Point2D{X: 1.5, Y: 2}, l.Centroid())
}

func TestKinds(t *testing.T) {
	for _, k := range Kinds() {
		parsed, ok := ParseKind(k.String())
		require.True(t, ok)
		assert.Equal(t, k, parsed)
	}
	_, ok := ParseKind("Arrow")
	assert.False(t, ok)
}

func TestReplaceFlags(t *testing.T) {
	q := Quantification{
		KeySurface: {Value: 0.125663706, Unit: UnitSquareCentimetre},
		KeyMean:    {Value: 12, Unit: ""},
		KeyLength:  {Value: 1234.5678, Unit: UnitMillimetre},
	}

	tests := []struct {
		expr string
		want string
	}{
		{"{surface}", "0.1257 cm²"},
		{"mean {mean}", "mean 12"},
		{"{length}", "1235 mm"},
		{"{angle}", "{angle}"},
		{"none", "none"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ReplaceFlags(tt.expr, q))
	}

	assert.Equal(t, []string{"surface", "mean"}, Flags("{surface} / {mean} / {surface}"))
	assert.Empty(t, Flags("plain"))
}
