package report

import (
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suyashkumar/dicom/pkg/tag"

	"volmeasure/pkg/annotation"
	"volmeasure/pkg/errs"
	"volmeasure/pkg/geom"
	"volmeasure/pkg/plane"
	"volmeasure/pkg/shape"
)

func pt(x, y float64) geom.Point2D { return geom.Point2D{X: x, Y: y} }

func testGroup(t *testing.T) *annotation.Group {
	t.Helper()
	group := annotation.NewGroup()
	group.SetColour(colorful.Color{R: 0, G: 1, B: 0})
	group.SetMetaValue("StudyDescription", "knee")

	c, err := shape.NewCircle(pt(10, 10), 5)
	require.NoError(t, err)
	circle := annotation.New()
	circle.MathShape = c
	circle.TextExpr = "{surface}"
	circle.Quantification = shape.Quantification{
		shape.KeySurface: {Value: 0.79, Unit: shape.UnitSquareCentimetre},
		shape.KeyMean:    {Value: 42},
	}
	circle.ReferencedSOPInstanceUID = "1.2.3.4"
	circle.ReferencedSOPClassUID = "1.2.840.10008.5.1.4.1.1.2"
	circle.ReferencedFrameNumber = 2
	label := pt(20, 20)
	circle.LabelPosition = &label
	origin := geom.Point3D{Z: 3}
	circle.PlaneOrigin = &origin
	circle.Meta = map[string]string{"finding": "cyst"}
	require.NoError(t, group.Add(circle))

	r, err := shape.NewRectangle(pt(30, 40), pt(10, 20))
	require.NoError(t, err)
	rect := annotation.New()
	rect.MathShape = r
	rect.Colour = colorful.Color{R: 1, G: 0, B: 0}
	rect.PlanePoints = &plane.Points{
		Origin: geom.Point3D{X: 1, Y: 2, Z: 3},
		Row:    geom.Vector3D{X: 1},
		Column: geom.Vector3D{Z: -1},
	}
	require.NoError(t, group.Add(rect))

	p, err := shape.NewProtractor([]geom.Point2D{pt(0, 0), pt(10, 0), pt(10, 10)})
	require.NoError(t, err)
	protractor := annotation.New()
	protractor.MathShape = p
	require.NoError(t, group.Add(protractor))
	return group
}

func TestToDicomAndCreate(t *testing.T) {
	group := testGroup(t)
	doc := ToDicom(group)

	require.Len(t, doc.Items, 3)
	assert.Equal(t, "#00ff00", doc.Colour)
	assert.Equal(t, map[string]string{"StudyDescription": "knee"}, doc.Meta)

	circle := doc.Items[0]
	assert.Equal(t, GraphicCircle, circle.GraphicType)
	assert.Equal(t, []float64{10, 10, 15, 10}, circle.GraphicData)
	assert.Equal(t, []Measurement{
		{Name: shape.KeyMean, Value: 42},
		{Name: shape.KeySurface, Value: 0.79, Unit: shape.UnitSquareCentimetre},
	}, circle.Measurements)

	rect := doc.Items[1]
	assert.Equal(t, GraphicPolyline, rect.GraphicType)
	assert.Equal(t, []float64{10, 20, 30, 20, 30, 40, 10, 40, 10, 20}, rect.GraphicData)
	assert.Len(t, rect.PlanePoints, 9)

	back, err := Create(doc)
	require.NoError(t, err)
	require.Equal(t, group.Len(), back.Len())
	assert.Equal(t, group.Colour().Hex(), back.Colour().Hex())
	for i, want := range group.List() {
		got := back.List()[i]
		assert.Equal(t, want.TrackingUID, got.TrackingUID)
		assert.True(t, want.MathShape.Equals(got.MathShape), "shape %d", i)
		assert.True(t, want.Quantification.Equals(got.Quantification), "quantification %d", i)
		assert.Equal(t, want.LabelPosition, got.LabelPosition)
		assert.Equal(t, want.PlaneOrigin, got.PlaneOrigin)
		assert.Equal(t, want.PlanePoints, got.PlanePoints)
		assert.Equal(t, want.Meta, got.Meta)
		assert.Equal(t, want.ReferencedFrameNumber, got.ReferencedFrameNumber)
		assert.False(t, got.IsInitialised())
	}
	assert.Equal(t, "#ff0000", back.List()[1].Colour.Hex())
}

func TestCreateInfersKind(t *testing.T) {
	doc := &Document{Items: []Item{
		{GraphicType: GraphicPolyline, GraphicData: []float64{0, 0, 5, 5}},
		{GraphicType: GraphicPolyline, GraphicData: []float64{0, 0, 5, 0, 5, 5}},
		{GraphicType: GraphicPolyline, GraphicData: []float64{0, 0, 4, 0, 4, 2, 0, 2, 0, 0}},
		{GraphicType: GraphicPolyline, GraphicData: []float64{0, 0, 4, 0, 2, 3, 0, 0}},
		{GraphicType: GraphicEllipse, GraphicData: []float64{0, 5, 10, 5, 5, 3, 5, 7}},
	}}
	group, err := Create(doc)
	require.NoError(t, err)

	var kinds []shape.Kind
	for _, a := range group.List() {
		kinds = append(kinds, a.MathShape.Kind())
	}
	assert.Equal(t, []shape.Kind{
		shape.KindLine, shape.KindProtractor, shape.KindRectangle, shape.KindROI, shape.KindEllipse,
	}, kinds)

	// items without colour use the group colour
	assert.Equal(t, group.Colour(), group.List()[0].Colour)

	e := group.List()[4].MathShape.(shape.Ellipse)
	assert.Equal(t, pt(5, 5), e.Center())
	assert.Equal(t, 5.0, e.A())
	assert.Equal(t, 2.0, e.B())
	assert.Equal(t, 3, group.List()[3].MathShape.(shape.ROI).Len())
}

func TestCreateErrors(t *testing.T) {
	_, err := Create(nil)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	for name, item := range map[string]Item{
		"odd data":     {GraphicType: GraphicPolyline, GraphicData: []float64{0, 0, 1}},
		"unknown kind": {Kind: "Star", GraphicType: GraphicPolyline, GraphicData: []float64{0, 0, 1, 1}},
		"open polygon": {GraphicType: GraphicPolyline, GraphicData: []float64{0, 0, 1, 0, 1, 1, 0, 1}},
		"bad colour":   {Colour: "green", GraphicType: GraphicCircle, GraphicData: []float64{0, 0, 1, 0}},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Create(&Document{Items: []Item{item}})
			assert.ErrorIs(t, err, errs.ErrParsingFailed)
		})
	}
}

func TestDatasetRoundTrip(t *testing.T) {
	doc := ToDicom(testGroup(t))
	doc.SOPInstanceUID = "2.25.1"
	doc.Modality = "CT"

	ds, err := ToDataset(doc)
	require.NoError(t, err)
	assert.Equal(t, ComprehensiveSRStorage, firstString(ds.Elements, tagSOPClassUID))

	back, err := FromDataset(ds)
	require.NoError(t, err)
	assert.Equal(t, "2.25.1", back.SOPInstanceUID)
	assert.Equal(t, "CT", back.Modality)
	assert.Equal(t, doc.Meta, back.Meta)
	require.Len(t, back.Items, len(doc.Items))

	for i, want := range doc.Items {
		got := back.Items[i]
		assert.Equal(t, want.TrackingUID, got.TrackingUID)
		assert.Equal(t, want.Kind, got.Kind)
		assert.Equal(t, want.GraphicType, got.GraphicType)
		assert.Equal(t, want.GraphicData, got.GraphicData)
		assert.Equal(t, want.Measurements, got.Measurements)
		assert.Equal(t, want.ReferencedSOPInstanceUID, got.ReferencedSOPInstanceUID)
		assert.Equal(t, want.ReferencedFrameNumber, got.ReferencedFrameNumber)
		assert.Equal(t, want.TextExpr, got.TextExpr)
		assert.Equal(t, want.LabelPosition, got.LabelPosition)
		assert.Equal(t, want.PlaneOrigin, got.PlaneOrigin)
		assert.Equal(t, want.PlanePoints, got.PlanePoints)
		assert.Equal(t, want.Meta, got.Meta)

		wc, err := colorful.Hex(want.Colour)
		require.NoError(t, err)
		gc, err := colorful.Hex(got.Colour)
		require.NoError(t, err)
		assert.Less(t, wc.DistanceLab(gc), 0.01, "colour %d", i)
	}
}

func TestDatasetErrors(t *testing.T) {
	_, err := ToDataset(nil)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	_, err = FromDataset(nil)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = ToDataset(&Document{Colour: "nope"})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestDatasetTagsInDictionary(t *testing.T) {
	for _, tg := range []tag.Tag{
		tagSOPClassUID, tagSOPInstanceUID, tagModality, tagCodeValue, tagCodeMeaning,
		tagReferencedSOPClassUID, tagReferencedSOPInstanceUID, tagReferencedFrameNumber,
		tagReferencedSOPSequence, tagImagePositionPatient, tagImageOrientationPatient,
		tagPlanePositionSequence, tagPlaneOrientationSequence, tagMeasurementUnitsCodeSequence,
		tagConceptNameCodeSequence, tagUID, tagTextValue, tagMeasuredValueSequence,
		tagNumericValue, tagContentSequence, tagRecommendedDisplayCIELab, tagAnchorPoint,
		tagGraphicData, tagGraphicType,
	} {
		_, err := tag.Find(tg)
		assert.NoError(t, err, tg.String())
	}
}

func TestDatasetSingleItem(t *testing.T) {
	ds, err := ToDataset(&Document{Items: []Item{{
		TrackingUID: "2.25.7",
		GraphicType: GraphicCircle,
		GraphicData: []float64{0, 0, 1, 0},
	}}})
	require.NoError(t, err)

	back, err := FromDataset(ds)
	require.NoError(t, err)
	require.Len(t, back.Items, 1)
	assert.Equal(t, "2.25.7", back.Items[0].TrackingUID)
	assert.Equal(t, []float64{0, 0, 1, 0}, back.Items[0].GraphicData)
}
