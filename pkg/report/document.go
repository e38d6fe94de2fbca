// Package report maps annotation groups to and from a structured report
// document, and documents to and from DICOM datasets.
package report

import (
	"maps"
	"slices"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"

	"volmeasure/pkg/annotation"
	"volmeasure/pkg/errs"
	"volmeasure/pkg/geom"
	"volmeasure/pkg/logging"
	"volmeasure/pkg/plane"
	"volmeasure/pkg/shape"
)

// Graphic types.
const (
	GraphicCircle   = "CIRCLE"
	GraphicEllipse  = "ELLIPSE"
	GraphicPolyline = "POLYLINE"
)

// Measurement is one quantification value of an item.
type Measurement struct {
	Name  string  `yaml:"name"`
	Value float64 `yaml:"value"`
	Unit  string  `yaml:"unit,omitempty"`
}

// Item is the report entry of one annotation.
type Item struct {
	TrackingUID              string `yaml:"trackingUid"`
	ReferencedSOPInstanceUID string `yaml:"referencedSopInstanceUid,omitempty"`
	ReferencedSOPClassUID    string `yaml:"referencedSopClassUid,omitempty"`
	ReferencedFrameNumber    int    `yaml:"referencedFrameNumber,omitempty"`

	// Kind is the shape kind name; it is inferred from the graphic when empty.
	Kind         string        `yaml:"kind,omitempty"`
	GraphicType  string        `yaml:"graphicType"`
	GraphicData  []float64     `yaml:"graphicData,flow"`
	Measurements []Measurement `yaml:"measurements,omitempty"`

	TextExpr      string            `yaml:"textExpr,omitempty"`
	Colour        string            `yaml:"colour,omitempty"`
	LabelPosition []float64         `yaml:"labelPosition,flow,omitempty"`
	PlaneOrigin   []float64         `yaml:"planeOrigin,flow,omitempty"`
	PlanePoints   []float64         `yaml:"planePoints,flow,omitempty"`
	Meta          map[string]string `yaml:"meta,omitempty"`
}

// Document is a structured report of an annotation group.
type Document struct {
	SOPClassUID    string            `yaml:"sopClassUid,omitempty"`
	SOPInstanceUID string            `yaml:"sopInstanceUid,omitempty"`
	Modality       string            `yaml:"modality,omitempty"`
	Colour         string            `yaml:"colour,omitempty"`
	Meta           map[string]string `yaml:"meta,omitempty"`
	Items          []Item            `yaml:"items"`
}

// Create builds an annotation group from a document. Annotations are not
// bound to a reference frame; their quantification is the reported one.
func Create(doc *Document) (*annotation.Group, error) {
	if doc == nil {
		return nil, errs.Wrap(errs.Invalid("nil document"), "report", "Create", "check document")
	}
	group := annotation.NewGroup()
	if doc.Colour != "" {
		c, err := colorful.Hex(doc.Colour)
		if err != nil {
			return nil, errs.Wrap(errs.ErrParsingFailed, "report", "Create", "parse group colour "+doc.Colour)
		}
		group.SetColour(c)
	}
	for _, k := range slices.Sorted(maps.Keys(doc.Meta)) {
		group.SetMetaValue(k, doc.Meta[k])
	}

	for i, item := range doc.Items {
		a, err := annotationFromItem(item, group.Colour())
		if err != nil {
			return nil, errs.Wrap(err, "report", "Create", "map item "+strconv.Itoa(i))
		}
		if err := group.Add(a); err != nil {
			return nil, errs.Wrap(err, "report", "Create", "add item "+strconv.Itoa(i))
		}
	}
	logging.Logger().Debug("report: group created", "items", group.Len())
	return group, nil
}

func annotationFromItem(item Item, colour colorful.Color) (*annotation.Annotation, error) {
	s, err := shapeFromGraphic(item.Kind, item.GraphicType, item.GraphicData)
	if err != nil {
		return nil, err
	}
	a := annotation.New()
	if item.TrackingUID != "" {
		a.TrackingUID = item.TrackingUID
	}
	a.ReferencedSOPInstanceUID = item.ReferencedSOPInstanceUID
	a.ReferencedSOPClassUID = item.ReferencedSOPClassUID
	a.ReferencedFrameNumber = item.ReferencedFrameNumber
	a.MathShape = s
	a.ReferencePoints = s.Points()
	a.TextExpr = item.TextExpr
	a.Colour = colour
	if item.Colour != "" {
		if a.Colour, err = colorful.Hex(item.Colour); err != nil {
			return nil, errs.Wrap(errs.ErrParsingFailed, "report", "annotationFromItem", "parse colour "+item.Colour)
		}
	}
	if len(item.Measurements) != 0 {
		a.Quantification = shape.Quantification{}
		for _, m := range item.Measurements {
			a.Quantification[m.Name] = shape.Value{Value: m.Value, Unit: m.Unit}
		}
	}
	if p, ok := point2D(item.LabelPosition); ok {
		a.LabelPosition = &p
	}
	if p, ok := point3D(item.PlaneOrigin); ok {
		a.PlaneOrigin = &p
	}
	if len(item.PlanePoints) == 9 {
		v := item.PlanePoints
		a.PlanePoints = &plane.Points{
			Origin: geom.Point3D{X: v[0], Y: v[1], Z: v[2]},
			Row:    geom.Vector3D{X: v[3], Y: v[4], Z: v[5]},
			Column: geom.Vector3D{X: v[6], Y: v[7], Z: v[8]},
		}
	}
	if len(item.Meta) != 0 {
		a.Meta = maps.Clone(item.Meta)
	}
	return a, nil
}

// ToDicom returns the report document of a group.
func ToDicom(group *annotation.Group) *Document {
	doc := &Document{Colour: group.Colour().Hex()}
	for _, k := range group.MetaKeys() {
		if doc.Meta == nil {
			doc.Meta = map[string]string{}
		}
		doc.Meta[k], _ = group.MetaValue(k)
	}
	for _, a := range group.List() {
		item, ok := itemFromAnnotation(a)
		if !ok {
			logging.Logger().Warn("report: skipping annotation without shape", "id", a.ID)
			continue
		}
		if doc.Modality == "" && a.Frame() != nil {
			doc.Modality = a.Frame().Modality()
		}
		doc.Items = append(doc.Items, item)
	}
	return doc
}

func itemFromAnnotation(a *annotation.Annotation) (Item, bool) {
	if a.MathShape == nil {
		return Item{}, false
	}
	graphicType, data := graphicFromShape(a.MathShape)
	item := Item{
		TrackingUID:              a.TrackingUID,
		ReferencedSOPInstanceUID: a.ReferencedSOPInstanceUID,
		ReferencedSOPClassUID:    a.ReferencedSOPClassUID,
		ReferencedFrameNumber:    a.ReferencedFrameNumber,
		Kind:                     a.MathShape.Kind().String(),
		GraphicType:              graphicType,
		GraphicData:              data,
		TextExpr:                 a.TextExpr,
		Colour:                   a.Colour.Hex(),
		Meta:                     maps.Clone(a.Meta),
	}
	for _, name := range slices.Sorted(maps.Keys(a.Quantification)) {
		v := a.Quantification[name]
		item.Measurements = append(item.Measurements, Measurement{Name: name, Value: v.Value, Unit: v.Unit})
	}
	if a.LabelPosition != nil {
		item.LabelPosition = []float64{a.LabelPosition.X, a.LabelPosition.Y}
	}
	if a.PlaneOrigin != nil {
		item.PlaneOrigin = []float64{a.PlaneOrigin.X, a.PlaneOrigin.Y, a.PlaneOrigin.Z}
	}
	if pp := a.PlanePoints; pp != nil {
		item.PlanePoints = []float64{
			pp.Origin.X, pp.Origin.Y, pp.Origin.Z,
			pp.Row.X, pp.Row.Y, pp.Row.Z,
			pp.Column.X, pp.Column.Y, pp.Column.Z,
		}
	}
	return item, true
}

// graphicFromShape returns the graphic type and flat x,y data of a shape.
// Closed polylines repeat their first point.
func graphicFromShape(s shape.Shape) (string, []float64) {
	switch s.Kind() {
	case shape.KindCircle:
		v := s.(shape.Circle)
		c := v.Center()
		return GraphicCircle, []float64{c.X, c.Y, c.X + v.Radius(), c.Y}
	case shape.KindEllipse:
		v := s.(shape.Ellipse)
		c := v.Center()
		return GraphicEllipse, []float64{
			c.X - v.A(), c.Y, c.X + v.A(), c.Y,
			c.X, c.Y - v.B(), c.X, c.Y + v.B(),
		}
	case shape.KindRectangle:
		b, e := s.Bounds()
		return GraphicPolyline, flatten([]geom.Point2D{b, {X: e.X, Y: b.Y}, e, {X: b.X, Y: e.Y}, b})
	case shape.KindROI:
		points := s.Points()
		return GraphicPolyline, flatten(append(points, points[0]))
	default:
		return GraphicPolyline, flatten(s.Points())
	}
}

// shapeFromGraphic rebuilds a shape. Without a kind, polylines of 2 points
// are lines, of 3 points protractors, closed axis aligned quadrilaterals
// rectangles and other closed polylines ROIs.
func shapeFromGraphic(kindName, graphicType string, data []float64) (shape.Shape, error) {
	if len(data)%2 != 0 {
		return nil, errs.Wrap(errs.ErrParsingFailed, "report", "shapeFromGraphic", "read odd graphic data")
	}
	points := make([]geom.Point2D, len(data)/2)
	for i := range points {
		points[i] = geom.Point2D{X: data[2*i], Y: data[2*i+1]}
	}

	var kind shape.Kind
	if kindName != "" {
		k, ok := shape.ParseKind(kindName)
		if !ok {
			return nil, errs.Wrap(errs.ErrParsingFailed, "report", "shapeFromGraphic", "parse kind "+kindName)
		}
		kind = k
	} else {
		kind = inferKind(graphicType, points)
	}

	closed := len(points) > 2 && points[0].Equals(points[len(points)-1])
	switch kind {
	case shape.KindCircle:
		if len(points) != 2 {
			break
		}
		return shape.NewCircle(points[0], points[0].Distance(points[1]))
	case shape.KindEllipse:
		if len(points) != 4 {
			break
		}
		return shape.NewEllipse(points[0].Midpoint(points[1]), points[0].Distance(points[1])/2, points[2].Distance(points[3])/2)
	case shape.KindRectangle:
		if len(points) < 3 {
			break
		}
		return shape.NewRectangle(points[0], points[2])
	case shape.KindROI:
		if closed {
			points = points[:len(points)-1]
		}
		return shape.NewROI(points)
	case shape.KindProtractor:
		return shape.NewProtractor(points)
	case shape.KindLine:
		return shape.NewLine(points)
	}
	return nil, errs.Wrap(errs.ErrParsingFailed, "report", "shapeFromGraphic",
		"map "+graphicType+" graphic of "+strconv.Itoa(len(points))+" points")
}

func inferKind(graphicType string, points []geom.Point2D) shape.Kind {
	switch graphicType {
	case GraphicCircle:
		return shape.KindCircle
	case GraphicEllipse:
		return shape.KindEllipse
	case GraphicPolyline:
	default:
		return shape.KindUnknown
	}
	switch {
	case len(points) == 2:
		return shape.KindLine
	case len(points) == 3:
		return shape.KindProtractor
	case len(points) == 5 && isAxisAlignedBox(points):
		return shape.KindRectangle
	case len(points) > 3 && points[0].Equals(points[len(points)-1]):
		return shape.KindROI
	}
	return shape.KindUnknown
}

func isAxisAlignedBox(p []geom.Point2D) bool {
	return p[0].Equals(p[4]) &&
		p[0].Y == p[1].Y && p[1].X == p[2].X && p[2].Y == p[3].Y && p[3].X == p[0].X
}

func flatten(points []geom.Point2D) []float64 {
	res := make([]float64, 0, 2*len(points))
	for _, p := range points {
		res = append(res, p.X, p.Y)
	}
	return res
}

func point2D(v []float64) (geom.Point2D, bool) {
	if len(v) != 2 {
		return geom.Point2D{}, false
	}
	return geom.Point2D{X: v[0], Y: v[1]}, true
}

func point3D(v []float64) (geom.Point3D, bool) {
	if len(v) != 3 {
		return geom.Point3D{}, false
	}
	return geom.Point3D{X: v[0], Y: v[1], Z: v[2]}, true
}
