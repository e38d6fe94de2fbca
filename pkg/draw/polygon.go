package draw

import (
	"strconv"

	"volmeasure/pkg/errs"
	"volmeasure/pkg/geom"
	"volmeasure/pkg/shape"
)

// anchor ids of rectangles
const (
	AnchorTopLeft     = "topLeft"
	AnchorTopRight    = "topRight"
	AnchorBottomRight = "bottomRight"
	AnchorBottomLeft  = "bottomLeft"
)

func corners(begin, end geom.Point2D) []geom.Point2D {
	return []geom.Point2D{
		begin,
		{X: end.X, Y: begin.Y},
		end,
		{X: begin.X, Y: end.Y},
	}
}

type rectangleOps struct{}

func (rectangleOps) kind() shape.Kind { return shape.KindRectangle }
func (rectangleOps) nPoints() int     { return 2 }

func (rectangleOps) create(points []geom.Point2D) (shape.Shape, error) {
	return shape.NewRectangle(points[0], points[1])
}

func (rectangleOps) anchors(s shape.Shape) []Anchor {
	r := s.(shape.Rectangle)
	c := corners(r.Begin(), r.End())
	return []Anchor{
		{ID: AnchorTopLeft, Position: c[0]},
		{ID: AnchorTopRight, Position: c[1]},
		{ID: AnchorBottomRight, Position: c[2]},
		{ID: AnchorBottomLeft, Position: c[3]},
	}
}

// constrain moves the dragged corner and the two adjacent ones so that the
// rectangle stays axis aligned.
func (o rectangleOps) constrain(s shape.Shape, id string, pos geom.Point2D) ([]Anchor, error) {
	res := o.anchors(s)
	tl, tr, br, bl := &res[0].Position, &res[1].Position, &res[2].Position, &res[3].Position
	switch id {
	case AnchorTopLeft:
		*tl = pos
		tr.Y = pos.Y
		bl.X = pos.X
	case AnchorTopRight:
		*tr = pos
		tl.Y = pos.Y
		br.X = pos.X
	case AnchorBottomRight:
		*br = pos
		bl.Y = pos.Y
		tr.X = pos.X
	case AnchorBottomLeft:
		*bl = pos
		br.Y = pos.Y
		tl.X = pos.X
	default:
		return nil, unknownAnchor(o.kind(), id)
	}
	return res, nil
}

func (o rectangleOps) fromAnchors(anchors []Anchor) (shape.Shape, error) {
	m := anchorMap(anchors)
	tl, ok0 := m[AnchorTopLeft]
	br, ok1 := m[AnchorBottomRight]
	if !ok0 || !ok1 {
		return nil, unknownAnchor(o.kind(), "set")
	}
	return shape.NewRectangle(tl, br)
}

func (rectangleOps) outline(s shape.Shape, _ Style) []*Node {
	r := s.(shape.Rectangle)
	return []*Node{{
		Name:   NameShape,
		Kind:   NodePolygon,
		Points: corners(r.Begin(), r.End()),
	}}
}

type roiOps struct{}

func (roiOps) kind() shape.Kind { return shape.KindROI }
func (roiOps) nPoints() int     { return 0 }

func (roiOps) create(points []geom.Point2D) (shape.Shape, error) {
	return shape.NewROI(points)
}

// anchors are the polygon vertices, named by their index.
func (roiOps) anchors(s shape.Shape) []Anchor {
	r := s.(shape.ROI)
	res := make([]Anchor, r.Len())
	for i := range res {
		res[i] = Anchor{ID: strconv.Itoa(i), Position: r.Point(i)}
	}
	return res
}

func (o roiOps) constrain(s shape.Shape, id string, pos geom.Point2D) ([]Anchor, error) {
	res := o.anchors(s)
	i, err := strconv.Atoi(id)
	if err != nil || i < 0 || i >= len(res) {
		return nil, unknownAnchor(o.kind(), id)
	}
	res[i].Position = pos
	return res, nil
}

func (roiOps) fromAnchors(anchors []Anchor) (shape.Shape, error) {
	points := make([]geom.Point2D, len(anchors))
	for i, a := range anchors {
		if a.ID != strconv.Itoa(i) {
			return nil, errs.Invalid("roi anchor %q at position %d", a.ID, i)
		}
		points[i] = a.Position
	}
	return shape.NewROI(points)
}

func (roiOps) outline(s shape.Shape, _ Style) []*Node {
	return []*Node{{
		Name:   NameShape,
		Kind:   NodePolygon,
		Points: s.Points(),
	}}
}
