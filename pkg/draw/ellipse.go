package draw

import (
	"math"

	"volmeasure/pkg/geom"
	"volmeasure/pkg/shape"
)

// anchor ids of circles and ellipses
const (
	AnchorLeft   = "left"
	AnchorRight  = "right"
	AnchorBottom = "bottom"
	AnchorTop    = "top"
)

// radialAnchors returns the left, right, bottom and top anchors of a box
// centred on c.
func radialAnchors(c geom.Point2D, a, b float64) []Anchor {
	return []Anchor{
		{ID: AnchorLeft, Position: c.Add(-a, 0)},
		{ID: AnchorRight, Position: c.Add(a, 0)},
		{ID: AnchorBottom, Position: c.Add(0, b)},
		{ID: AnchorTop, Position: c.Add(0, -b)},
	}
}

// radiiFromAnchors returns the centre and radii of the box spanned by
// radial anchors.
func radiiFromAnchors(anchors []Anchor) (c geom.Point2D, a, b float64, ok bool) {
	m := anchorMap(anchors)
	left, okL := m[AnchorLeft]
	right, okR := m[AnchorRight]
	bottom, okB := m[AnchorBottom]
	top, okT := m[AnchorTop]
	if !okL || !okR || !okB || !okT {
		return geom.Point2D{}, 0, 0, false
	}
	c = geom.Point2D{X: (left.X + right.X) / 2, Y: (top.Y + bottom.Y) / 2}
	return c, math.Abs(right.X-left.X) / 2, math.Abs(bottom.Y-top.Y) / 2, true
}

type circleOps struct{}

func (circleOps) kind() shape.Kind { return shape.KindCircle }
func (circleOps) nPoints() int     { return 2 }

// create uses the first point as centre and the second one on the circle.
func (circleOps) create(points []geom.Point2D) (shape.Shape, error) {
	return shape.NewCircle(points[0], points[0].Distance(points[1]))
}

func (circleOps) anchors(s shape.Shape) []Anchor {
	c := s.(shape.Circle)
	return radialAnchors(c.Center(), c.Radius(), c.Radius())
}

// constrain keeps the centre: the dragged anchor sets the radius and the
// others follow.
func (o circleOps) constrain(s shape.Shape, id string, pos geom.Point2D) ([]Anchor, error) {
	c := s.(shape.Circle)
	center := c.Center()
	var r float64
	switch id {
	case AnchorLeft, AnchorRight:
		r = math.Abs(pos.X - center.X)
	case AnchorBottom, AnchorTop:
		r = math.Abs(pos.Y - center.Y)
	default:
		return nil, unknownAnchor(o.kind(), id)
	}
	return radialAnchors(center, r, r), nil
}

func (o circleOps) fromAnchors(anchors []Anchor) (shape.Shape, error) {
	c, a, _, ok := radiiFromAnchors(anchors)
	if !ok {
		return nil, unknownAnchor(o.kind(), "set")
	}
	return shape.NewCircle(c, a)
}

func (circleOps) outline(s shape.Shape, _ Style) []*Node {
	c := s.(shape.Circle)
	return []*Node{{
		Name:   NameShape,
		Kind:   NodeCircle,
		Points: []geom.Point2D{c.Center()},
		Radius: c.Radius(),
	}}
}

type ellipseOps struct{}

func (ellipseOps) kind() shape.Kind { return shape.KindEllipse }
func (ellipseOps) nPoints() int     { return 2 }

// create uses the first point as centre and the second one as a corner of
// the bounding box.
func (ellipseOps) create(points []geom.Point2D) (shape.Shape, error) {
	c := points[0]
	return shape.NewEllipse(c, math.Abs(points[1].X-c.X), math.Abs(points[1].Y-c.Y))
}

func (ellipseOps) anchors(s shape.Shape) []Anchor {
	e := s.(shape.Ellipse)
	return radialAnchors(e.Center(), e.A(), e.B())
}

func (o ellipseOps) constrain(s shape.Shape, id string, pos geom.Point2D) ([]Anchor, error) {
	e := s.(shape.Ellipse)
	center := e.Center()
	a, b := e.A(), e.B()
	switch id {
	case AnchorLeft, AnchorRight:
		a = math.Abs(pos.X - center.X)
	case AnchorBottom, AnchorTop:
		b = math.Abs(pos.Y - center.Y)
	default:
		return nil, unknownAnchor(o.kind(), id)
	}
	return radialAnchors(center, a, b), nil
}

func (o ellipseOps) fromAnchors(anchors []Anchor) (shape.Shape, error) {
	c, a, b, ok := radiiFromAnchors(anchors)
	if !ok {
		return nil, unknownAnchor(o.kind(), "set")
	}
	return shape.NewEllipse(c, a, b)
}

func (ellipseOps) outline(s shape.Shape, _ Style) []*Node {
	e := s.(shape.Ellipse)
	return []*Node{{
		Name:    NameShape,
		Kind:    NodeEllipse,
		Points:  []geom.Point2D{e.Center()},
		Radius:  e.A(),
		RadiusY: e.B(),
	}}
}
