package draw

import (
	"math"

	"volmeasure/pkg/geom"
	"volmeasure/pkg/shape"
)

// anchor ids of lines and protractors
const (
	AnchorBegin = "begin"
	AnchorMid   = "mid"
	AnchorEnd   = "end"
)

// pointAnchors names the points of a shape with ids, in order.
func pointAnchors(points []geom.Point2D, ids ...string) []Anchor {
	res := make([]Anchor, len(ids))
	for i, id := range ids {
		res[i] = Anchor{ID: id, Position: points[i]}
	}
	return res
}

// movePointAnchor replaces the position of anchor id.
func movePointAnchor(kind shape.Kind, anchors []Anchor, id string, pos geom.Point2D) ([]Anchor, error) {
	for i := range anchors {
		if anchors[i].ID == id {
			anchors[i].Position = pos
			return anchors, nil
		}
	}
	return nil, unknownAnchor(kind, id)
}

// anchorPoints returns the positions of anchors ids, in that order.
func anchorPoints(kind shape.Kind, anchors []Anchor, ids ...string) ([]geom.Point2D, error) {
	m := anchorMap(anchors)
	res := make([]geom.Point2D, len(ids))
	for i, id := range ids {
		p, ok := m[id]
		if !ok {
			return nil, unknownAnchor(kind, id)
		}
		res[i] = p
	}
	return res, nil
}

type lineOps struct{}

func (lineOps) kind() shape.Kind { return shape.KindLine }
func (lineOps) nPoints() int     { return 2 }

func (lineOps) create(points []geom.Point2D) (shape.Shape, error) {
	return shape.NewLine(points)
}

func (lineOps) anchors(s shape.Shape) []Anchor {
	return pointAnchors(s.Points(), AnchorBegin, AnchorEnd)
}

func (o lineOps) constrain(s shape.Shape, id string, pos geom.Point2D) ([]Anchor, error) {
	return movePointAnchor(o.kind(), o.anchors(s), id, pos)
}

func (o lineOps) fromAnchors(anchors []Anchor) (shape.Shape, error) {
	points, err := anchorPoints(o.kind(), anchors, AnchorBegin, AnchorEnd)
	if err != nil {
		return nil, err
	}
	return shape.NewLine(points)
}

// outline draws the line with a tick perpendicular to each end.
func (lineOps) outline(s shape.Shape, style Style) []*Node {
	l := s.(shape.Line)
	nodes := []*Node{{
		Name:   NameShape,
		Kind:   NodePolyline,
		Points: []geom.Point2D{l.Begin(), l.End()},
	}}
	length := l.Length()
	if length == 0 {
		return nodes
	}
	half := style.scaled(style.FontSize) / 2
	nx, ny := -l.DeltaY()/length*half, l.DeltaX()/length*half
	for _, p := range []geom.Point2D{l.Begin(), l.End()} {
		nodes = append(nodes, &Node{
			Name:   "tick",
			Kind:   NodePolyline,
			Points: []geom.Point2D{p.Add(-nx, -ny), p.Add(nx, ny)},
		})
	}
	return nodes
}

type protractorOps struct{}

func (protractorOps) kind() shape.Kind { return shape.KindProtractor }
func (protractorOps) nPoints() int     { return 3 }

func (protractorOps) create(points []geom.Point2D) (shape.Shape, error) {
	return shape.NewProtractor(points)
}

func (protractorOps) anchors(s shape.Shape) []Anchor {
	return pointAnchors(s.Points(), AnchorBegin, AnchorMid, AnchorEnd)
}

func (o protractorOps) constrain(s shape.Shape, id string, pos geom.Point2D) ([]Anchor, error) {
	return movePointAnchor(o.kind(), o.anchors(s), id, pos)
}

func (o protractorOps) fromAnchors(anchors []Anchor) (shape.Shape, error) {
	points, err := anchorPoints(o.kind(), anchors, AnchorBegin, AnchorMid, AnchorEnd)
	if err != nil {
		return nil, err
	}
	return shape.NewProtractor(points)
}

// outline draws both arms and an arc at the vertex spanning the measured
// angle.
func (protractorOps) outline(s shape.Shape, _ Style) []*Node {
	p := s.(shape.Protractor)
	b, m, e := p.Point(0), p.Point(1), p.Point(2)
	nodes := []*Node{{
		Name:   NameShape,
		Kind:   NodePolyline,
		Points: []geom.Point2D{b, m, e},
	}}
	radius := math.Min(m.Distance(b), m.Distance(e)) * 0.33
	if radius == 0 {
		return nodes
	}
	start := math.Atan2(b.Y-m.Y, b.X-m.X) * 180 / math.Pi
	end := math.Atan2(e.Y-m.Y, e.X-m.X) * 180 / math.Pi
	// draw the arc on the side of the small angle
	if d := math.Mod(end-start+360, 360); d > 180 {
		start, end = end, start
	}
	return append(nodes, &Node{
		Name:       NameArc,
		Kind:       NodeArc,
		Points:     []geom.Point2D{m},
		Radius:     radius,
		StartAngle: start,
		EndAngle:   start + p.Angle(),
	})
}
