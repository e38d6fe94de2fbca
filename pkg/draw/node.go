package draw

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"volmeasure/pkg/geom"
)

// NodeKind is the primitive a render node draws.
type NodeKind int

const (
	NodeGroup NodeKind = iota
	NodeCircle
	NodeEllipse
	// NodePolygon is a closed polyline.
	NodePolygon
	// NodePolyline is an open polyline.
	NodePolyline
	NodeArc
	NodeLabel
	NodeAnchor
	NodeConnector
)

// Node names.
const (
	NameShapeGroup = "shape-group"
	NameShape      = "shape"
	NameLabel      = "label"
	NameConnector  = "connector"
	NameAnchor     = "anchor"
	NameArc        = "arc"
)

// NodeStyle is the look of a node.
type NodeStyle struct {
	Colour      colorful.Color
	StrokeWidth float64
	FontSize    float64
	Dashed      bool
}

// Node is one element of the declarative tree handed to a rendering
// backend. Points are plane coordinates.
type Node struct {
	ID     string
	Name   string
	Kind   NodeKind
	Points []geom.Point2D

	// Radius is the x radius of circles, ellipses and arcs, RadiusY the y
	// radius of ellipses.
	Radius  float64
	RadiusY float64

	// StartAngle and EndAngle bound arcs, in degrees.
	StartAngle float64
	EndAngle   float64

	Text      string
	Style     NodeStyle
	Visible   bool
	Draggable bool
	Children  []*Node
}

// Child returns the first direct child with name, nil if none.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns the direct children with name.
func (n *Node) ChildrenNamed(name string) []*Node {
	var res []*Node
	for _, c := range n.Children {
		if c.Name == name {
			res = append(res, c)
		}
	}
	return res
}

// Find returns the node with id in the tree rooted at n.
func (n *Node) Find(id string) *Node {
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if f := c.Find(id); f != nil {
			return f
		}
	}
	return nil
}

// sideMidpoints returns the middles of the left, right, top and bottom
// sides of a box.
func sideMidpoints(min, max geom.Point2D) [4]geom.Point2D {
	cx, cy := (min.X+max.X)/2, (min.Y+max.Y)/2
	return [4]geom.Point2D{
		{X: min.X, Y: cy},
		{X: max.X, Y: cy},
		{X: cx, Y: min.Y},
		{X: cx, Y: max.Y},
	}
}

// Connector returns the shortest segment between the side middles of the
// shape box and those of the label box.
func Connector(shapeMin, shapeMax, labelMin, labelMax geom.Point2D) [2]geom.Point2D {
	var best [2]geom.Point2D
	bestDist := math.Inf(1)
	for _, s := range sideMidpoints(shapeMin, shapeMax) {
		for _, l := range sideMidpoints(labelMin, labelMax) {
			if d := s.Distance(l); d < bestDist {
				bestDist = d
				best = [2]geom.Point2D{s, l}
			}
		}
	}
	return best
}

// LabelBox estimates the box of a label drawn at position (top left).
func LabelBox(position geom.Point2D, text string, fontSize float64) (min, max geom.Point2D) {
	width := float64(len([]rune(text))) * fontSize * 0.6
	height := fontSize * 1.2
	return position, position.Add(width, height)
}
