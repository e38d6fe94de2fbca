// Package draw turns annotations into declarative render node trees and
// implements the per shape kind editing contract: anchors, anchor moves and
// translations.
//
// Dispatch on shape kind goes through one table (Lookup); callers can
// register their own factories in a Registry passed as overrides.
package draw

import (
	"slices"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"

	"volmeasure/pkg/annotation"
	"volmeasure/pkg/errs"
	"volmeasure/pkg/geom"
	"volmeasure/pkg/logging"
	"volmeasure/pkg/shape"
)

// Anchor is a draggable control point of a shape.
type Anchor struct {
	ID       string
	Position geom.Point2D
}

// Style holds the drawing settings shared by all factories.
type Style struct {
	StrokeWidth  float64
	FontSize     float64
	AnchorRadius float64
	// Scale is the view zoom; sizes are divided by it to stay constant on screen.
	Scale float64
}

// DefaultStyle returns the default drawing settings.
func DefaultStyle() Style {
	return Style{StrokeWidth: 2, FontSize: 12, AnchorRadius: 3, Scale: 1}
}

func (s Style) scaled(v float64) float64 {
	if s.Scale <= 0 {
		return v
	}
	return v / s.Scale
}

// Factory builds and edits the annotations of one shape kind.
type Factory interface {
	Kind() shape.Kind
	// Supports reports whether the factory handles s.
	Supports(s shape.Shape) bool
	// NPoints is the number of points needed to create a shape, 0 for
	// shapes with a variable number of points.
	NPoints() int
	CreateShape(points []geom.Point2D) (shape.Shape, error)
	SetAnnotationMathShape(a *annotation.Annotation, points []geom.Point2D) error

	// Anchors returns the anchors of a shape, in a fixed order and count.
	Anchors(s shape.Shape) []Anchor
	// ConstrainAnchorMove returns the anchors after moving anchor id to
	// pos, with the kind specific corrections applied.
	ConstrainAnchorMove(s shape.Shape, id string, pos geom.Point2D) ([]Anchor, error)
	UpdateAnnotationOnAnchorMove(a *annotation.Annotation, id string, pos geom.Point2D) error
	UpdateAnnotationOnTranslation(a *annotation.Annotation, dx, dy float64)

	CreateShapeGroup(a *annotation.Annotation, style Style) *Node
	UpdateShapeGroupOnAnchorMove(a *annotation.Annotation, group *Node, style Style)
	DefaultLabelPosition(s shape.Shape) geom.Point2D
}

// Registry maps shape kinds to factories.
type Registry map[shape.Kind]Factory

var builtin = Registry{
	shape.KindCircle:     &factory{ops: circleOps{}},
	shape.KindEllipse:    &factory{ops: ellipseOps{}},
	shape.KindRectangle:  &factory{ops: rectangleOps{}},
	shape.KindROI:        &factory{ops: roiOps{}},
	shape.KindProtractor: &factory{ops: protractorOps{}},
	shape.KindLine:       &factory{ops: lineOps{}},
}

// Builtin returns the factory of a kind without overrides.
func Builtin(kind shape.Kind) (Factory, bool) {
	f, ok := builtin[kind]
	return f, ok
}

// Lookup returns the factory of a kind, from overrides first then the
// built-in set. A missing factory is logged and reported with ok=false.
func Lookup(kind shape.Kind, overrides Registry) (Factory, bool) {
	if f, ok := overrides[kind]; ok && f != nil {
		return f, true
	}
	if f, ok := builtin[kind]; ok {
		return f, true
	}
	logging.Logger().Warn("draw: no factory for shape kind", "kind", kind.String())
	return nil, false
}

// ForAnnotation returns the factory able to handle the shape of a.
func ForAnnotation(a *annotation.Annotation, overrides Registry) (Factory, bool) {
	if a.MathShape == nil {
		logging.Logger().Warn("draw: annotation has no shape", "id", a.ID)
		return nil, false
	}
	f, ok := Lookup(a.MathShape.Kind(), overrides)
	if !ok || !f.Supports(a.MathShape) {
		if ok {
			logging.Logger().Warn("draw: factory does not support shape", "kind", a.MathShape.Kind().String())
		}
		return nil, false
	}
	return f, true
}

// DefaultTextExpr returns the default label template of a kind.
func DefaultTextExpr(kind shape.Kind) string {
	switch kind {
	case shape.KindCircle, shape.KindEllipse, shape.KindRectangle:
		return "{surface}"
	case shape.KindProtractor:
		return "{angle}"
	case shape.KindLine:
		return "{length}"
	default:
		return ""
	}
}

// ops are the kind specific parts of a built-in factory.
type ops interface {
	kind() shape.Kind
	nPoints() int
	create(points []geom.Point2D) (shape.Shape, error)
	anchors(s shape.Shape) []Anchor
	constrain(s shape.Shape, id string, pos geom.Point2D) ([]Anchor, error)
	fromAnchors(anchors []Anchor) (shape.Shape, error)
	// outline returns the shape nodes; the first one is named NameShape.
	outline(s shape.Shape, style Style) []*Node
}

type factory struct {
	ops ops
}

func (f *factory) Kind() shape.Kind { return f.ops.kind() }
func (f *factory) NPoints() int     { return f.ops.nPoints() }

func (f *factory) Supports(s shape.Shape) bool {
	return s != nil && s.Kind() == f.ops.kind()
}

func (f *factory) CreateShape(points []geom.Point2D) (shape.Shape, error) {
	if n := f.ops.nPoints(); n != 0 && len(points) != n {
		return nil, errs.Wrap(errs.Invalid("%s needs %d points, got %d", f.ops.kind(), n, len(points)),
			"draw", "CreateShape", "check points")
	}
	s, err := f.ops.create(points)
	if err != nil {
		return nil, errs.Wrap(err, "draw", "CreateShape", "create "+f.ops.kind().String())
	}
	return s, nil
}

func (f *factory) SetAnnotationMathShape(a *annotation.Annotation, points []geom.Point2D) error {
	s, err := f.CreateShape(points)
	if err != nil {
		return err
	}
	a.ReferencePoints = slices.Clone(points)
	a.SetMathShape(s)
	return nil
}

func (f *factory) Anchors(s shape.Shape) []Anchor {
	if !f.Supports(s) {
		return nil
	}
	return f.ops.anchors(s)
}

func (f *factory) ConstrainAnchorMove(s shape.Shape, id string, pos geom.Point2D) ([]Anchor, error) {
	if !f.Supports(s) {
		return nil, errs.Wrap(errs.Invalid("unsupported shape"), "draw", "ConstrainAnchorMove", "check shape")
	}
	return f.ops.constrain(s, id, pos)
}

// UpdateAnnotationOnAnchorMove rebuilds the shape from the full anchor set
// after the move.
func (f *factory) UpdateAnnotationOnAnchorMove(a *annotation.Annotation, id string, pos geom.Point2D) error {
	anchors, err := f.ConstrainAnchorMove(a.MathShape, id, pos)
	if err != nil {
		return err
	}
	s, err := f.ops.fromAnchors(anchors)
	if err != nil {
		return errs.Wrap(err, "draw", "UpdateAnnotationOnAnchorMove", "rebuild "+f.ops.kind().String())
	}
	a.ReferencePoints = s.Points()
	a.SetMathShape(s)
	return nil
}

func (f *factory) UpdateAnnotationOnTranslation(a *annotation.Annotation, dx, dy float64) {
	if a.MathShape == nil {
		return
	}
	if a.ReferencePoints != nil {
		moved := make([]geom.Point2D, len(a.ReferencePoints))
		for i, p := range a.ReferencePoints {
			moved[i] = p.Add(dx, dy)
		}
		a.ReferencePoints = moved
	}
	if a.LabelPosition != nil {
		moved := a.LabelPosition.Add(dx, dy)
		a.LabelPosition = &moved
	}
	a.SetMathShape(a.MathShape.Translate(dx, dy))
}

// DefaultLabelPosition puts the label below right of the shape.
func (f *factory) DefaultLabelPosition(s shape.Shape) geom.Point2D {
	_, max := s.Bounds()
	return max
}

// CreateShapeGroup returns the tree of an annotation: shape, label and
// label connector.
func (f *factory) CreateShapeGroup(a *annotation.Annotation, style Style) *Node {
	group := &Node{
		ID:        a.ID,
		Name:      NameShapeGroup,
		Kind:      NodeGroup,
		Visible:   true,
		Draggable: true,
	}
	f.refresh(a, group, style)
	return group
}

// UpdateShapeGroupOnAnchorMove resynchronises the tree of an annotation
// after its shape changed: outline, anchors, label and connector.
func (f *factory) UpdateShapeGroupOnAnchorMove(a *annotation.Annotation, group *Node, style Style) {
	withAnchors := len(group.ChildrenNamed(NameAnchor)) != 0
	f.refresh(a, group, style)
	if withAnchors {
		ShowAnchors(f, a, group, style)
	}
}

func (f *factory) refresh(a *annotation.Annotation, group *Node, style Style) {
	nodeStyle := NodeStyle{
		Colour:      a.Colour,
		StrokeWidth: style.scaled(style.StrokeWidth),
		FontSize:    style.scaled(style.FontSize),
	}
	group.Children = group.Children[:0]
	if a.MathShape == nil {
		return
	}

	outline := f.ops.outline(a.MathShape, style)
	for i, n := range outline {
		n.ID = a.ID + "-" + n.Name
		if i > 0 {
			n.ID += "-" + strconv.Itoa(i)
		}
		n.Style = nodeStyle
		n.Visible = true
	}
	group.Children = append(group.Children, outline...)

	labelPos := f.DefaultLabelPosition(a.MathShape)
	if a.LabelPosition != nil {
		labelPos = *a.LabelPosition
	}
	text := a.Text()
	label := &Node{
		ID:        a.ID + "-" + NameLabel,
		Name:      NameLabel,
		Kind:      NodeLabel,
		Points:    []geom.Point2D{labelPos},
		Text:      text,
		Style:     nodeStyle,
		Visible:   text != "",
		Draggable: true,
	}

	shapeMin, shapeMax := a.MathShape.Bounds()
	labelMin, labelMax := LabelBox(labelPos, text, nodeStyle.FontSize)
	ends := Connector(shapeMin, shapeMax, labelMin, labelMax)
	connectorStyle := nodeStyle
	connectorStyle.Dashed = true
	connector := &Node{
		ID:      a.ID + "-" + NameConnector,
		Name:    NameConnector,
		Kind:    NodeConnector,
		Points:  ends[:],
		Style:   connectorStyle,
		Visible: label.Visible,
	}
	group.Children = append(group.Children, label, connector)
}

// ShowAnchors adds (or replaces) the anchor nodes of an annotation tree.
func ShowAnchors(f Factory, a *annotation.Annotation, group *Node, style Style) {
	HideAnchors(group)
	for _, anchor := range f.Anchors(a.MathShape) {
		group.Children = append(group.Children, &Node{
			ID:        a.ID + "-" + NameAnchor + "-" + anchor.ID,
			Name:      NameAnchor,
			Kind:      NodeAnchor,
			Points:    []geom.Point2D{anchor.Position},
			Radius:    style.scaled(style.AnchorRadius),
			Text:      anchor.ID,
			Style:     NodeStyle{Colour: colorful.Color{R: 1, G: 1, B: 1}, StrokeWidth: style.scaled(1)},
			Visible:   true,
			Draggable: true,
		})
	}
}

// HideAnchors removes the anchor nodes of an annotation tree.
func HideAnchors(group *Node) {
	group.Children = slices.DeleteFunc(group.Children, func(n *Node) bool { return n.Name == NameAnchor })
}

func anchorMap(anchors []Anchor) map[string]geom.Point2D {
	m := make(map[string]geom.Point2D, len(anchors))
	for _, a := range anchors {
		m[a.ID] = a.Position
	}
	return m
}

func unknownAnchor(kind shape.Kind, id string) error {
	return errs.Wrap(errs.ErrUnknownAnchor, "draw", "ConstrainAnchorMove", kind.String()+" anchor "+id)
}
