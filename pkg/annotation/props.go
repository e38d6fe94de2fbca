package annotation

import (
	"maps"
	"slices"

	"github.com/lucasb-eyer/go-colorful"

	"volmeasure/pkg/geom"
	"volmeasure/pkg/shape"
)

// Key names an annotation property that commands and events refer to.
type Key string

const (
	KeyMathShape       Key = "mathShape"
	KeyReferencePoints Key = "referencePoints"
	KeyLabelPosition   Key = "labelPosition"
	KeyColour          Key = "colour"
	KeyTextExpr        Key = "textExpr"
	KeyMeta            Key = "meta"
)

// Props holds values for a set of keys. Only the fields named by the keys
// that come with it are meaningful.
type Props struct {
	MathShape       shape.Shape
	ReferencePoints []geom.Point2D
	LabelPosition   *geom.Point2D
	Colour          colorful.Color
	TextExpr        string
	Meta            map[string]string
}

// Snapshot returns a copy of the values of keys.
func (a *Annotation) Snapshot(keys []Key) Props {
	var p Props
	for _, k := range keys {
		switch k {
		case KeyMathShape:
			p.MathShape = a.MathShape
		case KeyReferencePoints:
			p.ReferencePoints = slices.Clone(a.ReferencePoints)
		case KeyLabelPosition:
			p.LabelPosition = clonePoint(a.LabelPosition)
		case KeyColour:
			p.Colour = a.Colour
		case KeyTextExpr:
			p.TextExpr = a.TextExpr
		case KeyMeta:
			p.Meta = maps.Clone(a.Meta)
		}
	}
	return p
}

// Apply sets the values of keys from props. The quantification is
// recomputed when the shape or the text template change.
func (a *Annotation) Apply(keys []Key, props Props) {
	requantify := false
	for _, k := range keys {
		switch k {
		case KeyMathShape:
			a.MathShape = props.MathShape
			requantify = true
		case KeyReferencePoints:
			a.ReferencePoints = slices.Clone(props.ReferencePoints)
		case KeyLabelPosition:
			a.LabelPosition = clonePoint(props.LabelPosition)
		case KeyColour:
			a.Colour = props.Colour
		case KeyTextExpr:
			a.TextExpr = props.TextExpr
			requantify = true
		case KeyMeta:
			a.Meta = maps.Clone(props.Meta)
		}
	}
	if requantify {
		a.UpdateQuantification()
	}
}

// EqualProps reports whether a and b hold the same values for keys.
func EqualProps(keys []Key, a, b Props) bool {
	for _, k := range keys {
		switch k {
		case KeyMathShape:
			if (a.MathShape == nil) != (b.MathShape == nil) {
				return false
			}
			if a.MathShape != nil && !a.MathShape.Equals(b.MathShape) {
				return false
			}
		case KeyReferencePoints:
			if !slices.Equal(a.ReferencePoints, b.ReferencePoints) {
				return false
			}
		case KeyLabelPosition:
			if (a.LabelPosition == nil) != (b.LabelPosition == nil) {
				return false
			}
			if a.LabelPosition != nil && !a.LabelPosition.Equals(*b.LabelPosition) {
				return false
			}
		case KeyColour:
			if a.Colour != b.Colour {
				return false
			}
		case KeyTextExpr:
			if a.TextExpr != b.TextExpr {
				return false
			}
		case KeyMeta:
			if !maps.Equal(a.Meta, b.Meta) {
				return false
			}
		}
	}
	return true
}

func clonePoint(p *geom.Point2D) *geom.Point2D {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
