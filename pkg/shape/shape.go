// Package shape holds the mathematical measurement shapes and their
// quantification against image data.
//
// Shapes are immutable values defined in 2D plane coordinates (plane pixel
// units). The set of shapes is closed: every Shape reports one of the Kind
// constants and callers switch on Kind instead of type-checking.
package shape

import (
	"volmeasure/pkg/geom"
)

// Kind identifies a shape variant.
type Kind int

const (
	KindUnknown Kind = iota
	KindCircle
	KindEllipse
	KindRectangle
	KindROI
	KindProtractor
	KindLine
)

var kindNames = map[Kind]string{
	KindCircle:     "Circle",
	KindEllipse:    "Ellipse",
	KindRectangle:  "Rectangle",
	KindROI:        "ROI",
	KindProtractor: "Protractor",
	KindLine:       "Line",
}

// Kinds returns all known kinds in declaration order.
func Kinds() []Kind {
	return []Kind{KindCircle, KindEllipse, KindRectangle, KindROI, KindProtractor, KindLine}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// ParseKind returns the kind with the given name (case sensitive).
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return KindUnknown, false
}

// Position selects the image slice and frame a shape is measured on.
type Position struct {
	K     int
	Frame int
}

// Segment is one scanline run of pixels: Width pixels from (X, Y).
type Segment struct {
	X, Y  int
	Width int
}

// ImageAccess gives read access to the pixel values of the image a shape
// is drawn on. Pixel storage stays with the provider.
type ImageAccess interface {
	// ImageRegionValues returns the values of the rectangle [min, max).
	ImageRegionValues(min, max geom.Point2D, at Position) []float64
	// ImageVariableRegionValues returns the values covered by segments.
	ImageVariableRegionValues(segments []Segment, at Position) []float64
	// Spacing2D returns the in-plane spacing, the zero value when unknown.
	Spacing2D() geom.Spacing2D
	CanQuantifyImage() bool
	PixelUnit() string
}

// Shape is implemented by the six shape variants of this package only.
type Shape interface {
	Kind() Kind
	Centroid() geom.Point2D
	Equals(rhs Shape) bool
	// Bounds returns the bounding box of the shape.
	Bounds() (min, max geom.Point2D)
	// Translate returns a copy moved by (dx, dy).
	Translate(dx, dy float64) Shape
	// Points returns the defining points.
	Points() []geom.Point2D
	Quantify(access ImageAccess, at Position, flags []string) Quantification

	sealed()
}

// AreaShape is a closed shape with a surface.
type AreaShape interface {
	Shape
	Surface() float64
	// WorldSurface returns the surface in mm², false when the spacing is unknown.
	WorldSurface(sp geom.Spacing2D) (float64, bool)
	Segments() []Segment

	// regionValues samples the pixels covered by the shape.
	regionValues(access ImageAccess, at Position) []float64
}

func worldSurface(surface float64, sp geom.Spacing2D) (float64, bool) {
	if !sp.Valid() {
		return 0, false
	}
	return surface * sp.X * sp.Y, true
}

func checkFinite(points ...geom.Point2D) error {
	for i, p := range points {
		if !p.IsFinite() {
			return invalid("non-finite point %d", i)
		}
	}
	return nil
}

func boundsOf(points []geom.Point2D) (min, max geom.Point2D) {
	min, max = points[0], points[0]
	for _, p := range points[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

func translateAll(points []geom.Point2D, dx, dy float64) []geom.Point2D {
	res := make([]geom.Point2D, len(points))
	for i, p := range points {
		res[i] = p.Add(dx, dy)
	}
	return res
}

func equalPoints(a, b []geom.Point2D) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}
