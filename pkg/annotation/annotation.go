// Package annotation models measurements bound to an image slice and the
// ordered groups that hold them.
package annotation

import (
	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"

	"volmeasure/pkg/errs"
	"volmeasure/pkg/geom"
	"volmeasure/pkg/logging"
	"volmeasure/pkg/plane"
	"volmeasure/pkg/shape"
)

// cosineTolerance is the tolerance used to compare view directions.
const cosineTolerance = 1e-6

// DefaultColour is the colour of new annotations.
var DefaultColour = colorful.Color{R: 1, G: 1, B: 0}

// ReferenceFrame is the view an annotation gets bound to: it locates the
// current slice and gives access to its pixel values.
type ReferenceFrame interface {
	shape.ImageAccess

	// CurrentPosition returns the world position of the view (4D with a frame).
	CurrentPosition() geom.Point
	// CurrentIndex returns the native index of the current position.
	CurrentIndex() geom.Index
	CurrentImageUID() string
	OriginForImageUID(uid string) (geom.Point3D, bool)
	IsAquisitionOrientation() bool
	PlanePoints(position geom.Point3D) plane.Points
	Modality() string
	// ScrollDimIndex returns the native dimension scrolled by the view.
	ScrollDimIndex() int
	SOPClassUID() string
	PositionFromPlanePoint(p geom.Point2D, k float64, time int) geom.Point3D
}

// ViewCosines describes the direction of a candidate view.
type ViewCosines interface {
	IsAquisitionOrientation() bool
	Cosines() [6]float64
}

// Annotation is one measurement: a shape bound to an image slice, its
// quantification and display properties.
type Annotation struct {
	ID          string
	TrackingUID string

	ReferencedSOPInstanceUID string
	ReferencedSOPClassUID    string
	// ReferencedFrameNumber is 1-based, 0 when the image has no frames.
	ReferencedFrameNumber int

	MathShape       shape.Shape
	ReferencePoints []geom.Point2D
	Colour          colorful.Color
	// Quantification is derived from MathShape and the bound image.
	Quantification shape.Quantification
	TextExpr       string
	// LabelPosition overrides the default label position when set.
	LabelPosition *geom.Point2D

	PlaneOrigin *geom.Point3D
	// PlanePoints is only set for annotations drawn on a non acquisition view.
	PlanePoints *plane.Points

	Meta map[string]string

	frame    ReferenceFrame
	position shape.Position
	hasFrame bool
}

// New returns an unbound annotation with fresh ids.
func New() *Annotation {
	return &Annotation{
		ID:          uuid.NewString(),
		TrackingUID: uuid.NewString(),
		Colour:      DefaultColour,
	}
}

// Init binds the annotation to the current slice of a reference frame. It
// can only be called once.
func (a *Annotation) Init(frame ReferenceFrame) error {
	if a.frame != nil {
		logging.Logger().Warn("annotation: cannot initialise twice", "id", a.ID)
		return errs.Wrap(errs.ErrAlreadyInitialised, "annotation", "Init", "bind reference frame")
	}
	if frame == nil {
		return errs.Wrap(errs.Invalid("nil reference frame"), "annotation", "Init", "bind reference frame")
	}

	idx := frame.CurrentIndex()
	scroll := frame.ScrollDimIndex()
	if scroll < 0 || scroll >= idx.Len() {
		return errs.Wrap(errs.Invalid("scroll dimension %d outside index %s", scroll, idx),
			"annotation", "Init", "bind reference frame")
	}

	a.frame = frame
	a.position = shape.Position{K: idx.Get(scroll)}
	if idx.Len() > 3 {
		a.position.Frame = idx.Get(3)
		a.hasFrame = true
		a.ReferencedFrameNumber = idx.Get(3) + 1
	}
	a.ReferencedSOPInstanceUID = frame.CurrentImageUID()
	a.ReferencedSOPClassUID = frame.SOPClassUID()
	if origin, ok := frame.OriginForImageUID(a.ReferencedSOPInstanceUID); ok {
		a.PlaneOrigin = &origin
	}
	if !frame.IsAquisitionOrientation() {
		pp := frame.PlanePoints(frame.CurrentPosition().Get3D())
		a.PlanePoints = &pp
	}
	a.UpdateQuantification()
	return nil
}

// IsInitialised reports whether Init succeeded.
func (a *Annotation) IsInitialised() bool { return a.frame != nil }

// Frame returns the bound reference frame, nil before Init.
func (a *Annotation) Frame() ReferenceFrame { return a.frame }

// Position returns the bound plane slice and frame.
func (a *Annotation) Position() shape.Position { return a.position }

// IsCompatibleView reports whether the annotation can be shown on a view:
// annotations without plane points belong to acquisition views, the others
// to views with the same direction cosines whatever the slice.
func (a *Annotation) IsCompatibleView(view ViewCosines) bool {
	if a.PlanePoints == nil {
		return view.IsAquisitionOrientation()
	}
	return a.PlanePoints.IsCompatible(view.Cosines(), cosineTolerance)
}

// Centroid returns the world position of the shape centroid, with the
// frame as fourth component when the image has frames.
func (a *Annotation) Centroid() (geom.Point, bool) {
	if a.frame == nil || a.MathShape == nil {
		return geom.Point{}, false
	}
	c := a.MathShape.Centroid()
	w := a.frame.PositionFromPlanePoint(c, float64(a.position.K), a.position.Frame)
	if a.hasFrame {
		return geom.PointFrom3D(w, float64(a.position.Frame)), true
	}
	return geom.PointFrom3D(w), true
}

// Text returns the label text: the text template with quantification values.
func (a *Annotation) Text() string {
	return shape.ReplaceFlags(a.TextExpr, a.Quantification)
}

// UpdateQuantification recomputes the quantification of the shape against
// the bound image.
func (a *Annotation) UpdateQuantification() {
	if a.frame == nil || a.MathShape == nil {
		a.Quantification = nil
		return
	}
	a.Quantification = a.MathShape.Quantify(a.frame, a.position, shape.Flags(a.TextExpr))
}

// SetMathShape replaces the shape and recomputes the quantification.
func (a *Annotation) SetMathShape(s shape.Shape) {
	a.MathShape = s
	a.UpdateQuantification()
}

// KeyOrigin returns the plane origin used to group annotations by position.
func (a *Annotation) KeyOrigin() (geom.Point3D, bool) {
	if a.PlanePoints != nil {
		return a.PlanePoints.Origin, true
	}
	if a.PlaneOrigin != nil {
		return *a.PlaneOrigin, true
	}
	return geom.Point3D{}, false
}
