package volume

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"volmeasure/pkg/errs"
	"volmeasure/pkg/event"
	"volmeasure/pkg/geom"
	"volmeasure/pkg/logging"
	"volmeasure/pkg/plane"
	"volmeasure/pkg/shape"
)

// View shows one plane of a volume at a time. Its position moves through
// SetIndex, SetPosition and Scroll, each change being published on
// PositionChanges.
type View struct {
	volume *Volume
	helper *plane.Helper
	index  geom.Index
	time   int

	PositionChanges event.Bus[event.PositionChange]
}

func newView(v *Volume, orientation geom.Matrix33) *View {
	return &View{
		volume: v,
		helper: plane.New(v.geometry, orientation),
		index:  v.centre(),
		time:   v.geometry.InitialTime(),
	}
}

// Helper returns the plane helper of the view.
func (v *View) Helper() *plane.Helper { return v.helper }

// Volume returns the viewed volume.
func (v *View) Volume() *Volume { return v.volume }

// Slice returns the current plane slice.
func (v *View) Slice() int { return v.index.Get(v.ScrollDimIndex()) }

// PlaneSize returns the width and height of the plane and its number of
// slices.
func (v *View) PlaneSize() (width, height, depth int) {
	s := v.helper.TargetOrientedPositiveXYZ(geom.Vector3D{
		X: float64(v.volume.width),
		Y: float64(v.volume.height),
		Z: float64(v.volume.depth),
	})
	return int(s.X), int(s.Y), int(s.Z)
}

// PlaneBounds returns the extent of the plane in plane coordinates.
func (v *View) PlaneBounds() (min, max geom.Point2D) {
	w, h, _ := v.PlaneSize()
	return geom.Point2D{}, geom.Point2D{X: float64(w), Y: float64(h)}
}

// SetIndex moves the view to a native index.
func (v *View) SetIndex(idx geom.Index) error {
	if idx.Len() != 3 || !v.volume.geometry.IsIndexInBounds(idx) {
		return errs.Wrap(errs.Invalid("index %s out of bounds", idx), "volume", "SetIndex", "move view")
	}
	if idx.Equals(v.index) {
		return nil
	}
	v.index = idx
	logging.Logger().Debug("volume: position changed", "index", idx.String())
	v.PositionChanges.Publish(event.PositionChange{Index: idx, Position: v.CurrentPosition()})
	return nil
}

// SetPosition moves the view to the voxel closest to a world position.
func (v *View) SetPosition(p geom.Point) error {
	idx, ok := v.volume.geometry.WorldToIndex(p)
	if !ok {
		return errs.Wrap(errs.Invalid("position %s", p), "volume", "SetPosition", "locate")
	}
	return v.SetIndex(geom.MustIndex(idx.Values()[:3]...))
}

// Scroll moves the view by delta slices.
func (v *View) Scroll(delta int) error {
	dim := v.ScrollDimIndex()
	return v.SetIndex(v.index.With(dim, v.index.Get(dim)+delta))
}

func (v *View) value(x, y int, at shape.Position) (float64, bool) {
	idx := v.helper.NativeIndex(geom.MustIndex(x, y, at.K))
	return v.volume.Value(idx.Get(0), idx.Get(1), idx.Get(2))
}

// ImageRegionValues returns the values of the plane rectangle [min, max)
// on slice at.K, row by row.
func (v *View) ImageRegionValues(min, max geom.Point2D, at shape.Position) []float64 {
	x0, y0 := int(math.Round(min.X)), int(math.Round(min.Y))
	x1, y1 := int(math.Round(max.X)), int(math.Round(max.Y))
	var values []float64
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if val, ok := v.value(x, y, at); ok {
				values = append(values, val)
			}
		}
	}
	return values
}

// ImageVariableRegionValues returns the values covered by segments on
// slice at.K.
func (v *View) ImageVariableRegionValues(segments []shape.Segment, at shape.Position) []float64 {
	var values []float64
	for _, s := range segments {
		for x := s.X; x < s.X+s.Width; x++ {
			if val, ok := v.value(x, s.Y, at); ok {
				values = append(values, val)
			}
		}
	}
	return values
}

func (v *View) Spacing2D() geom.Spacing2D     { return v.helper.Spacing2D() }
func (v *View) CanQuantifyImage() bool        { return len(v.volume.data) != 0 }
func (v *View) PixelUnit() string             { return v.volume.info.PixelUnit }
func (v *View) CurrentIndex() geom.Index      { return v.index }
func (v *View) IsAquisitionOrientation() bool { return v.helper.IsAquisitionOrientation() }
func (v *View) Modality() string              { return v.volume.info.Modality }
func (v *View) ScrollDimIndex() int           { return v.helper.ScrollIndex() }
func (v *View) SOPClassUID() string           { return v.volume.info.SOPClassUID }
func (v *View) Cosines() [6]float64           { return v.helper.Cosines() }

// CurrentPosition returns the world position of the current index.
func (v *View) CurrentPosition() geom.Point {
	return v.volume.geometry.IndexToWorld(v.index)
}

// CurrentImageUID returns the uid of the native slice of the current index.
func (v *View) CurrentImageUID() string {
	return v.volume.imageUID(v.index.Get(2))
}

// OriginForImageUID returns the origin of the native slice with uid.
func (v *View) OriginForImageUID(uid string) (geom.Point3D, bool) {
	k := v.volume.sliceOf(uid)
	if k < 0 {
		return geom.Point3D{}, false
	}
	return v.volume.geometry.OriginAt(k, v.time)
}

// PlanePoints returns the view plane through position. The origin is the
// world position of the plane point (0, 0) so that all the positions of
// one slice share the same plane points.
func (v *View) PlanePoints(position geom.Point3D) plane.Points {
	origin := position
	if _, k, ok := v.helper.PlanePointFromPosition(position, v.time); ok {
		origin = v.helper.PositionFromPlanePoint(geom.Point2D{}, math.Round(k), v.time)
	}
	return v.helper.PlanePoints(origin)
}

func (v *View) PositionFromPlanePoint(p geom.Point2D, k float64, time int) geom.Point3D {
	return v.helper.PositionFromPlanePoint(p, k, time)
}

// Image renders the current plane, values scaled over the volume range.
func (v *View) Image() *image.Gray16 {
	w, h, _ := v.PlaneSize()
	at := shape.Position{K: v.Slice()}
	img := image.NewGray16(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if val, ok := v.value(x, y, at); ok {
				n := math.Max(0, math.Min(65535, v.volume.normalise(val)*65535))
				img.SetGray16(x, y, color.Gray16{Y: uint16(n)})
			}
		}
	}
	return img
}

// SaveImage writes the current plane to filename, in the format of its
// extension. A positive width resizes the image keeping its aspect ratio.
func (v *View) SaveImage(filename string, width int) error {
	var img image.Image = v.Image()
	if width > 0 && width != img.Bounds().Dx() {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}
	if err := imaging.Save(img, filename); err != nil {
		return errs.Wrap(err, "volume", "SaveImage", "write "+filename)
	}
	return nil
}
