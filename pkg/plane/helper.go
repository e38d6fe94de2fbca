// Package plane converts between world space, the 2D plane of an oriented
// view and the native image index space.
package plane

import (
	"math"

	"volmeasure/pkg/geom"
	"volmeasure/pkg/geometry"
)

// Points describes a non native plane: its origin and the unit direction
// vectors of its rows and columns.
type Points struct {
	Origin geom.Point3D
	Row    geom.Vector3D
	Column geom.Vector3D
}

// Helper converts coordinates for one view of one volume. It holds no
// mutable state.
type Helper struct {
	geometry          *geometry.Geometry
	imageOrientation  geom.Matrix33
	viewOrientation   geom.Matrix33
	targetOrientation geom.Matrix33
	targetInverse     geom.Matrix33
	imageReduced      geom.Matrix33
	imageReducedInv   geom.Matrix33
}

// TargetOrientation returns the matrix from plane coordinates (scroll axis
// last) to native image axes: abs(inv(oneAndZeros(image)) x view).
func TargetOrientation(imageOrientation, viewOrientation geom.Matrix33) geom.Matrix33 {
	inv, ok := imageOrientation.AsOneAndZeros().Inverse()
	if !ok {
		return viewOrientation.Abs()
	}
	return inv.Multiply(viewOrientation).Abs()
}

// New returns a helper for the given volume geometry and view orientation.
func New(g *geometry.Geometry, viewOrientation geom.Matrix33) *Helper {
	image := g.Orientation()
	target := TargetOrientation(image, viewOrientation)
	h := &Helper{
		geometry:          g,
		imageOrientation:  image,
		viewOrientation:   viewOrientation,
		targetOrientation: target,
		imageReduced:      image.AsOneAndZeros(),
	}
	// target is a permutation matrix: its inverse is its transpose
	h.targetInverse = target.Transpose()
	if inv, ok := h.imageReduced.Inverse(); ok {
		h.imageReducedInv = inv
	} else {
		h.imageReducedInv = geom.Identity33()
	}
	return h
}

// Geometry returns the volume geometry.
func (h *Helper) Geometry() *geometry.Geometry { return h.geometry }

// ViewOrientation returns the view orientation matrix.
func (h *Helper) ViewOrientation() geom.Matrix33 { return h.viewOrientation }

// TargetOrientationMatrix returns the plane to native matrix.
func (h *Helper) TargetOrientationMatrix() geom.Matrix33 { return h.targetOrientation }

// TargetOrientedVector3D expresses a native vector in plane axes.
func (h *Helper) TargetOrientedVector3D(v geom.Vector3D) geom.Vector3D {
	return h.targetInverse.MultiplyVector3D(v)
}

// TargetDeOrientedVector3D expresses a plane vector in native axes.
func (h *Helper) TargetDeOrientedVector3D(v geom.Vector3D) geom.Vector3D {
	return h.targetOrientation.MultiplyVector3D(v)
}

// TargetOrientedPositiveXYZ orients native per-axis values (a spacing, a
// size) to plane axes and drops the sign.
func (h *Helper) TargetOrientedPositiveXYZ(v geom.Vector3D) geom.Vector3D {
	o := h.TargetOrientedVector3D(v)
	return geom.Vector3D{X: math.Abs(o.X), Y: math.Abs(o.Y), Z: math.Abs(o.Z)}
}

// ImageOrientedPoint3D reduces a world aligned point to the image axes.
func (h *Helper) ImageOrientedPoint3D(p geom.Point3D) geom.Point3D {
	return h.imageReducedInv.MultiplyPoint3D(p)
}

// ImageDeOrientedPoint3D is the inverse of ImageOrientedPoint3D.
func (h *Helper) ImageDeOrientedPoint3D(p geom.Point3D) geom.Point3D {
	return h.imageReduced.MultiplyPoint3D(p)
}

// planeToWorld is the matrix from plane axes to world axes.
func (h *Helper) planeToWorld() geom.Matrix33 {
	return h.imageOrientation.Multiply(h.targetOrientation)
}

// Offset3DFromPlaneOffset converts an in-plane world offset (mm) to a 3D
// world offset.
func (h *Helper) Offset3DFromPlaneOffset(offset geom.Point2D) geom.Vector3D {
	return h.planeToWorld().MultiplyVector3D(geom.Vector3D{X: offset.X, Y: offset.Y})
}

// PlaneOffsetFromOffset3D projects a 3D world offset on the plane axes.
func (h *Helper) PlaneOffsetFromOffset3D(offset geom.Vector3D) geom.Point2D {
	row, col := h.PlaneAxes()
	return geom.Point2D{X: row.Dot(offset), Y: col.Dot(offset)}
}

// PositionFromPlanePoint returns the world position of plane point p on
// plane slice k at a time point.
func (h *Helper) PositionFromPlanePoint(p geom.Point2D, k float64, time int) geom.Point3D {
	native := h.targetOrientation.MultiplyPoint3D(geom.Point3D{X: p.X, Y: p.Y, Z: k})
	return h.geometry.PointToWorld(native, time)
}

// PlanePointFromPosition returns the plane point and plane slice of a world
// position. ok is false for positions the geometry cannot map.
func (h *Helper) PlanePointFromPosition(w geom.Point3D, time int) (geom.Point2D, float64, bool) {
	native, ok := h.geometry.WorldToPoint(w, time)
	if !ok {
		return geom.Point2D{}, 0, false
	}
	p := h.targetInverse.MultiplyPoint3D(native)
	return geom.Point2D{X: p.X, Y: p.Y}, p.Z, true
}

// NativeIndex converts a plane index (i, j, k[, ...]) to a native image index.
func (h *Helper) NativeIndex(planeIndex geom.Index) geom.Index {
	return h.targetOrientation.MultiplyIndex3D(planeIndex)
}

// PlaneIndex converts a native image index to a plane index.
func (h *Helper) PlaneIndex(nativeIndex geom.Index) geom.Index {
	return h.targetInverse.MultiplyIndex3D(nativeIndex)
}

// ScrollIndex returns the native dimension scrolled by the view.
func (h *Helper) ScrollIndex() int {
	return h.targetOrientation.ThirdColMajorDirection()
}

// NativeScrollIndex returns the native dimension scrolled by the view,
// taking the image orientation into account.
func (h *Helper) NativeScrollIndex() int {
	return h.imageOrientation.Multiply(h.targetOrientation).ThirdColMajorDirection()
}

// Spacing2D returns the in-plane spacing.
func (h *Helper) Spacing2D() geom.Spacing2D {
	s := h.TargetOrientedPositiveXYZ(h.geometry.Spacing().Get3D())
	return geom.Spacing2D{X: s.X, Y: s.Y}
}

// IsAquisitionOrientation reports whether the view shows the native
// acquisition plane.
func (h *Helper) IsAquisitionOrientation() bool {
	return geom.IsIdentity33(h.targetOrientation)
}

// PlaneAxes returns the world direction of the plane rows and columns.
func (h *Helper) PlaneAxes() (row, col geom.Vector3D) {
	m := h.planeToWorld()
	return m.Col(0), m.Col(1)
}

// Cosines returns the plane row then column direction cosines.
func (h *Helper) Cosines() [6]float64 {
	row, col := h.PlaneAxes()
	return [6]float64{row.X, row.Y, row.Z, col.X, col.Y, col.Z}
}

// PlanePoints returns the plane through position with the view axes.
func (h *Helper) PlanePoints(position geom.Point3D) Points {
	row, col := h.PlaneAxes()
	return Points{Origin: position, Row: row, Column: col}
}

// IsCompatible reports whether plane points have the given cosines, within tol.
func (p Points) IsCompatible(cosines [6]float64, tol float64) bool {
	row := geom.Vector3D{X: cosines[0], Y: cosines[1], Z: cosines[2]}
	col := geom.Vector3D{X: cosines[3], Y: cosines[4], Z: cosines[5]}
	return p.Row.IsSimilar(row, tol) && p.Column.IsSimilar(col, tol)
}
