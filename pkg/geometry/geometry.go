// Package geometry maps between voxel indices and world coordinates for one
// image volume.
//
// A volume is described by a list of slice origins (one list per time point),
// a size, a spacing and an orientation matrix. Slices may arrive with
// irregular spacing, so the slice origin of an index is looked up by walking
// the origin list instead of extrapolating from the first origin.
//
// # Concurrency
//
// A Geometry is append-only. AppendOrigin and AppendFrame publish a new
// immutable origin table through an atomic pointer, so any number of readers
// can race a single appender without locks. A reader may observe an origin
// list that is one append behind, never a partially written origin.
package geometry

import (
	"math"
	"slices"
	"sync/atomic"

	"volmeasure/pkg/errs"
	"volmeasure/pkg/geom"
	"volmeasure/pkg/logging"
)

// originTable is an immutable snapshot of the slice origins.
type originTable struct {
	initialTime int
	times       []int
	byTime      map[int][]geom.Point3D
	size        geom.Size
}

func (t *originTable) clone() *originTable {
	next := &originTable{
		initialTime: t.initialTime,
		times:       slices.Clone(t.times),
		byTime:      make(map[int][]geom.Point3D, len(t.byTime)+1),
		size:        t.size,
	}
	for k, v := range t.byTime {
		next.byTime[k] = v
	}
	return next
}

func (t *originTable) resize() {
	slicesMax := 0
	for _, list := range t.byTime {
		if len(list) > slicesMax {
			slicesMax = len(list)
		}
	}
	size := t.size.With(2, slicesMax)
	if len(t.times) > 1 || size.Len() > 3 {
		size = size.With(3, len(t.times))
	}
	t.size = size
}

// Geometry holds the index <-> world mapping of one volume.
type Geometry struct {
	spacing        geom.Spacing
	orientation    geom.Matrix33
	invOrientation geom.Matrix33
	table          atomic.Pointer[originTable]
}

// New creates a geometry. origins are the slice origins of the given time
// point; size must have at least three dimensions and its third dimension
// must match the number of origins.
func New(origins []geom.Point3D, size geom.Size, spacing geom.Spacing, orientation geom.Matrix33, time int) (*Geometry, error) {
	if len(origins) == 0 {
		return nil, errs.Wrap(errs.Invalid("no origins"), "geometry", "New", "validate")
	}
	for i, o := range origins {
		if !o.IsFinite() {
			return nil, errs.Wrap(errs.Invalid("non-finite origin at %d", i), "geometry", "New", "validate")
		}
	}
	if size.Len() < 3 || spacing.Len() < 3 {
		return nil, errs.Wrap(errs.Invalid("size and spacing need 3 dimensions"), "geometry", "New", "validate")
	}
	if size.Get(2) != len(origins) {
		return nil, errs.Wrap(errs.Invalid("size has %d slices for %d origins", size.Get(2), len(origins)),
			"geometry", "New", "validate")
	}
	inv, ok := orientation.Inverse()
	if !ok {
		return nil, errs.Wrap(errs.Invalid("singular orientation %s", orientation), "geometry", "New", "validate")
	}

	g := &Geometry{
		spacing:        spacing,
		orientation:    orientation,
		invOrientation: inv,
	}
	table := &originTable{
		initialTime: time,
		times:       []int{time},
		byTime:      map[int][]geom.Point3D{time: slices.Clone(origins)},
		size:        size,
	}
	table.resize()
	g.table.Store(table)
	return g, nil
}

// Spacing returns the voxel spacing (on the non oriented axes).
func (g *Geometry) Spacing() geom.Spacing { return g.spacing }

// Orientation returns the orientation matrix.
func (g *Geometry) Orientation() geom.Matrix33 { return g.orientation }

// Size returns the current size; it grows as slices and frames are appended.
func (g *Geometry) Size() geom.Size { return g.table.Load().size }

// InitialTime returns the first time point.
func (g *Geometry) InitialTime() int { return g.table.Load().initialTime }

// Times returns the known time points in increasing order.
func (g *Geometry) Times() []int { return slices.Clone(g.table.Load().times) }

// Origin returns the first origin of the initial time point.
func (g *Geometry) Origin() geom.Point3D {
	t := g.table.Load()
	return t.byTime[t.initialTime][0]
}

// Origins returns a copy of the origins of the initial time point.
func (g *Geometry) Origins() []geom.Point3D {
	t := g.table.Load()
	return slices.Clone(t.byTime[t.initialTime])
}

// OriginsAt returns a copy of the origins of a time point.
func (g *Geometry) OriginsAt(time int) ([]geom.Point3D, bool) {
	list, ok := g.table.Load().byTime[time]
	if !ok {
		return nil, false
	}
	return slices.Clone(list), true
}

// OriginAt returns the origin of slice k at a time point.
func (g *Geometry) OriginAt(k, time int) (geom.Point3D, bool) {
	list, ok := g.table.Load().byTime[time]
	if !ok || k < 0 || k >= len(list) {
		return geom.Point3D{}, false
	}
	return list[k], true
}

// HasSlicesAtTime reports whether origins exist for a time point.
func (g *Geometry) HasSlicesAtTime(time int) bool {
	_, ok := g.table.Load().byTime[time]
	return ok
}

// CurrentNumberOfSlices returns the number of slices loaded for a time point.
func (g *Geometry) CurrentNumberOfSlices(time int) int {
	return len(g.table.Load().byTime[time])
}

// IncludesOrigin reports whether any slice origin is within tol of p.
func (g *Geometry) IncludesOrigin(p geom.Point3D, tol float64) bool {
	for _, list := range g.table.Load().byTime {
		for _, o := range list {
			if o.IsSimilar(p, tol) {
				return true
			}
		}
	}
	return false
}

// RealSpacing returns the spacing along the world axes (orientation applied, positive).
func (g *Geometry) RealSpacing() geom.Spacing {
	v := g.orientation.MultiplyVector3D(g.spacing.Get3D())
	return geom.MustSpacing(math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z))
}

// normal is the scroll direction: the third orientation column.
func (g *Geometry) normal() geom.Vector3D { return g.orientation.Col(2) }

// AppendOrigin inserts a slice origin at position index of a time point.
// A new time point is created if needed.
func (g *Geometry) AppendOrigin(origin geom.Point3D, index, time int) error {
	if !origin.IsFinite() {
		return errs.Wrap(errs.Invalid("non-finite origin"), "geometry", "AppendOrigin", "validate")
	}
	next := g.table.Load().clone()
	list := next.byTime[time]
	if index < 0 || index > len(list) {
		return errs.Wrap(errs.Invalid("index %d outside [0, %d]", index, len(list)), "geometry", "AppendOrigin", "validate")
	}
	grown := make([]geom.Point3D, 0, len(list)+1)
	grown = append(grown, list[:index]...)
	grown = append(grown, origin)
	grown = append(grown, list[index:]...)
	if _, exists := next.byTime[time]; !exists {
		next.addTime(time)
	}
	next.byTime[time] = grown
	next.resize()
	g.table.Store(next)

	logging.Logger().Debug("geometry: origin appended", "index", index, "time", time, "slices", len(grown))
	return nil
}

// AppendFrame adds a new time point starting with one origin.
func (g *Geometry) AppendFrame(origin geom.Point3D, time int) error {
	if !origin.IsFinite() {
		return errs.Wrap(errs.Invalid("non-finite origin"), "geometry", "AppendFrame", "validate")
	}
	next := g.table.Load().clone()
	if _, exists := next.byTime[time]; exists {
		return errs.Wrap(errs.Invalid("time %d already present", time), "geometry", "AppendFrame", "validate")
	}
	next.addTime(time)
	next.byTime[time] = []geom.Point3D{origin}
	next.resize()
	g.table.Store(next)

	logging.Logger().Debug("geometry: frame appended", "time", time)
	return nil
}

func (t *originTable) addTime(time int) {
	t.times = append(t.times, time)
	slices.Sort(t.times)
	t.initialTime = t.times[0]
}

// originsFor returns the origins of a time point, falling back to the
// initial time point for frames that share its slice layout.
func (t *originTable) originsFor(time int) []geom.Point3D {
	if list, ok := t.byTime[time]; ok && len(list) != 0 {
		return list
	}
	return t.byTime[t.initialTime]
}

// SliceIndex returns the insertion index of a new slice at point.
//
// The closest origin is found first; a point lying against the scroll
// direction from it (opposite vectors) gets the higher index. Slice index
// therefore increases as the origin decreases along the scroll axis.
func (g *Geometry) SliceIndex(point geom.Point3D, time int) int {
	list := g.table.Load().byTime[time]
	if len(list) == 0 {
		return 0
	}
	closest := point.Closest(list)
	if g.normal().Dot(point.Minus(list[closest])) < 0 {
		return closest + 1
	}
	return closest
}
