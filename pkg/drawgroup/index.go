// Package drawgroup partitions the annotations of a volume by the view plane
// they were drawn on, so that only the annotations of the current plane are
// shown without scanning the full list on every slice change.
package drawgroup

import (
	"slices"

	"volmeasure/pkg/annotation"
	"volmeasure/pkg/errs"
	"volmeasure/pkg/event"
	"volmeasure/pkg/geom"
	"volmeasure/pkg/logging"
	"volmeasure/pkg/plane"
)

// Locator returns the plane of a view through a world position.
type Locator interface {
	PlanePoints(position geom.Point3D) plane.Points
}

// PositionGroup holds the annotations drawn on one plane.
type PositionGroup struct {
	Key     Key
	Visible bool
	ids     []string
}

// IDs returns the annotation ids of the group in insertion order.
func (g *PositionGroup) IDs() []string { return slices.Clone(g.ids) }

// Len returns the number of annotations.
func (g *PositionGroup) Len() int { return len(g.ids) }

// Index maps plane keys to position groups.
type Index struct {
	precision int
	row, col  geom.Vector3D
	locator   Locator

	groups      []*PositionGroup
	byKey       map[Key]*PositionGroup
	keyOf       map[string]Key
	annotations map[string]*annotation.Annotation
	active      *PositionGroup
}

// NewIndex returns an empty index. nativeCosines are the row and column
// directions of the volume acquisition plane; a negative precision selects
// DefaultPrecision.
func NewIndex(locator Locator, nativeCosines [6]float64, precision int) *Index {
	if precision < 0 {
		precision = DefaultPrecision
	}
	return &Index{
		precision:   precision,
		row:         geom.Vector3D{X: nativeCosines[0], Y: nativeCosines[1], Z: nativeCosines[2]},
		col:         geom.Vector3D{X: nativeCosines[3], Y: nativeCosines[4], Z: nativeCosines[5]},
		locator:     locator,
		byKey:       map[Key]*PositionGroup{},
		keyOf:       map[string]Key{},
		annotations: map[string]*annotation.Annotation{},
	}
}

// Precision returns the number of decimals kept in keys.
func (x *Index) Precision() int { return x.precision }

// KeyForAnnotation returns the plane key of an initialised annotation.
func (x *Index) KeyForAnnotation(a *annotation.Annotation) (Key, bool) {
	origin, ok := a.KeyOrigin()
	if !ok {
		return Key{}, false
	}
	if a.PlanePoints != nil {
		return KeyFor(origin, a.PlanePoints.Row, a.PlanePoints.Column, x.precision), true
	}
	return KeyFor(origin, x.row, x.col, x.precision), true
}

// KeyForPosition returns the key of the view plane through position.
func (x *Index) KeyForPosition(position geom.Point3D) Key {
	pp := x.locator.PlanePoints(position)
	return KeyFor(pp.Origin, pp.Row, pp.Column, x.precision)
}

// Insert adds an annotation to the group of its plane, creating the group
// if needed. A new group is visible when its key is the active one.
func (x *Index) Insert(a *annotation.Annotation) error {
	key, ok := x.KeyForAnnotation(a)
	if !ok {
		return errs.Wrap(errs.ErrNotInitialised, "drawgroup", "Insert", "compute key of "+a.ID)
	}
	if _, exists := x.keyOf[a.ID]; exists {
		x.Remove(a.ID)
	}
	g := x.byKey[key]
	if g == nil {
		g = &PositionGroup{Key: key, Visible: x.active != nil && x.active.Key == key}
		x.byKey[key] = g
		x.groups = append(x.groups, g)
		if g.Visible {
			x.active = g
		}
		logging.Logger().Debug("drawgroup: group created", "key", key.String())
	}
	g.ids = append(g.ids, a.ID)
	x.keyOf[a.ID] = key
	x.annotations[a.ID] = a
	return nil
}

// Remove takes an annotation out of its group. Empty groups are kept.
func (x *Index) Remove(id string) bool {
	key, ok := x.keyOf[id]
	if !ok {
		return false
	}
	g := x.byKey[key]
	if i := slices.Index(g.ids, id); i != -1 {
		g.ids = slices.Delete(g.ids, i, i+1)
	}
	delete(x.keyOf, id)
	delete(x.annotations, id)
	return true
}

// Activate makes the group of key the only visible one.
func (x *Index) Activate(key Key) {
	x.active = nil
	for _, g := range x.groups {
		g.Visible = g.Key == key
		if g.Visible {
			x.active = g
		}
	}
	if x.active == nil {
		// remember the key for groups created later
		x.active = &PositionGroup{Key: key}
	}
}

// ActivatePosition activates the plane of the view through position.
func (x *Index) ActivatePosition(position geom.Point3D) {
	x.Activate(x.KeyForPosition(position))
}

// OnPositionChange reacts to a positionchange event.
func (x *Index) OnPositionChange(e event.PositionChange) {
	if e.Position.Len() < 3 {
		return
	}
	x.ActivatePosition(e.Position.Get3D())
}

// Active returns the visible annotations, in insertion order.
func (x *Index) Active() []*annotation.Annotation {
	if x.active == nil {
		return nil
	}
	res := make([]*annotation.Annotation, 0, len(x.active.ids))
	for _, id := range x.active.ids {
		res = append(res, x.annotations[id])
	}
	return res
}

// ActiveKey returns the key of the visible plane.
func (x *Index) ActiveKey() (Key, bool) {
	if x.active == nil {
		return Key{}, false
	}
	return x.active.Key, true
}

// Groups returns the position groups in creation order.
func (x *Index) Groups() []*PositionGroup { return slices.Clone(x.groups) }

// Group returns the position group of key.
func (x *Index) Group(key Key) (*PositionGroup, bool) {
	g, ok := x.byKey[key]
	return g, ok
}

// Visible reports whether an annotation is in the visible group.
func (x *Index) Visible(id string) bool {
	key, ok := x.keyOf[id]
	return ok && x.byKey[key].Visible
}

// Nearest returns up to n visible annotations whose shape centroid is
// closest to p (plane coordinates), closest first.
func (x *Index) Nearest(p geom.Point2D, n int) []*annotation.Annotation {
	var points centroids
	for _, a := range x.Active() {
		if a.MathShape == nil {
			continue
		}
		c := a.MathShape.Centroid()
		points = append(points, centroid{X: c.X, Y: c.Y, ID: a.ID})
	}
	ids := nearestIDs(points, p, n)
	res := make([]*annotation.Annotation, len(ids))
	for i, id := range ids {
		res[i] = x.annotations[id]
	}
	return res
}

// Attach indexes the annotations of a group and follows its additions and
// removals. The returned function stops following.
func (x *Index) Attach(g *annotation.Group) (detach func()) {
	for _, a := range g.List() {
		if err := x.Insert(a); err != nil {
			logging.Logger().Warn("drawgroup: cannot index annotation", "id", a.ID, "error", err)
		}
	}
	added := g.Added.Subscribe(func(e annotation.Event) {
		if err := x.Insert(e.Annotation); err != nil {
			logging.Logger().Warn("drawgroup: cannot index annotation", "id", e.Annotation.ID, "error", err)
		}
	})
	removed := g.Removed.Subscribe(func(e annotation.Event) {
		x.Remove(e.Annotation.ID)
	})
	return func() {
		_ = g.Added.Unsubscribe(added)
		_ = g.Removed.Unsubscribe(removed)
	}
}

// Follow activates planes as the position published on bus changes.
func (x *Index) Follow(bus *event.Bus[event.PositionChange]) (stop func()) {
	id := bus.Subscribe(x.OnPositionChange)
	return func() { _ = bus.Unsubscribe(id) }
}
