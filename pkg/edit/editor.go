// Package edit drives the interactive editing of annotations: shape
// creation and drag sessions that end in at most one command.
package edit

import (
	"math"
	"slices"

	"volmeasure/pkg/annotation"
	"volmeasure/pkg/command"
	"volmeasure/pkg/draw"
	"volmeasure/pkg/errs"
	"volmeasure/pkg/event"
	"volmeasure/pkg/geom"
	"volmeasure/pkg/logging"
	"volmeasure/pkg/shape"
)

// Event is published for draw-create, draw-delete, draw-move and
// draw-change.
type Event struct {
	Type string
	ID   string
}

// Bounds is the container the shapes are edited in, in plane coordinates.
type Bounds struct {
	Min, Max geom.Point2D
}

// Clamp returns p moved inside the bounds.
func (b Bounds) Clamp(p geom.Point2D) geom.Point2D {
	return geom.Point2D{
		X: math.Min(math.Max(p.X, b.Min.X), b.Max.X),
		Y: math.Min(math.Max(p.Y, b.Min.Y), b.Max.Y),
	}
}

// clampDelta reduces a translation so that the box [min, max] stays inside.
func (b Bounds) clampDelta(min, max geom.Point2D, dx, dy float64) (float64, float64) {
	dx = math.Min(math.Max(dx, b.Min.X-min.X), b.Max.X-max.X)
	dy = math.Min(math.Max(dy, b.Min.Y-min.Y), b.Max.Y-max.Y)
	return dx, dy
}

// Options tune an Editor.
type Options struct {
	// Factories override the built-in shape factories.
	Factories draw.Registry
	Style     draw.Style
	// TextExprs are the label templates of new annotations, per kind.
	TextExprs map[shape.Kind]string
}

// Editor creates annotations in a group and hands out drag sessions, at
// most one per annotation.
type Editor struct {
	group    *annotation.Group
	history  *command.History
	bounds   Bounds
	opts     Options
	sessions map[string]*Session

	Events event.Bus[Event]
}

// NewEditor returns an editor of group recording its commands in history.
func NewEditor(group *annotation.Group, history *command.History, bounds Bounds, opts Options) *Editor {
	if history == nil {
		history = command.NewHistory(0)
	}
	if opts.Style == (draw.Style{}) {
		opts.Style = draw.DefaultStyle()
	}
	return &Editor{
		group:    group,
		history:  history,
		bounds:   bounds,
		opts:     opts,
		sessions: map[string]*Session{},
	}
}

// History returns the command history.
func (e *Editor) History() *command.History { return e.history }

// Bounds returns the container bounds.
func (e *Editor) Bounds() Bounds { return e.bounds }

// SetBounds changes the container bounds, for example after a reformat.
func (e *Editor) SetBounds(b Bounds) { e.bounds = b }

func (e *Editor) textExpr(kind shape.Kind) string {
	if expr, ok := e.opts.TextExprs[kind]; ok {
		return expr
	}
	return draw.DefaultTextExpr(kind)
}

// Create builds an annotation of kind from points on the current slice of
// frame and adds it to the group through an AddAnnotation command.
func (e *Editor) Create(kind shape.Kind, points []geom.Point2D, frame annotation.ReferenceFrame) (*annotation.Annotation, error) {
	if !e.group.IsEditable() {
		return nil, errs.Wrap(errs.Invalid("group is not editable"), "edit", "Create", "check group")
	}
	f, ok := draw.Lookup(kind, e.opts.Factories)
	if !ok {
		return nil, errs.Wrap(errs.ErrNoFactory, "edit", "Create", "find factory for "+kind.String())
	}
	clamped := make([]geom.Point2D, len(points))
	for i, p := range points {
		clamped[i] = e.bounds.Clamp(p)
	}

	a := annotation.New()
	a.Colour = e.group.Colour()
	a.TextExpr = e.textExpr(kind)
	if err := f.SetAnnotationMathShape(a, clamped); err != nil {
		return nil, err
	}
	if err := a.Init(frame); err != nil {
		return nil, errs.Wrap(err, "edit", "Create", "bind annotation")
	}
	if !e.history.Execute(command.NewAddAnnotation(e.group, a)) {
		return nil, errs.Wrap(errs.ErrInvalidCommand, "edit", "Create", "add annotation")
	}
	logging.Logger().Debug("edit: annotation created", "id", a.ID, "kind", kind.String())
	e.Events.Publish(Event{Type: event.DrawCreate, ID: a.ID})
	return a, nil
}

// Delete removes an annotation through a RemoveAnnotation command.
func (e *Editor) Delete(id string) error {
	if _, busy := e.sessions[id]; busy {
		return errs.Wrap(errs.ErrSessionActive, "edit", "Delete", "check sessions")
	}
	a := e.group.Find(id)
	if a == nil {
		return errs.Wrap(errs.ErrNotFound, "edit", "Delete", "find "+id)
	}
	e.history.Execute(command.NewRemoveAnnotation(e.group, a))
	e.Events.Publish(Event{Type: event.DrawDelete, ID: id})
	return nil
}

// StartAnchorDrag opens a session moving one anchor of an annotation.
func (e *Editor) StartAnchorDrag(id, anchorID string) (*Session, error) {
	s, err := e.start(id, anchorDrag)
	if err != nil {
		return nil, err
	}
	if !slices.ContainsFunc(s.factory.Anchors(s.annotation.MathShape), func(a draw.Anchor) bool { return a.ID == anchorID }) {
		e.close(s)
		return nil, errs.Wrap(errs.ErrUnknownAnchor, "edit", "StartAnchorDrag", "find anchor "+anchorID)
	}
	s.anchorID = anchorID
	return s, nil
}

// StartTranslation opens a session moving a whole annotation.
func (e *Editor) StartTranslation(id string) (*Session, error) {
	return e.start(id, translation)
}

// Session returns the active session of an annotation.
func (e *Editor) Session(id string) (*Session, bool) {
	s, ok := e.sessions[id]
	return s, ok
}

func (e *Editor) start(id string, kind sessionKind) (*Session, error) {
	if !e.group.IsEditable() {
		return nil, errs.Wrap(errs.Invalid("group is not editable"), "edit", "Start", "check group")
	}
	if _, busy := e.sessions[id]; busy {
		return nil, errs.Wrap(errs.ErrSessionActive, "edit", "Start", "open session on "+id)
	}
	a := e.group.Find(id)
	if a == nil {
		return nil, errs.Wrap(errs.ErrNotFound, "edit", "Start", "find "+id)
	}
	f, ok := draw.ForAnnotation(a, e.opts.Factories)
	if !ok {
		return nil, errs.Wrap(errs.ErrNoFactory, "edit", "Start", "find factory of "+id)
	}

	s := &Session{
		editor:     e,
		annotation: a,
		factory:    f,
		kind:       kind,
		snapshot:   a.Snapshot(sessionKeys),
		node:       f.CreateShapeGroup(a, e.opts.Style),
	}
	draw.ShowAnchors(f, a, s.node, e.opts.Style)
	e.sessions[id] = s
	return s, nil
}

func (e *Editor) close(s *Session) {
	delete(e.sessions, s.annotation.ID)
}
