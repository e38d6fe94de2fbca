package edit

import (
	"volmeasure/pkg/annotation"
	"volmeasure/pkg/command"
	"volmeasure/pkg/draw"
	"volmeasure/pkg/errs"
	"volmeasure/pkg/event"
	"volmeasure/pkg/geom"
	"volmeasure/pkg/logging"
)

// State is the state of a drag session.
type State int

const (
	Idle State = iota
	Dragging
	Committed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Committed:
		return "committed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

type sessionKind int

const (
	anchorDrag sessionKind = iota
	translation
)

// sessionKeys are the properties a drag can change.
var sessionKeys = []annotation.Key{
	annotation.KeyMathShape,
	annotation.KeyReferencePoints,
	annotation.KeyLabelPosition,
}

// Session is one drag of an annotation. Moves change the annotation
// directly; End turns the net change into a single command.
type Session struct {
	editor     *Editor
	annotation *annotation.Annotation
	factory    draw.Factory
	kind       sessionKind
	anchorID   string
	state      State
	snapshot   annotation.Props
	node       *draw.Node
}

// State returns the session state.
func (s *Session) State() State { return s.state }

// Annotation returns the dragged annotation.
func (s *Session) Annotation() *annotation.Annotation { return s.annotation }

// Node returns the render tree of the annotation, kept in sync with moves.
func (s *Session) Node() *draw.Node { return s.node }

func (s *Session) open(method string) error {
	if s.state == Committed || s.state == Cancelled {
		return errs.Wrap(errs.ErrSessionClosed, "edit", method, "use session in state "+s.state.String())
	}
	return nil
}

// MoveAnchor moves the dragged anchor to pos, clamped to the editor bounds.
func (s *Session) MoveAnchor(pos geom.Point2D) error {
	if err := s.open("MoveAnchor"); err != nil {
		return err
	}
	if s.kind != anchorDrag {
		return errs.Wrap(errs.Invalid("not an anchor drag"), "edit", "MoveAnchor", "check session")
	}
	pos = s.editor.bounds.Clamp(pos)
	if err := s.factory.UpdateAnnotationOnAnchorMove(s.annotation, s.anchorID, pos); err != nil {
		return err
	}
	s.state = Dragging
	s.factory.UpdateShapeGroupOnAnchorMove(s.annotation, s.node, s.editor.opts.Style)
	return nil
}

// Translate moves the whole shape by (dx, dy), reduced so that it stays in
// the editor bounds.
func (s *Session) Translate(dx, dy float64) error {
	if err := s.open("Translate"); err != nil {
		return err
	}
	if s.kind != translation {
		return errs.Wrap(errs.Invalid("not a translation"), "edit", "Translate", "check session")
	}
	min, max := s.annotation.MathShape.Bounds()
	dx, dy = s.editor.bounds.clampDelta(min, max, dx, dy)
	s.factory.UpdateAnnotationOnTranslation(s.annotation, dx, dy)
	s.state = Dragging
	s.factory.UpdateShapeGroupOnAnchorMove(s.annotation, s.node, s.editor.opts.Style)
	return nil
}

// End closes the session. Released over a delete target, the annotation is
// put back to its pre-drag state and removed with a RemoveAnnotation
// command. Otherwise a net change is recorded as one UpdateAnnotation
// command. The returned command is nil when nothing changed.
func (s *Session) End(overDelete bool) (command.Command, error) {
	if err := s.open("End"); err != nil {
		return nil, err
	}
	e := s.editor
	defer e.close(s)
	s.state = Committed
	id := s.annotation.ID

	if overDelete {
		s.restore()
		cmd := command.NewRemoveAnnotation(e.group, s.annotation)
		e.history.Execute(cmd)
		e.Events.Publish(Event{Type: event.DrawDelete, ID: id})
		return cmd, nil
	}

	current := s.annotation.Snapshot(sessionKeys)
	var changed []annotation.Key
	for _, k := range sessionKeys {
		if !annotation.EqualProps([]annotation.Key{k}, s.snapshot, current) {
			changed = append(changed, k)
		}
	}
	if len(changed) == 0 {
		logging.Logger().Debug("edit: drag without change", "id", id)
		return nil, nil
	}

	cmd := command.NewUpdateAnnotation(e.group, s.annotation, changed, s.snapshot, current)
	e.history.Execute(cmd)
	if s.kind == translation {
		e.Events.Publish(Event{Type: event.DrawMove, ID: id})
	} else {
		e.Events.Publish(Event{Type: event.DrawChange, ID: id})
	}
	return cmd, nil
}

// Cancel puts the annotation back to its pre-drag state.
func (s *Session) Cancel() error {
	if err := s.open("Cancel"); err != nil {
		return err
	}
	s.restore()
	s.state = Cancelled
	s.editor.close(s)
	return nil
}

func (s *Session) restore() {
	s.annotation.Apply(sessionKeys, s.snapshot)
	s.factory.UpdateShapeGroupOnAnchorMove(s.annotation, s.node, s.editor.opts.Style)
}
