// Package command implements the undoable mutations of annotation groups and
// segmentations.
//
// Commands must be checked with IsValid before they run: executing or
// undoing an invalid command is a programming error and panics. Execute and
// Undo are idempotent, and Undo after Execute restores the previous state.
package command

import (
	"slices"

	"volmeasure/pkg/annotation"
	"volmeasure/pkg/errs"
	"volmeasure/pkg/event"
	"volmeasure/pkg/logging"
)

// Event is passed to the execute and undo callbacks.
type Event struct {
	Type string
	// ID is the annotation id, or the segment number for segment commands.
	ID string
}

// Command is an undoable mutation.
type Command interface {
	Name() string
	IsValid() bool
	Execute()
	Undo()
	// OnExecute registers a callback run after each Execute.
	OnExecute(fn func(Event))
	// OnUndo registers a callback run after each Undo.
	OnUndo(fn func(Event))
}

type callbacks struct {
	onExecute []func(Event)
	onUndo    []func(Event)
}

func (c *callbacks) OnExecute(fn func(Event)) {
	if fn != nil {
		c.onExecute = append(c.onExecute, fn)
	}
}

func (c *callbacks) OnUndo(fn func(Event)) {
	if fn != nil {
		c.onUndo = append(c.onUndo, fn)
	}
}

func (c *callbacks) executed(e Event) {
	for _, fn := range c.onExecute {
		fn(e)
	}
}

func (c *callbacks) undone(e Event) {
	for _, fn := range c.onUndo {
		fn(e)
	}
}

func mustBeValid(c Command, method string) {
	if !c.IsValid() {
		panic(errs.Wrap(errs.ErrInvalidCommand, "command", method, "run "+c.Name()))
	}
}

// AddAnnotation adds an annotation to a group.
type AddAnnotation struct {
	callbacks
	group      *annotation.Group
	annotation *annotation.Annotation
}

// NewAddAnnotation returns the command adding a to group.
func NewAddAnnotation(group *annotation.Group, a *annotation.Annotation) *AddAnnotation {
	return &AddAnnotation{group: group, annotation: a}
}

func (c *AddAnnotation) Name() string { return "AddAnnotation" }

func (c *AddAnnotation) IsValid() bool {
	return c.group != nil && c.annotation != nil && c.annotation.ID != ""
}

func (c *AddAnnotation) Execute() {
	mustBeValid(c, "Execute")
	if c.group.IndexOf(c.annotation.ID) == -1 {
		if err := c.group.Add(c.annotation); err != nil {
			logging.Logger().Warn("command: cannot add annotation", "id", c.annotation.ID, "error", err)
			return
		}
	}
	c.executed(Event{Type: event.AnnotationAdd, ID: c.annotation.ID})
}

func (c *AddAnnotation) Undo() {
	mustBeValid(c, "Undo")
	if c.group.IndexOf(c.annotation.ID) != -1 {
		_ = c.group.Remove(c.annotation.ID)
	}
	c.undone(Event{Type: event.AnnotationRemove, ID: c.annotation.ID})
}

// RemoveAnnotation removes an annotation from a group; Undo puts it back at
// its former index.
type RemoveAnnotation struct {
	callbacks
	group      *annotation.Group
	annotation *annotation.Annotation
	index      int
}

// NewRemoveAnnotation returns the command removing a from group.
func NewRemoveAnnotation(group *annotation.Group, a *annotation.Annotation) *RemoveAnnotation {
	c := &RemoveAnnotation{group: group, annotation: a, index: -1}
	if group != nil && a != nil {
		c.index = group.IndexOf(a.ID)
	}
	return c
}

func (c *RemoveAnnotation) Name() string { return "RemoveAnnotation" }

// IsValid reports whether the annotation was in the group when the command
// was created.
func (c *RemoveAnnotation) IsValid() bool {
	return c.group != nil && c.annotation != nil && c.index != -1
}

func (c *RemoveAnnotation) Execute() {
	mustBeValid(c, "Execute")
	if i := c.group.IndexOf(c.annotation.ID); i != -1 {
		c.index = i
		_ = c.group.Remove(c.annotation.ID)
	}
	c.executed(Event{Type: event.AnnotationRemove, ID: c.annotation.ID})
}

func (c *RemoveAnnotation) Undo() {
	mustBeValid(c, "Undo")
	if c.group.IndexOf(c.annotation.ID) == -1 {
		index := min(c.index, c.group.Len())
		if err := c.group.Insert(index, c.annotation); err != nil {
			logging.Logger().Warn("command: cannot restore annotation", "id", c.annotation.ID, "error", err)
			return
		}
	}
	c.undone(Event{Type: event.AnnotationAdd, ID: c.annotation.ID})
}

// UpdateAnnotation changes some properties of an annotation. Only the
// changed keys and their old and new values are kept.
type UpdateAnnotation struct {
	callbacks
	group      *annotation.Group
	annotation *annotation.Annotation
	keys       []annotation.Key
	original   annotation.Props
	updated    annotation.Props
}

// NewUpdateAnnotation returns the command moving the keys of a from
// original to updated values.
func NewUpdateAnnotation(group *annotation.Group, a *annotation.Annotation, keys []annotation.Key, original, updated annotation.Props) *UpdateAnnotation {
	return &UpdateAnnotation{
		group:      group,
		annotation: a,
		keys:       slices.Clone(keys),
		original:   original,
		updated:    updated,
	}
}

func (c *UpdateAnnotation) Name() string { return "UpdateAnnotation" }

// Keys returns the changed property keys.
func (c *UpdateAnnotation) Keys() []annotation.Key { return slices.Clone(c.keys) }

func (c *UpdateAnnotation) IsValid() bool {
	return c.group != nil && c.annotation != nil && len(c.keys) != 0
}

func (c *UpdateAnnotation) Execute() {
	mustBeValid(c, "Execute")
	c.apply(c.updated)
	c.executed(Event{Type: event.AnnotationUpdate, ID: c.annotation.ID})
}

func (c *UpdateAnnotation) Undo() {
	mustBeValid(c, "Undo")
	c.apply(c.original)
	c.undone(Event{Type: event.AnnotationUpdate, ID: c.annotation.ID})
}

func (c *UpdateAnnotation) apply(props annotation.Props) {
	c.annotation.Apply(c.keys, props)
	if err := c.group.Update(c.annotation, c.keys); err != nil {
		logging.Logger().Warn("command: updated annotation not in group", "id", c.annotation.ID, "error", err)
	}
}
