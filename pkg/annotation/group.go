package annotation

import (
	"slices"

	"github.com/lucasb-eyer/go-colorful"

	"volmeasure/pkg/errs"
	"volmeasure/pkg/event"
	"volmeasure/pkg/logging"
)

// Event is published when an annotation of a group changes.
type Event struct {
	Type       string
	Annotation *Annotation
	// Keys lists the changed properties of an update.
	Keys []Key
}

// Group is an ordered list of annotations with group wide settings. A Group
// must not be copied.
type Group struct {
	list     []*Annotation
	editable bool
	colour   colorful.Color
	meta     map[string]string

	Added           event.Bus[Event]
	Updated         event.Bus[Event]
	Removed         event.Bus[Event]
	EditableChanged event.Bus[bool]
}

// NewGroup returns an editable group holding list.
func NewGroup(list ...*Annotation) *Group {
	return &Group{
		list:     slices.Clone(list),
		editable: true,
		colour:   DefaultColour,
		meta:     map[string]string{},
	}
}

// Len returns the number of annotations.
func (g *Group) Len() int { return len(g.list) }

// List returns a copy of the annotation list.
func (g *Group) List() []*Annotation { return slices.Clone(g.list) }

// IndexOf returns the position of the annotation with id, -1 if absent.
func (g *Group) IndexOf(id string) int {
	return slices.IndexFunc(g.list, func(a *Annotation) bool { return a.ID == id })
}

// Find returns the annotation with id, nil if absent.
func (g *Group) Find(id string) *Annotation {
	if i := g.IndexOf(id); i != -1 {
		return g.list[i]
	}
	return nil
}

// Add appends an annotation.
func (g *Group) Add(a *Annotation) error {
	return g.Insert(len(g.list), a)
}

// Insert puts an annotation at index.
func (g *Group) Insert(index int, a *Annotation) error {
	if a == nil {
		return errs.Wrap(errs.Invalid("nil annotation"), "annotation", "Insert", "check annotation")
	}
	if g.IndexOf(a.ID) != -1 {
		return errs.Wrap(errs.Invalid("duplicate id %s", a.ID), "annotation", "Insert", "check annotation")
	}
	if index < 0 || index > len(g.list) {
		return errs.Wrap(errs.Invalid("index %d outside [0, %d]", index, len(g.list)), "annotation", "Insert", "check index")
	}
	g.list = slices.Insert(g.list, index, a)
	logging.Logger().Debug("annotation: added", "id", a.ID, "index", index)
	g.Added.Publish(Event{Type: event.AnnotationAdd, Annotation: a})
	return nil
}

// Update replaces the annotation with the same id and publishes the changed keys.
func (g *Group) Update(a *Annotation, keys []Key) error {
	i := g.IndexOf(a.ID)
	if i == -1 {
		return errs.Wrap(errs.ErrNotFound, "annotation", "Update", "find "+a.ID)
	}
	g.list[i] = a
	g.Updated.Publish(Event{Type: event.AnnotationUpdate, Annotation: a, Keys: slices.Clone(keys)})
	return nil
}

// Remove deletes the annotation with id.
func (g *Group) Remove(id string) error {
	i := g.IndexOf(id)
	if i == -1 {
		return errs.Wrap(errs.ErrNotFound, "annotation", "Remove", "find "+id)
	}
	a := g.list[i]
	g.list = slices.Delete(g.list, i, i+1)
	logging.Logger().Debug("annotation: removed", "id", id, "index", i)
	g.Removed.Publish(Event{Type: event.AnnotationRemove, Annotation: a})
	return nil
}

// IsEditable reports whether annotations can be edited interactively.
func (g *Group) IsEditable() bool { return g.editable }

// SetEditable changes the editable flag and publishes the change.
func (g *Group) SetEditable(editable bool) {
	if g.editable == editable {
		return
	}
	g.editable = editable
	g.EditableChanged.Publish(editable)
}

// Colour returns the default colour of the group.
func (g *Group) Colour() colorful.Color { return g.colour }

// SetColour sets the default colour of the group.
func (g *Group) SetColour(c colorful.Color) { g.colour = c }

// HasMeta reports whether the group has a meta entry for key.
func (g *Group) HasMeta(key string) bool {
	_, ok := g.meta[key]
	return ok
}

// MetaValue returns the meta entry for key.
func (g *Group) MetaValue(key string) (string, bool) {
	v, ok := g.meta[key]
	return v, ok
}

// SetMetaValue sets the meta entry for key.
func (g *Group) SetMetaValue(key, value string) {
	if g.meta == nil {
		g.meta = map[string]string{}
	}
	g.meta[key] = value
}

// MetaKeys returns the meta keys, sorted.
func (g *Group) MetaKeys() []string {
	keys := make([]string, 0, len(g.meta))
	for k := range g.meta {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
