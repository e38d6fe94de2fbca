// Package segment holds the segments of a labelled mask. Pixel storage stays
// with the caller behind the Mask interface.
package segment

import (
	"slices"

	"github.com/lucasb-eyer/go-colorful"

	"volmeasure/pkg/errs"
	"volmeasure/pkg/logging"
)

// Segment is one label of a mask.
type Segment struct {
	// Number is the mask value of the segment, strictly positive.
	Number int
	Label  string
	Colour colorful.Color
}

// Mask gives access to the label values of a segmentation.
type Mask interface {
	// Relabel replaces the value from by to and returns the changed offsets.
	Relabel(from, to int) []int
	// Restore sets value at offsets.
	Restore(offsets []int, value int)
}

// Segmentation is an ordered list of segments with unique numbers.
type Segmentation struct {
	segments []Segment
}

// New returns a segmentation holding segments.
func New(segments ...Segment) (*Segmentation, error) {
	s := &Segmentation{}
	for _, seg := range segments {
		if err := s.Add(seg); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Segmentation) Len() int            { return len(s.segments) }
func (s *Segmentation) List() []Segment     { return slices.Clone(s.segments) }
func (s *Segmentation) Has(number int) bool { return s.IndexOf(number) != -1 }

// IndexOf returns the position of segment number, -1 if absent.
func (s *Segmentation) IndexOf(number int) int {
	return slices.IndexFunc(s.segments, func(seg Segment) bool { return seg.Number == number })
}

// Get returns the segment number.
func (s *Segmentation) Get(number int) (Segment, bool) {
	if i := s.IndexOf(number); i != -1 {
		return s.segments[i], true
	}
	return Segment{}, false
}

// Add appends a segment.
func (s *Segmentation) Add(seg Segment) error {
	return s.Insert(len(s.segments), seg)
}

// Insert puts a segment at index.
func (s *Segmentation) Insert(index int, seg Segment) error {
	if seg.Number <= 0 {
		return errs.Wrap(errs.Invalid("segment number %d", seg.Number), "segment", "Insert", "check segment")
	}
	if s.Has(seg.Number) {
		return errs.Wrap(errs.Invalid("duplicate segment %d", seg.Number), "segment", "Insert", "check segment")
	}
	if index < 0 || index > len(s.segments) {
		return errs.Wrap(errs.Invalid("index %d outside [0, %d]", index, len(s.segments)), "segment", "Insert", "check index")
	}
	s.segments = slices.Insert(s.segments, index, seg)
	return nil
}

// Remove deletes segment number and returns it with its former index.
func (s *Segmentation) Remove(number int) (Segment, int, error) {
	i := s.IndexOf(number)
	if i == -1 {
		return Segment{}, -1, errs.Wrap(errs.ErrNotFound, "segment", "Remove", "find segment")
	}
	seg := s.segments[i]
	s.segments = slices.Delete(s.segments, i, i+1)
	logging.Logger().Debug("segment: removed", "number", number)
	return seg, i, nil
}

// SetColour changes the colour of segment number.
func (s *Segmentation) SetColour(number int, c colorful.Color) error {
	i := s.IndexOf(number)
	if i == -1 {
		return errs.Wrap(errs.ErrNotFound, "segment", "SetColour", "find segment")
	}
	s.segments[i].Colour = c
	return nil
}

// LabelMap is an in-memory Mask over a flat slice of label values.
type LabelMap struct {
	values []int
}

// NewLabelMap wraps values; the slice is used as is.
func NewLabelMap(values []int) *LabelMap {
	return &LabelMap{values: values}
}

// Values returns the label values.
func (m *LabelMap) Values() []int { return m.values }

func (m *LabelMap) Relabel(from, to int) []int {
	var offsets []int
	for i, v := range m.values {
		if v == from {
			m.values[i] = to
			offsets = append(offsets, i)
		}
	}
	return offsets
}

func (m *LabelMap) Restore(offsets []int, value int) {
	for _, i := range offsets {
		if i >= 0 && i < len(m.values) {
			m.values[i] = value
		}
	}
}
