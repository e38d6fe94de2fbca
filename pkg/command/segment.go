package command

import (
	"strconv"

	"github.com/lucasb-eyer/go-colorful"

	"volmeasure/pkg/event"
	"volmeasure/pkg/logging"
	"volmeasure/pkg/segment"
)

// ChangeSegmentColour sets the colour of a segment.
type ChangeSegmentColour struct {
	callbacks
	segmentation *segment.Segmentation
	number       int
	original     colorful.Color
	colour       colorful.Color
	valid        bool
}

// NewChangeSegmentColour returns the command setting the colour of segment
// number.
func NewChangeSegmentColour(s *segment.Segmentation, number int, colour colorful.Color) *ChangeSegmentColour {
	c := &ChangeSegmentColour{segmentation: s, number: number, colour: colour}
	if s != nil {
		if seg, ok := s.Get(number); ok {
			c.original = seg.Colour
			c.valid = true
		}
	}
	return c
}

func (c *ChangeSegmentColour) Name() string  { return "ChangeSegmentColour" }
func (c *ChangeSegmentColour) IsValid() bool { return c.valid }

func (c *ChangeSegmentColour) Execute() {
	mustBeValid(c, "Execute")
	c.set(c.colour)
	c.executed(Event{Type: event.SegmentColourChange, ID: strconv.Itoa(c.number)})
}

func (c *ChangeSegmentColour) Undo() {
	mustBeValid(c, "Undo")
	c.set(c.original)
	c.undone(Event{Type: event.SegmentColourChange, ID: strconv.Itoa(c.number)})
}

func (c *ChangeSegmentColour) set(colour colorful.Color) {
	if err := c.segmentation.SetColour(c.number, colour); err != nil {
		logging.Logger().Warn("command: cannot set segment colour", "number", c.number, "error", err)
	}
}

// DeleteSegment removes a segment and clears its pixels in the mask; Undo
// restores both.
type DeleteSegment struct {
	callbacks
	segmentation *segment.Segmentation
	mask         segment.Mask
	segment      segment.Segment
	index        int
	offsets      []int
}

// NewDeleteSegment returns the command deleting segment number.
func NewDeleteSegment(s *segment.Segmentation, mask segment.Mask, number int) *DeleteSegment {
	c := &DeleteSegment{segmentation: s, mask: mask, index: -1}
	if s != nil {
		if seg, ok := s.Get(number); ok {
			c.segment = seg
			c.index = s.IndexOf(number)
		}
	}
	return c
}

func (c *DeleteSegment) Name() string { return "DeleteSegment" }

func (c *DeleteSegment) IsValid() bool {
	return c.segmentation != nil && c.mask != nil && c.index != -1
}

func (c *DeleteSegment) Execute() {
	mustBeValid(c, "Execute")
	if _, index, err := c.segmentation.Remove(c.segment.Number); err == nil {
		c.index = index
		c.offsets = c.mask.Relabel(c.segment.Number, 0)
	}
	c.executed(Event{Type: event.SegmentRemove, ID: strconv.Itoa(c.segment.Number)})
}

func (c *DeleteSegment) Undo() {
	mustBeValid(c, "Undo")
	if !c.segmentation.Has(c.segment.Number) {
		index := min(c.index, c.segmentation.Len())
		if err := c.segmentation.Insert(index, c.segment); err != nil {
			logging.Logger().Warn("command: cannot restore segment", "number", c.segment.Number, "error", err)
			return
		}
		c.mask.Restore(c.offsets, c.segment.Number)
		c.offsets = nil
	}
	c.undone(Event{Type: event.SegmentRemove, ID: strconv.Itoa(c.segment.Number)})
}
