package shape

import (
	"math"

	"volmeasure/pkg/geom"
)

// Rectangle is an axis aligned rectangle. Begin is always the top left
// corner and End the bottom right one.
type Rectangle struct {
	begin, end geom.Point2D
}

// NewRectangle creates a rectangle from two opposite corners, in any order.
func NewRectangle(begin, end geom.Point2D) (Rectangle, error) {
	if err := checkFinite(begin, end); err != nil {
		return Rectangle{}, err
	}
	return Rectangle{
		begin: geom.Point2D{X: math.Min(begin.X, end.X), Y: math.Min(begin.Y, end.Y)},
		end:   geom.Point2D{X: math.Max(begin.X, end.X), Y: math.Max(begin.Y, end.Y)},
	}, nil
}

func (Rectangle) sealed() {}

func (r Rectangle) Kind() Kind          { return KindRectangle }
func (r Rectangle) Begin() geom.Point2D { return r.begin }
func (r Rectangle) End() geom.Point2D   { return r.end }
func (r Rectangle) Width() float64      { return r.end.X - r.begin.X }
func (r Rectangle) Height() float64     { return r.end.Y - r.begin.Y }
func (r Rectangle) Surface() float64    { return r.Width() * r.Height() }
func (r Rectangle) Centroid() geom.Point2D {
	return r.begin.Midpoint(r.end)
}
func (r Rectangle) Points() []geom.Point2D { return []geom.Point2D{r.begin, r.end} }

func (r Rectangle) Equals(rhs Shape) bool {
	o, ok := rhs.(Rectangle)
	return ok && r.begin.Equals(o.begin) && r.end.Equals(o.end)
}

func (r Rectangle) Bounds() (min, max geom.Point2D) { return r.begin, r.end }

func (r Rectangle) Translate(dx, dy float64) Shape {
	return Rectangle{begin: r.begin.Add(dx, dy), end: r.end.Add(dx, dy)}
}

func (r Rectangle) WorldSurface(sp geom.Spacing2D) (float64, bool) {
	return worldSurface(r.Surface(), sp)
}

// Segments returns one full width run per covered pixel row.
func (r Rectangle) Segments() []Segment {
	b, e := r.begin.Round(), r.end.Round()
	width := int(e.X - b.X)
	if width < 1 {
		return nil
	}
	var segments []Segment
	for y := int(b.Y); y < int(e.Y); y++ {
		segments = append(segments, Segment{X: int(b.X), Y: y, Width: width})
	}
	return segments
}

func (r Rectangle) Quantify(access ImageAccess, at Position, flags []string) Quantification {
	return quantifyArea(r, access, at, flags)
}

func (r Rectangle) regionValues(access ImageAccess, at Position) []float64 {
	return access.ImageRegionValues(r.begin.Round(), r.end.Round(), at)
}
