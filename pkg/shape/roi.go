package shape

import (
	"math"
	"slices"

	"volmeasure/pkg/geom"
)

// ROI is a closed polygon; the last point connects back to the first.
type ROI struct {
	points []geom.Point2D
}

// NewROI creates a polygon from at least three points.
func NewROI(points []geom.Point2D) (ROI, error) {
	if len(points) < 3 {
		return ROI{}, invalid("roi needs at least 3 points, got %d", len(points))
	}
	if err := checkFinite(points...); err != nil {
		return ROI{}, err
	}
	return ROI{points: slices.Clone(points)}, nil
}

func (ROI) sealed() {}

func (r ROI) Kind() Kind                      { return KindROI }
func (r ROI) Len() int                        { return len(r.points) }
func (r ROI) Point(i int) geom.Point2D        { return r.points[i] }
func (r ROI) Points() []geom.Point2D          { return slices.Clone(r.points) }
func (r ROI) Bounds() (min, max geom.Point2D) { return boundsOf(r.points) }

// WithPoint returns a copy with point i replaced.
func (r ROI) WithPoint(i int, p geom.Point2D) ROI {
	points := slices.Clone(r.points)
	points[i] = p
	return ROI{points: points}
}

func (r ROI) Equals(rhs Shape) bool {
	o, ok := rhs.(ROI)
	return ok && equalPoints(r.points, o.points)
}

func (r ROI) Translate(dx, dy float64) Shape {
	return ROI{points: translateAll(r.points, dx, dy)}
}

// signedArea is the shoelace sum.
func (r ROI) signedArea() float64 {
	var sum float64
	n := len(r.points)
	for i := 0; i < n; i++ {
		p, q := r.points[i], r.points[(i+1)%n]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

func (r ROI) Surface() float64 { return math.Abs(r.signedArea()) }

// Centroid returns the polygon centroid, the vertex mean for degenerate polygons.
func (r ROI) Centroid() geom.Point2D {
	area := r.signedArea()
	n := len(r.points)
	if area == 0 {
		var c geom.Point2D
		for _, p := range r.points {
			c = c.Add(p.X, p.Y)
		}
		return geom.Point2D{X: c.X / float64(n), Y: c.Y / float64(n)}
	}
	var cx, cy float64
	for i := 0; i < n; i++ {
		p, q := r.points[i], r.points[(i+1)%n]
		f := p.X*q.Y - q.X*p.Y
		cx += (p.X + q.X) * f
		cy += (p.Y + q.Y) * f
	}
	return geom.Point2D{X: cx / (6 * area), Y: cy / (6 * area)}
}

func (r ROI) WorldSurface(sp geom.Spacing2D) (float64, bool) {
	return worldSurface(r.Surface(), sp)
}

// Segments returns the pixel rows inside the polygon (even-odd rule).
func (r ROI) Segments() []Segment {
	min, max := r.Bounds()
	n := len(r.points)
	var segments []Segment
	var xs []float64
	for y := math.Ceil(min.Y); y < max.Y; y++ {
		xs = xs[:0]
		for i := 0; i < n; i++ {
			p, q := r.points[i], r.points[(i+1)%n]
			if (p.Y <= y && y < q.Y) || (q.Y <= y && y < p.Y) {
				xs = append(xs, p.X+(y-p.Y)*(q.X-p.X)/(q.Y-p.Y))
			}
		}
		slices.Sort(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			if xs[i+1]-xs[i] < 2*minHalfWidth {
				continue
			}
			segments = append(segments, Segment{
				X:     int(math.Round(xs[i])),
				Y:     int(y),
				Width: int(math.Round(xs[i+1] - xs[i])),
			})
		}
	}
	return segments
}

func (r ROI) Quantify(access ImageAccess, at Position, flags []string) Quantification {
	return quantifyArea(r, access, at, flags)
}

func (r ROI) regionValues(access ImageAccess, at Position) []float64 {
	return access.ImageVariableRegionValues(r.Segments(), at)
}
