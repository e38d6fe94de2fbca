package drawgroup

import (
	"slices"

	"gonum.org/v1/gonum/spatial/kdtree"

	"volmeasure/pkg/geom"
)

// centroid is an annotation centroid in plane coordinates.
type centroid struct {
	X, Y float64
	ID   string
}

// Compare implements the kdtree.Comparable interface
func (c centroid) Compare(o kdtree.Comparable, d kdtree.Dim) float64 {
	q := o.(centroid)
	switch d {
	case 0:
		return c.X - q.X
	case 1:
		return c.Y - q.Y
	default:
		panic("illegal dimension")
	}
}

func (c centroid) Dims() int { return 2 }

// Distance returns the squared euclidean distance.
func (c centroid) Distance(o kdtree.Comparable) float64 {
	q := o.(centroid)
	dx, dy := c.X-q.X, c.Y-q.Y
	return dx*dx + dy*dy
}

// centroids satisfies kdtree.Interface.
type centroids []centroid

func (c centroids) Index(i int) kdtree.Comparable         { return c[i] }
func (c centroids) Len() int                              { return len(c) }
func (c centroids) Slice(start, end int) kdtree.Interface { return c[start:end] }

func (c centroids) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(centroidPlane{centroids: c, Dim: d}, kdtree.MedianOfRandoms(centroidPlane{centroids: c, Dim: d}, 100))
}

// centroidPlane implements kdtree.SortSlicer.
type centroidPlane struct {
	centroids
	kdtree.Dim
}

func (p centroidPlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.centroids[i].X < p.centroids[j].X
	case 1:
		return p.centroids[i].Y < p.centroids[j].Y
	default:
		panic("illegal dimension")
	}
}

func (p centroidPlane) Slice(start, end int) kdtree.SortSlicer {
	return centroidPlane{centroids: p.centroids[start:end], Dim: p.Dim}
}

func (p centroidPlane) Swap(i, j int) {
	p.centroids[i], p.centroids[j] = p.centroids[j], p.centroids[i]
}

// nearestIDs returns up to n ids of points closest to p, closest first.
func nearestIDs(points centroids, p geom.Point2D, n int) []string {
	if len(points) == 0 || n <= 0 {
		return nil
	}
	tree := kdtree.New(points, false)
	keeper := kdtree.NewNKeeper(n)
	tree.NearestSet(keeper, centroid{X: p.X, Y: p.Y})

	found := make([]kdtree.ComparableDist, 0, keeper.Len())
	for _, item := range keeper.Heap {
		if item.Comparable == nil {
			continue
		}
		found = append(found, item)
	}
	slices.SortStableFunc(found, func(a, b kdtree.ComparableDist) int {
		switch {
		case a.Dist < b.Dist:
			return -1
		case a.Dist > b.Dist:
			return 1
		default:
			return 0
		}
	})

	ids := make([]string, len(found))
	for i, item := range found {
		ids[i] = item.Comparable.(centroid).ID
	}
	return ids
}
