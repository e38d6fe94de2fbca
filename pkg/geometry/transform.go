package geometry

import (
	"math"

	"volmeasure/pkg/geom"
)

// slicePositions returns the scalar projection of each origin on the normal.
func slicePositions(origins []geom.Point3D, normal geom.Vector3D) []float64 {
	pos := make([]float64, len(origins))
	for i, o := range origins {
		pos[i] = normal.Dot(geom.Vector3D(o))
	}
	return pos
}

// sliceCoordinate returns the continuous slice index of scalar position s.
// Positions outside the origin list are extrapolated from the nearest pair
// of slices, giving k < 0 or k > n-1.
func (g *Geometry) sliceCoordinate(s float64, origins []geom.Point3D) float64 {
	normal := g.normal()
	pos := slicePositions(origins, normal)
	n := len(pos)
	if n == 1 {
		// single slice: index increases as the origin decreases
		return (pos[0] - s) / g.spacing.Get(2)
	}
	for m := 0; m < n-1; m++ {
		lo, hi := pos[m], pos[m+1]
		if lo > hi {
			lo, hi = hi, lo
		}
		if s >= lo && s <= hi {
			return segmentCoordinate(s, pos, m)
		}
	}
	if math.Abs(s-pos[0]) < math.Abs(s-pos[n-1]) {
		return segmentCoordinate(s, pos, 0)
	}
	return segmentCoordinate(s, pos, n-2)
}

func segmentCoordinate(s float64, pos []float64, m int) float64 {
	d := pos[m+1] - pos[m]
	if d == 0 {
		return float64(m)
	}
	return float64(m) + (s-pos[m])/d
}

// originAt returns the origin of continuous slice index kf.
func (g *Geometry) originAt(kf float64, origins []geom.Point3D) geom.Point3D {
	n := len(origins)
	if n == 1 {
		return origins[0].Plus(g.normal().Scale(-kf * g.spacing.Get(2)))
	}
	m := int(math.Floor(kf))
	if m < 0 {
		m = 0
	}
	if m > n-2 {
		m = n - 2
	}
	t := kf - float64(m)
	if t == 0 {
		return origins[m]
	}
	return origins[m].Plus(origins[m+1].Minus(origins[m]).Scale(t))
}

// PointToWorld converts a continuous voxel position (i, j, k) of a time point
// to world coordinates.
func (g *Geometry) PointToWorld(p geom.Point3D, time int) geom.Point3D {
	origins := g.table.Load().originsFor(time)
	origin := g.originAt(p.Z, origins)
	offset := g.orientation.MultiplyVector3D(geom.Vector3D{
		X: p.X * g.spacing.Get(0),
		Y: p.Y * g.spacing.Get(1),
	})
	return origin.Plus(offset)
}

// WorldToPoint converts world coordinates to a continuous voxel position of
// a time point. The result is not rounded nor bounds checked.
func (g *Geometry) WorldToPoint(w geom.Point3D, time int) (geom.Point3D, bool) {
	if !w.IsFinite() {
		return geom.Point3D{}, false
	}
	origins := g.table.Load().originsFor(time)
	if len(origins) == 0 {
		return geom.Point3D{}, false
	}
	kf := g.sliceCoordinate(g.normal().Dot(geom.Vector3D(w)), origins)
	local := g.invOrientation.MultiplyVector3D(w.Minus(g.originAt(kf, origins)))
	return geom.Point3D{
		X: local.X / g.spacing.Get(0),
		Y: local.Y / g.spacing.Get(1),
		Z: kf,
	}, true
}

func (g *Geometry) timeOf(values []float64) int {
	if len(values) > 3 {
		return int(math.Round(values[3]))
	}
	return g.InitialTime()
}

// IndexToWorld converts a voxel index to a world point. Dimensions above the
// third are carried over unchanged; the fourth selects the time point.
func (g *Geometry) IndexToWorld(idx geom.Index) geom.Point {
	v := idx.Values()
	var ijk [3]float64
	for i := 0; i < 3 && i < len(v); i++ {
		ijk[i] = float64(v[i])
	}
	time := g.InitialTime()
	if len(v) > 3 {
		time = v[3]
	}
	w := g.PointToWorld(geom.Point3D{X: ijk[0], Y: ijk[1], Z: ijk[2]}, time)

	extra := make([]float64, 0, len(v))
	for i := 3; i < len(v); i++ {
		extra = append(extra, float64(v[i]))
	}
	return geom.PointFrom3D(w, extra...)
}

// WorldToIndex converts a world point to the rounded voxel index. The result
// may be out of bounds; ok is false only for points that cannot be compared
// with the geometry (fewer than three components).
func (g *Geometry) WorldToIndex(p geom.Point) (geom.Index, bool) {
	if p.Len() < 3 {
		return geom.Index{}, false
	}
	values := p.Values()
	pt, ok := g.WorldToPoint(p.Get3D(), g.timeOf(values))
	if !ok {
		return geom.Index{}, false
	}
	res := make([]int, len(values))
	res[0] = int(math.Round(pt.X))
	res[1] = int(math.Round(pt.Y))
	res[2] = int(math.Round(pt.Z))
	for i := 3; i < len(values); i++ {
		res[i] = int(math.Round(values[i]))
	}
	return geom.MustIndex(res...), true
}

// IsIndexInBounds reports whether idx addresses a loaded voxel. dirs limits
// the check to some dimensions.
func (g *Geometry) IsIndexInBounds(idx geom.Index, dirs ...int) bool {
	t := g.table.Load()
	if !t.size.IsInBounds(idx, dirs...) {
		return false
	}
	if idx.Len() > 3 && checksDim(dirs, 2) {
		// frames may be partially loaded
		return idx.Get(2) < len(t.byTime[idx.Get(3)])
	}
	return true
}

func checksDim(dirs []int, dim int) bool {
	if len(dirs) == 0 {
		return true
	}
	for _, d := range dirs {
		if d == dim {
			return true
		}
	}
	return false
}

// IsInBounds reports whether a world point falls inside the volume.
func (g *Geometry) IsInBounds(p geom.Point, dirs ...int) bool {
	idx, ok := g.WorldToIndex(p)
	return ok && g.IsIndexInBounds(idx, dirs...)
}
