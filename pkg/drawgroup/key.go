package drawgroup

import (
	"fmt"
	"math"

	"volmeasure/pkg/geom"
)

// DefaultPrecision is the number of decimals kept in position keys.
const DefaultPrecision = 2

// Key identifies a view plane: its origin and direction cosines rounded to
// a number of decimals. Keys are comparable and can index maps.
type Key struct {
	Precision int
	Origin    [3]int64
	Row       [3]int64
	Column    [3]int64
}

func round(v float64, scale float64) int64 {
	return int64(math.Round(v * scale))
}

// KeyFor builds the key of a plane. Values that differ beyond precision
// decimals share a key.
func KeyFor(origin geom.Point3D, row, col geom.Vector3D, precision int) Key {
	scale := math.Pow(10, float64(precision))
	return Key{
		Precision: precision,
		Origin:    [3]int64{round(origin.X, scale), round(origin.Y, scale), round(origin.Z, scale)},
		Row:       [3]int64{round(row.X, scale), round(row.Y, scale), round(row.Z, scale)},
		Column:    [3]int64{round(col.X, scale), round(col.Y, scale), round(col.Z, scale)},
	}
}

// String returns the key as "origin/row/column" with its rounded values.
func (k Key) String() string {
	scale := math.Pow(10, float64(k.Precision))
	f := func(v [3]int64) string {
		return fmt.Sprintf("%g,%g,%g", float64(v[0])/scale, float64(v[1])/scale, float64(v[2])/scale)
	}
	return f(k.Origin) + "/" + f(k.Row) + "/" + f(k.Column)
}
