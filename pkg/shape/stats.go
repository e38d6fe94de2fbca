package shape

import (
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"volmeasure/pkg/errs"
)

// Quantification keys.
const (
	KeySurface = "surface"
	KeyLength  = "length"
	KeyAngle   = "angle"
	KeyMin     = "min"
	KeyMax     = "max"
	KeyMean    = "mean"
	KeyStdDev  = "stdDev"
	KeyMedian  = "median"
	KeyP25     = "p25"
	KeyP75     = "p75"
)

// Units.
const (
	UnitSquareCentimetre = "cm²"
	UnitMillimetre       = "mm"
	UnitDegree           = "°"
)

// Value is one measured quantity.
type Value struct {
	Value float64 `yaml:"value"`
	Unit  string  `yaml:"unit,omitempty"`
}

// Quantification maps quantity names to values.
type Quantification map[string]Value

// Equals reports whether both quantifications hold the same entries.
func (q Quantification) Equals(rhs Quantification) bool {
	if len(q) != len(rhs) {
		return false
	}
	for k, v := range q {
		if o, ok := rhs[k]; !ok || o != v {
			return false
		}
	}
	return true
}

// Statistics are the pixel statistics of a region.
type Statistics struct {
	Min, Max, Mean, StdDev float64
	// Median, P25 and P75 are only set when Full.
	Median, P25, P75 float64
	Full             bool
}

// Stats computes min, max, mean and population standard deviation, plus
// median and quartiles when full. values must not be empty.
func Stats(values []float64, full bool) Statistics {
	mean, std := stat.PopMeanStdDev(values, nil)
	s := Statistics{
		Min:    floats.Min(values),
		Max:    floats.Max(values),
		Mean:   mean,
		StdDev: std,
	}
	if !full {
		return s
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	s.Full = true
	s.Median, _ = Percentile(sorted, 0.5)
	s.P25, _ = Percentile(sorted, 0.25)
	s.P75, _ = Percentile(sorted, 0.75)
	return s
}

// Percentile returns the value at ratio of sorted values using linear
// interpolation at (n-1)*ratio.
func Percentile(sorted []float64, ratio float64) (float64, error) {
	if len(sorted) == 0 {
		return 0, errs.Invalid("percentile: empty values")
	}
	if !(ratio >= 0 && ratio <= 1) {
		return 0, errs.Invalid("percentile: ratio %v outside [0, 1]", ratio)
	}
	if ratio == 0 {
		return sorted[0], nil
	}
	if ratio == 1 {
		return sorted[len(sorted)-1], nil
	}
	pos := float64(len(sorted)-1) * ratio
	lo := int(pos)
	frac := pos - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo], nil
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo]), nil
}

// WantsFullStats reports whether flags ask for median or quartiles.
func WantsFullStats(flags []string) bool {
	for _, f := range flags {
		switch f {
		case KeyMedian, KeyP25, KeyP75:
			return true
		}
	}
	return false
}

func addStats(q Quantification, values []float64, flags []string, unit string) {
	if len(values) == 0 {
		return
	}
	s := Stats(values, WantsFullStats(flags))
	q[KeyMin] = Value{Value: s.Min, Unit: unit}
	q[KeyMax] = Value{Value: s.Max, Unit: unit}
	q[KeyMean] = Value{Value: s.Mean, Unit: unit}
	q[KeyStdDev] = Value{Value: s.StdDev, Unit: unit}
	if s.Full {
		q[KeyMedian] = Value{Value: s.Median, Unit: unit}
		q[KeyP25] = Value{Value: s.P25, Unit: unit}
		q[KeyP75] = Value{Value: s.P75, Unit: unit}
	}
}
