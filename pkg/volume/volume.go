// Package volume holds scalar voxel data laid out on a geometry and the
// oriented views that browse it. A View is the reference frame annotations
// get bound to.
package volume

import (
	"math"
	"math/big"
	"slices"

	"github.com/google/uuid"

	"volmeasure/pkg/errs"
	"volmeasure/pkg/geom"
	"volmeasure/pkg/geometry"
)

// Info describes the images of a volume.
type Info struct {
	Modality    string
	SOPClassUID string
	PixelUnit   string
	// ImageUIDs are the instance uids of the native slices, generated when empty.
	ImageUIDs []string
}

// Volume is a 3D scalar volume. Voxels are stored slice by slice, rows
// within a slice, x fastest.
type Volume struct {
	geometry *geometry.Geometry
	data     []float64
	info     Info

	width, height, depth int
	min, max             float64
}

// New returns a volume over g. data must hold one value per voxel of the
// first three dimensions of g.
func New(g *geometry.Geometry, data []float64, info Info) (*Volume, error) {
	if g == nil {
		return nil, errs.Wrap(errs.Invalid("nil geometry"), "volume", "New", "validate")
	}
	size := g.Size()
	w, h, d := size.Get(0), size.Get(1), size.Get(2)
	if len(data) != w*h*d {
		return nil, errs.Wrap(errs.Invalid("%d values for %dx%dx%d voxels", len(data), w, h, d),
			"volume", "New", "validate")
	}
	switch len(info.ImageUIDs) {
	case 0:
		info.ImageUIDs = make([]string, d)
		for i := range info.ImageUIDs {
			info.ImageUIDs[i] = NewUID()
		}
	case d:
		info.ImageUIDs = slices.Clone(info.ImageUIDs)
	default:
		return nil, errs.Wrap(errs.Invalid("%d image uids for %d slices", len(info.ImageUIDs), d),
			"volume", "New", "validate")
	}

	v := &Volume{
		geometry: g,
		data:     data,
		info:     info,
		width:    w,
		height:   h,
		depth:    d,
		min:      math.Inf(1),
		max:      math.Inf(-1),
	}
	for _, x := range data {
		v.min = math.Min(v.min, x)
		v.max = math.Max(v.max, x)
	}
	return v, nil
}

// NewUID returns a UUID derived DICOM uid.
func NewUID() string {
	u := uuid.New()
	return "2.25." + new(big.Int).SetBytes(u[:]).String()
}

func (v *Volume) Geometry() *geometry.Geometry { return v.geometry }
func (v *Volume) Info() Info                   { return v.info }

// Range returns the minimum and maximum voxel values.
func (v *Volume) Range() (min, max float64) { return v.min, v.max }

// Value returns the voxel at (i, j, k), false outside the volume.
func (v *Volume) Value(i, j, k int) (float64, bool) {
	if i < 0 || j < 0 || k < 0 || i >= v.width || j >= v.height || k >= v.depth {
		return 0, false
	}
	return v.data[k*v.width*v.height+j*v.width+i], true
}

// NewView returns a view of the volume along orientation, positioned on
// the central voxel.
func (v *Volume) NewView(orientation geom.Matrix33) *View {
	return newView(v, orientation)
}

func (v *Volume) imageUID(k int) string {
	if k < 0 || k >= len(v.info.ImageUIDs) {
		return ""
	}
	return v.info.ImageUIDs[k]
}

func (v *Volume) sliceOf(uid string) int {
	return slices.Index(v.info.ImageUIDs, uid)
}

// centre returns the index of the central voxel.
func (v *Volume) centre() geom.Index {
	return geom.MustIndex(v.width/2, v.height/2, v.depth/2)
}

// normalise maps a voxel value to [0, 1] over the volume range.
func (v *Volume) normalise(x float64) float64 {
	if v.max <= v.min {
		return 0
	}
	return (x - v.min) / (v.max - v.min)
}
