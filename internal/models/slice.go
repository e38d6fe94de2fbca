package models

import (
	"image"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"volmeasure/pkg/errs"
	"volmeasure/pkg/geom"
	"volmeasure/pkg/geometry"
	"volmeasure/pkg/logging"
)

// Slice represents a single image slice with metadata
type Slice struct {
	// Image is the grayscale slice image data
	Image *image.NRGBA

	// Index is the position of this slice in the sequence
	Index int

	// Filename is the original filename of the slice
	Filename string

	// Position is the physical position of the slice along the stack axis in mm
	Position float64
}

// Stack represents an ordered set of equally sized slices
type Stack struct {
	Slices []Slice

	// Width and Height are the slice dimensions in pixels
	Width, Height int

	// SliceGap is the physical distance between consecutive slices in mm
	SliceGap float64
}

// LoadStack loads the JPEG and PNG slices of a directory. Slices are ordered
// by the number in their filename.
func LoadStack(dir string, sliceGap float64) (*Stack, error) {
	if sliceGap <= 0 {
		return nil, errs.Wrap(errs.Invalid("slice gap %v", sliceGap), "models", "LoadStack", "validate")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errs.Wrap(err, "models", "LoadStack", "read "+dir)
	}

	var names []string
	for _, e := range entries {
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			if !e.IsDir() {
				names = append(names, e.Name())
			}
		}
	}
	if len(names) == 0 {
		return nil, errs.Wrap(errs.Invalid("no JPG or PNG images in %s", dir), "models", "LoadStack", "list slices")
	}

	sort.SliceStable(names, func(i, j int) bool {
		ni, nj := extractNumber(names[i]), extractNumber(names[j])
		if ni != nj {
			return ni < nj
		}
		return names[i] < names[j]
	})

	stack := &Stack{SliceGap: sliceGap}
	for i, name := range names {
		img, err := imaging.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, errs.Wrap(err, "models", "LoadStack", "open "+name)
		}
		b := img.Bounds()
		if i == 0 {
			stack.Width, stack.Height = b.Dx(), b.Dy()
		} else if b.Dx() != stack.Width || b.Dy() != stack.Height {
			return nil, errs.Wrap(errs.Invalid("%s is %dx%d, expected %dx%d", name, b.Dx(), b.Dy(), stack.Width, stack.Height),
				"models", "LoadStack", "check size")
		}
		stack.Slices = append(stack.Slices, Slice{
			Image:    imaging.Grayscale(img),
			Index:    i,
			Filename: name,
			Position: float64(i) * sliceGap,
		})
	}

	logging.Logger().Info("models: slices loaded", "dir", dir, "count", len(stack.Slices),
		"width", stack.Width, "height", stack.Height, "sliceGap", sliceGap)
	return stack, nil
}

// extractNumber extracts the numeric part from a filename, 0 without digits
func extractNumber(filename string) int {
	var digits strings.Builder
	for _, c := range filepath.Base(filename) {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return n
}

// Data returns the gray levels of all slices, slice by slice, rows within
// a slice, x fastest.
func (s *Stack) Data() []float64 {
	size := s.Width * s.Height
	data := make([]float64, size*len(s.Slices))
	for k, slice := range s.Slices {
		img := slice.Image
		for y := 0; y < s.Height; y++ {
			row := img.Pix[y*img.Stride:]
			for x := 0; x < s.Width; x++ {
				data[k*size+y*s.Width+x] = float64(row[4*x])
			}
		}
	}
	return data
}

// Origins returns the world origin of each slice, stacked along z.
func (s *Stack) Origins() []geom.Point3D {
	origins := make([]geom.Point3D, len(s.Slices))
	for i, slice := range s.Slices {
		origins[i] = geom.Point3D{Z: slice.Position}
	}
	return origins
}

// Geometry returns the axial geometry of the stack with the given in-plane
// pixel spacing in mm.
func (s *Stack) Geometry(spacing float64) (*geometry.Geometry, error) {
	size, err := geom.NewSize(s.Width, s.Height, len(s.Slices))
	if err != nil {
		return nil, errs.Wrap(err, "models", "Geometry", "build size")
	}
	sp, err := geom.NewSpacing(spacing, spacing, s.SliceGap)
	if err != nil {
		return nil, errs.Wrap(err, "models", "Geometry", "build spacing")
	}
	return geometry.New(s.Origins(), size, sp, geom.Identity33(), 0)
}
