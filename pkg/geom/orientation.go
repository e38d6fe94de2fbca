package geom

// Orientation names a standard view orientation.
type Orientation string

const (
	Axial    Orientation = "axial"
	Coronal  Orientation = "coronal"
	Sagittal Orientation = "sagittal"
)

// MatrixFromName returns the view matrix of a standard orientation.
func MatrixFromName(name Orientation) (Matrix33, bool) {
	switch name {
	case Axial:
		return Identity33(), true
	case Coronal:
		return Coronal33(), true
	case Sagittal:
		return Sagittal33(), true
	default:
		return Matrix33{}, false
	}
}

// OrientationFromCosines builds an orientation matrix from the six image
// orientation cosines (row then column direction). The third column is their
// cross product.
func OrientationFromCosines(cosines [6]float64) Matrix33 {
	row := Vector3D{X: cosines[0], Y: cosines[1], Z: cosines[2]}
	col := Vector3D{X: cosines[3], Y: cosines[4], Z: cosines[5]}
	normal := row.Cross(col)
	return Matrix33{
		row.X, col.X, normal.X,
		row.Y, col.Y, normal.Y,
		row.Z, col.Z, normal.Z,
	}
}

// OrientationName returns the standard orientation whose scroll axis matches
// the major direction of the matrix normal.
func OrientationName(m Matrix33) Orientation {
	switch m.ThirdColMajorDirection() {
	case 0:
		return Sagittal
	case 1:
		return Coronal
	default:
		return Axial
	}
}
