// Package transform provides 4x4 homogeneous transforms for
// end-effector poses. A transform encodes a 3D rotation and
// translation; on the wire it travels as 16 row-major floats.
package transform

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Size is the number of scalar entries in a flattened transform.
const Size = 16

// Transform is a 4x4 homogeneous transform.
type Transform struct {
	m *mat.Dense
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{m: mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})}
}

// FromRowMajor builds a transform from exactly 16 row-major values,
// so element (i,j) of the result is vals[4*i+j].
func FromRowMajor(vals []float64) (Transform, error) {
	if len(vals) != Size {
		return Transform{}, &DimensionError{Got: len(vals)}
	}
	data := make([]float64, Size)
	copy(data, vals)
	return Transform{m: mat.NewDense(4, 4, data)}, nil
}

// RowMajor returns the transform flattened to 16 row-major values.
func (t Transform) RowMajor() []float64 {
	if t.m == nil {
		return Identity().RowMajor()
	}
	out := make([]float64, 0, Size)
	for i := 0; i < 4; i++ {
		out = append(out, t.m.RawRowView(i)...)
	}
	return out
}

// At returns element (i,j).
func (t Transform) At(i, j int) float64 {
	if t.m == nil {
		if i == j {
			return 1
		}
		return 0
	}
	return t.m.At(i, j)
}

// Translation returns the x, y, z translation components.
func (t Transform) Translation() (x, y, z float64) {
	return t.At(0, 3), t.At(1, 3), t.At(2, 3)
}

// Mul returns the composition t * other.
func (t Transform) Mul(other Transform) Transform {
	a, b := t, other
	if a.m == nil {
		a = Identity()
	}
	if b.m == nil {
		b = Identity()
	}
	var out mat.Dense
	out.Mul(a.m, b.m)
	return Transform{m: &out}
}

// ApproxEqual reports whether the two transforms agree elementwise
// within tol.
func (t Transform) ApproxEqual(other Transform, tol float64) bool {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if math.Abs(t.At(i, j)-other.At(i, j)) > tol {
				return false
			}
		}
	}
	return true
}

// String renders the transform as four rows, for logs and CLI output.
func (t Transform) String() string {
	s := ""
	for i := 0; i < 4; i++ {
		s += fmt.Sprintf("[%8.4f %8.4f %8.4f %8.4f]\n",
			t.At(i, 0), t.At(i, 1), t.At(i, 2), t.At(i, 3))
	}
	return s
}

// DimensionError reports a flattened pose with the wrong number of
// entries.
type DimensionError struct {
	Got int
}

// Error implements the error interface.
func (e *DimensionError) Error() string {
	return fmt.Sprintf("transform: expected %d values, got %d", Size, e.Got)
}
