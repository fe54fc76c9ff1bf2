package mx

import (
	"fmt"
	"strings"

	"github.com/born-ml/mxgraph/internal/sparsity"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// DM is a numeric sparse matrix: a pattern and one value per structural nonzero.
type DM struct {
	sp   *sparsity.Pattern
	data []float64
}

// NewDM creates a matrix from a pattern and its nonzero values. The values are copied.
func NewDM(sp *sparsity.Pattern, data []float64) (DM, error) {
	if len(data) != sp.NNZ() {
		return DM{}, errors.Wrapf(ErrDataSize, "%d values for %s", len(data), sp)
	}
	return DM{sp: sp, data: append([]float64(nil), data...)}, nil
}

// MustDM is like NewDM but panics on error.
func MustDM(sp *sparsity.Pattern, data []float64) DM {
	d, err := NewDM(sp, data)
	if err != nil {
		panic(err)
	}
	return d
}

// ZerosDM returns a matrix with the given pattern and all nonzeros set to 0.
func ZerosDM(sp *sparsity.Pattern) DM {
	return DM{sp: sp, data: make([]float64, sp.NNZ())}
}

// FromDense converts a gonum matrix into a dense DM.
func FromDense(m mat.Matrix) DM {
	r, c := m.Dims()
	data := make([]float64, 0, r*c)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			data = append(data, m.At(i, j))
		}
	}
	return DM{sp: sparsity.Dense(r, c), data: data}
}

// Sparsity returns the pattern.
func (d DM) Sparsity() *sparsity.Pattern { return d.sp }

// Data returns a copy of the nonzero values.
func (d DM) Data() []float64 { return append([]float64(nil), d.data...) }

// At returns entry (r, c); structural zeros read as 0.
func (d DM) At(r, c int) float64 {
	if k := d.sp.Find(r, c); k >= 0 {
		return d.data[k]
	}
	return 0
}

// Dense expands the matrix into a gonum dense matrix.
func (d DM) Dense() *mat.Dense {
	r, c := d.sp.Shape()
	if r == 0 || c == 0 {
		return &mat.Dense{}
	}
	out := mat.NewDense(r, c, nil)
	rows, cols := d.sp.Triplets()
	for k, v := range d.data {
		out.Set(rows[k], cols[k], v)
	}
	return out
}

func (d DM) isZero() bool {
	for _, v := range d.data {
		if v != 0 {
			return false
		}
	}
	return true
}

// String prints scalars as a number and other matrices as their nonzeros.
func (d DM) String() string {
	if d.sp.IsScalar() && d.sp.IsDense() {
		return fmt.Sprint(d.data[0])
	}
	parts := make([]string, len(d.data))
	for i, v := range d.data {
		parts[i] = fmt.Sprint(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
