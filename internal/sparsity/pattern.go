package sparsity

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// Pattern is an immutable compressed column sparsity pattern.
type Pattern struct {
	nrow   int
	ncol   int
	colind []int // len ncol+1
	row    []int // len nnz
}

// New creates a pattern from compressed column data.
// The slices are copied. Row indices must be strictly increasing inside every column.
func New(nrow, ncol int, colind, row []int) (*Pattern, error) {
	if nrow < 0 || ncol < 0 {
		return nil, errors.Wrapf(ErrInvalidShape, "%dx%d", nrow, ncol)
	}
	if len(colind) != ncol+1 {
		return nil, errors.Wrapf(ErrInvalidPattern, "colind has length %d, want %d", len(colind), ncol+1)
	}
	if colind[0] != 0 || colind[ncol] != len(row) {
		return nil, errors.Wrapf(ErrInvalidPattern, "colind must start at 0 and end at nnz=%d", len(row))
	}
	for c := 0; c < ncol; c++ {
		if colind[c+1] < colind[c] {
			return nil, errors.Wrapf(ErrInvalidPattern, "colind decreases at column %d", c)
		}
		for k := colind[c]; k < colind[c+1]; k++ {
			if row[k] < 0 || row[k] >= nrow {
				return nil, errors.Wrapf(ErrOutOfRange, "row index %d in column %d (nrow=%d)", row[k], c, nrow)
			}
			if k > colind[c] && row[k] <= row[k-1] {
				return nil, errors.Wrapf(ErrInvalidPattern, "row indices not increasing in column %d", c)
			}
		}
	}
	return &Pattern{
		nrow:   nrow,
		ncol:   ncol,
		colind: append([]int(nil), colind...),
		row:    append([]int(nil), row...),
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(nrow, ncol int, colind, row []int) *Pattern {
	p, err := New(nrow, ncol, colind, row)
	if err != nil {
		panic(err)
	}
	return p
}

// Dense returns the fully populated nrow x ncol pattern.
func Dense(nrow, ncol int) *Pattern {
	if nrow < 0 || ncol < 0 {
		panic(errors.Wrapf(ErrInvalidShape, "dense %dx%d", nrow, ncol))
	}
	colind := make([]int, ncol+1)
	row := make([]int, 0, nrow*ncol)
	for c := 0; c < ncol; c++ {
		for r := 0; r < nrow; r++ {
			row = append(row, r)
		}
		colind[c+1] = len(row)
	}
	return &Pattern{nrow: nrow, ncol: ncol, colind: colind, row: row}
}

// Empty returns the structurally zero nrow x ncol pattern.
func Empty(nrow, ncol int) *Pattern {
	if nrow < 0 || ncol < 0 {
		panic(errors.Wrapf(ErrInvalidShape, "empty %dx%d", nrow, ncol))
	}
	return &Pattern{nrow: nrow, ncol: ncol, colind: make([]int, ncol+1)}
}

// Scalar returns the dense 1x1 pattern.
func Scalar() *Pattern {
	return Dense(1, 1)
}

// Diag returns the n x n diagonal pattern.
func Diag(n int) *Pattern {
	colind := make([]int, n+1)
	row := make([]int, n)
	for i := 0; i < n; i++ {
		row[i] = i
		colind[i+1] = i + 1
	}
	return &Pattern{nrow: n, ncol: n, colind: colind, row: row}
}

// FromTriplets builds a pattern from (row, col) coordinates in any order.
// Duplicate coordinates are merged.
func FromTriplets(nrow, ncol int, rows, cols []int) (*Pattern, error) {
	if len(rows) != len(cols) {
		return nil, errors.Wrapf(ErrInvalidPattern, "%d row indices but %d column indices", len(rows), len(cols))
	}
	if nrow < 0 || ncol < 0 {
		return nil, errors.Wrapf(ErrInvalidShape, "%dx%d", nrow, ncol)
	}

	// Sort by linear column-major index, then deduplicate.
	lin := make([]int, len(rows))
	for k := range rows {
		if rows[k] < 0 || rows[k] >= nrow || cols[k] < 0 || cols[k] >= ncol {
			return nil, errors.Wrapf(ErrOutOfRange, "(%d,%d) in %dx%d", rows[k], cols[k], nrow, ncol)
		}
		lin[k] = cols[k]*nrow + rows[k]
	}
	sort.Ints(lin)

	colind := make([]int, ncol+1)
	row := make([]int, 0, len(lin))
	for k, l := range lin {
		if k > 0 && lin[k-1] == l {
			continue
		}
		row = append(row, l%nrow)
		colind[l/nrow+1]++
	}
	for c := 0; c < ncol; c++ {
		colind[c+1] += colind[c]
	}
	return &Pattern{nrow: nrow, ncol: ncol, colind: colind, row: row}, nil
}

// Rows returns the number of rows.
func (p *Pattern) Rows() int { return p.nrow }

// Cols returns the number of columns.
func (p *Pattern) Cols() int { return p.ncol }

// NNZ returns the number of structural nonzeros.
func (p *Pattern) NNZ() int { return len(p.row) }

// Numel returns rows*cols.
func (p *Pattern) Numel() int { return p.nrow * p.ncol }

// Shape returns (rows, cols).
func (p *Pattern) Shape() (int, int) { return p.nrow, p.ncol }

// IsDense reports whether every entry is structurally nonzero.
func (p *Pattern) IsDense() bool { return p.NNZ() == p.Numel() }

// IsEmpty reports whether the pattern has no rows or no columns.
func (p *Pattern) IsEmpty() bool { return p.nrow == 0 || p.ncol == 0 }

// IsScalar reports whether the pattern is 1x1.
func (p *Pattern) IsScalar() bool { return p.nrow == 1 && p.ncol == 1 }

// Colind returns a copy of the column offsets.
func (p *Pattern) Colind() []int { return append([]int(nil), p.colind...) }

// Row returns a copy of the row indices.
func (p *Pattern) Row() []int { return append([]int(nil), p.row...) }

// Triplets returns the (row, col) coordinates of every nonzero in nonzero order.
func (p *Pattern) Triplets() (rows, cols []int) {
	rows = p.Row()
	cols = make([]int, len(p.row))
	for c := 0; c < p.ncol; c++ {
		for k := p.colind[c]; k < p.colind[c+1]; k++ {
			cols[k] = c
		}
	}
	return rows, cols
}

// Find returns the nonzero index of entry (r, c), or -1 if it is structurally zero.
func (p *Pattern) Find(r, c int) int {
	if r < 0 || r >= p.nrow || c < 0 || c >= p.ncol {
		return -1
	}
	lo, hi := p.colind[c], p.colind[c+1]
	k := lo + sort.SearchInts(p.row[lo:hi], r)
	if k < hi && p.row[k] == r {
		return k
	}
	return -1
}

// Equal reports whether two patterns describe the same structure.
func (p *Pattern) Equal(other *Pattern) bool {
	if p == other {
		return true
	}
	if p == nil || other == nil {
		return false
	}
	if p.nrow != other.nrow || p.ncol != other.ncol || len(p.row) != len(other.row) {
		return false
	}
	for i := range p.colind {
		if p.colind[i] != other.colind[i] {
			return false
		}
	}
	for i := range p.row {
		if p.row[i] != other.row[i] {
			return false
		}
	}
	return true
}

// Reshape returns the pattern holding the same column-major element positions in an
// nrow x ncol layout. Nonzero order is preserved.
func (p *Pattern) Reshape(nrow, ncol int) (*Pattern, error) {
	if nrow < 0 || ncol < 0 || nrow*ncol != p.Numel() {
		return nil, errors.Wrapf(ErrInvalidShape, "cannot reshape %dx%d to %dx%d", p.nrow, p.ncol, nrow, ncol)
	}
	if nrow == p.nrow && ncol == p.ncol {
		return p, nil
	}
	colind := make([]int, ncol+1)
	row := make([]int, len(p.row))
	for c := 0; c < p.ncol; c++ {
		for k := p.colind[c]; k < p.colind[c+1]; k++ {
			lin := c*p.nrow + p.row[k]
			row[k] = lin % nrow
			colind[lin/nrow+1]++
		}
	}
	for c := 0; c < ncol; c++ {
		colind[c+1] += colind[c]
	}
	return &Pattern{nrow: nrow, ncol: ncol, colind: colind, row: row}, nil
}

// Sub intersects the pattern with the region addressed by the row slice i and column slice
// j. It returns the pattern of the extracted matrix together with, for every nonzero of
// that pattern, the index of the nonzero of p it was read from.
func (p *Pattern) Sub(i, j Slice) (*Pattern, []int, error) {
	ii, err := i.Indices(p.nrow)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "rows")
	}
	jj, err := j.Indices(p.ncol)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "columns")
	}

	// lookup[r] is the nonzero index of (r, c) in the current source column, or -1.
	lookup := make([]int, p.nrow)
	for r := range lookup {
		lookup[r] = -1
	}

	colind := make([]int, len(jj)+1)
	var row, mapping []int
	for cc, c := range jj {
		for k := p.colind[c]; k < p.colind[c+1]; k++ {
			lookup[p.row[k]] = k
		}
		for rr, r := range ii {
			if k := lookup[r]; k >= 0 {
				row = append(row, rr)
				mapping = append(mapping, k)
			}
		}
		for k := p.colind[c]; k < p.colind[c+1]; k++ {
			lookup[p.row[k]] = -1
		}
		colind[cc+1] = len(row)
	}
	return &Pattern{nrow: len(ii), ncol: len(jj), colind: colind, row: row}, mapping, nil
}

// String returns a short description such as "dense 2x3" or "sparse 4x4 nnz=4".
func (p *Pattern) String() string {
	if p.IsDense() {
		return fmt.Sprintf("dense %dx%d", p.nrow, p.ncol)
	}
	return fmt.Sprintf("sparse %dx%d nnz=%d", p.nrow, p.ncol, p.NNZ())
}
