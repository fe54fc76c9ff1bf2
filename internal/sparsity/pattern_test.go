package sparsity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDense(t *testing.T) {
	p := Dense(2, 3)
	assert.Equal(t, 2, p.Rows())
	assert.Equal(t, 3, p.Cols())
	assert.Equal(t, 6, p.NNZ())
	assert.True(t, p.IsDense())
	assert.Equal(t, []int{0, 2, 4, 6}, p.Colind())
	assert.Equal(t, []int{0, 1, 0, 1, 0, 1}, p.Row())
	assert.Equal(t, "dense 2x3", p.String())
}

func TestEmptyAndDiag(t *testing.T) {
	e := Empty(3, 2)
	assert.Equal(t, 0, e.NNZ())
	assert.False(t, e.IsDense())

	d := Diag(3)
	assert.Equal(t, 3, d.NNZ())
	assert.Equal(t, 1, d.Find(1, 1))
	assert.Equal(t, -1, d.Find(0, 1))
	assert.Equal(t, "sparse 3x3 nnz=3", d.String())
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		nrow   int
		ncol   int
		colind []int
		row    []int
		want   error
	}{
		{"valid", 3, 2, []int{0, 2, 3}, []int{0, 2, 1}, nil},
		{"negative shape", -1, 2, []int{0, 0, 0}, nil, ErrInvalidShape},
		{"short colind", 3, 2, []int{0, 2}, []int{0, 1}, ErrInvalidPattern},
		{"bad end", 3, 2, []int{0, 1, 1}, []int{0, 1}, ErrInvalidPattern},
		{"row out of range", 2, 1, []int{0, 1}, []int{5}, ErrOutOfRange},
		{"unsorted rows", 3, 1, []int{0, 2}, []int{2, 1}, ErrInvalidPattern},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.nrow, tt.ncol, tt.colind, tt.row)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestFromTriplets(t *testing.T) {
	p, err := FromTriplets(3, 3, []int{2, 0, 1, 0}, []int{1, 0, 2, 0})
	require.NoError(t, err)
	assert.Equal(t, 3, p.NNZ())
	rows, cols := p.Triplets()
	assert.Equal(t, []int{0, 2, 1}, rows)
	assert.Equal(t, []int{0, 1, 2}, cols)

	_, err = FromTriplets(2, 2, []int{3}, []int{0})
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestEqual(t *testing.T) {
	assert.True(t, Dense(2, 2).Equal(Dense(2, 2)))
	assert.False(t, Dense(2, 2).Equal(Dense(4, 1)))
	assert.False(t, Dense(2, 2).Equal(Diag(2)))
	assert.False(t, Dense(1, 1).Equal(nil))
}

func TestReshape(t *testing.T) {
	p := Dense(2, 3)
	q, err := p.Reshape(3, 2)
	require.NoError(t, err)
	assert.True(t, q.Equal(Dense(3, 2)))

	// Diagonal of a 2x2 is linear positions 0 and 3.
	d, err := Diag(2).Reshape(4, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3}, d.Row())
	assert.Equal(t, 2, d.NNZ())

	back, err := d.Reshape(2, 2)
	require.NoError(t, err)
	assert.True(t, back.Equal(Diag(2)))

	_, err = p.Reshape(4, 2)
	assert.True(t, errors.Is(err, ErrInvalidShape))
}

func TestSub(t *testing.T) {
	// Column vector with four nonzeros.
	p := Dense(4, 1)
	sub, mapping, err := p.Sub(Range(1, 3), All())
	require.NoError(t, err)
	assert.Equal(t, 2, sub.Rows())
	assert.Equal(t, 1, sub.Cols())
	assert.Equal(t, []int{1, 2}, mapping)

	// Intersection with a sparse structure drops structural zeros.
	d := Diag(3)
	sub, mapping, err = d.Sub(Range(0, 2), Range(1, 3))
	require.NoError(t, err)
	assert.Equal(t, 2, sub.Rows())
	assert.Equal(t, 2, sub.Cols())
	assert.Equal(t, 1, sub.NNZ())
	assert.Equal(t, []int{1}, mapping)
	assert.Equal(t, 0, sub.Find(1, 0))

	// Reversed rows keep the output rows sorted.
	sub, mapping, err = Dense(3, 1).Sub(Slice{Start: -1, Stop: End, Step: -1}, All())
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 0}, mapping)
	assert.Equal(t, []int{0, 1, 2}, sub.Row())

	// A reversed slice whose stop lies before the axis covers every row.
	sp, err := FromTriplets(4, 1, []int{0, 2, 3}, []int{0, 0, 0})
	require.NoError(t, err)
	sub, mapping, err = sp.Sub(Slice{Start: 3, Stop: -10, Step: -1}, All())
	require.NoError(t, err)
	assert.Equal(t, 4, sub.Rows())
	assert.Equal(t, []int{0, 1, 3}, sub.Row())
	assert.Equal(t, []int{2, 1, 0}, mapping)

	_, _, err = p.Sub(Slice{Step: 0}, All())
	assert.True(t, errors.Is(err, ErrInvalidSlice))
}
