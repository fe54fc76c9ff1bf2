package function_test

import (
	"errors"
	"testing"

	"github.com/born-ml/mxgraph/internal/function"
	"github.com/born-ml/mxgraph/internal/mx"
	"github.com/born-ml/mxgraph/internal/sparsity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpFwd_SubRef(t *testing.T) {
	x := mx.SymbolDense("x", 4, 1)
	f := function.MustNew("f", []mx.MX{x}, []mx.MX{mx.MustSubRef(x, sparsity.Range(1, 3), sparsity.All())})

	out, err := f.SpFwd([][]mx.BVec{{1, 2, 4, 8}})
	require.NoError(t, err)
	assert.Equal(t, []mx.BVec{2, 4}, out[0])

	_, err = f.SpFwd([][]mx.BVec{{1}})
	assert.True(t, errors.Is(err, function.ErrArgSize))
}

func TestSpAdj_SubRef(t *testing.T) {
	x := mx.SymbolDense("x", 4, 1)
	f := function.MustNew("f", []mx.MX{x}, []mx.MX{mx.MustSubRef(x, sparsity.Range(1, 3), sparsity.All())})

	in, err := f.SpAdj([][]mx.BVec{{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, []mx.BVec{0, 1, 2, 0}, in[0])

	_, err = f.SpAdj(nil)
	assert.True(t, errors.Is(err, function.ErrArgCount))
	_, err = f.SpAdj([][]mx.BVec{{1, 2, 3}})
	assert.True(t, errors.Is(err, function.ErrArgSize))
}

func TestSpAdj_ReusedSlots(t *testing.T) {
	a := mx.SymbolDense("a", 2, 1)
	b := mx.SymbolDense("b", 2, 1)
	c := mx.SymbolDense("c", 2, 1)
	// -c reuses the slot of a+b.
	s1 := mx.MustAdd(a, b)
	s2 := mx.MustMul(s1, c)
	s3 := mx.MustSub(s2, mx.Neg(c))
	f := function.MustNew("f", []mx.MX{a, b, c}, []mx.MX{s3})

	in, err := f.SpAdj([][]mx.BVec{{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, []mx.BVec{1, 2}, in[0])
	assert.Equal(t, []mx.BVec{1, 2}, in[1])
	assert.Equal(t, []mx.BVec{1, 2}, in[2])

	fwd, err := f.SpFwd([][]mx.BVec{{1, 0}, {0, 2}, {0, 0}})
	require.NoError(t, err)
	assert.Equal(t, []mx.BVec{1, 2}, fwd[0])
}

func TestJacSparsity(t *testing.T) {
	x := mx.SymbolDense("x", 4, 1)
	f := function.MustNew("f", []mx.MX{x}, []mx.MX{mx.MustSubRef(x, sparsity.Range(1, 3), sparsity.All())})
	want, err := sparsity.FromTriplets(2, 4, []int{0, 1}, []int{1, 2})
	require.NoError(t, err)

	for _, mode := range []function.SparsityMode{function.ModeAuto, function.ModeForward, function.ModeReverse} {
		jac, err := f.JacSparsity(0, 0, mode)
		require.NoError(t, err)
		assert.True(t, jac.Equal(want), "mode %d: %s", mode, jac)
	}

	_, err = f.JacSparsity(1, 0, function.ModeAuto)
	assert.True(t, errors.Is(err, function.ErrIndex))
}

func TestJacSparsity_ManyDirections(t *testing.T) {
	x := mx.SymbolDense("x", 10, 10)
	y := mx.SymbolDense("y", 100, 1)
	r := mx.MustReshape(x, sparsity.Dense(100, 1))
	f := function.MustNew("f", []mx.MX{x, y}, []mx.MX{mx.MustMul(r, y)})

	fwd, err := f.JacSparsity(0, 0, function.ModeForward)
	require.NoError(t, err)
	rev, err := f.JacSparsity(0, 0, function.ModeReverse)
	require.NoError(t, err)

	assert.True(t, fwd.Equal(sparsity.Diag(100)), "%s", fwd)
	assert.True(t, rev.Equal(fwd))
}
