package mx_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/born-ml/mxgraph/internal/mx"
	"github.com/born-ml/mxgraph/internal/sparsity"
	"github.com/born-ml/mxgraph/internal/sx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinary_EvalD(t *testing.T) {
	a := mx.SymbolDense("a", 3, 1)
	b := mx.SymbolDense("b", 3, 1)

	tests := []struct {
		name string
		expr mx.MX
		want []float64
	}{
		{"add", mx.MustAdd(a, b), []float64{5, 7, 9}},
		{"sub", mx.MustSub(a, b), []float64{-3, -3, -3}},
		{"mul", mx.MustMul(a, b), []float64{4, 10, 18}},
		{"neg", mx.Neg(a), []float64{-1, -2, -3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := [][]float64{{1, 2, 3}, {4, 5, 6}}
			got := evalD(t, tt.expr.Node(), in[:tt.expr.NumDeps()]...)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBinary_EvalSXMatchesEvalD(t *testing.T) {
	a := mx.SymbolDense("a", 2, 1)
	b := mx.SymbolDense("b", 2, 1)
	e := mx.MustMul(mx.MustSub(a, b), a)

	// Evaluate the two-node chain by hand, numerically and symbolically.
	diff := e.Dep(0)
	numDiff := evalD(t, diff.Node(), []float64{3, 4}, []float64{1, 1})
	num := evalD(t, e.Node(), numDiff, []float64{3, 4})

	as, bs := sx.Symbols("a", 2), sx.Symbols("b", 2)
	sxDiff := make([]sx.Elem, 2)
	diff.Node().EvalSX([][]sx.Elem{as, bs}, [][]sx.Elem{sxDiff}, nil, nil)
	sxOut := make([]sx.Elem, 2)
	e.Node().EvalSX([][]sx.Elem{sxDiff, as}, [][]sx.Elem{sxOut}, nil, nil)

	env := map[string]float64{"a_0": 3, "a_1": 4, "b_0": 1, "b_1": 1}
	for k := range num {
		v, err := sxOut[k].Eval(env)
		require.NoError(t, err)
		assert.Equal(t, num[k], v)
	}
}

func TestBinary_SparsityMismatch(t *testing.T) {
	_, err := mx.Add(mx.SymbolDense("a", 2, 2), mx.Symbol("b", sparsity.Diag(2)))
	assert.True(t, errors.Is(err, mx.ErrSparsityMismatch))

	_, err = mx.Mul(mx.SymbolDense("a", 2, 2), mx.MX{})
	assert.Error(t, err)
}

func TestBinary_ZeroSimplification(t *testing.T) {
	a := mx.SymbolDense("a", 2, 1)
	z := mx.Zeros(sparsity.Dense(2, 1))
	assert.True(t, mx.MustAdd(a, z).Same(a))
	assert.True(t, mx.MustAdd(z, a).Same(a))
	assert.True(t, mx.MustSub(a, z).Same(a))
	assert.True(t, mx.MustMul(a, z).IsZero())
	assert.True(t, mx.Neg(mx.Neg(a)).Same(a))
}

func TestBinary_Propagate(t *testing.T) {
	a := mx.SymbolDense("a", 2, 1)
	n := mx.MustMul(a, mx.SymbolDense("b", 2, 1)).Node()

	out := make([]mx.BVec, 2)
	n.Propagate([][]mx.BVec{{1, 0}, {0, 2}}, [][]mx.BVec{out}, true)
	assert.Equal(t, []mx.BVec{1, 2}, out)

	ina, inb := []mx.BVec{0, 0}, []mx.BVec{4, 0}
	out = []mx.BVec{1, 2}
	n.Propagate([][]mx.BVec{ina, inb}, [][]mx.BVec{out}, false)
	assert.Equal(t, []mx.BVec{1, 2}, ina)
	assert.Equal(t, []mx.BVec{5, 2}, inb)
	assert.Equal(t, []mx.BVec{0, 0}, out)
}

// A node used twice by the same consumer receives both adjoint contributions.
func TestBinary_AdjointSharedOperand(t *testing.T) {
	x := mx.SymbolDense("x", 2, 1)
	sq := mx.MustMul(x, x)

	out := sq
	seed := mx.SymbolDense("s", 2, 1)
	var sens mx.MX
	s := &mx.Sweep{
		Input:       []*mx.MX{&x, &x},
		Output:      []*mx.MX{&out},
		AdjSeed:     [][]*mx.MX{{&seed}},
		AdjSens:     [][]*mx.MX{{&sens, &sens}},
		OutputGiven: true,
	}
	require.NoError(t, sq.Node().EvalMX(s))
	assert.Equal(t, "((s*x)+(s*x))", sens.String())
}

func TestBinary_Forward(t *testing.T) {
	a := mx.SymbolDense("a", 1, 1)
	b := mx.SymbolDense("b", 1, 1)
	prod := mx.MustMul(a, b)

	out := prod
	da, db := mx.SymbolDense("da", 1, 1), mx.SymbolDense("db", 1, 1)
	var sens mx.MX
	s := &mx.Sweep{
		Input:       []*mx.MX{&a, &b},
		Output:      []*mx.MX{&out},
		FwdSeed:     [][]*mx.MX{{&da, &db}},
		FwdSens:     [][]*mx.MX{{&sens}},
		OutputGiven: true,
	}
	require.NoError(t, prod.Node().EvalMX(s))
	assert.Equal(t, "((da*b)+(a*db))", sens.String())
}

func TestBinary_Generate(t *testing.T) {
	n := mx.MustSub(mx.SymbolDense("a", 2, 1), mx.SymbolDense("b", 2, 1)).Node()
	var buf bytes.Buffer
	require.NoError(t, n.Generate(&buf, []string{"w0", "w1"}, []string{"w2"}, testCtx{}))
	assert.Equal(t, "  w2[0] = w0[0] - w1[0];\n  w2[1] = w0[1] - w1[1];\n", buf.String())

	buf.Reset()
	require.NoError(t, mx.Neg(mx.SymbolDense("a", 1, 1)).Node().Generate(&buf, []string{"w0"}, []string{"w1"}, testCtx{}))
	assert.Equal(t, "  w1[0] = -w0[0];\n", buf.String())
}
