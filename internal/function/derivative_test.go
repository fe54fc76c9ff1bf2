package function_test

import (
	"errors"
	"io"
	"testing"

	"github.com/born-ml/mxgraph/internal/function"
	"github.com/born-ml/mxgraph/internal/mx"
	"github.com/born-ml/mxgraph/internal/sparsity"
	"github.com/born-ml/mxgraph/internal/sx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivative_Forward(t *testing.T) {
	x := mx.SymbolDense("x", 2, 1)
	y := mx.SymbolDense("y", 2, 1)
	f := function.MustNew("f", []mx.MX{x, y}, []mx.MX{mx.MustAdd(mx.MustMul(x, y), x)})

	der, err := f.Derivative(1, 0)
	require.NoError(t, err)
	assert.Equal(t, "f_der", der.Name())
	require.Equal(t, 4, der.NumInputs())
	require.Equal(t, 2, der.NumOutputs())
	assert.Equal(t, "fwd0_x", der.Input(2).Name())
	assert.Equal(t, "fwd0_y", der.Input(3).Name())

	out, err := der.Eval([][]float64{{1, 2}, {3, 4}, {1, 0}, {0, 1}})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 10}, out[0])
	assert.Equal(t, []float64{4, 2}, out[1])
}

func TestDerivative_Adjoint(t *testing.T) {
	x := mx.SymbolDense("x", 2, 1)
	y := mx.SymbolDense("y", 2, 1)
	f := function.MustNew("f", []mx.MX{x, y}, []mx.MX{mx.MustAdd(mx.MustMul(x, y), x)})

	der, err := f.Derivative(0, 1)
	require.NoError(t, err)
	require.Equal(t, 3, der.NumInputs())
	require.Equal(t, 3, der.NumOutputs())
	assert.Equal(t, "adj0_out0", der.Input(2).Name())

	out, err := der.Eval([][]float64{{1, 2}, {3, 4}, {1, 1}})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 10}, out[0])
	assert.Equal(t, []float64{4, 5}, out[1], "d/dx = y + 1")
	assert.Equal(t, []float64{1, 2}, out[2], "d/dy = x")
}

func TestDerivative_AdjointSumsConsumers(t *testing.T) {
	x := mx.SymbolDense("x", 2, 1)
	outputs := []mx.MX{
		mx.MustReshape(x, sparsity.Dense(1, 2)),
		mx.MustReshape(x, sparsity.Dense(1, 2)),
		mx.Neg(x),
	}
	f := function.MustNew("f", []mx.MX{x}, outputs)

	der, err := f.Derivative(0, 1)
	require.NoError(t, err)
	require.Equal(t, 4, der.NumOutputs())

	out, err := der.Eval([][]float64{{1, 2}, {1, 2}, {10, 20}, {100, 200}})
	require.NoError(t, err)
	assert.Equal(t, []float64{-89, -178}, out[3])
}

func TestDerivative_SubRefAdjoint(t *testing.T) {
	x := mx.SymbolDense("x", 4, 1)
	y := mx.MustSubRef(x, sparsity.Range(1, 3), sparsity.All())
	f := function.MustNew("f", []mx.MX{x}, []mx.MX{y})

	der, err := f.Derivative(1, 1)
	require.NoError(t, err)
	require.Equal(t, 3, der.NumOutputs())

	out, err := der.Eval([][]float64{{10, 20, 30, 40}, {1, 2, 3, 4}, {1, 1}})
	require.NoError(t, err)
	assert.Equal(t, []float64{20, 30}, out[0])
	assert.Equal(t, []float64{2, 3}, out[1])
	assert.Equal(t, []float64{0, 1, 1, 0}, out[2])
}

func TestDerivative_ReshapeBothDirections(t *testing.T) {
	x := mx.SymbolDense("x", 2, 3)
	f := function.MustNew("f", []mx.MX{x}, []mx.MX{mx.MustReshape(x, sparsity.Dense(3, 2))})

	der, err := f.Derivative(1, 1)
	require.NoError(t, err)
	assert.True(t, der.OutputSparsity(1).Equal(sparsity.Dense(3, 2)))
	assert.True(t, der.OutputSparsity(2).Equal(sparsity.Dense(2, 3)))

	seq := []float64{1, 2, 3, 4, 5, 6}
	out, err := der.Eval([][]float64{seq, seq, seq})
	require.NoError(t, err)
	assert.Equal(t, seq, out[1])
	assert.Equal(t, seq, out[2])
}

func TestDerivative_UnusedInputGetsZeros(t *testing.T) {
	x := mx.SymbolDense("x", 2, 1)
	z := mx.SymbolDense("z", 2, 1)
	f := function.MustNew("f", []mx.MX{x, z}, []mx.MX{x})

	der, err := f.Derivative(0, 1)
	require.NoError(t, err)
	require.Equal(t, 3, der.NumOutputs())
	assert.True(t, der.Output(2).IsZero())

	out, err := der.Eval([][]float64{{1, 2}, {3, 4}, {5, 6}})
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 6}, out[1])
	assert.Equal(t, []float64{0, 0}, out[2])
}

func TestDerivative_SymbolicAgreesWithNumeric(t *testing.T) {
	x := mx.SymbolDense("x", 3, 1)
	f := function.MustNew("f", []mx.MX{x}, []mx.MX{mx.MustMul(x, x)})

	der, err := f.Derivative(0, 1)
	require.NoError(t, err)

	sym, err := der.EvalSX([][]sx.Elem{sx.Symbols("x", 3), sx.Symbols("s", 3)})
	require.NoError(t, err)
	env := map[string]float64{"x_0": 1, "x_1": -2, "x_2": 0.5, "s_0": 1, "s_1": 1, "s_2": 2}
	want := []float64{2, -4, 2}
	for k, e := range sym[1] {
		v, err := e.Eval(env)
		require.NoError(t, err)
		assert.InDelta(t, want[k], v, 1e-12)
	}
}

func TestDerivative_NegativeDirections(t *testing.T) {
	x := mx.SymbolDense("x", 1, 1)
	f := function.MustNew("f", []mx.MX{x}, []mx.MX{x})
	_, err := f.Derivative(-1, 0)
	assert.True(t, errors.Is(err, function.ErrIndex))
}

// opaque is a node without derivative rules.
type opaque struct {
	x mx.MX
}

func (o *opaque) Op() mx.OpCode                                                { return mx.OpCode(-1) }
func (o *opaque) Deps() []mx.MX                                                { return []mx.MX{o.x} }
func (o *opaque) Sparsity() *sparsity.Pattern                                  { return o.x.Sparsity() }
func (o *opaque) WorkSize() (int, int)                                         { return 0, 0 }
func (o *opaque) InPlace() bool                                                { return false }
func (o *opaque) EvalD(in, out [][]float64, _ []int, _ []float64)              { copy(out[0], in[0]) }
func (o *opaque) EvalSX(in, out [][]sx.Elem, _ []int, _ []sx.Elem)             { copy(out[0], in[0]) }
func (o *opaque) Propagate(in, out [][]mx.BVec, _ bool)                        { copy(out[0], in[0]) }
func (o *opaque) EvalMX(*mx.Sweep) error                                       { return mx.ErrUnsupported }
func (o *opaque) Generate(io.Writer, []string, []string, mx.CodeContext) error { return mx.ErrUnsupported }
func (o *opaque) PrintPart(w io.Writer, part int)                              { _, _ = io.WriteString(w, "opaque") }
func (o *opaque) Clone() mx.Node                                               { return &opaque{x: o.x} }

func TestDerivative_Unsupported(t *testing.T) {
	x := mx.SymbolDense("x", 2, 1)
	f := function.MustNew("f", []mx.MX{x}, []mx.MX{mx.FromNode(&opaque{x: x})})

	out, err := f.Eval([][]float64{{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, out[0])

	_, err = f.Derivative(1, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, function.ErrUnsupported))
	assert.True(t, errors.Is(err, mx.ErrUnsupported))
}
