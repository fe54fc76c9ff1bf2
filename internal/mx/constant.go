package mx

import (
	"fmt"
	"io"

	"github.com/born-ml/mxgraph/internal/sparsity"
	"github.com/born-ml/mxgraph/internal/sx"
)

// constant is a numeric matrix embedded in the graph.
type constant struct {
	base
	value DM
}

// Constant creates an expression holding a numeric matrix.
func Constant(d DM) MX {
	return MX{&constant{base: base{sp: d.sp}, value: d}}
}

// Scalar creates a 1x1 constant.
func Scalar(v float64) MX {
	return Constant(DM{sp: sparsity.Scalar(), data: []float64{v}})
}

// Zeros creates a constant with the given pattern and all nonzeros 0.
func Zeros(sp *sparsity.Pattern) MX {
	return Constant(ZerosDM(sp))
}

// Value returns the numeric value of a constant expression.
func (m MX) Value() (DM, bool) {
	c, ok := m.node.(*constant)
	if !ok {
		return DM{}, false
	}
	return c.value, true
}

func (c *constant) Op() OpCode { return OpConst }

func (c *constant) EvalD(_, out [][]float64, _ []int, _ []float64) {
	copy(out[0], c.value.data)
}

func (c *constant) EvalSX(_, out [][]sx.Elem, _ []int, _ []sx.Elem) {
	for k, v := range c.value.data {
		out[0][k] = sx.Const(v)
	}
}

// Propagate clears the output: a constant depends on nothing.
func (c *constant) Propagate(_, out [][]BVec, _ bool) {
	clear(out[0])
}

func (c *constant) EvalMX(s *Sweep) error {
	if !s.OutputGiven {
		*s.Output[0] = s.Self
	}
	for d := range s.FwdSens {
		*s.FwdSens[d][0] = Zeros(c.sp)
	}
	for d := range s.AdjSeed {
		s.AdjSeed[d][0].Take()
	}
	return nil
}

func (c *constant) Generate(w io.Writer, _, res []string, ctx CodeContext) error {
	sw := &stmtWriter{w: w}
	for k, v := range c.value.data {
		sw.printf("  %s[%d] = %s;\n", res[0], k, ctx.Literal(v))
	}
	return sw.err
}

func (c *constant) PrintPart(w io.Writer, _ int) {
	if c.value.isZero() && !c.sp.IsScalar() {
		_, _ = fmt.Fprintf(w, "zeros(%dx%d)", c.sp.Rows(), c.sp.Cols())
		return
	}
	_, _ = io.WriteString(w, c.value.String())
}

func (c *constant) Clone() Node {
	cc := *c
	return &cc
}
