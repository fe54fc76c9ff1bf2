package mx

import (
	"fmt"
	"io"

	"github.com/born-ml/mxgraph/internal/sx"
	"github.com/pkg/errors"
)

// binary is an elementwise operation over two operands with the same pattern.
//
// Derivatives (a, b operands; da, db forward seeds; s adjoint seed):
//   - Add: fwd da+db;        adj a += s, b += s
//   - Sub: fwd da-db;        adj a += s, b += -s
//   - Mul: fwd da*b + a*db;  adj a += s*b, b += s*a
type binary struct {
	base
	op OpCode
}

var binarySymbols = map[OpCode]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
}

func newBinary(op OpCode, a, b MX) (MX, error) {
	if a.IsEmpty() || b.IsEmpty() {
		return MX{}, errors.Wrapf(ErrEmptyExpression, "%s", op)
	}
	if !a.Sparsity().Equal(b.Sparsity()) {
		return MX{}, errors.Wrapf(ErrSparsityMismatch, "%s of %s and %s", op, a.Sparsity(), b.Sparsity())
	}
	return MX{&binary{base: base{deps: []MX{a, b}, sp: a.Sparsity()}, op: op}}, nil
}

// Add returns a+b. Adding a zero constant returns the other operand.
func Add(a, b MX) (MX, error) {
	if a.IsZero() && a.Sparsity().Equal(b.Sparsity()) {
		return b, nil
	}
	if b.IsZero() && a.Sparsity().Equal(b.Sparsity()) {
		return a, nil
	}
	return newBinary(OpAdd, a, b)
}

// Sub returns a-b.
func Sub(a, b MX) (MX, error) {
	if b.IsZero() && a.Sparsity().Equal(b.Sparsity()) {
		return a, nil
	}
	return newBinary(OpSub, a, b)
}

// Mul returns the elementwise product a*b.
func Mul(a, b MX) (MX, error) {
	if a.IsZero() && a.Sparsity().Equal(b.Sparsity()) {
		return a, nil
	}
	if b.IsZero() && a.Sparsity().Equal(b.Sparsity()) {
		return b, nil
	}
	return newBinary(OpMul, a, b)
}

// MustAdd is like Add but panics on error.
func MustAdd(a, b MX) MX { return must(Add(a, b)) }

// MustSub is like Sub but panics on error.
func MustSub(a, b MX) MX { return must(Sub(a, b)) }

// MustMul is like Mul but panics on error.
func MustMul(a, b MX) MX { return must(Mul(a, b)) }

func must(m MX, err error) MX {
	if err != nil {
		panic(err)
	}
	return m
}

func (n *binary) Op() OpCode { return n.op }

func (n *binary) EvalD(in, out [][]float64, _ []int, _ []float64) {
	binaryEval(floatAlgebra{}, n.op, in, out)
}

func (n *binary) EvalSX(in, out [][]sx.Elem, _ []int, _ []sx.Elem) {
	binaryEval(sx.Algebra{}, n.op, in, out)
}

func binaryEval[T any, A Algebra[T]](alg A, op OpCode, in, out [][]T) {
	a, b, res := in[0], in[1], out[0]
	switch op {
	case OpAdd:
		for k := range res {
			res[k] = alg.Add(a[k], b[k])
		}
	case OpSub:
		for k := range res {
			res[k] = alg.Sub(a[k], b[k])
		}
	case OpMul:
		for k := range res {
			res[k] = alg.Mul(a[k], b[k])
		}
	}
}

func (n *binary) Propagate(in, out [][]BVec, fwd bool) {
	a, b, res := in[0], in[1], out[0]
	if fwd {
		for k := range res {
			res[k] = a[k] | b[k]
		}
		return
	}
	for k := range res {
		bits := res[k]
		res[k] = 0
		a[k] |= bits
		b[k] |= bits
	}
}

func (n *binary) EvalMX(s *Sweep) error {
	a, b := *s.Input[0], *s.Input[1]
	if !s.OutputGiven {
		out, err := newBinary(n.op, a, b)
		if err != nil {
			return err
		}
		*s.Output[0] = out
	}

	for d := range s.FwdSens {
		sens, err := n.forward(a, b, *s.FwdSeed[d][0], *s.FwdSeed[d][1])
		if err != nil {
			return errors.WithMessagef(err, "forward direction %d", d)
		}
		*s.FwdSens[d][0] = sens
	}

	for d := range s.AdjSeed {
		seed := s.AdjSeed[d][0].Take()
		if seed.IsEmpty() {
			continue
		}
		sa, sb, err := n.adjoint(a, b, seed)
		if err != nil {
			return errors.WithMessagef(err, "adjoint direction %d", d)
		}
		if err := s.AdjSens[d][0].AddToSum(sa); err != nil {
			return err
		}
		if err := s.AdjSens[d][1].AddToSum(sb); err != nil {
			return err
		}
	}
	return nil
}

func (n *binary) forward(a, b, da, db MX) (MX, error) {
	switch n.op {
	case OpAdd:
		return Add(da, db)
	case OpSub:
		return Sub(da, db)
	}
	left, err := Mul(da, b)
	if err != nil {
		return MX{}, err
	}
	right, err := Mul(a, db)
	if err != nil {
		return MX{}, err
	}
	return Add(left, right)
}

func (n *binary) adjoint(a, b, seed MX) (MX, MX, error) {
	switch n.op {
	case OpAdd:
		return seed, seed, nil
	case OpSub:
		return seed, Neg(seed), nil
	}
	sa, err := Mul(seed, b)
	if err != nil {
		return MX{}, MX{}, err
	}
	sb, err := Mul(seed, a)
	if err != nil {
		return MX{}, MX{}, err
	}
	return sa, sb, nil
}

func (n *binary) Generate(w io.Writer, arg, res []string, _ CodeContext) error {
	sym := binarySymbols[n.op]
	sw := &stmtWriter{w: w}
	for k := 0; k < n.sp.NNZ(); k++ {
		sw.printf("  %s[%d] = %s[%d] %s %s[%d];\n", res[0], k, arg[0], k, sym, arg[1], k)
	}
	return sw.err
}

func (n *binary) PrintPart(w io.Writer, part int) {
	switch part {
	case 0:
		_, _ = io.WriteString(w, "(")
	case 1:
		_, _ = fmt.Fprint(w, binarySymbols[n.op])
	default:
		_, _ = io.WriteString(w, ")")
	}
}

func (n *binary) Clone() Node {
	c := *n
	return &c
}

// neg is elementwise negation.
type neg struct {
	base
}

// Neg returns -x.
func Neg(x MX) MX {
	if x.IsEmpty() {
		return x
	}
	if x.Op() == OpNeg {
		return x.Dep(0)
	}
	return MX{&neg{base: base{deps: []MX{x}, sp: x.Sparsity()}}}
}

func (n *neg) Op() OpCode { return OpNeg }

func (n *neg) EvalD(in, out [][]float64, _ []int, _ []float64) {
	negEval(floatAlgebra{}, in, out)
}

func (n *neg) EvalSX(in, out [][]sx.Elem, _ []int, _ []sx.Elem) {
	negEval(sx.Algebra{}, in, out)
}

func negEval[T any, A Algebra[T]](alg A, in, out [][]T) {
	for k := range out[0] {
		out[0][k] = alg.Neg(in[0][k])
	}
}

func (n *neg) Propagate(in, out [][]BVec, fwd bool) {
	if fwd {
		copy(out[0], in[0])
		return
	}
	for k := range out[0] {
		in[0][k] |= out[0][k]
		out[0][k] = 0
	}
}

func (n *neg) EvalMX(s *Sweep) error {
	if !s.OutputGiven {
		*s.Output[0] = Neg(*s.Input[0])
	}
	for d := range s.FwdSens {
		*s.FwdSens[d][0] = Neg(*s.FwdSeed[d][0])
	}
	for d := range s.AdjSeed {
		seed := s.AdjSeed[d][0].Take()
		if seed.IsEmpty() {
			continue
		}
		if err := s.AdjSens[d][0].AddToSum(Neg(seed)); err != nil {
			return err
		}
	}
	return nil
}

func (n *neg) Generate(w io.Writer, arg, res []string, _ CodeContext) error {
	sw := &stmtWriter{w: w}
	for k := 0; k < n.sp.NNZ(); k++ {
		sw.printf("  %s[%d] = -%s[%d];\n", res[0], k, arg[0], k)
	}
	return sw.err
}

func (n *neg) PrintPart(w io.Writer, part int) {
	if part == 0 {
		_, _ = io.WriteString(w, "(-")
	} else {
		_, _ = io.WriteString(w, ")")
	}
}

func (n *neg) Clone() Node {
	c := *n
	return &c
}
