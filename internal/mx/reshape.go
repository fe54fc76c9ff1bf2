package mx

import (
	"io"

	"github.com/born-ml/mxgraph/internal/sparsity"
	"github.com/born-ml/mxgraph/internal/sx"
	"github.com/pkg/errors"
)

// reshape presents the nonzeros of its dependency, unchanged and in the same order, under
// a different pattern with the same number of nonzeros.
//
// Forward: out = in (nonzero sequence copied as is)
//
// Derivatives:
//   - forward sensitivity: Reshape(seed, out pattern)
//   - adjoint sensitivity: += Reshape(seed, dependency pattern)
type reshape struct {
	base
}

// Reshape creates an expression with the nonzeros of x laid out in sp.
// sp must have exactly as many nonzeros as x.
func Reshape(x MX, sp *sparsity.Pattern) (MX, error) {
	if x.IsEmpty() {
		return MX{}, errors.Wrap(ErrEmptyExpression, "reshape")
	}
	if x.NNZ() != sp.NNZ() {
		return MX{}, errors.Wrapf(ErrNNZMismatch, "reshape %s to %s", x.Sparsity(), sp)
	}
	if x.Sparsity().Equal(sp) {
		return x, nil
	}
	// Reshape of a reshape collapses onto the original dependency.
	if x.Op() == OpReshape {
		return Reshape(x.Dep(0), sp)
	}
	return MX{&reshape{base: base{deps: []MX{x}, sp: sp}}}, nil
}

// MustReshape is like Reshape but panics on error.
func MustReshape(x MX, sp *sparsity.Pattern) MX {
	r, err := Reshape(x, sp)
	if err != nil {
		panic(err)
	}
	return r
}

// ReshapeTo reshapes x to rows x cols, keeping every entry at its column-major position.
func ReshapeTo(x MX, rows, cols int) (MX, error) {
	sp, err := x.Sparsity().Reshape(rows, cols)
	if err != nil {
		return MX{}, errors.WithMessage(err, "reshape")
	}
	return Reshape(x, sp)
}

func (r *reshape) Op() OpCode { return OpReshape }

// InPlace returns true: the output is the input nonzero sequence.
func (r *reshape) InPlace() bool { return true }

func (r *reshape) EvalD(in, out [][]float64, _ []int, _ []float64) {
	reshapeEval(r.sp.NNZ(), in, out)
}

func (r *reshape) EvalSX(in, out [][]sx.Elem, _ []int, _ []sx.Elem) {
	reshapeEval(r.sp.NNZ(), in, out)
}

func reshapeEval[T any](nnz int, in, out [][]T) {
	if sameStorage(in[0], out[0]) {
		return
	}
	copy(out[0][:nnz], in[0][:nnz])
}

func (r *reshape) Propagate(in, out [][]BVec, fwd bool) {
	if sameStorage(in[0], out[0]) {
		return
	}
	arg, res := in[0], out[0]
	if fwd {
		copy(res, arg)
		return
	}
	for k := range arg {
		arg[k] |= res[k]
		res[k] = 0
	}
}

// EvalMX returns at once when the driver hands the input and output the same
// value slot. Such a driver runs the instruction in place and the slot already
// holds every result, sensitivities included. function.Derivative gives each
// instruction its own slots and never takes this path.
func (r *reshape) EvalMX(s *Sweep) error {
	if s.Input[0] == s.Output[0] {
		return nil
	}
	if !s.OutputGiven {
		out, err := Reshape(*s.Input[0], r.sp)
		if err != nil {
			return err
		}
		*s.Output[0] = out
	}

	for d := range s.FwdSens {
		sens, err := Reshape(*s.FwdSeed[d][0], r.sp)
		if err != nil {
			return errors.WithMessagef(err, "forward direction %d", d)
		}
		*s.FwdSens[d][0] = sens
	}

	depSp := r.deps[0].Sparsity()
	for d := range s.AdjSeed {
		seed := s.AdjSeed[d][0].Take()
		if seed.IsEmpty() {
			continue
		}
		sens, err := Reshape(seed, depSp)
		if err != nil {
			return errors.WithMessagef(err, "adjoint direction %d", d)
		}
		if err := s.AdjSens[d][0].AddToSum(sens); err != nil {
			return err
		}
	}
	return nil
}

func (r *reshape) Generate(w io.Writer, arg, res []string, _ CodeContext) error {
	if arg[0] == res[0] {
		return nil
	}
	sw := &stmtWriter{w: w}
	for k := 0; k < r.sp.NNZ(); k++ {
		sw.printf("  %s[%d] = %s[%d];\n", res[0], k, arg[0], k)
	}
	return sw.err
}

func (r *reshape) PrintPart(w io.Writer, part int) {
	if part == 0 {
		_, _ = io.WriteString(w, "reshape(")
	} else {
		_, _ = io.WriteString(w, ")")
	}
}

func (r *reshape) Clone() Node {
	c := *r
	return &c
}
