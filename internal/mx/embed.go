package mx

import (
	"fmt"
	"io"

	"github.com/born-ml/mxgraph/internal/sparsity"
	"github.com/born-ml/mxgraph/internal/sx"
	"github.com/pkg/errors"
)

// embed places its dependency into the region of a zero matrix addressed by two slices.
// It is the transpose of subRef over the same slices and target pattern.
//
// Forward: out = 0; out[mapping[k]] = in[k]
//
// Derivatives:
//   - forward sensitivity: Embed(seed, i, j, sp)
//   - adjoint sensitivity: += SubRef(seed, i, j)
type embed struct {
	base
	i, j    sparsity.Slice
	mapping []int
}

// Embed creates the sp-shaped matrix that is zero everywhere except region [i, j], which
// holds x. The pattern of x must equal the pattern of that region of sp.
func Embed(x MX, i, j sparsity.Slice, sp *sparsity.Pattern) (MX, error) {
	if x.IsEmpty() {
		return MX{}, errors.Wrap(ErrEmptyExpression, "embed")
	}
	sub, mapping, err := sp.Sub(i, j)
	if err != nil {
		return MX{}, errors.WithMessagef(err, "embed into %s[%v, %v]", sp, i, j)
	}
	if !sub.Equal(x.Sparsity()) {
		return MX{}, errors.Wrapf(ErrSparsityMismatch, "embed %s into region %s", x.Sparsity(), sub)
	}
	return MX{&embed{base: base{deps: []MX{x}, sp: sp}, i: i, j: j, mapping: mapping}}, nil
}

func (e *embed) Op() OpCode { return OpEmbed }

func (e *embed) EvalD(in, out [][]float64, _ []int, _ []float64) {
	scatter(floatAlgebra{}, e.mapping, in[0], out[0])
}

func (e *embed) EvalSX(in, out [][]sx.Elem, _ []int, _ []sx.Elem) {
	scatter(sx.Algebra{}, e.mapping, in[0], out[0])
}

func scatter[T any, A Algebra[T]](alg A, mapping []int, arg, res []T) {
	for k := range res {
		res[k] = alg.Zero()
	}
	for k, dst := range mapping {
		res[dst] = arg[k]
	}
}

func (e *embed) Propagate(in, out [][]BVec, fwd bool) {
	arg, res := in[0], out[0]
	if fwd {
		clear(res)
		for k, dst := range e.mapping {
			res[dst] = arg[k]
		}
		return
	}
	for k, dst := range e.mapping {
		arg[k] |= res[dst]
	}
	clear(res)
}

func (e *embed) EvalMX(s *Sweep) error {
	if !s.OutputGiven {
		out, err := Embed(*s.Input[0], e.i, e.j, e.sp)
		if err != nil {
			return err
		}
		*s.Output[0] = out
	}

	for d := range s.FwdSens {
		sens, err := Embed(*s.FwdSeed[d][0], e.i, e.j, e.sp)
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
		sens, err := SubRef(seed, e.i, e.j)
		if err != nil {
			return errors.WithMessagef(err, "adjoint direction %d", d)
		}
		if err := s.AdjSens[d][0].AddToSum(sens); err != nil {
			return err
		}
	}
	return nil
}

func (e *embed) Generate(w io.Writer, arg, res []string, ctx CodeContext) error {
	src := make([]int, e.sp.NNZ())
	for k := range src {
		src[k] = -1
	}
	for k, dst := range e.mapping {
		src[dst] = k
	}
	sw := &stmtWriter{w: w}
	for k, from := range src {
		if from < 0 {
			sw.printf("  %s[%d] = %s;\n", res[0], k, ctx.Literal(0))
		} else {
			sw.printf("  %s[%d] = %s[%d];\n", res[0], k, arg[0], from)
		}
	}
	return sw.err
}

func (e *embed) PrintPart(w io.Writer, part int) {
	if part == 0 {
		_, _ = io.WriteString(w, "embed(")
	} else {
		_, _ = fmt.Fprintf(w, ", [%v, %v], %dx%d)", e.i, e.j, e.sp.Rows(), e.sp.Cols())
	}
}

func (e *embed) Clone() Node {
	c := *e
	return &c
}
