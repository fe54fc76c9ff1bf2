package mx

import (
	"fmt"
	"io"

	"github.com/born-ml/mxgraph/internal/sparsity"
	"github.com/born-ml/mxgraph/internal/sx"
	"github.com/pkg/errors"
)

// subRef extracts the region addressed by a row slice and a column slice.
//
// Forward: out[k] = in[mapping[k]], where mapping[k] is the dependency nonzero read by
// output nonzero k. Addressed entries that are structural zeros of the dependency are
// structural zeros of the output.
//
// Derivatives:
//   - forward sensitivity: SubRef(seed, i, j)
//   - adjoint sensitivity: += Embed(seed, i, j, dependency pattern)
type subRef struct {
	base
	i, j    sparsity.Slice
	mapping []int
}

// SubRef creates the expression x[i, j].
func SubRef(x MX, i, j sparsity.Slice) (MX, error) {
	if x.IsEmpty() {
		return MX{}, errors.Wrap(ErrEmptyExpression, "subref")
	}
	sp, mapping, err := x.Sparsity().Sub(i, j)
	if err != nil {
		return MX{}, errors.WithMessagef(err, "subref %s[%v, %v]", x.Sparsity(), i, j)
	}
	return MX{&subRef{base: base{deps: []MX{x}, sp: sp}, i: i, j: j, mapping: mapping}}, nil
}

// MustSubRef is like SubRef but panics on error.
func MustSubRef(x MX, i, j sparsity.Slice) MX {
	r, err := SubRef(x, i, j)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *subRef) Op() OpCode { return OpSubRef }

// Mapping returns, for each output nonzero, the dependency nonzero it is read from.
func (r *subRef) Mapping() []int { return r.mapping }

func (r *subRef) EvalD(in, out [][]float64, _ []int, _ []float64) {
	gather(r.mapping, in[0], out[0])
}

func (r *subRef) EvalSX(in, out [][]sx.Elem, _ []int, _ []sx.Elem) {
	gather(r.mapping, in[0], out[0])
}

// gather writes res[k] = arg[mapping[k]]. Source and destination addressing differ, so
// every entry is written even when the buffers coincide.
func gather[T any](mapping []int, arg, res []T) {
	for k, src := range mapping {
		res[k] = arg[src]
	}
}

func (r *subRef) Propagate(in, out [][]BVec, fwd bool) {
	arg, res := in[0], out[0]
	if fwd {
		gather(r.mapping, arg, res)
		return
	}
	for k, src := range r.mapping {
		arg[src] |= res[k]
		res[k] = 0
	}
}

func (r *subRef) EvalMX(s *Sweep) error {
	if !s.OutputGiven {
		out, err := SubRef(*s.Input[0], r.i, r.j)
		if err != nil {
			return err
		}
		*s.Output[0] = out
	}

	for d := range s.FwdSens {
		sens, err := SubRef(*s.FwdSeed[d][0], r.i, r.j)
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
		sens, err := Embed(seed, r.i, r.j, depSp)
		if err != nil {
			return errors.WithMessagef(err, "adjoint direction %d", d)
		}
		if err := s.AdjSens[d][0].AddToSum(sens); err != nil {
			return err
		}
	}
	return nil
}

func (r *subRef) Generate(w io.Writer, arg, res []string, _ CodeContext) error {
	sw := &stmtWriter{w: w}
	for k, src := range r.mapping {
		sw.printf("  %s[%d] = %s[%d];\n", res[0], k, arg[0], src)
	}
	return sw.err
}

func (r *subRef) PrintPart(w io.Writer, part int) {
	if part == 1 {
		_, _ = fmt.Fprintf(w, "[%v, %v]", r.i, r.j)
	}
}

func (r *subRef) Clone() Node {
	c := *r
	return &c
}
