package function

import (
	"fmt"

	"github.com/born-ml/mxgraph/internal/mx"
	"github.com/pkg/errors"
)

// nodeError reports a failure of one node while building derivative graphs.
type nodeError struct {
	op  mx.OpCode
	err error
}

func (e *nodeError) Error() string {
	return fmt.Sprintf("function: differentiating %s: %v", e.op, e.err)
}

func (e *nodeError) Unwrap() error { return e.err }

// Is makes a node that cannot be differentiated match ErrUnsupported as well as
// mx.ErrUnsupported.
func (e *nodeError) Is(target error) bool {
	return target == ErrUnsupported && errors.Is(e.err, mx.ErrUnsupported)
}

// Derivative returns a function computing nfwd forward and nadj adjoint directional
// derivatives alongside the original outputs.
//
// The inputs of the result are the original inputs, then one forward seed per direction
// and input ("fwd<d>_<name>"), then one adjoint seed per direction and output
// ("adj<d>_out<j>"). Its outputs are the original outputs, then the forward sensitivities
// per direction and output, then the adjoint sensitivities per direction and input. An
// input the outputs do not depend on gets a structurally zero adjoint sensitivity.
func (f *Function) Derivative(nfwd, nadj int) (*Function, error) {
	if nfwd < 0 || nadj < 0 {
		return nil, errors.Wrapf(ErrIndex, "%s: negative direction count (%d, %d)", f.name, nfwd, nadj)
	}
	n := len(f.algorithm)

	inputs := append([]mx.MX(nil), f.inputs...)
	fwdSeeds := make([][]mx.MX, nfwd)
	for d := range fwdSeeds {
		for _, in := range f.inputs {
			seed := mx.Symbol(fmt.Sprintf("fwd%d_%s", d, in.Name()), in.Sparsity())
			fwdSeeds[d] = append(fwdSeeds[d], seed)
			inputs = append(inputs, seed)
		}
	}
	adjSeeds := make([][]mx.MX, nadj)
	for d := range adjSeeds {
		for j, out := range f.outputs {
			seed := mx.Symbol(fmt.Sprintf("adj%d_out%d", d, j), out.Sparsity())
			adjSeeds[d] = append(adjSeeds[d], seed)
			inputs = append(inputs, seed)
		}
	}

	vals := make([]mx.MX, n)
	for i, ins := range f.algorithm {
		vals[i] = ins.expr
	}

	// Forward sensitivities in evaluation order.
	fsens := make([][]mx.MX, nfwd)
	for d := range fsens {
		fsens[d] = make([]mx.MX, n)
	}
	for i, ins := range f.algorithm {
		if ins.Input >= 0 {
			for d := range fsens {
				fsens[d][i] = fwdSeeds[d][ins.Input]
			}
			continue
		}
		if nfwd == 0 {
			continue
		}
		s := f.sweepFor(i, vals)
		s.FwdSeed = make([][]*mx.MX, nfwd)
		s.FwdSens = make([][]*mx.MX, nfwd)
		for d := range fsens {
			for _, dep := range ins.deps {
				s.FwdSeed[d] = append(s.FwdSeed[d], &fsens[d][dep])
			}
			s.FwdSens[d] = []*mx.MX{&fsens[d][i]}
		}
		if err := ins.Node.EvalMX(s); err != nil {
			return nil, &nodeError{op: ins.Node.Op(), err: err}
		}
	}

	// Adjoint sensitivities in reverse order. Each node consumes its seed and adds its
	// contributions to the sensitivities of its dependencies.
	asens := make([][]mx.MX, nadj)
	for d := range asens {
		asens[d] = make([]mx.MX, n)
		for j, idx := range f.outputIdx {
			if err := asens[d][idx].AddToSum(adjSeeds[d][j]); err != nil {
				return nil, errors.WithMessagef(err, "%s: adjoint seed %d of output %d", f.name, d, j)
			}
		}
	}
	for i := n - 1; i >= 0 && nadj > 0; i-- {
		ins := f.algorithm[i]
		if ins.Input >= 0 {
			continue
		}
		s := f.sweepFor(i, vals)
		s.AdjSeed = make([][]*mx.MX, nadj)
		s.AdjSens = make([][]*mx.MX, nadj)
		for d := range asens {
			s.AdjSeed[d] = []*mx.MX{&asens[d][i]}
			for _, dep := range ins.deps {
				s.AdjSens[d] = append(s.AdjSens[d], &asens[d][dep])
			}
		}
		if err := ins.Node.EvalMX(s); err != nil {
			return nil, &nodeError{op: ins.Node.Op(), err: err}
		}
	}

	outputs := append([]mx.MX(nil), f.outputs...)
	for d := range fsens {
		for _, idx := range f.outputIdx {
			outputs = append(outputs, fsens[d][idx])
		}
	}
	for d := range asens {
		for i, idx := range f.inputIdx {
			sens := asens[d][idx]
			if sens.IsEmpty() {
				sens = mx.Zeros(f.inputs[i].Sparsity())
			}
			outputs = append(outputs, sens)
		}
	}

	der, err := build(f.name+"_der", inputs, outputs, f.opts)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s: building derivative", f.name)
	}
	f.opts.logger.Debug("derivative created",
		"name", der.name,
		"fwd", nfwd,
		"adj", nadj,
		"instructions", len(der.algorithm))
	return der, nil
}

// sweepFor prepares the EvalMX arguments of instruction i with its output already known.
func (f *Function) sweepFor(i int, vals []mx.MX) *mx.Sweep {
	ins := f.algorithm[i]
	s := &mx.Sweep{
		Self:        ins.expr,
		Output:      []*mx.MX{&vals[i]},
		OutputGiven: true,
	}
	for _, dep := range ins.deps {
		s.Input = append(s.Input, &vals[dep])
	}
	return s
}
