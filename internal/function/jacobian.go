package function

import (
	"github.com/born-ml/mxgraph/internal/mx"
	"github.com/born-ml/mxgraph/internal/sparsity"
	"github.com/pkg/errors"
)

// bvecBits is the number of directions carried by one mx.BVec.
const bvecBits = 64

// SpFwd propagates dependency bits from the inputs to the outputs. seeds[i] holds one word
// per nonzero of input i; the result holds one word per nonzero of every output.
func (f *Function) SpFwd(seeds [][]mx.BVec) ([][]mx.BVec, error) {
	if err := f.checkArgs(inputLens(seeds)); err != nil {
		return nil, err
	}
	return sweep(f, seeds, func(n mx.Node, in, out [][]mx.BVec, _ []int, _ []mx.BVec) {
		n.Propagate(in, out, true)
	}), nil
}

// SpAdj propagates dependency bits from the outputs back to the inputs. seeds[j] holds one
// word per nonzero of output j; the result holds one word per nonzero of every input.
func (f *Function) SpAdj(seeds [][]mx.BVec) ([][]mx.BVec, error) {
	if len(seeds) != len(f.outputs) {
		return nil, errors.Wrapf(ErrArgCount, "%s: got %d output seeds, want %d", f.name, len(seeds), len(f.outputs))
	}
	for j, s := range seeds {
		if want := f.outputs[j].NNZ(); len(s) != want {
			return nil, errors.Wrapf(ErrArgSize, "%s: output seed %d has %d words, want %d", f.name, j, len(s), want)
		}
	}

	work := newWork[mx.BVec](f)
	for j, s := range seeds {
		slot := work[f.OutputSlot(j)]
		for k, bits := range s {
			slot[k] |= bits
		}
	}

	// Every reverse step clears its own output slot, so slots shared by several nodes
	// start clean when their earlier owner is reached.
	for i := len(f.algorithm) - 1; i >= 0; i-- {
		ins := f.algorithm[i]
		if ins.Input >= 0 {
			continue
		}
		ins.Node.Propagate(argBuffers(work, ins.Arg), [][]mx.BVec{work[ins.Res]}, false)
	}

	res := make([][]mx.BVec, len(f.inputs))
	for i, idx := range f.inputIdx {
		res[i] = append([]mx.BVec(nil), work[f.algorithm[idx].Res]...)
	}
	return res, nil
}

// SparsityMode selects the propagation direction used by JacSparsity.
type SparsityMode int

// Propagation modes.
const (
	// ModeAuto propagates forward when the input has no more nonzeros than the output.
	ModeAuto SparsityMode = iota
	ModeForward
	ModeReverse
)

// JacSparsity returns the structure of the Jacobian of output oind with respect to input
// iind. Rows follow the output nonzeros and columns the input nonzeros.
func (f *Function) JacSparsity(iind, oind int, mode SparsityMode) (*sparsity.Pattern, error) {
	if iind < 0 || iind >= len(f.inputs) || oind < 0 || oind >= len(f.outputs) {
		return nil, errors.Wrapf(ErrIndex, "%s: jacobian of output %d wrt input %d", f.name, oind, iind)
	}
	nIn, nOut := f.inputs[iind].NNZ(), f.outputs[oind].NNZ()
	if mode == ModeAuto {
		mode = ModeForward
		if nIn > nOut {
			mode = ModeReverse
		}
	}

	var rows, cols []int
	if mode == ModeForward {
		for offset := 0; offset < nIn; offset += bvecBits {
			seeds := f.zeroInputSeeds()
			for k := offset; k < min(offset+bvecBits, nIn); k++ {
				seeds[iind][k] = 1 << (k - offset)
			}
			res, err := f.SpFwd(seeds)
			if err != nil {
				return nil, err
			}
			for r, bits := range res[oind] {
				for b := 0; b < bvecBits; b++ {
					if bits&(1<<b) != 0 {
						rows = append(rows, r)
						cols = append(cols, offset+b)
					}
				}
			}
		}
	} else {
		for offset := 0; offset < nOut; offset += bvecBits {
			seeds := make([][]mx.BVec, len(f.outputs))
			for j, out := range f.outputs {
				seeds[j] = make([]mx.BVec, out.NNZ())
			}
			for k := offset; k < min(offset+bvecBits, nOut); k++ {
				seeds[oind][k] = 1 << (k - offset)
			}
			res, err := f.SpAdj(seeds)
			if err != nil {
				return nil, err
			}
			for c, bits := range res[iind] {
				for b := 0; b < bvecBits; b++ {
					if bits&(1<<b) != 0 {
						rows = append(rows, offset+b)
						cols = append(cols, c)
					}
				}
			}
		}
	}

	f.opts.logger.Debug("jacobian sparsity", "name", f.name, "input", iind, "output", oind, "mode", mode, "nnz", len(rows))
	return sparsity.FromTriplets(nOut, nIn, rows, cols)
}

func (f *Function) zeroInputSeeds() [][]mx.BVec {
	seeds := make([][]mx.BVec, len(f.inputs))
	for i, in := range f.inputs {
		seeds[i] = make([]mx.BVec, in.NNZ())
	}
	return seeds
}
