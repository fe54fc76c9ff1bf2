package function

import (
	"github.com/born-ml/mxgraph/internal/mx"
	"github.com/born-ml/mxgraph/internal/parallel"
	"github.com/born-ml/mxgraph/internal/sx"
	"github.com/pkg/errors"
)

// nodeCall evaluates one node over buffers of element type T.
type nodeCall[T any] func(n mx.Node, in, out [][]T, itmp []int, rtmp []T)

// Eval evaluates the function numerically. inputs[i] holds the nonzeros of input i.
func (f *Function) Eval(inputs [][]float64) ([][]float64, error) {
	if err := f.checkArgs(inputLens(inputs)); err != nil {
		return nil, err
	}
	return sweep(f, inputs, func(n mx.Node, in, out [][]float64, itmp []int, rtmp []float64) {
		n.EvalD(in, out, itmp, rtmp)
	}), nil
}

// EvalSX evaluates the function over symbolic scalars.
func (f *Function) EvalSX(inputs [][]sx.Elem) ([][]sx.Elem, error) {
	if err := f.checkArgs(inputLens(inputs)); err != nil {
		return nil, err
	}
	return sweep(f, inputs, func(n mx.Node, in, out [][]sx.Elem, itmp []int, rtmp []sx.Elem) {
		n.EvalSX(in, out, itmp, rtmp)
	}), nil
}

// EvalBatch evaluates the function for several independent argument sets. Sweeps run
// concurrently according to the function's parallel configuration.
func (f *Function) EvalBatch(batch [][][]float64) ([][][]float64, error) {
	results := make([][][]float64, len(batch))
	err := parallel.ForErr(len(batch), func(i int) error {
		res, err := f.Eval(batch[i])
		if err != nil {
			return errors.WithMessagef(err, "batch item %d", i)
		}
		results[i] = res
		return nil
	}, f.opts.parallel)
	if err != nil {
		return nil, err
	}
	f.opts.logger.Debug("batch evaluated", "name", f.name, "items", len(batch))
	return results, nil
}

// sweep runs the algorithm forward over freshly allocated work buffers and returns copies
// of the output slots.
func sweep[T any](f *Function, inputs [][]T, call nodeCall[T]) [][]T {
	work := newWork[T](f)
	itmp := make([]int, f.nInt)
	rtmp := make([]T, f.nReal)

	for _, ins := range f.algorithm {
		if ins.Input >= 0 {
			copy(work[ins.Res], inputs[ins.Input])
			continue
		}
		call(ins.Node, argBuffers(work, ins.Arg), [][]T{work[ins.Res]}, itmp, rtmp)
	}

	outputs := make([][]T, len(f.outputs))
	for j := range outputs {
		outputs[j] = append([]T(nil), work[f.OutputSlot(j)]...)
	}
	return outputs
}

// newWork allocates one zeroed buffer per work slot.
func newWork[T any](f *Function) [][]T {
	work := make([][]T, len(f.slotSize))
	for i, n := range f.slotSize {
		work[i] = make([]T, n)
	}
	return work
}

func argBuffers[T any](work [][]T, slots []int) [][]T {
	in := make([][]T, len(slots))
	for k, slot := range slots {
		in[k] = work[slot]
	}
	return in
}

func inputLens[T any](inputs [][]T) []int {
	lens := make([]int, len(inputs))
	for i, in := range inputs {
		lens[i] = len(in)
	}
	return lens
}

// checkArgs validates the argument count and the length of every argument against the
// input patterns.
func (f *Function) checkArgs(lens []int) error {
	if len(lens) != len(f.inputs) {
		return errors.Wrapf(ErrArgCount, "%s: got %d inputs, want %d", f.name, len(lens), len(f.inputs))
	}
	for i, n := range lens {
		if want := f.inputs[i].NNZ(); n != want {
			return errors.Wrapf(ErrArgSize, "%s: input %d has %d values, want %d", f.name, i, n, want)
		}
	}
	return nil
}
