// Package function turns expression graphs into evaluable functions.
//
// A Function sorts the nodes reachable from its outputs topologically, assigns every node
// a work slot (reusing slots whose value is no longer needed) and drives the per-node
// contract of package mx over the whole graph: numeric and symbolic evaluation, forward
// and reverse dependency bit sweeps, and construction of forward and adjoint derivative
// graphs. A Function is immutable; concurrent sweeps are safe because every sweep
// allocates its own work buffers.
package function

import (
	"fmt"
	"strings"

	"github.com/born-ml/mxgraph/internal/mx"
	"github.com/born-ml/mxgraph/internal/sparsity"
	"github.com/pkg/errors"
)

// Instruction is one step of the algorithm: evaluate Node reading the work slots in Arg and
// writing work slot Res. Input is the function input index for symbols and -1 otherwise.
type Instruction struct {
	Node  mx.Node
	Arg   []int
	Res   int
	Input int

	expr mx.MX
	deps []int // instruction index of each dependency
}

// Function is a compiled expression graph with fixed inputs and outputs.
type Function struct {
	name    string
	inputs  []mx.MX
	outputs []mx.MX

	algorithm []Instruction
	slotSize  []int
	inputIdx  []int // instruction index of each input
	outputIdx []int // instruction index of each output
	nInt      int
	nReal     int
	opts      options
}

// New creates a function mapping the given symbolic inputs to outputs.
func New(name string, inputs, outputs []mx.MX, opts ...Option) (*Function, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return build(name, inputs, outputs, o)
}

func build(name string, inputs, outputs []mx.MX, o options) (*Function, error) {
	f := &Function{
		name:    name,
		inputs:  append([]mx.MX(nil), inputs...),
		outputs: append([]mx.MX(nil), outputs...),
		opts:    o,
	}

	index := make(map[mx.Node]int)
	for i, in := range inputs {
		if !in.IsSymbolic() {
			return nil, errors.Wrapf(ErrNotSymbolic, "%s: input %d (%s)", name, i, in)
		}
		if _, dup := index[in.Node()]; dup {
			return nil, errors.Wrapf(ErrDuplicateInput, "%s: input %d (%s)", name, i, in.Name())
		}
		index[in.Node()] = len(f.algorithm)
		f.inputIdx = append(f.inputIdx, len(f.algorithm))
		f.algorithm = append(f.algorithm, Instruction{Node: in.Node(), Input: i, expr: in})
	}

	for j, out := range outputs {
		if out.IsEmpty() {
			return nil, errors.Wrapf(ErrEmptyOutput, "%s: output %d", name, j)
		}
	}

	for _, e := range topoSort(outputs) {
		if _, ok := index[e.Node()]; ok {
			continue
		}
		if e.IsSymbolic() {
			return nil, errors.Wrapf(ErrFreeSymbol, "%s: %s", name, e.Name())
		}
		ins := Instruction{Node: e.Node(), Input: -1, expr: e}
		for _, d := range e.Node().Deps() {
			ins.deps = append(ins.deps, index[d.Node()])
		}
		index[e.Node()] = len(f.algorithm)
		f.algorithm = append(f.algorithm, ins)
	}

	for _, out := range outputs {
		f.outputIdx = append(f.outputIdx, index[out.Node()])
	}

	f.allocate()

	o.logger.Debug("function created",
		"name", name,
		"inputs", len(inputs),
		"outputs", len(outputs),
		"instructions", len(f.algorithm),
		"slots", len(f.slotSize))
	return f, nil
}

// MustNew is like New but panics on error.
func MustNew(name string, inputs, outputs []mx.MX, opts ...Option) *Function {
	f, err := New(name, inputs, outputs, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// topoSort returns every node reachable from roots, dependencies before consumers, using
// an iterative depth-first search.
func topoSort(roots []mx.MX) []mx.MX {
	type stackItem struct {
		expr     mx.MX
		expanded bool
	}

	var order []mx.MX
	visited := make(map[mx.Node]struct{})
	for _, root := range roots {
		stack := []stackItem{{expr: root}}
		for len(stack) > 0 {
			item := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if item.expanded {
				order = append(order, item.expr)
				continue
			}
			if _, ok := visited[item.expr.Node()]; ok {
				continue
			}
			visited[item.expr.Node()] = struct{}{}

			// Push the node again to be emitted after its dependencies.
			stack = append(stack, stackItem{expr: item.expr, expanded: true})
			deps := item.expr.Node().Deps()
			for d := len(deps) - 1; d >= 0; d-- {
				if _, ok := visited[deps[d].Node()]; !ok {
					stack = append(stack, stackItem{expr: deps[d]})
				}
			}
		}
	}
	return order
}

// allocate assigns work slots. A slot is released after the last instruction reading it
// and reused by a later result with the same number of nonzeros. Input and output slots
// are never released.
func (f *Function) allocate() {
	n := len(f.algorithm)
	lastUse := make([]int, n)
	for i := range lastUse {
		lastUse[i] = -1
	}
	for i, ins := range f.algorithm {
		for _, d := range ins.deps {
			lastUse[d] = i
		}
	}
	for _, i := range f.inputIdx {
		lastUse[i] = n
	}
	for _, i := range f.outputIdx {
		lastUse[i] = n
	}

	free := make(map[int][]int)
	for i := range f.algorithm {
		ins := &f.algorithm[i]
		nnz := ins.Node.Sparsity().NNZ()

		nInt, nReal := ins.Node.WorkSize()
		f.nInt = max(f.nInt, nInt)
		f.nReal = max(f.nReal, nReal)

		ins.Arg = make([]int, len(ins.deps))
		for k, d := range ins.deps {
			ins.Arg[k] = f.algorithm[d].Res
		}

		inPlace := f.opts.inPlace && ins.Node.InPlace() && len(ins.deps) == 1 && lastUse[ins.deps[0]] == i
		switch {
		case inPlace:
			ins.Res = ins.Arg[0]
		case len(free[nnz]) > 0:
			slots := free[nnz]
			ins.Res = slots[len(slots)-1]
			free[nnz] = slots[:len(slots)-1]
		default:
			ins.Res = len(f.slotSize)
			f.slotSize = append(f.slotSize, nnz)
		}

		for k, d := range ins.deps {
			if lastUse[d] != i || (inPlace && k == 0) || contains(ins.deps[:k], d) {
				continue
			}
			slot := f.algorithm[d].Res
			free[f.slotSize[slot]] = append(free[f.slotSize[slot]], slot)
		}
	}
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// Name returns the function name.
func (f *Function) Name() string { return f.name }

// NumInputs returns the number of inputs.
func (f *Function) NumInputs() int { return len(f.inputs) }

// NumOutputs returns the number of outputs.
func (f *Function) NumOutputs() int { return len(f.outputs) }

// Input returns input expression i.
func (f *Function) Input(i int) mx.MX { return f.inputs[i] }

// Output returns output expression i.
func (f *Function) Output(i int) mx.MX { return f.outputs[i] }

// InputSparsity returns the pattern of input i.
func (f *Function) InputSparsity(i int) *sparsity.Pattern { return f.inputs[i].Sparsity() }

// OutputSparsity returns the pattern of output i.
func (f *Function) OutputSparsity(i int) *sparsity.Pattern { return f.outputs[i].Sparsity() }

// Instructions returns the algorithm in evaluation order.
func (f *Function) Instructions() []Instruction {
	return append([]Instruction(nil), f.algorithm...)
}

// NumSlots returns the number of work slots.
func (f *Function) NumSlots() int { return len(f.slotSize) }

// SlotSize returns the number of nonzeros held by work slot i.
func (f *Function) SlotSize(i int) int { return f.slotSize[i] }

// OutputSlot returns the work slot holding output j after a sweep.
func (f *Function) OutputSlot(j int) int { return f.algorithm[f.outputIdx[j]].Res }

// WorkSize returns the integer and real scratch space needed by a sweep.
func (f *Function) WorkSize() (nInt, nReal int) { return f.nInt, f.nReal }

// String lists the algorithm, one instruction per line.
func (f *Function) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", f.name)
	for _, ins := range f.algorithm {
		fmt.Fprintf(&b, "  @%d = ", ins.Res)
		if ins.Input >= 0 {
			fmt.Fprintf(&b, "input[%d] %s\n", ins.Input, ins.expr.Name())
			continue
		}
		for k, slot := range ins.Arg {
			ins.Node.PrintPart(&b, k)
			fmt.Fprintf(&b, "@%d", slot)
		}
		ins.Node.PrintPart(&b, len(ins.Arg))
		b.WriteByte('\n')
	}
	for j := range f.outputs {
		fmt.Fprintf(&b, "  output[%d] = @%d\n", j, f.OutputSlot(j))
	}
	return b.String()
}
