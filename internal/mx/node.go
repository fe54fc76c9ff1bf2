// Package mx defines the matrix expression graph: the Node contract every operation
// implements and the MX handle used to build graphs.
//
// Each operation implements the Node interface, which provides:
//   - Numeric evaluation over float64 nonzero buffers (EvalD)
//   - Symbolic evaluation over sx.Elem nonzero buffers (EvalSX)
//   - Dependency bit propagation, forward and reverse (Propagate)
//   - Graph-level forward and adjoint differentiation (EvalMX)
//   - C code generation (Generate) and pretty-printing (PrintPart)
//
// Supported operations:
//   - Symbol: free matrix symbol (leaf)
//   - Constant: numeric matrix (leaf)
//   - Reshape: same nonzeros in a different pattern (may run in place)
//   - SubRef: extraction of a sliced sub-region
//   - Embed: placement into a sliced sub-region of a zero matrix (adjoint of SubRef)
//   - Add, Sub, Mul, Neg: elementwise arithmetic over a shared pattern
package mx

import (
	"io"

	"github.com/born-ml/mxgraph/internal/sparsity"
	"github.com/born-ml/mxgraph/internal/sx"
)

// BVec is a word of dependency bits. Each bit tracks one direction, so one sweep
// propagates 64 directions at once.
type BVec uint64

// Node is one operation in the expression graph.
//
// Evaluation buffers passed to a node are owned by the caller. Every buffer must hold
// exactly the number of nonzeros of the corresponding sparsity pattern (dependency i for
// in[i], the node itself for out[0]); nodes do not re-validate sizes.
type Node interface {
	// Op identifies the concrete operation.
	Op() OpCode

	// Deps returns the dependencies in argument order. The slice must not be modified.
	Deps() []MX

	// Sparsity returns the pattern of the output.
	Sparsity() *sparsity.Pattern

	// WorkSize returns the integer and real scratch space needed by one evaluation.
	WorkSize() (nInt, nReal int)

	// InPlace reports whether the output may share storage with dependency 0.
	InPlace() bool

	// EvalD evaluates the node numerically.
	EvalD(in, out [][]float64, itmp []int, rtmp []float64)

	// EvalSX evaluates the node over symbolic scalars.
	EvalSX(in, out [][]sx.Elem, itmp []int, rtmp []sx.Elem)

	// Propagate moves dependency bits from in to out (fwd) or ORs the bits of out back
	// into in and clears out (!fwd).
	Propagate(in, out [][]BVec, fwd bool)

	// EvalMX builds the output and the forward and adjoint sensitivity graphs.
	EvalMX(s *Sweep) error

	// Generate writes C statements computing res from arg.
	Generate(w io.Writer, arg, res []string, ctx CodeContext) error

	// PrintPart writes the text placed before dependency `part`, or after the last
	// dependency when part == len(Deps()).
	PrintPart(w io.Writer, part int)

	// Clone returns a copy of the node sharing its dependencies.
	Clone() Node
}

// Sweep carries the arguments of one EvalMX call.
//
// All slices hold pointers into the driver's storage, so two entries pointing at the same
// MX address the same slot. FwdSeed[d][i] is the d-th forward seed of dependency i and
// FwdSens[d][0] receives the forward sensitivity of the output. AdjSeed[d][0] is the
// adjoint seed of the output; it is consumed with Take and contributions are added to
// AdjSens[d][i] with AddToSum.
type Sweep struct {
	Self        MX
	Input       []*MX
	Output      []*MX
	FwdSeed     [][]*MX
	FwdSens     [][]*MX
	AdjSeed     [][]*MX
	AdjSens     [][]*MX
	OutputGiven bool
}

// CodeContext is the part of the code generator visible to nodes.
type CodeContext interface {
	// Literal formats a floating point constant.
	Literal(v float64) string
}

// base holds the state shared by all nodes.
type base struct {
	deps []MX
	sp   *sparsity.Pattern
}

// Deps returns the dependencies.
func (b *base) Deps() []MX { return b.deps }

// Sparsity returns the output pattern.
func (b *base) Sparsity() *sparsity.Pattern { return b.sp }

// WorkSize returns no scratch space.
func (b *base) WorkSize() (int, int) { return 0, 0 }

// InPlace returns false.
func (b *base) InPlace() bool { return false }

// sameStorage reports whether two buffers start at the same element.
// Partially overlapping buffers are not detected.
func sameStorage[T any](a, b []T) bool {
	if len(a) == 0 || len(b) == 0 {
		return len(a) == len(b)
	}
	return &a[0] == &b[0]
}
