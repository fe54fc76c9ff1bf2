// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package mx builds matrix expression graphs.
//
// An MX is a handle to a node of the graph. Leaves are symbols and constants; operations
// such as Reshape and SubRef create new nodes that reference their operands. Graphs are
// immutable and may be shared freely between goroutines.
//
// Example:
//
//	import (
//	    "github.com/born-ml/mxgraph/mx"
//	    "github.com/born-ml/mxgraph/sparsity"
//	)
//
//	func main() {
//	    x := mx.SymbolDense("x", 2, 3)
//	    y, _ := mx.Reshape(x, sparsity.Dense(3, 2))
//	    col, _ := mx.SubRef(y, sparsity.All(), sparsity.Index(1))
//	    fmt.Println(col) // reshape(x)[0:, 1:2]
//	}
package mx

import (
	"github.com/born-ml/mxgraph/internal/mx"
	"github.com/born-ml/mxgraph/internal/sparsity"
	"gonum.org/v1/gonum/mat"
)

// MX is a handle to an expression node. The zero value is the empty expression.
type MX = mx.MX

// Node is the contract every operation implements.
type Node = mx.Node

// BVec is a word of dependency bits.
type BVec = mx.BVec

// Sweep carries the arguments of a graph-level derivative step.
type Sweep = mx.Sweep

// CodeContext formats literals for code generation.
type CodeContext = mx.CodeContext

// OpCode identifies an operation.
type OpCode = mx.OpCode

// Operation codes.
const (
	OpSymbol  = mx.OpSymbol
	OpConst   = mx.OpConst
	OpReshape = mx.OpReshape
	OpSubRef  = mx.OpSubRef
	OpEmbed   = mx.OpEmbed
	OpAdd     = mx.OpAdd
	OpSub     = mx.OpSub
	OpMul     = mx.OpMul
	OpNeg     = mx.OpNeg
)

// DM is a numeric sparse matrix.
type DM = mx.DM

// Errors returned by graph construction.
var (
	ErrNNZMismatch      = mx.ErrNNZMismatch
	ErrSparsityMismatch = mx.ErrSparsityMismatch
	ErrEmptyExpression  = mx.ErrEmptyExpression
	ErrDataSize         = mx.ErrDataSize
	ErrUnsupported      = mx.ErrUnsupported
)

// Symbol creates a free symbol with the given pattern.
func Symbol(name string, sp *sparsity.Pattern) MX { return mx.Symbol(name, sp) }

// SymbolDense creates a dense rows x cols symbol.
func SymbolDense(name string, rows, cols int) MX { return mx.SymbolDense(name, rows, cols) }

// Constant creates a constant node.
func Constant(d DM) MX { return mx.Constant(d) }

// Scalar creates a 1x1 constant.
func Scalar(v float64) MX { return mx.Scalar(v) }

// Zeros creates an all-zero constant with the given pattern.
func Zeros(sp *sparsity.Pattern) MX { return mx.Zeros(sp) }

// NewDM creates a numeric matrix from its nonzeros in column-major order.
func NewDM(sp *sparsity.Pattern, data []float64) (DM, error) { return mx.NewDM(sp, data) }

// FromDense converts a gonum matrix into a dense DM.
func FromDense(m mat.Matrix) DM { return mx.FromDense(m) }

// Reshape reinterprets the nonzeros of x with pattern sp.
func Reshape(x MX, sp *sparsity.Pattern) (MX, error) { return mx.Reshape(x, sp) }

// ReshapeTo reshapes x to rows x cols.
func ReshapeTo(x MX, rows, cols int) (MX, error) { return mx.ReshapeTo(x, rows, cols) }

// SubRef extracts the sub-region of x selected by the row and column slices.
func SubRef(x MX, i, j sparsity.Slice) (MX, error) { return mx.SubRef(x, i, j) }

// Embed places x into the sub-region (i, j) of a zero matrix with pattern sp.
func Embed(x MX, i, j sparsity.Slice, sp *sparsity.Pattern) (MX, error) {
	return mx.Embed(x, i, j, sp)
}

// Add returns a + b.
func Add(a, b MX) (MX, error) { return mx.Add(a, b) }

// Sub returns a - b.
func Sub(a, b MX) (MX, error) { return mx.Sub(a, b) }

// Mul returns the elementwise product of a and b.
func Mul(a, b MX) (MX, error) { return mx.Mul(a, b) }

// Neg returns -x.
func Neg(x MX) MX { return mx.Neg(x) }
