// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package function compiles expression graphs into evaluable functions.
//
// A Function fixes symbolic inputs and output expressions. It evaluates numerically or
// symbolically, propagates dependency bits to find Jacobian structure, and builds new
// Functions computing forward and adjoint directional derivatives.
//
// Example:
//
//	x := mx.SymbolDense("x", 2, 3)
//	y, _ := mx.Reshape(x, sparsity.Dense(3, 2))
//	f, _ := function.New("f", []mx.MX{x}, []mx.MX{y})
//	out, _ := f.Eval([][]float64{{1, 2, 3, 4, 5, 6}})
//
//	der, _ := f.Derivative(0, 1)   // inputs: x, adj0_out0
//	grad, _ := der.Eval([][]float64{{1, 2, 3, 4, 5, 6}, {1, 1, 1, 1, 1, 1}})
package function

import (
	"log/slog"

	"github.com/born-ml/mxgraph/internal/function"
	"github.com/born-ml/mxgraph/internal/parallel"
	"github.com/born-ml/mxgraph/mx"
)

// Function is a compiled expression graph.
type Function = function.Function

// Instruction is one step of a Function's algorithm.
type Instruction = function.Instruction

// Option configures a Function.
type Option = function.Option

// ParallelConfig controls how EvalBatch spreads work over goroutines.
type ParallelConfig = parallel.Config

// SparsityMode selects the propagation direction of JacSparsity.
type SparsityMode = function.SparsityMode

// Propagation modes.
const (
	ModeAuto    = function.ModeAuto
	ModeForward = function.ModeForward
	ModeReverse = function.ModeReverse
)

// Errors returned by Function construction and evaluation.
var (
	ErrNotSymbolic    = function.ErrNotSymbolic
	ErrDuplicateInput = function.ErrDuplicateInput
	ErrFreeSymbol     = function.ErrFreeSymbol
	ErrEmptyOutput    = function.ErrEmptyOutput
	ErrArgCount       = function.ErrArgCount
	ErrArgSize        = function.ErrArgSize
	ErrIndex          = function.ErrIndex
	ErrUnsupported    = function.ErrUnsupported
)

// New creates a function mapping symbolic inputs to outputs.
func New(name string, inputs, outputs []mx.MX, opts ...Option) (*Function, error) {
	return function.New(name, inputs, outputs, opts...)
}

// MustNew is like New but panics on error.
func MustNew(name string, inputs, outputs []mx.MX, opts ...Option) *Function {
	return function.MustNew(name, inputs, outputs, opts...)
}

// DefaultParallelConfig returns a configuration using every CPU.
func DefaultParallelConfig() ParallelConfig { return parallel.DefaultConfig() }

// SequentialConfig returns a configuration without goroutines.
func SequentialConfig() ParallelConfig { return parallel.Sequential() }

// WithInPlace enables or disables in-place evaluation of operations like reshape.
func WithInPlace(enabled bool) Option { return function.WithInPlace(enabled) }

// WithLogger sets the debug logger.
func WithLogger(l *slog.Logger) Option { return function.WithLogger(l) }

// WithParallel sets the EvalBatch configuration.
func WithParallel(cfg ParallelConfig) Option { return function.WithParallel(cfg) }
