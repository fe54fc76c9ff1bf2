// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package sx provides symbolic scalar expressions.
//
// Elem is the element type of symbolic evaluation: a Function evaluated with EvalSX maps
// slices of Elem through the same graph it evaluates numerically.
package sx

import "github.com/born-ml/mxgraph/internal/sx"

// Elem is a symbolic scalar. The zero value is the constant 0.
type Elem = sx.Elem

// ErrUnboundSymbol is returned by Elem.Eval for a symbol missing from the environment.
var ErrUnboundSymbol = sx.ErrUnboundSymbol

// Sym creates a named scalar symbol.
func Sym(name string) Elem { return sx.Sym(name) }

// Symbols creates n symbols named prefix_0 ... prefix_{n-1}.
func Symbols(prefix string, n int) []Elem { return sx.Symbols(prefix, n) }

// Const creates a constant.
func Const(v float64) Elem { return sx.Const(v) }

// Add returns a + b.
func Add(a, b Elem) Elem { return sx.Add(a, b) }

// Sub returns a - b.
func Sub(a, b Elem) Elem { return sx.Sub(a, b) }

// Mul returns a * b.
func Mul(a, b Elem) Elem { return sx.Mul(a, b) }

// Neg returns -a.
func Neg(a Elem) Elem { return sx.Neg(a) }
