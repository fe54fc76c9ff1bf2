// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package sparsity provides compressed-column sparsity patterns and slices.
//
// A Pattern stores the structural nonzeros of a matrix column by column. Nonzeros are
// numbered in column-major order and every buffer evaluated against a pattern holds
// exactly one value per nonzero.
//
// Example:
//
//	import "github.com/born-ml/mxgraph/sparsity"
//
//	func main() {
//	    sp := sparsity.Dense(4, 1)
//	    sub, mapping, _ := sp.Sub(sparsity.Range(1, 3), sparsity.All())
//	    fmt.Println(sub, mapping) // dense 2x1 [1 2]
//	}
package sparsity

import "github.com/born-ml/mxgraph/internal/sparsity"

// Pattern is an immutable compressed-column sparsity pattern.
type Pattern = sparsity.Pattern

// Slice selects indices start, start+step, ... before stop.
type Slice = sparsity.Slice

// End is a Stop value meaning "through the last index".
const End = sparsity.End

// Errors returned by pattern and slice operations.
var (
	ErrInvalidPattern = sparsity.ErrInvalidPattern
	ErrInvalidShape   = sparsity.ErrInvalidShape
	ErrInvalidSlice   = sparsity.ErrInvalidSlice
	ErrOutOfRange     = sparsity.ErrOutOfRange
)

// New validates and creates a pattern from compressed-column arrays.
func New(nrow, ncol int, colind, row []int) (*Pattern, error) {
	return sparsity.New(nrow, ncol, colind, row)
}

// Dense creates a pattern with every entry structurally nonzero.
func Dense(nrow, ncol int) *Pattern { return sparsity.Dense(nrow, ncol) }

// Empty creates a pattern without nonzeros.
func Empty(nrow, ncol int) *Pattern { return sparsity.Empty(nrow, ncol) }

// Scalar creates a dense 1x1 pattern.
func Scalar() *Pattern { return sparsity.Scalar() }

// Diag creates an n x n diagonal pattern.
func Diag(n int) *Pattern { return sparsity.Diag(n) }

// FromTriplets creates a pattern from (row, col) coordinates. Duplicates are merged.
func FromTriplets(nrow, ncol int, rows, cols []int) (*Pattern, error) {
	return sparsity.FromTriplets(nrow, ncol, rows, cols)
}

// All selects every index.
func All() Slice { return sparsity.All() }

// Range selects [start, stop) with step 1.
func Range(start, stop int) Slice { return sparsity.Range(start, stop) }

// Index selects a single index. Negative values count from the end.
func Index(i int) Slice { return sparsity.Index(i) }
