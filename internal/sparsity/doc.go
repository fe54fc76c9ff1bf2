// Package sparsity describes the nonzero structure of matrix-valued expressions.
//
// A Pattern is stored in compressed column format:
//
//	nrow, ncol  dimensions
//	colind      ncol+1 offsets into row
//	row         row index of every structural nonzero
//
// Nonzeros are ordered column-major, so the k-th nonzero of a pattern is also the k-th
// entry of any value buffer laid out against it. Patterns are immutable once built and are
// shared by pointer between all expressions with the same structure.
//
// Slice describes a start/stop/step range along one axis and is used to address
// sub-regions of a pattern (see Pattern.Sub).
package sparsity
