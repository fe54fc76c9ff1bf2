package sparsity

import "github.com/pkg/errors"

// Common errors.
var (
	ErrInvalidPattern = errors.New("sparsity: invalid compressed column structure")
	ErrInvalidShape   = errors.New("sparsity: invalid shape")
	ErrInvalidSlice   = errors.New("sparsity: invalid slice")
	ErrOutOfRange     = errors.New("sparsity: index out of range")
)
