package mx

import "github.com/pkg/errors"

// Common errors.
var (
	ErrNNZMismatch      = errors.New("mx: number of nonzeros mismatch")
	ErrSparsityMismatch = errors.New("mx: sparsity pattern mismatch")
	ErrEmptyExpression  = errors.New("mx: empty expression")
	ErrDataSize         = errors.New("mx: data length does not match sparsity")
	ErrUnsupported      = errors.New("mx: operation not supported")
)
