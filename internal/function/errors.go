package function

import "github.com/pkg/errors"

// Common errors.
var (
	ErrNotSymbolic    = errors.New("function: input is not a symbolic expression")
	ErrDuplicateInput = errors.New("function: input appears more than once")
	ErrFreeSymbol     = errors.New("function: output depends on a symbol that is not an input")
	ErrEmptyOutput    = errors.New("function: output is the empty expression")
	ErrArgCount       = errors.New("function: wrong number of arguments")
	ErrArgSize        = errors.New("function: argument size does not match sparsity")
	ErrIndex          = errors.New("function: input or output index out of range")
	ErrUnsupported    = errors.New("function: differentiation not supported")
)
