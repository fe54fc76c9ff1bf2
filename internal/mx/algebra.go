package mx

import (
	"fmt"
	"io"
)

// Algebra is the scalar arithmetic used by evaluation routines that are shared between
// numeric and symbolic element types.
type Algebra[T any] interface {
	Zero() T
	Add(a, b T) T
	Sub(a, b T) T
	Mul(a, b T) T
	Neg(a T) T
}

// floatAlgebra implements Algebra[float64].
type floatAlgebra struct{}

func (floatAlgebra) Zero() float64            { return 0 }
func (floatAlgebra) Add(a, b float64) float64 { return a + b }
func (floatAlgebra) Sub(a, b float64) float64 { return a - b }
func (floatAlgebra) Mul(a, b float64) float64 { return a * b }
func (floatAlgebra) Neg(a float64) float64    { return -a }

// stmtWriter writes formatted statements and keeps the first write error.
type stmtWriter struct {
	w   io.Writer
	err error
}

func (s *stmtWriter) printf(format string, args ...any) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format, args...)
}
