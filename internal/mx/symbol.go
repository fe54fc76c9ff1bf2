package mx

import (
	"io"

	"github.com/born-ml/mxgraph/internal/sparsity"
	"github.com/born-ml/mxgraph/internal/sx"
)

// symbol is a free matrix variable. Its values are supplied by the driver, which writes
// them into the symbol's output buffer before the sweep.
type symbol struct {
	base
	name string
}

// Symbol creates a free matrix symbol with the given pattern.
func Symbol(name string, sp *sparsity.Pattern) MX {
	return MX{&symbol{base: base{sp: sp}, name: name}}
}

// SymbolDense creates a dense rows x cols symbol.
func SymbolDense(name string, rows, cols int) MX {
	return Symbol(name, sparsity.Dense(rows, cols))
}

func (s *symbol) Op() OpCode { return OpSymbol }

func (s *symbol) EvalD(_, _ [][]float64, _ []int, _ []float64) {}

func (s *symbol) EvalSX(_, _ [][]sx.Elem, _ []int, _ []sx.Elem) {}

func (s *symbol) Propagate(_, _ [][]BVec, _ bool) {}

func (s *symbol) EvalMX(sw *Sweep) error {
	if !sw.OutputGiven {
		*sw.Output[0] = sw.Self
	}
	return nil
}

func (s *symbol) Generate(_ io.Writer, _, _ []string, _ CodeContext) error { return nil }

func (s *symbol) PrintPart(w io.Writer, _ int) {
	_, _ = io.WriteString(w, s.name)
}

func (s *symbol) Clone() Node {
	c := *s
	return &c
}
