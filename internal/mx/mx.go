package mx

import (
	"strings"

	"github.com/born-ml/mxgraph/internal/sparsity"
	"github.com/pkg/errors"
)

// MX is a handle to an expression node. Handles are cheap to copy and share the node they
// point to; the zero MX is the empty expression, used as the neutral value of adjoint
// accumulation.
type MX struct {
	node Node
}

// FromNode wraps a node in a handle.
func FromNode(n Node) MX {
	return MX{node: n}
}

// Node returns the underlying node, or nil for the empty expression.
func (m MX) Node() Node { return m.node }

// IsEmpty reports whether m is the empty expression.
func (m MX) IsEmpty() bool { return m.node == nil }

// Same reports whether m and other point at the same node.
func (m MX) Same(other MX) bool { return m.node == other.node }

// Op returns the operation of the node.
func (m MX) Op() OpCode {
	if m.node == nil {
		return -1
	}
	return m.node.Op()
}

// Sparsity returns the output pattern. The empty expression has a 0x0 pattern.
func (m MX) Sparsity() *sparsity.Pattern {
	if m.node == nil {
		return sparsity.Empty(0, 0)
	}
	return m.node.Sparsity()
}

// NNZ returns the number of structural nonzeros.
func (m MX) NNZ() int { return m.Sparsity().NNZ() }

// Rows returns the number of rows.
func (m MX) Rows() int { return m.Sparsity().Rows() }

// Cols returns the number of columns.
func (m MX) Cols() int { return m.Sparsity().Cols() }

// NumDeps returns the number of dependencies.
func (m MX) NumDeps() int {
	if m.node == nil {
		return 0
	}
	return len(m.node.Deps())
}

// Dep returns dependency i.
func (m MX) Dep(i int) MX {
	return m.node.Deps()[i]
}

// IsSymbolic reports whether m is a free symbol.
func (m MX) IsSymbolic() bool { return m.Op() == OpSymbol }

// IsConstant reports whether m is a numeric constant.
func (m MX) IsConstant() bool { return m.Op() == OpConst }

// IsZero reports whether m is a constant whose nonzeros are all zero.
func (m MX) IsZero() bool {
	c, ok := m.node.(*constant)
	return ok && c.value.isZero()
}

// Name returns the name of a symbol, or "" for other expressions.
func (m MX) Name() string {
	if s, ok := m.node.(*symbol); ok {
		return s.name
	}
	return ""
}

// Take returns the current value of m and resets m to the empty expression.
func (m *MX) Take() MX {
	v := *m
	*m = MX{}
	return v
}

// AddToSum adds x to the accumulated value in m. An empty m takes x as is and an empty
// x leaves m unchanged.
func (m *MX) AddToSum(x MX) error {
	switch {
	case x.IsEmpty():
		return nil
	case m.IsEmpty():
		*m = x
		return nil
	}
	sum, err := Add(*m, x)
	if err != nil {
		return errors.WithMessage(err, "accumulating sensitivity")
	}
	*m = sum
	return nil
}

// DependsOn reports whether arg is reachable from m.
func (m MX) DependsOn(arg MX) bool {
	if m.IsEmpty() || arg.IsEmpty() {
		return false
	}
	visited := make(map[Node]struct{})
	stack := []Node{m.node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == arg.node {
			return true
		}
		if _, ok := visited[n]; ok {
			continue
		}
		visited[n] = struct{}{}
		for _, d := range n.Deps() {
			stack = append(stack, d.node)
		}
	}
	return false
}

// String renders the expression by interleaving each node's printed parts with the
// rendering of its dependencies.
func (m MX) String() string {
	var b strings.Builder
	printExpr(&b, m)
	return b.String()
}

func printExpr(b *strings.Builder, m MX) {
	if m.node == nil {
		b.WriteString("<empty>")
		return
	}
	deps := m.node.Deps()
	for i, d := range deps {
		m.node.PrintPart(b, i)
		printExpr(b, d)
	}
	m.node.PrintPart(b, len(deps))
}
