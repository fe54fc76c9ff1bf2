// Package sx implements symbolic scalar elements.
//
// An Elem is an immutable scalar expression built from named symbols, constants and the
// arithmetic operations needed by matrix expression evaluation. The zero Elem is the
// constant 0, so freshly allocated []Elem buffers behave like zeroed numeric buffers.
package sx

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// ErrUnboundSymbol is returned by Eval when a symbol has no value in the environment.
var ErrUnboundSymbol = errors.New("sx: unbound symbol")

type kind uint8

const (
	kindConst kind = iota
	kindSym
	kindNeg
	kindAdd
	kindSub
	kindMul
)

type expr struct {
	kind  kind
	name  string
	value float64
	a, b  *expr
}

// Elem is a symbolic scalar.
type Elem struct {
	e *expr
}

// Sym creates a named symbol.
func Sym(name string) Elem {
	return Elem{&expr{kind: kindSym, name: name}}
}

// Symbols creates n symbols named prefix_0 ... prefix_{n-1}.
func Symbols(prefix string, n int) []Elem {
	out := make([]Elem, n)
	for i := range out {
		out[i] = Sym(fmt.Sprintf("%s_%d", prefix, i))
	}
	return out
}

// Const creates a constant.
func Const(v float64) Elem {
	if v == 0 {
		return Elem{}
	}
	return Elem{&expr{kind: kindConst, value: v}}
}

// Zero returns the constant 0.
func Zero() Elem { return Elem{} }

// IsConst reports whether e is a constant.
func (e Elem) IsConst() bool { return e.e == nil || e.e.kind == kindConst }

// IsZero reports whether e is the constant 0.
func (e Elem) IsZero() bool { return e.IsConst() && e.Value() == 0 }

// IsSymbol reports whether e is a free symbol.
func (e Elem) IsSymbol() bool { return e.e != nil && e.e.kind == kindSym }

// Name returns the name of a symbol, or "" for any other element.
func (e Elem) Name() string {
	if e.IsSymbol() {
		return e.e.name
	}
	return ""
}

// Value returns the value of a constant, or 0 for any other element.
func (e Elem) Value() float64 {
	if e.e == nil || e.e.kind != kindConst {
		return 0
	}
	return e.e.value
}

// Identical reports whether a and b are the same expression node or equal constants.
func Identical(a, b Elem) bool {
	if a.e == b.e {
		return true
	}
	if a.IsConst() && b.IsConst() {
		return a.Value() == b.Value()
	}
	if a.IsSymbol() && b.IsSymbol() {
		return a.e.name == b.e.name
	}
	return false
}

// Neg returns -a.
func Neg(a Elem) Elem {
	switch {
	case a.IsConst():
		return Const(-a.Value())
	case a.e.kind == kindNeg:
		return Elem{a.e.a}
	}
	return Elem{&expr{kind: kindNeg, a: a.e}}
}

// Add returns a+b.
func Add(a, b Elem) Elem {
	switch {
	case a.IsConst() && b.IsConst():
		return Const(a.Value() + b.Value())
	case a.IsZero():
		return b
	case b.IsZero():
		return a
	}
	return Elem{&expr{kind: kindAdd, a: a.e, b: b.e}}
}

// Sub returns a-b.
func Sub(a, b Elem) Elem {
	switch {
	case a.IsConst() && b.IsConst():
		return Const(a.Value() - b.Value())
	case b.IsZero():
		return a
	case a.IsZero():
		return Neg(b)
	case Identical(a, b):
		return Zero()
	}
	return Elem{&expr{kind: kindSub, a: a.e, b: b.e}}
}

// Mul returns a*b. A zero operand folds the product to 0, even where the other
// operand would evaluate to Inf or NaN.
func Mul(a, b Elem) Elem {
	switch {
	case a.IsConst() && b.IsConst():
		return Const(a.Value() * b.Value())
	case a.IsZero() || b.IsZero():
		return Zero()
	case a.IsConst() && a.Value() == 1:
		return b
	case b.IsConst() && b.Value() == 1:
		return a
	}
	return Elem{&expr{kind: kindMul, a: a.e, b: b.e}}
}

// Eval computes the numeric value of e with symbols bound from env.
func (e Elem) Eval(env map[string]float64) (float64, error) {
	return eval(e.e, env)
}

func eval(x *expr, env map[string]float64) (float64, error) {
	if x == nil {
		return 0, nil
	}
	switch x.kind {
	case kindConst:
		return x.value, nil
	case kindSym:
		v, ok := env[x.name]
		if !ok {
			return 0, errors.Wrapf(ErrUnboundSymbol, "%q", x.name)
		}
		return v, nil
	case kindNeg:
		a, err := eval(x.a, env)
		return -a, err
	}

	a, err := eval(x.a, env)
	if err != nil {
		return 0, err
	}
	b, err := eval(x.b, env)
	if err != nil {
		return 0, err
	}
	switch x.kind {
	case kindAdd:
		return a + b, nil
	case kindSub:
		return a - b, nil
	case kindMul:
		return a * b, nil
	}
	return 0, errors.Errorf("sx: unknown expression kind %d", x.kind)
}

// String renders e with full parenthesization of compound terms.
func (e Elem) String() string {
	return format(e.e)
}

func format(x *expr) string {
	if x == nil {
		return "0"
	}
	switch x.kind {
	case kindConst:
		if x.value < 0 {
			return "(" + strconv.FormatFloat(x.value, 'g', -1, 64) + ")"
		}
		return strconv.FormatFloat(x.value, 'g', -1, 64)
	case kindSym:
		return x.name
	case kindNeg:
		return "(-" + format(x.a) + ")"
	case kindAdd:
		return "(" + format(x.a) + "+" + format(x.b) + ")"
	case kindSub:
		return "(" + format(x.a) + "-" + format(x.b) + ")"
	case kindMul:
		return "(" + format(x.a) + "*" + format(x.b) + ")"
	}
	return "?"
}
