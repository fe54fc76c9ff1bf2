// Package codegen emits C source for compiled expression graphs.
//
// Every Function added to a Generator becomes one C function
//
//	int name(const double** arg, double** res)
//
// with one local work array per work slot of the Function. Input nonzeros are copied into
// the work arrays of the symbols, each instruction contributes the statements produced by
// its node, and the output slots are copied into res. Loops are fully unrolled.
package codegen

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/born-ml/mxgraph/internal/function"
	"github.com/pkg/errors"
)

// Common errors.
var (
	ErrInvalidName       = errors.New("codegen: function name is not a C identifier")
	ErrDuplicateFunction = errors.New("codegen: function already added")
)

// Option configures a Generator.
type Option func(*config)

type config struct {
	realType string
	indent   string
}

// WithRealType sets the C type of the floating point arguments and work arrays.
// Default is "double".
func WithRealType(t string) Option {
	return func(c *config) {
		if t != "" {
			c.realType = t
		}
	}
}

// WithIndent sets the number of spaces per indentation level. Default is 2.
func WithIndent(spaces int) Option {
	return func(c *config) {
		if spaces >= 0 {
			c.indent = strings.Repeat(" ", spaces)
		}
	}
}

// Generator accumulates C functions.
type Generator struct {
	cfg   config
	names map[string]struct{}
	body  bytes.Buffer
}

// New creates an empty generator.
func New(opts ...Option) *Generator {
	cfg := config{realType: "double", indent: "  "}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Generator{cfg: cfg, names: make(map[string]struct{})}
}

// Literal formats v as a C constant with round-trip precision.
func (g *Generator) Literal(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NAN"
	case math.IsInf(v, 1):
		return "INFINITY"
	case math.IsInf(v, -1):
		return "-INFINITY"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Add emits the C function for f.
func (g *Generator) Add(f *function.Function) error {
	name := f.Name()
	if !isIdentifier(name) {
		return errors.Wrapf(ErrInvalidName, "%q", name)
	}
	if _, ok := g.names[name]; ok {
		return errors.Wrapf(ErrDuplicateFunction, "%q", name)
	}

	var fn bytes.Buffer
	in := g.cfg.indent
	realT := g.cfg.realType

	fmt.Fprintf(&fn, "/* %s: %d inputs, %d outputs */\n", name, f.NumInputs(), f.NumOutputs())
	fmt.Fprintf(&fn, "int %s(const %s** arg, %s** res) {\n", name, realT, realT)
	for i := range f.NumSlots() {
		// C forbids zero-length arrays.
		fmt.Fprintf(&fn, "%s%s w%d[%d];\n", in, realT, i, max(f.SlotSize(i), 1))
	}

	var stmts bytes.Buffer
	for k, ins := range f.Instructions() {
		res := slotName(ins.Res)
		if ins.Input >= 0 {
			for nz := range f.SlotSize(ins.Res) {
				fmt.Fprintf(&stmts, "%s[%d] = arg[%d][%d];\n", res, nz, ins.Input, nz)
			}
			continue
		}
		args := make([]string, len(ins.Arg))
		for a, slot := range ins.Arg {
			args[a] = slotName(slot)
		}
		if err := ins.Node.Generate(&stmts, args, []string{res}, g); err != nil {
			return errors.Wrapf(err, "%s: instruction %d (%s)", name, k, ins.Node.Op())
		}
	}
	for j := range f.NumOutputs() {
		slot := slotName(f.OutputSlot(j))
		for nz := range f.OutputSparsity(j).NNZ() {
			fmt.Fprintf(&stmts, "res[%d][%d] = %s[%d];\n", j, nz, slot, nz)
		}
	}
	if err := reindent(&fn, &stmts, in); err != nil {
		return err
	}
	fmt.Fprintf(&fn, "%sreturn 0;\n}\n\n", in)

	g.names[name] = struct{}{}
	g.body.Write(fn.Bytes())
	return nil
}

// Source returns the complete C translation unit.
func (g *Generator) Source() string {
	var b strings.Builder
	b.WriteString("/* Generated by mxgraph. Do not edit. */\n")
	b.WriteString("#include <math.h>\n\n")
	b.Write(g.body.Bytes())
	return b.String()
}

// WriteTo writes Source to w.
func (g *Generator) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, g.Source())
	return int64(n), err
}

func slotName(slot int) string { return "w" + strconv.Itoa(slot) }

// reindent copies statements from src to dst, replacing the leading whitespace of every
// line with indent.
func reindent(dst io.Writer, src io.Reader, indent string) error {
	sc := bufio.NewScanner(src)
	for sc.Scan() {
		line := strings.TrimLeft(sc.Text(), " \t")
		if line == "" {
			continue
		}
		if _, err := fmt.Fprintf(dst, "%s%s\n", indent, line); err != nil {
			return err
		}
	}
	return sc.Err()
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
