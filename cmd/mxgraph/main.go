// Package main provides the mxgraph CLI.
//
// It builds a small demonstration graph (reshape, sub-region extraction and elementwise
// arithmetic), then prints the compiled algorithm, the Jacobian structure or the C source
// of the function and its first-order derivatives, or evaluates it on inputs read from a
// matrix archive.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/born-ml/mxgraph/codegen"
	"github.com/born-ml/mxgraph/function"
	"github.com/born-ml/mxgraph/internal/serialization"
	"github.com/born-ml/mxgraph/mx"
	"github.com/born-ml/mxgraph/sparsity"
)

const version = "v0.0.1-dev"

func main() {
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	var err error
	switch cmd {
	case "version":
		fmt.Printf("mxgraph %s\n", version)
	case "print":
		err = printAlgorithm()
	case "jac":
		err = printJacobian()
	case "codegen":
		err = generate()
	case "eval":
		if len(os.Args) < 3 {
			usage()
			os.Exit(2)
		}
		err = eval(os.Args[2])
	default:
		usage()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "mxgraph: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("mxgraph - matrix expression graphs for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  print      Print the demo function and its derivative")
	fmt.Println("  jac        Print the Jacobian sparsity of the demo function")
	fmt.Println("  codegen    Emit C source for the demo function and its derivative")
	fmt.Println("  eval FILE  Evaluate the demo function on inputs x and y from an .mxga archive")
}

// demo builds f(x, y) = reshape(x)[:, 1] * y - y for a 2x3 x and a 3x1 y.
func demo() (*function.Function, error) {
	x := mx.SymbolDense("x", 2, 3)
	y := mx.SymbolDense("y", 3, 1)

	r, err := mx.Reshape(x, sparsity.Dense(3, 2))
	if err != nil {
		return nil, err
	}
	col, err := mx.SubRef(r, sparsity.All(), sparsity.Index(1))
	if err != nil {
		return nil, err
	}
	prod, err := mx.Mul(col, y)
	if err != nil {
		return nil, err
	}
	out, err := mx.Sub(prod, y)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: levelFromEnv()}))
	return function.New("demo", []mx.MX{x, y}, []mx.MX{out}, function.WithLogger(logger))
}

func levelFromEnv() slog.Level {
	if os.Getenv("MXGRAPH_DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

func printAlgorithm() error {
	f, err := demo()
	if err != nil {
		return err
	}
	der, err := f.Derivative(1, 1)
	if err != nil {
		return err
	}
	fmt.Print(f)
	fmt.Println()
	fmt.Print(der)
	return nil
}

func printJacobian() error {
	f, err := demo()
	if err != nil {
		return err
	}
	for i := range f.NumInputs() {
		jac, err := f.JacSparsity(i, 0, function.ModeAuto)
		if err != nil {
			return err
		}
		rows, cols := jac.Triplets()
		fmt.Printf("d out / d %s: %s\n", f.Input(i).Name(), jac)
		for k := range rows {
			fmt.Printf("  (%d, %d)\n", rows[k], cols[k])
		}
	}
	return nil
}

func generate() error {
	f, err := demo()
	if err != nil {
		return err
	}
	der, err := f.Derivative(1, 1)
	if err != nil {
		return err
	}
	g := codegen.New()
	if err := g.Add(f); err != nil {
		return err
	}
	if err := g.Add(der); err != nil {
		return err
	}
	_, err = g.WriteTo(os.Stdout)
	return err
}

func eval(path string) error {
	f, err := demo()
	if err != nil {
		return err
	}
	archive, err := serialization.ReadFile(path)
	if err != nil {
		return err
	}

	args := make([][]float64, f.NumInputs())
	for i := range args {
		in := f.Input(i)
		dm, err := archive.Lookup(in.Name())
		if err != nil {
			return err
		}
		if !dm.Sparsity().Equal(in.Sparsity()) {
			return fmt.Errorf("input %s: archive holds %s, want %s", in.Name(), dm.Sparsity(), in.Sparsity())
		}
		args[i] = dm.Data()
	}

	out, err := f.Eval(args)
	if err != nil {
		return err
	}
	res, err := mx.NewDM(f.OutputSparsity(0), out[0])
	if err != nil {
		return err
	}
	fmt.Println(res)
	return nil
}
