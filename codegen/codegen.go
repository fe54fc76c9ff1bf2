// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package codegen emits C source code for compiled functions.
//
// Example:
//
//	g := codegen.New(codegen.WithRealType("double"))
//	if err := g.Add(f); err != nil {
//	    return err
//	}
//	os.WriteFile("f.c", []byte(g.Source()), 0o644)
package codegen

import "github.com/born-ml/mxgraph/internal/codegen"

// Generator accumulates C functions.
type Generator = codegen.Generator

// Option configures a Generator.
type Option = codegen.Option

// Errors returned by Generator.Add.
var (
	ErrInvalidName       = codegen.ErrInvalidName
	ErrDuplicateFunction = codegen.ErrDuplicateFunction
)

// New creates an empty generator.
func New(opts ...Option) *Generator { return codegen.New(opts...) }

// WithRealType sets the C floating point type.
func WithRealType(t string) Option { return codegen.WithRealType(t) }

// WithIndent sets the indentation width in spaces.
func WithIndent(spaces int) Option { return codegen.WithIndent(spaces) }
