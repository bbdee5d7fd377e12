// Package classgen is the dynasty code generator.
//
// # Directives
//
// A struct type declaration opts in with a directive comment directly above
// it, written without a space after the slashes like other Go directives:
//
//	//dynasty:class
//	type Animal struct {
//	    Name string
//	}
//
//	//dynasty:inherit Animal
//	type Dog struct {
//	    Breed string
//	}
//
// # Output
//
// For every source file containing directives the generator
//  1. splices an unexported `base Animal` field into each inheriting struct,
//     always as the first field, and rewrites the source file in place;
//  2. writes a companion file (zoo.go -> zoo_dynasty.go) implementing
//     class.Class for every annotated type and class.Inherits[P] for
//     inheriting ones.
//
// Running the generator again is a no-op: an existing `base` field of the
// right type in first position is left alone.
//
// # Design Decisions
//
//   - Source rewriting splices text at the struct's opening brace and then
//     gofmts the file, so comments and layout elsewhere are untouched.
//   - Unsupported shapes (aliases, generic or non-struct types) are
//     rejected with a positioned diagnostic instead of being skipped.
//   - Parents must be named types: `Animal`, `zoo.Animal`, `Box[int]`.
//     Pointers are rejected because the base is embedded by value.
//   - Output is deterministic (declaration order) so `dynasty check` can
//     compare it byte for byte.
package classgen

import (
	"go/ast"
	"go/token"

	"github.com/teranos/dynasty/config"
	"github.com/teranos/dynasty/version"
)

// Options configures a Generator. Zero fields take the config defaults.
type Options struct {
	// Directive is the comment prefix ("dynasty" for //dynasty:class)
	Directive string
	// BaseField is the injected field name
	BaseField string
	// Suffix names companion files: zoo.go -> zoo + Suffix
	Suffix string
	// RuntimeImport is the import path of the class runtime package
	RuntimeImport string
	// Version is written into companion headers
	Version string
}

// OptionsFromConfig maps loaded configuration onto generator options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Directive:     cfg.Generate.Directive,
		BaseField:     cfg.Generate.BaseField,
		Suffix:        cfg.Generate.Suffix,
		RuntimeImport: cfg.Generate.RuntimeImport,
	}
}

func (o Options) withDefaults() Options {
	if o.Directive == "" {
		o.Directive = config.DefaultDirective
	}
	if o.BaseField == "" {
		o.BaseField = config.DefaultBaseField
	}
	if o.Suffix == "" {
		o.Suffix = config.DefaultSuffix
	}
	if o.RuntimeImport == "" {
		o.RuntimeImport = config.DefaultRuntimeImport
	}
	if o.Version == "" {
		o.Version = version.Version
	}
	return o
}

// Kind distinguishes the two directives.
type Kind int

const (
	// KindClass is a root class (//dynasty:class)
	KindClass Kind = iota
	// KindInherit is a class with a declared parent (//dynasty:inherit P)
	KindInherit
)

func (k Kind) String() string {
	if k == KindInherit {
		return "inherit"
	}
	return "class"
}

// Decl is one annotated type declaration.
type Decl struct {
	Name string
	Kind Kind

	// Parent is the parent type expression (KindInherit only)
	Parent ast.Expr
	// ParentSrc is Parent rendered as Go source, e.g. "zoo.Animal"
	ParentSrc string
	// Imports are the import specs Parent needs, keyed by path
	Imports map[string]*ast.ImportSpec

	// HasBase reports the base field is already present in first position
	HasBase bool

	Spec   *ast.TypeSpec
	Struct *ast.StructType
	Pos    token.Position
}

// File is a parsed source file and its annotated declarations.
type File struct {
	Path    string
	Package string
	Src     []byte
	AST     *ast.File
	Decls   []*Decl

	// BuildLines are the //go:build (and legacy // +build) lines of the
	// file, copied into its companion
	BuildLines []string

	// siblings are all files of the package, for package-scope checks
	siblings []*ast.File
}

// SourceFile is a file handed to ProcessPackage.
type SourceFile struct {
	Path string
	Src  []byte
}

// Output is the result of processing one source file.
type Output struct {
	// Source is the path of the processed file
	Source string
	// Package is the package clause of Source
	Package string
	// Rewritten is the new source content, nil when no field was injected
	Rewritten []byte
	// Companion is the path of the companion file for Source
	Companion string
	// Generated is the companion content, nil when Source has no directives
	Generated []byte
	// Decls are the annotated declarations found in Source
	Decls []*Decl
}

// Changed reports whether the source file needs to be rewritten.
func (o *Output) Changed() bool {
	return o.Rewritten != nil
}
