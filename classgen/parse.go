package classgen

import (
	"go/ast"
	"go/build/constraint"
	"go/parser"
	"go/token"
	"go/types"
	"path"
	"strconv"
	"strings"
	"unicode"

	"github.com/teranos/dynasty/errors"
)

// directive is one //dynasty:... comment line.
type directive struct {
	verb    string
	arg     string
	comment *ast.Comment
}

// parseDirective recognises "//<prefix>:<verb> [arg]". ok is false for
// ordinary comments.
func parseDirective(prefix string, c *ast.Comment) (directive, bool) {
	text, found := strings.CutPrefix(c.Text, "//"+prefix+":")
	if !found {
		return directive{}, false
	}
	verb, arg := text, ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		verb, arg = text[:i], text[i:]
	}
	return directive{verb: verb, arg: strings.TrimSpace(arg), comment: c}, true
}

// ParseFile parses src and collects its annotated declarations.
// All diagnostics in the file are returned together.
func (g *Generator) ParseFile(filename string, src []byte) (*File, error) {
	file, err := parser.ParseFile(g.fset, filename, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", filename)
	}

	f := &File{
		Path:       filename,
		Package:    file.Name.Name,
		Src:        src,
		AST:        file,
		BuildLines: buildLines(file),
	}

	var diags []error
	consumed := map[*ast.Comment]bool{}

	for _, d := range file.Decls {
		gen, ok := d.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, s := range gen.Specs {
			spec := s.(*ast.TypeSpec)
			doc := spec.Doc
			if doc == nil && !gen.Lparen.IsValid() {
				doc = gen.Doc
			}

			dirs := g.directives(doc)
			if len(dirs) == 0 {
				continue
			}
			for _, dir := range dirs {
				consumed[dir.comment] = true
			}

			decl, err := g.buildDecl(file, spec, dirs)
			if err != nil {
				diags = append(diags, err)
				continue
			}
			f.Decls = append(f.Decls, decl)
		}
	}

	// Directives anywhere else (functions, vars, stray comments) are mistakes.
	for _, group := range file.Comments {
		for _, c := range group.List {
			if consumed[c] {
				continue
			}
			if dir, ok := parseDirective(g.opts.Directive, c); ok {
				diags = append(diags, g.diag(errors.ErrBadDirective, c.Pos(),
					"//%s:%s must directly precede a struct type declaration", g.opts.Directive, dir.verb))
			}
		}
	}

	if len(diags) > 0 {
		return nil, errors.Join(diags...)
	}
	return f, nil
}

// buildLines returns the build constraint lines above the package clause.
func buildLines(file *ast.File) []string {
	var lines []string
	for _, group := range file.Comments {
		if group.Pos() >= file.Package {
			break
		}
		for _, c := range group.List {
			if constraint.IsGoBuild(c.Text) || constraint.IsPlusBuild(c.Text) {
				lines = append(lines, strings.TrimSpace(c.Text))
			}
		}
	}
	return lines
}

func (g *Generator) directives(doc *ast.CommentGroup) []directive {
	if doc == nil {
		return nil
	}
	var out []directive
	for _, c := range doc.List {
		if dir, ok := parseDirective(g.opts.Directive, c); ok {
			out = append(out, dir)
		}
	}
	return out
}

// buildDecl validates one annotated type spec.
func (g *Generator) buildDecl(file *ast.File, spec *ast.TypeSpec, dirs []directive) (*Decl, error) {
	name := spec.Name.Name
	if len(dirs) > 1 {
		return nil, errors.WithHint(
			g.diag(errors.ErrBadDirective, dirs[1].comment.Pos(), "%s has more than one %s directive", name, g.opts.Directive),
			"a type is either a root class or inherits from exactly one parent",
		)
	}
	dir := dirs[0]

	decl := &Decl{
		Name: name,
		Spec: spec,
		Pos:  g.fset.Position(spec.Pos()),
	}

	switch dir.verb {
	case "class":
		if dir.arg != "" {
			return nil, errors.WithHintf(
				g.diag(errors.ErrBadDirective, dir.comment.Pos(), "//%s:class takes no arguments, got %q", g.opts.Directive, dir.arg),
				"use //%s:inherit %s to declare a parent", g.opts.Directive, dir.arg,
			)
		}
		decl.Kind = KindClass
	case "inherit":
		decl.Kind = KindInherit
		parent, err := g.parseParent(dir)
		if err != nil {
			return nil, err
		}
		decl.Parent = parent
		decl.ParentSrc = types.ExprString(parent)
		imports, err := g.parentImports(file, dir, parent)
		if err != nil {
			return nil, err
		}
		decl.Imports = imports
	default:
		return nil, errors.WithHintf(
			g.diag(errors.ErrBadDirective, dir.comment.Pos(), "unknown directive //%s:%s", g.opts.Directive, dir.verb),
			"supported directives are //%[1]s:class and //%[1]s:inherit <Parent>", g.opts.Directive,
		)
	}

	st, err := g.checkShape(spec)
	if err != nil {
		return nil, err
	}
	decl.Struct = st

	if decl.Kind == KindInherit {
		if decl.ParentSrc == name {
			return nil, g.diag(errors.ErrInheritanceCycle, dir.comment.Pos(), "%s cannot inherit from itself", name)
		}
		hasBase, err := g.checkBaseField(decl)
		if err != nil {
			return nil, err
		}
		decl.HasBase = hasBase
	}
	return decl, nil
}

// parseParent parses the inherit argument as a named type expression.
func (g *Generator) parseParent(dir directive) (ast.Expr, error) {
	pos := dir.comment.Pos()
	if dir.arg == "" {
		return nil, errors.WithHintf(
			g.diag(errors.ErrInvalidParent, pos, "//%s:inherit needs a parent type", g.opts.Directive),
			"write //%s:inherit Animal", g.opts.Directive,
		)
	}

	expr, err := parser.ParseExpr(dir.arg)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "%s: cannot parse parent %q", g.fset.Position(pos), dir.arg), errors.ErrInvalidParent)
	}

	switch e := expr.(type) {
	case *ast.StarExpr:
		return nil, errors.WithHintf(
			g.diag(errors.ErrInvalidParent, pos, "parent %s is a pointer type", dir.arg),
			"the parent is embedded by value; use //%s:inherit %s", g.opts.Directive, types.ExprString(e.X),
		)
	case *ast.BasicLit:
		return nil, errors.WithHint(
			g.diag(errors.ErrInvalidParent, pos, "parent %s is a literal, not a type expression", dir.arg),
			"drop the quotes",
		)
	}
	if !isNamedType(expr) {
		return nil, g.diag(errors.ErrInvalidParent, pos, "parent %s is not a named type", dir.arg)
	}
	return expr, nil
}

// isNamedType accepts T, pkg.T and instantiations of those.
func isNamedType(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name != "_"
	case *ast.SelectorExpr:
		_, ok := e.X.(*ast.Ident)
		return ok
	case *ast.IndexExpr:
		return isNamedType(e.X) && isTypeArg(e.Index)
	case *ast.IndexListExpr:
		if !isNamedType(e.X) {
			return false
		}
		for _, idx := range e.Indices {
			if !isTypeArg(idx) {
				return false
			}
		}
		return true
	}
	return false
}

// isTypeArg accepts anything that can appear as a type argument.
func isTypeArg(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return isTypeArg(e.X)
	case *ast.ArrayType:
		return isTypeArg(e.Elt)
	case *ast.MapType:
		return isTypeArg(e.Key) && isTypeArg(e.Value)
	case *ast.ChanType:
		return isTypeArg(e.Value)
	case *ast.FuncType, *ast.InterfaceType, *ast.StructType:
		return true
	}
	return isNamedType(expr)
}

// parentImports resolves the package qualifiers used in parent against the
// file's imports.
func (g *Generator) parentImports(file *ast.File, dir directive, parent ast.Expr) (map[string]*ast.ImportSpec, error) {
	imports := map[string]*ast.ImportSpec{}
	var err error
	ast.Inspect(parent, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok || err != nil {
			return err == nil
		}
		qualifier := sel.X.(*ast.Ident).Name
		spec := findImport(file, qualifier)
		if spec == nil {
			err = errors.WithHintf(
				g.diag(errors.ErrInvalidParent, dir.comment.Pos(), "package %s in parent %s is not imported", qualifier, types.ExprString(parent)),
				"import the parent's package in %s", g.fset.Position(file.Pos()).Filename,
			)
			return false
		}
		imports[importPath(spec)] = spec
		return false
	})
	if err != nil {
		return nil, err
	}
	return imports, nil
}

// findImport returns the import bound to name in file. Without an explicit
// name, the last path element (minus a ".vN" or "go-" decoration) is used.
func findImport(file *ast.File, name string) *ast.ImportSpec {
	for _, spec := range file.Imports {
		if spec.Name != nil {
			if spec.Name.Name == name {
				return spec
			}
			continue
		}
		if guessPackageName(importPath(spec)) == name {
			return spec
		}
	}
	return nil
}

func importPath(spec *ast.ImportSpec) string {
	p, err := strconv.Unquote(spec.Path.Value)
	if err != nil {
		return spec.Path.Value
	}
	return p
}

func guessPackageName(importPath string) string {
	base := path.Base(importPath)
	if isMajorVersion(base) {
		base = path.Base(path.Dir(importPath))
	}
	if i := strings.Index(base, ".v"); i > 0 {
		base = base[:i]
	}
	base = strings.TrimPrefix(base, "go-")
	return strings.ReplaceAll(base, "-", "")
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	_, err := strconv.Atoi(s[1:])
	return err == nil
}

// checkShape rejects everything but a non-generic struct type definition.
func (g *Generator) checkShape(spec *ast.TypeSpec) (*ast.StructType, error) {
	name := spec.Name.Name
	if spec.Assign.IsValid() {
		return nil, errors.WithHint(
			g.diag(errors.ErrUnsupportedShape, spec.Pos(), "%s is a type alias", name),
			"annotate the aliased struct type instead",
		)
	}
	if spec.TypeParams != nil && len(spec.TypeParams.List) > 0 {
		return nil, errors.WithHint(
			g.diag(errors.ErrUnsupportedShape, spec.Pos(), "%s is a generic type", name),
			"class records are per concrete type; define a non-generic struct that embeds the instantiation",
		)
	}
	st, ok := spec.Type.(*ast.StructType)
	if !ok {
		return nil, g.diag(errors.ErrUnsupportedShape, spec.Pos(), "%s is not a struct type (%s)", name, types.ExprString(spec.Type))
	}
	return st, nil
}

// checkBaseField reports whether the base field is already in place and
// rejects any other use of its name.
func (g *Generator) checkBaseField(decl *Decl) (bool, error) {
	base := g.opts.BaseField
	for i, field := range decl.Struct.Fields.List {
		for _, n := range field.Names {
			if n.Name != base {
				continue
			}
			typ := types.ExprString(field.Type)
			if i == 0 && len(field.Names) == 1 && typ == decl.ParentSrc {
				return true, nil
			}
			return false, errors.WithHintf(
				g.diag(errors.ErrBaseConflict, n.Pos(), "%s already declares field %s %s", decl.Name, base, typ),
				"the generator injects `%s %s` as the first field; rename the existing field", base, decl.ParentSrc,
			)
		}
	}
	return false, nil
}

func (g *Generator) diag(sentinel error, pos token.Pos, format string, args ...interface{}) error {
	return errors.Diagnosticf(sentinel, g.fset.Position(pos).String(), format, args...)
}
