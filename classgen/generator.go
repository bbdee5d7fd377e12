package classgen

import (
	"go/ast"
	"go/token"
	"path/filepath"
	"sort"
	"strings"

	"github.com/teranos/dynasty/errors"
	"github.com/teranos/dynasty/logger"
)

// generatedMethods are the methods every companion file declares.
var generatedMethods = []string{"ClassInfo", "AsAny"}

// Generator turns annotated source files into rewritten sources and
// companion files. A Generator is not safe for concurrent use.
type Generator struct {
	opts Options
	fset *token.FileSet
}

// New creates a Generator.
func New(opts Options) *Generator {
	return &Generator{
		opts: opts.withDefaults(),
		fset: token.NewFileSet(),
	}
}

// Options returns the effective options.
func (g *Generator) Options() Options {
	return g.opts
}


// Process handles a single source file in isolation. Cross-file checks
// (cycles, method conflicts in other files) need ProcessPackage.
func (g *Generator) Process(filename string, src []byte) (*Output, error) {
	f, err := g.ParseFile(filename, src)
	if err != nil {
		return nil, err
	}
	if err := g.checkPackage([]*File{f}); err != nil {
		return nil, err
	}
	return g.render(f)
}

// ProcessPackage handles all source files of one package. Companion files
// in files are ignored. Diagnostics from every file are returned together.
func (g *Generator) ProcessPackage(files []SourceFile) ([]*Output, error) {
	var (
		parsed []*File
		diags  []error
	)
	for _, sf := range files {
		if g.IsCompanion(sf.Path) {
			continue
		}
		f, err := g.ParseFile(sf.Path, sf.Src)
		if err != nil {
			diags = append(diags, err)
			continue
		}
		parsed = append(parsed, f)
	}
	if len(diags) > 0 {
		return nil, errors.Join(diags...)
	}

	if err := checkSamePackage(parsed); err != nil {
		return nil, err
	}
	if err := g.checkPackage(parsed); err != nil {
		return nil, err
	}

	siblings := make([]*ast.File, len(parsed))
	for i, f := range parsed {
		siblings[i] = f.AST
	}

	outputs := make([]*Output, 0, len(parsed))
	for _, f := range parsed {
		f.siblings = siblings
		out, err := g.render(f)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

func (g *Generator) render(f *File) (*Output, error) {
	out := &Output{
		Source:    f.Path,
		Package:   f.Package,
		Companion: CompanionPath(f.Path, g.opts.Suffix),
		Decls:     f.Decls,
	}
	if len(f.Decls) == 0 {
		return out, nil
	}

	rewritten, err := g.injectBaseFields(f)
	if err != nil {
		return nil, err
	}
	out.Rewritten = rewritten

	generated, err := g.emitCompanion(f)
	if err != nil {
		return nil, err
	}
	out.Generated = generated

	for _, d := range f.Decls {
		logger.Debugw("Annotated declaration",
			"file", f.Path,
			"type", d.Name,
			"kind", d.Kind.String(),
			"parent", d.ParentSrc,
			"base_present", d.HasBase)
	}
	return out, nil
}

func checkSamePackage(files []*File) error {
	var pkgs []string
	seen := map[string]bool{}
	for _, f := range files {
		// External test packages live next to the package they test.
		if strings.HasSuffix(f.Package, "_test") {
			continue
		}
		if !seen[f.Package] {
			seen[f.Package] = true
			pkgs = append(pkgs, f.Package)
		}
	}
	if len(pkgs) > 1 {
		sort.Strings(pkgs)
		return errors.Newf("files belong to different packages: %s", strings.Join(pkgs, ", "))
	}
	return nil
}

// checkPackage runs the checks that span files: inheritance cycles, duplicate
// annotations and hand-written methods that would collide with generated ones.
func (g *Generator) checkPackage(files []*File) error {
	// An external test package (zoo_test) declares its own types.
	byPkg := map[string][]*File{}
	var pkgs []string
	for _, f := range files {
		if _, seen := byPkg[f.Package]; !seen {
			pkgs = append(pkgs, f.Package)
		}
		byPkg[f.Package] = append(byPkg[f.Package], f)
	}
	sort.Strings(pkgs)

	var diags []error
	for _, pkg := range pkgs {
		diags = append(diags, g.checkDecls(byPkg[pkg])...)
	}
	if len(diags) > 0 {
		return errors.Join(diags...)
	}
	return nil
}

// checkDecls checks files that share one package clause.
func (g *Generator) checkDecls(files []*File) []error {
	decls := map[string]*Decl{}
	var diags []error

	for _, f := range files {
		for _, d := range f.Decls {
			if prev, dup := decls[d.Name]; dup {
				diags = append(diags, errors.Diagnosticf(errors.ErrBadDirective, d.Pos.String(),
					"%s is already annotated at %s", d.Name, prev.Pos))
				continue
			}
			decls[d.Name] = d
		}
	}

	diags = append(diags, g.findCycles(decls)...)

	for _, f := range files {
		diags = append(diags, g.findMethodConflicts(f, decls)...)
	}
	return diags
}

// findCycles reports every annotated type whose local parent chain leads
// back to itself.
func (g *Generator) findCycles(decls map[string]*Decl) []error {
	names := make([]string, 0, len(decls))
	for name := range decls {
		names = append(names, name)
	}
	sort.Strings(names)

	var diags []error
	reported := map[string]bool{}
	for _, name := range names {
		chain := []string{name}
		cur := decls[name]
		for cur.Kind == KindInherit {
			next, local := decls[localName(cur.Parent)]
			if !local {
				break
			}
			chain = append(chain, next.Name)
			if next.Name == name {
				if !reported[name] {
					for _, n := range chain {
						reported[n] = true
					}
					diags = append(diags, errors.Diagnosticf(errors.ErrInheritanceCycle, decls[name].Pos.String(),
						"inheritance cycle: %s", strings.Join(chain, " -> ")))
				}
				break
			}
			if len(chain) > len(decls) {
				// A cycle not through name; it is reported from its own members.
				break
			}
			cur = next
		}
	}
	return diags
}

// localName returns the type name of an unqualified parent expression,
// ignoring type arguments, or "" for qualified parents.
func localName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.IndexExpr:
		return localName(e.X)
	case *ast.IndexListExpr:
		return localName(e.X)
	}
	return ""
}

func (g *Generator) findMethodConflicts(f *File, decls map[string]*Decl) []error {
	var diags []error
	for _, d := range f.AST.Decls {
		fn, ok := d.(*ast.FuncDecl)
		if !ok || fn.Recv == nil || len(fn.Recv.List) == 0 {
			continue
		}
		recv := receiverName(fn.Recv.List[0].Type)
		decl, annotated := decls[recv]
		if !annotated {
			continue
		}
		methods := generatedMethods
		if decl.Kind == KindInherit {
			methods = append(methods[:len(methods):len(methods)], "AsParent")
		}
		for _, m := range methods {
			if fn.Name.Name == m {
				diags = append(diags, errors.WithHintf(
					g.diag(errors.ErrMethodConflict, fn.Pos(), "%s.%s is generated by dynasty", recv, m),
					"remove the hand-written %s method from %s", m, filepath.Base(f.Path),
				))
			}
		}
	}
	return diags
}

func receiverName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return receiverName(e.X)
	case *ast.Ident:
		return e.Name
	case *ast.IndexExpr:
		return receiverName(e.X)
	case *ast.IndexListExpr:
		return receiverName(e.X)
	}
	return ""
}
