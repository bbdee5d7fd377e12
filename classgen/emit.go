package classgen

import (
	"fmt"
	"go/ast"
	"go/format"
	"path"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/teranos/dynasty/errors"
)

// HeaderPrefix starts the first line of every companion file.
const HeaderPrefix = "// Code generated by dynasty v"

const headerSuffix = ". DO NOT EDIT."

// emitCompanion renders the companion file for f.
func (g *Generator) emitCompanion(f *File) ([]byte, error) {
	if len(f.Decls) == 0 {
		return nil, nil
	}

	runtimeName := g.runtimeName(f)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s%s%s\n", HeaderPrefix, g.opts.Version, headerSuffix)
	fmt.Fprintf(&sb, "// Source: %s\n\n", path.Base(toSlash(f.Path)))
	if len(f.BuildLines) > 0 {
		sb.WriteString(strings.Join(f.BuildLines, "\n") + "\n\n")
	}
	fmt.Fprintf(&sb, "package %s\n\n", f.Package)

	sb.WriteString("import (\n")
	for _, imp := range g.companionImports(f, runtimeName) {
		sb.WriteString("\t" + imp + "\n")
	}
	sb.WriteString(")\n")

	for _, d := range f.Decls {
		sb.WriteString("\n")
		g.emitDecl(&sb, d, runtimeName)
	}

	out, err := format.Source([]byte(sb.String()))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to format companion of %s", f.Path)
	}
	return out, nil
}

func (g *Generator) emitDecl(sb *strings.Builder, d *Decl, rt string) {
	handle := handleName(d.Name)

	if d.Kind == KindInherit {
		fmt.Fprintf(sb, "var %s = %s.Derive[%s, %s](%q)\n\n", handle, rt, d.Name, d.ParentSrc, d.Name)
	} else {
		fmt.Fprintf(sb, "var %s = %s.Define[%s](%q)\n\n", handle, rt, d.Name, d.Name)
	}

	fmt.Fprintf(sb, "// ClassInfo returns the class record of %s.\n", d.Name)
	fmt.Fprintf(sb, "func (*%s) ClassInfo() *%s.Info { return %s.Info() }\n\n", d.Name, rt, handle)

	fmt.Fprintf(sb, "// AsAny exposes x for downcasting with %s.As.\n", rt)
	fmt.Fprintf(sb, "func (x *%s) AsAny() any { return x }\n", d.Name)

	if d.Kind == KindInherit {
		fmt.Fprintf(sb, "\n// AsParent returns the embedded %s.\n", d.ParentSrc)
		fmt.Fprintf(sb, "func (x *%s) AsParent() *%s { return &x.%s }\n", d.Name, d.ParentSrc, g.opts.BaseField)
	}
}

// companionImports returns sorted import lines: the runtime package plus
// whatever the parents reference.
func (g *Generator) companionImports(f *File, runtimeName string) []string {
	lines := map[string]string{}

	rt := strconv.Quote(g.opts.RuntimeImport)
	if runtimeName != path.Base(g.opts.RuntimeImport) {
		rt = runtimeName + " " + rt
	}
	lines[g.opts.RuntimeImport] = rt

	for _, d := range f.Decls {
		for p, spec := range d.Imports {
			line := strconv.Quote(p)
			if spec.Name != nil {
				line = spec.Name.Name + " " + line
			}
			lines[p] = line
		}
	}

	paths := make([]string, 0, len(lines))
	for p := range lines {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = lines[p]
	}
	return out
}

// runtimeName picks the identifier for the runtime import, aliasing it when
// the package itself or a parent qualifier already uses the name.
func (g *Generator) runtimeName(f *File) string {
	name := path.Base(g.opts.RuntimeImport)
	if f.Package == name || usesQualifier(f, name) {
		return "dynasty" + name
	}
	files := f.siblings
	if len(files) == 0 {
		files = []*ast.File{f.AST}
	}
	for _, file := range files {
		if declaresTopLevel(file, name) {
			return "dynasty" + name
		}
	}
	return name
}

func usesQualifier(f *File, name string) bool {
	for _, d := range f.Decls {
		for _, spec := range d.Imports {
			if spec.Name != nil && spec.Name.Name == name || spec.Name == nil && guessPackageName(importPath(spec)) == name {
				return true
			}
		}
	}
	return false
}

func declaresTopLevel(file *ast.File, name string) bool {
	for _, d := range file.Decls {
		switch decl := d.(type) {
		case *ast.FuncDecl:
			if decl.Recv == nil && decl.Name.Name == name {
				return true
			}
		case *ast.GenDecl:
			for _, s := range decl.Specs {
				switch spec := s.(type) {
				case *ast.TypeSpec:
					if spec.Name.Name == name {
						return true
					}
				case *ast.ValueSpec:
					for _, n := range spec.Names {
						if n.Name == name {
							return true
						}
					}
				}
			}
		}
	}
	return false
}

// handleName is the package variable holding a type's class handle,
// e.g. Dog -> dynastyDogClass.
func handleName(typeName string) string {
	r := []rune(typeName)
	r[0] = unicode.ToUpper(r[0])
	return "dynasty" + string(r) + "Class"
}


// ParseHeaderVersion extracts the generator version from a companion
// file's first line.
func ParseHeaderVersion(content []byte) (string, bool) {
	line, _, _ := strings.Cut(string(content), "\n")
	rest, ok := strings.CutPrefix(line, HeaderPrefix)
	if !ok {
		return "", false
	}
	v, ok := strings.CutSuffix(strings.TrimSpace(rest), headerSuffix)
	return v, ok && v != ""
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
