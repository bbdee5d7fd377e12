package classgen

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/teranos/dynasty/errors"
	"github.com/teranos/dynasty/logger"
)

// Package is a set of source files that are processed together.
type Package struct {
	// Name is the Go package name ("" for explicit file lists)
	Name string
	// Dir is the package directory
	Dir string
	// Files are the package's source files, read from disk
	Files []SourceFile
}

// Load resolves args into packages. Arguments ending in ".go" are taken as
// explicit files and grouped by directory; everything else is a package
// pattern resolved with go/packages from dir. No args means ".".
func Load(dir string, args []string) ([]*Package, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	var patterns, files []string
	for _, arg := range args {
		if strings.HasSuffix(arg, ".go") {
			files = append(files, arg)
		} else {
			patterns = append(patterns, arg)
		}
	}

	var out []*Package
	if len(patterns) > 0 {
		pkgs, err := loadPatterns(dir, patterns)
		if err != nil {
			return nil, err
		}
		out = append(out, pkgs...)
	}
	if len(files) > 0 {
		pkgs, err := loadFiles(dir, files)
		if err != nil {
			return nil, err
		}
		out = append(out, pkgs...)
	}
	return out, nil
}

func loadPatterns(dir string, patterns []string) ([]*Package, error) {
	cfg := &packages.Config{
		Mode:  packages.NeedName | packages.NeedFiles,
		Dir:   dir,
		Tests: false,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load packages %s", strings.Join(patterns, " "))
	}
	if len(pkgs) == 0 {
		return nil, errors.Newf("no packages found for %s", strings.Join(patterns, " "))
	}

	out := make([]*Package, 0, len(pkgs))
	for _, pkg := range pkgs {
		// Missing companion files make packages fail to type check; only
		// listing errors (no such package, bad pattern) are fatal here.
		for _, e := range pkg.Errors {
			if e.Kind == packages.ListError && len(pkg.GoFiles) == 0 {
				return nil, errors.Newf("failed to load %s: %s", pkg.PkgPath, e.Msg)
			}
		}
		if len(pkg.GoFiles) == 0 {
			continue
		}

		p := &Package{Name: pkg.Name, Dir: filepath.Dir(pkg.GoFiles[0])}
		names := append([]string{}, pkg.GoFiles...)
		sort.Strings(names)
		for _, name := range names {
			sf, err := readSource(name)
			if err != nil {
				return nil, err
			}
			p.Files = append(p.Files, sf)
		}
		logger.Debugw("Loaded package", "package", pkg.PkgPath, "files", len(p.Files))
		out = append(out, p)
	}
	return out, nil
}

func loadFiles(dir string, files []string) ([]*Package, error) {
	byDir := map[string]*Package{}
	var dirs []string
	for _, name := range files {
		if !filepath.IsAbs(name) && dir != "" {
			name = filepath.Join(dir, name)
		}
		sf, err := readSource(name)
		if err != nil {
			return nil, err
		}
		d := filepath.Dir(name)
		p, ok := byDir[d]
		if !ok {
			p = &Package{Dir: d}
			byDir[d] = p
			dirs = append(dirs, d)
		}
		p.Files = append(p.Files, sf)
	}

	sort.Strings(dirs)
	out := make([]*Package, len(dirs))
	for i, d := range dirs {
		out[i] = byDir[d]
	}
	return out, nil
}

func readSource(path string) (SourceFile, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return SourceFile{}, errors.Wrapf(err, "failed to read %s", path)
	}
	return SourceFile{Path: path, Src: src}, nil
}
