package classgen

import (
	"path/filepath"
	"strings"
)

// knownOS and knownArch are the GOOS and GOARCH values go/build treats as
// implicit constraints in file names (zoo_linux.go, zoo_linux_arm64.go).
var knownOS = map[string]bool{
	"aix": true, "android": true, "darwin": true, "dragonfly": true,
	"freebsd": true, "hurd": true, "illumos": true, "ios": true, "js": true,
	"linux": true, "nacl": true, "netbsd": true, "openbsd": true, "plan9": true,
	"solaris": true, "wasip1": true, "windows": true, "zos": true,
}

var knownArch = map[string]bool{
	"386": true, "amd64": true, "amd64p32": true, "arm": true, "armbe": true,
	"arm64": true, "arm64be": true, "loong64": true, "mips": true, "mipsle": true,
	"mips64": true, "mips64le": true, "mips64p32": true, "mips64p32le": true,
	"ppc": true, "ppc64": true, "ppc64le": true, "riscv": true, "riscv64": true,
	"s390": true, "s390x": true, "sparc": true, "sparc64": true, "wasm": true,
}

// fileName is a Go file name split into the parts that carry meaning to
// the go command: zoo_linux_test.go is {stem: "zoo", osArch: "linux", test: true}.
type fileName struct {
	stem   string
	osArch string
	test   bool
}

func splitFileName(name string) (fileName, bool) {
	base, ok := strings.CutSuffix(name, ".go")
	if !ok {
		return fileName{}, false
	}
	var fn fileName
	base, fn.test = strings.CutSuffix(base, "_test")

	// As in go/build, the first element is never a constraint: linux.go
	// builds everywhere.
	parts := strings.Split(base, "_")
	n := len(parts)
	switch {
	case n >= 3 && knownOS[parts[n-2]] && knownArch[parts[n-1]]:
		fn.osArch = parts[n-2] + "_" + parts[n-1]
		parts = parts[:n-2]
	case n >= 2 && (knownOS[parts[n-1]] || knownArch[parts[n-1]]):
		fn.osArch = parts[n-1]
		parts = parts[:n-1]
	}
	fn.stem = strings.Join(parts, "_")
	return fn, true
}

func (fn fileName) String() string {
	name := fn.stem
	if fn.osArch != "" {
		name += "_" + fn.osArch
	}
	if fn.test {
		name += "_test"
	}
	return name + ".go"
}

// CompanionPath returns the companion file path for a source file. The
// suffix goes before any GOOS/GOARCH or _test element so the companion is
// built under the same conditions as its source:
// zoo.go -> zoo_dynasty.go, zoo_linux_test.go -> zoo_dynasty_linux_test.go.
func CompanionPath(source, suffix string) string {
	dir, name := filepath.Split(source)
	fn, ok := splitFileName(name)
	if !ok {
		return source + suffix
	}
	fn.stem += strings.TrimSuffix(suffix, ".go")
	return dir + fn.String()
}

// companionSource returns the source a companion name belongs to.
func companionSource(companion, suffix string) (string, bool) {
	dir, name := filepath.Split(companion)
	fn, ok := splitFileName(name)
	if !ok {
		return "", false
	}
	stem, ok := strings.CutSuffix(fn.stem, strings.TrimSuffix(suffix, ".go"))
	if !ok || stem == "" {
		return "", false
	}
	fn.stem = stem
	return dir + fn.String(), true
}

// IsCompanion reports whether path names a companion file.
func (g *Generator) IsCompanion(path string) bool {
	_, ok := companionSource(path, g.opts.Suffix)
	return ok
}

// SourcePath is the inverse of CompanionPath. It returns companion
// unchanged if it is not a companion name.
func (g *Generator) SourcePath(companion string) string {
	source, ok := companionSource(companion, g.opts.Suffix)
	if !ok {
		return companion
	}
	return source
}
