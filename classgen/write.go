package classgen

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"

	"github.com/teranos/dynasty/errors"
	"github.com/teranos/dynasty/logger"
)

// WriteResult lists what Write changed on disk.
type WriteResult struct {
	Rewritten []string
	Written   []string
	Unchanged []string
	Removed   []string
	Stale     []string
}

// Write applies outputs to disk. Companion files are only rewritten when
// their content differs. Stale companions (their source has no directives
// or no longer exists) are removed when clean is set and listed otherwise.
func (g *Generator) Write(outputs []*Output, clean bool) (*WriteResult, error) {
	res := &WriteResult{}

	for _, out := range outputs {
		if out.Rewritten != nil {
			if err := writeFileKeepMode(out.Source, out.Rewritten); err != nil {
				return res, err
			}
			res.Rewritten = append(res.Rewritten, out.Source)
			logger.Infow("Injected base fields", "file", out.Source)
		}

		if out.Generated == nil {
			continue
		}
		existing, err := os.ReadFile(out.Companion)
		if err == nil && bytes.Equal(existing, out.Generated) {
			res.Unchanged = append(res.Unchanged, out.Companion)
			continue
		}
		if err := os.WriteFile(out.Companion, out.Generated, 0644); err != nil {
			return res, errors.Wrapf(err, "failed to write %s", out.Companion)
		}
		res.Written = append(res.Written, out.Companion)
		logger.Infow("Generated companion file", "file", out.Companion, "classes", len(out.Decls))
	}

	stale, err := g.StaleCompanions(outputs)
	if err != nil {
		return res, err
	}
	for _, path := range stale {
		if !clean {
			res.Stale = append(res.Stale, path)
			logger.Warnw("Stale companion file", "file", path)
			continue
		}
		if err := os.Remove(path); err != nil {
			return res, errors.Wrapf(err, "failed to remove stale %s", path)
		}
		res.Removed = append(res.Removed, path)
		logger.Infow("Removed stale companion file", "file", path)
	}
	return res, nil
}

// StaleCompanions returns companion files, in the directories of outputs,
// whose source was processed without directives or no longer exists.
// Only files carrying the dynasty header are considered, so hand-written
// files that happen to match the suffix are safe.
func (g *Generator) StaleCompanions(outputs []*Output) ([]string, error) {
	processed := map[string]*Output{}
	dirs := map[string]bool{}
	for _, out := range outputs {
		processed[filepath.Clean(out.Source)] = out
		dirs[filepath.Dir(out.Source)] = true
	}

	var stale []string
	for dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list %s", dir)
		}
		for _, e := range entries {
			if e.IsDir() || !g.IsCompanion(e.Name()) {
				continue
			}
			path := filepath.Join(dir, e.Name())
			source := g.SourcePath(path)

			if out, ok := processed[filepath.Clean(source)]; ok {
				if out.Generated != nil {
					continue
				}
			} else if _, err := os.Stat(source); err == nil {
				// Source exists but was not part of this run.
				continue
			}

			content, err := os.ReadFile(path)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to read %s", path)
			}
			if _, ok := ParseHeaderVersion(content); ok {
				stale = append(stale, path)
			}
		}
	}
	sort.Strings(stale)
	return stale, nil
}


func writeFileKeepMode(path string, content []byte) error {
	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, content, mode); err != nil {
		return errors.Wrapf(err, "failed to rewrite %s", path)
	}
	return nil
}
