package classgen

import (
	"bytes"
	"os"
	"sort"

	"github.com/teranos/dynasty/errors"
	"github.com/teranos/dynasty/version"
)

// Problem is one reason generated code is out of date.
type Problem struct {
	File   string
	Reason string
}

// CheckResult holds the result of comparing fresh output with disk.
type CheckResult struct {
	UpToDate bool
	Problems []Problem
}

// Check compares outputs with the files on disk without writing anything.
func (g *Generator) Check(outputs []*Output) (*CheckResult, error) {
	var problems []Problem
	add := func(file, reason string) {
		problems = append(problems, Problem{File: file, Reason: reason})
	}

	for _, out := range outputs {
		if out.Rewritten != nil {
			add(out.Source, "base field not injected")
		}
		if out.Generated == nil {
			continue
		}

		existing, err := os.ReadFile(out.Companion)
		if os.IsNotExist(err) {
			add(out.Companion, "missing")
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", out.Companion)
		}

		if v, ok := ParseHeaderVersion(existing); ok {
			if err := version.Compatible(g.opts.Version, v); err != nil {
				add(out.Companion, err.Error())
				continue
			}
		}
		if !bytes.Equal(existing, out.Generated) {
			add(out.Companion, "content differs")
		}
	}

	stale, err := g.StaleCompanions(outputs)
	if err != nil {
		return nil, err
	}
	for _, path := range stale {
		add(path, "stale: source has no directives")
	}

	sort.SliceStable(problems, func(i, j int) bool { return problems[i].File < problems[j].File })
	return &CheckResult{
		UpToDate: len(problems) == 0,
		Problems: problems,
	}, nil
}
