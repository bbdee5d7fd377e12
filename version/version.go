package version

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver/v3"

	"github.com/teranos/dynasty/errors"
)

// Build information. These variables are set at build time via ldflags.
var (
	// CommitHash is the git commit hash when the binary was built
	CommitHash = "dev"

	// BuildTime is when the binary was built
	BuildTime = "unknown"

	// Version is the semantic version written into generated file headers
	Version = "0.3.0"
)

// Info contains version and build information
type Info struct {
	CommitHash string `json:"commit_hash" yaml:"commit_hash"`
	BuildTime  string `json:"build_time" yaml:"build_time"`
	Version    string `json:"version" yaml:"version"`
	GoVersion  string `json:"go_version" yaml:"go_version"`
	Platform   string `json:"platform" yaml:"platform"`
}

// Get returns the current version information
func Get() Info {
	return Info{
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		Version:    Version,
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a human-readable version string
func (i Info) String() string {
	return fmt.Sprintf("dynasty %s (commit %s, built %s, %s %s)", i.Version, i.Short(), i.BuildTime, i.GoVersion, i.Platform)
}

// Short returns a short version string with just the commit hash
func (i Info) Short() string {
	if len(i.CommitHash) >= 7 {
		return i.CommitHash[:7]
	}
	return i.CommitHash
}

// Compatible checks whether a file generated by version generatedBy can
// be regenerated by running. Files from a newer major version, or a newer
// minor version within 0.x, are not compatible: their output may rely on
// runtime APIs the running tool does not know.
func Compatible(running, generatedBy string) error {
	cur, err := semver.NewVersion(running)
	if err != nil {
		return errors.Wrapf(err, "invalid dynasty version %s", running)
	}
	gen, err := semver.NewVersion(generatedBy)
	if err != nil {
		return errors.Wrapf(err, "invalid generator version %s in header", generatedBy)
	}

	constraint, err := semver.NewConstraint("<= " + cur.String())
	if err != nil {
		return errors.Wrap(err, "failed to build version constraint")
	}
	if constraint.Check(gen) {
		return nil
	}
	if gen.Major() == cur.Major() && (cur.Major() > 0 || gen.Minor() == cur.Minor()) {
		// Newer patch (or minor on >=1.0) keeps the same output contract.
		return nil
	}
	return errors.WithHintf(
		errors.Newf("file was generated by dynasty %s, running %s", gen, cur),
		"upgrade dynasty to at least %d.%d", gen.Major(), gen.Minor(),
	)
}
