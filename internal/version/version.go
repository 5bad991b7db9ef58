// Package version reports the build version of modelconfig.
package version

import (
	"regexp"
	"runtime"
	"strings"
)

// GitDescribe is set via ldflags at build time to the output of
// `git describe --tags --always --dirty`.
var GitDescribe = ""

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// Get returns the version information of the running binary.
func Get() Info {
	v, commit := "dev", ""
	if GitDescribe != "" {
		v, commit = parseGitDescribe(GitDescribe)
	}
	return Info{
		Version:   v,
		Commit:    commit,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

var (
	describeRe = regexp.MustCompile(`^(.+)-(\d+)-g([0-9a-f]+)$`)
	commitRe   = regexp.MustCompile(`^[0-9a-f]{7,40}$`)
)

// parseGitDescribe turns git describe output into a PEP 440 style version
// and the abbreviated commit, if any.
func parseGitDescribe(s string) (string, string) {
	s = strings.TrimSpace(s)
	dirty := strings.HasSuffix(s, "-dirty")
	s = strings.TrimSuffix(s, "-dirty")

	if commitRe.MatchString(s) {
		return "dev+" + s, s
	}
	if m := describeRe.FindStringSubmatch(s); m != nil {
		return strings.TrimPrefix(m[1], "v") + ".dev+" + m[3], m[3]
	}
	v := strings.TrimPrefix(s, "v")
	if dirty {
		v += ".dev"
	}
	return v, ""
}
