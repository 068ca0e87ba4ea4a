// Package version reports the docpub build.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set at link time:
// go build -ldflags "-X git.home.luguber.info/inful/docpub/internal/version.Version=v0.3.0".
var (
	Version   = "unknown"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Commit returns GitCommit, falling back to the VCS revision stamped by the Go toolchain.
func Commit() string {
	if GitCommit != "unknown" && GitCommit != "" {
		return GitCommit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		return revision(info.Settings)
	}
	return GitCommit
}

func revision(settings []debug.BuildSetting) string {
	rev, dirty := "unknown", false
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
			if len(rev) > 12 {
				rev = rev[:12]
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if dirty && rev != "unknown" {
		rev += "-dirty"
	}
	return rev
}

// String is the text shown by --version.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit(), BuildTime)
}
