package app

import (
	"fmt"
	"runtime/debug"
)

// Stamped at release with -ldflags "-X github.com/heartmarshall/hearme-backend/internal/app.Version=1.4.0".
// Commit and BuildTime fall back to the VCS data the toolchain embeds.
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// BuildVersion identifies the running binary in startup logs and /health.
func BuildVersion() string {
	commit, built := Commit, BuildTime
	if commit == "" || built == "" {
		rev, at := vcsStamp()
		if commit == "" {
			commit = rev
		}
		if built == "" {
			built = at
		}
	}
	if commit == "" {
		commit = "unknown"
	}
	if built == "" {
		built = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, commit, built)
}

// vcsStamp returns the short revision, suffixed -dirty for modified trees,
// and the commit time recorded in the binary.
func vcsStamp() (revision, at string) {
	info, ok := readBuildInfo()
	if !ok {
		return "", ""
	}
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			at = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if revision != "" && dirty {
		revision += "-dirty"
	}
	return revision, at
}
