// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty is "true" when the tree had uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version, set by hand for releases.
	Version = "0.1.0-dev"
)

// Build is resolved version information.
type Build struct {
	Version   string
	Commit    string
	Dirty     bool
	BuildTime string
}

// Current resolves the running binary's build. Values injected with
// ldflags win over embedded VCS settings.
func Current() Build {
	build := Build{
		Version:   Version,
		Commit:    GitCommit,
		Dirty:     GitDirty == "true",
		BuildTime: BuildTime,
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		build = fromSettings(build, info.Settings)
	}
	return build
}

func fromSettings(build Build, settings []debug.BuildSetting) Build {
	injected := build.Commit != "unknown"
	for _, setting := range settings {
		if injected {
			break
		}
		switch setting.Key {
		case "vcs.revision":
			build.Commit = setting.Value
			if len(build.Commit) > 12 {
				build.Commit = build.Commit[:12]
			}
		case "vcs.modified":
			build.Dirty = setting.Value == "true"
		case "vcs.time":
			if build.BuildTime == "unknown" {
				build.BuildTime = setting.Value
			}
		}
	}
	return build
}

// String formats the build for --version output.
func (b Build) String() string {
	dirty := ""
	if b.Dirty {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", b.Version, b.Commit, dirty, b.BuildTime)
}

// Full returns the build with the Go version and platform.
func Full() string {
	return fmt.Sprintf("glass %s\n  Go: %s\n  Platform: %s/%s",
		Current(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
