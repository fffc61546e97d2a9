// Package misc keeps build time information about the program.
package misc

import (
	"runtime/debug"
)

// set with -ldflags "-X dsx2srt/misc.version=..." at build time
var (
	version = "dev"
	gitHash = ""
)

const appName = "dsx2srt"

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

// GetGitHash returns commit hash program was built from. When it was not set
// by the linker VCS stamp from build info is used.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
