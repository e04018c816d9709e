// Package misc keeps program identity: name, version and source revision.
package misc

import (
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
)

// Set at build time with -ldflags "-X cssdiff/misc.version=... -X cssdiff/misc.gitHash=...".
var (
	appName = "cssdiff"
	version = "dev"
	gitHash = ""
)

// GetAppName returns program name.
func GetAppName() string {
	if len(appName) > 0 {
		return appName
	}
	return strings.TrimSuffix(filepath.Base(os.Args[0]), filepath.Ext(os.Args[0]))
}

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns source revision program was built from.
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
