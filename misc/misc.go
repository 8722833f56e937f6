// Package misc provides build identity helpers shared by config and cmd.
package misc

import (
	"runtime/debug"
)

// Set at build time with -ldflags "-X wfp/misc.appVersion=..."
var (
	appName    = "wfp"
	appVersion = "development"
)

// GetAppName returns the short program name used for log files and reports.
func GetAppName() string {
	return appName
}

// GetVersion returns program version set at build time.
func GetVersion() string {
	return appVersion
}

// GetGitHash returns vcs revision recorded in build info, if any.
func GetGitHash() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" {
			if len(s.Value) > 12 {
				return s.Value[:12]
			}
			return s.Value
		}
	}
	return "unknown"
}
