// Package misc keeps build time program identification.
package misc

import (
	"os"
	"path/filepath"
	"strings"
)

// set with -ldflags "-X cssplit/misc.version=... -X cssplit/misc.gitHash=..."
var (
	appName = ""
	version = "dev"
	gitHash = "unknown"
)

// GetAppName returns program name, executable name is used unless it was set
// at build time.
func GetAppName() string {
	if len(appName) > 0 {
		return appName
	}
	name := filepath.Base(os.Args[0])
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
