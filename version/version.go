// Package version holds the build version, set with -ldflags at release time.
package version

// Version is the current build version.
var Version = "dev"
