// Package version holds the build version, stamped via -ldflags.
package version

// Version is the semantic version of this build.
var Version = "dev"
