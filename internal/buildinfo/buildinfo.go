// Package buildinfo holds release metadata injected with -ldflags -X.
package buildinfo

// Empty for local builds; "tagbot version" then falls back to the Go build info.
var (
	Version = ""
	Commit  = ""
	Date    = ""
)
