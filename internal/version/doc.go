// Package version exposes build metadata.
//
// Version, Commit and BuildTime are injected via -ldflags and default to
// values suitable for local builds. UserAgent identifies the tool to the
// Screeps API.
package version
