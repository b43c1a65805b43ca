// Package deploy runs one upload end to end: resolve settings, require the
// token, collect modules from the source and post them, then print the
// server response. A dry run stops after collection and prints the request
// body instead.
package deploy
