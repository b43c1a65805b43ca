// Package bundle collects upload modules from a zip archive or a directory tree.
//
// Files ending in .js become text modules (UTF-8, leading BOM removed) and
// files ending in .wasm become base64-tagged binary modules. Module names are
// the slash-separated relative path without the extension. Scripts that are
// not valid UTF-8 are skipped and reported, and a later file with the same
// module name replaces an earlier one; both outcomes are listed in Result.
package bundle
