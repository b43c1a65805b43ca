// Package module contains the core domain types of an upload.
//
// It defines Module (a script text or a base64-tagged binary), Collection
// (module name to Module, last write wins) and UploadRequest (the JSON body
// accepted by the code endpoint).
package module
