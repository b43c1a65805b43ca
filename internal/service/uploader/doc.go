// Package uploader sends a module collection to the Screeps code endpoint.
//
// A Client issues exactly one POST per Upload call with the X-Token header,
// returns the decoded JSON object on HTTP 200 and an *UploadError carrying the
// status code, reason phrase and raw body otherwise. There are no retries.
package uploader
