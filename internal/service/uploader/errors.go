package uploader

import (
	"errors"
	"fmt"
)

// ErrUnexpectedStatus matches every *UploadError via errors.Is.
var ErrUnexpectedStatus = errors.New("unexpected http status")

// UploadError is returned when the server answers with anything but 200.
type UploadError struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Reason is the HTTP reason phrase.
	Reason string
	// Body is the raw response body.
	Body string
}

// Error implements the error interface.
func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed: %d %s: %s", e.StatusCode, e.Reason, e.Body)
}

// Unwrap lets errors.Is match ErrUnexpectedStatus.
func (e *UploadError) Unwrap() error {
	return ErrUnexpectedStatus
}
