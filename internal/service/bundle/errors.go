package bundle

import (
	"errors"
	"fmt"
)

// ErrInvalidSource is returned when the source is neither a .zip file nor a directory.
var ErrInvalidSource = errors.New("source must be a .zip archive or a directory")

// DecodeError describes a script that was skipped because it is not valid UTF-8.
type DecodeError struct {
	// Path is the archive entry name or the slash-separated relative file path.
	Path string
	// Err is the underlying decoding failure.
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

// Unwrap returns the decoding failure.
func (e *DecodeError) Unwrap() error {
	return e.Err
}
