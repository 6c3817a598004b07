package errors

import (
	"fmt"
)

// MissingFieldError represents a missing required field.
type MissingFieldError struct {
	Field string
}

func (err MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", err.Field)
}

// FileNotFound represents when we were unable to access a file
// because the path didn't exist.
type FileNotFound struct {
	Path string
}

func (err FileNotFound) Error() string {
	return fmt.Sprintf("%q does not exist", err.Path)
}

// RemoteIndexUnavailable represents a failure to fetch the remote folder
// index. When it occurs the caller must not assume any folder is missing --
// the previous cache contents stay valid and the current root is skipped.
type RemoteIndexUnavailable struct {
	Cause error
}

func (err RemoteIndexUnavailable) Error() string {
	return fmt.Sprintf("remote folder index unavailable: %s", err.Cause)
}

func (err RemoteIndexUnavailable) Unwrap() error {
	return err.Cause
}

// RemoteServiceError represents a failed album operation against the photo
// service. The item it applies to is skipped; the run continues.
type RemoteServiceError struct {
	Op    string
	Name  string
	Cause error
}

func (err RemoteServiceError) Error() string {
	if err.Name == "" {
		return fmt.Sprintf("%s failed: %s", err.Op, err.Cause)
	}
	return fmt.Sprintf("%s %q failed: %s", err.Op, err.Name, err.Cause)
}

func (err RemoteServiceError) Unwrap() error {
	return err.Cause
}
