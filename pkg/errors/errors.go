// Package errors defines the error types shared across the synchronizer.
package errors

import (
	goerrors "errors"
	"fmt"
)

// New returns an error with the given message.
func New(message string) error {
	return goerrors.New(message)
}

// ContextError annotates an error with the operation that produced it.
// The contexts chain up as the error propagates, so the final message reads
// like a breadcrumb trail (e.g. "load index: list folders: connection refused").
type ContextError struct {
	Context string
	Err     error
}

func (err ContextError) Error() string {
	return fmt.Sprintf("%s: %s", err.Context, err.Err)
}

// Unwrap returns the wrapped error so errors.As keeps working through
// context annotations.
func (err ContextError) Unwrap() error {
	return err.Err
}

// WithContext wraps err with a short description of the failed operation.
func WithContext(err error, context string) error {
	return ContextError{Context: context, Err: err}
}

// FriendlyError is an error whose message is meant to be shown to the user
// directly, without any additional context or stack information.
type FriendlyError interface {
	FriendlyMessage() string
}

type friendlyError struct {
	message string
}

func (err friendlyError) Error() string {
	return err.message
}

func (err friendlyError) FriendlyMessage() string {
	return err.message
}

// NewFriendlyError creates an error that is printed to the user verbatim.
func NewFriendlyError(format string, args ...interface{}) error {
	return friendlyError{fmt.Sprintf(format, args...)}
}

// GetPrintableMessage returns the message that should be shown to the user
// for the given error. Friendly errors are printed without the context
// breadcrumbs that were added while the error propagated.
func GetPrintableMessage(err error) string {
	for cause := err; cause != nil; cause = goerrors.Unwrap(cause) {
		if friendly, ok := cause.(FriendlyError); ok {
			return friendly.FriendlyMessage()
		}
	}
	return err.Error()
}
