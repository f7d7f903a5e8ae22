package service

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidRequest is returned on missing or malformed input.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound is returned when the record or its physical file is absent.
	ErrNotFound = errors.New("not found")
	// ErrRangeNotSatisfiable is returned when a byte range lies outside the file.
	ErrRangeNotSatisfiable = errors.New("range not satisfiable")
	// ErrMergeInProgress is returned when the upload is already being merged.
	ErrMergeInProgress = errors.New("merge already in progress")
)

// A MissingChunkError is returned by a merge when a staged chunk is absent.
type MissingChunkError struct {
	Index int
}

func (e *MissingChunkError) Error() string {
	return fmt.Sprintf("missing chunk %d", e.Index)
}

// A StorageError wraps a filesystem or record store failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// An Error is a categorized error carrying a client facing message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func invalid(format string, args ...interface{}) error {
	return &Error{Kind: ErrInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

func notFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}
