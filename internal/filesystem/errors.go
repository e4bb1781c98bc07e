package filesystem

import (
	"errors"
	"fmt"
)

// Code identifies one failure kind in the closed driver taxonomy. Every
// driver operation returns either a success value or exactly one *Error
// carrying one of these codes; no lower-level fault leaks unclassified.
type Code int

const (
	// CodeNotFound: the operation target or a required parent does not exist.
	CodeNotFound Code = iota + 1
	// CodeAlreadyExists: the target (or a rename/copy destination) exists;
	// operations never silently overwrite.
	CodeAlreadyExists
	// CodeDirectoryExpected: a directory-only operation hit a non-directory.
	CodeDirectoryExpected
	// CodeUnsupportedArchiveFormat: the extension is not a recognized container.
	CodeUnsupportedArchiveFormat
	// CodeEncryptedArchive: the container has password-protected members.
	CodeEncryptedArchive
	// CodeSplitArchive: the container is a split/multi-volume archive.
	CodeSplitArchive
	// CodeInvalidArchive: the container structure is malformed.
	CodeInvalidArchive
	// CodeOutOfMemory: content too large to materialize during load.
	CodeOutOfMemory
	// CodeIOFailure: an underlying device error, original cause preserved.
	CodeIOFailure
)

func (c Code) String() string {
	switch c {
	case CodeNotFound:
		return "not found"
	case CodeAlreadyExists:
		return "already exists"
	case CodeDirectoryExpected:
		return "directory expected"
	case CodeUnsupportedArchiveFormat:
		return "unsupported archive format"
	case CodeEncryptedArchive:
		return "encrypted archive"
	case CodeSplitArchive:
		return "split archive"
	case CodeInvalidArchive:
		return "invalid archive"
	case CodeOutOfMemory:
		return "out of memory"
	case CodeIOFailure:
		return "i/o failure"
	default:
		return "unknown"
	}
}

// Error is the single error type surfaced by the driver.
type Error struct {
	Code  Code
	Path  string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Path, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Path)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches against another *Error by code, so tests and callers can use
// errors.Is(err, &Error{Code: CodeNotFound}).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && (t.Path == "" || t.Path == e.Path)
}

// CodeOf extracts the taxonomy code from err, or 0 if err is not a driver
// error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

// PathOf extracts the offending path from err, or "" if err is not a driver
// error.
func PathOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Path
	}
	return ""
}

func NotFound(path string) *Error {
	return &Error{Code: CodeNotFound, Path: path}
}

func AlreadyExists(path string) *Error {
	return &Error{Code: CodeAlreadyExists, Path: path}
}

func DirectoryExpected(path string) *Error {
	return &Error{Code: CodeDirectoryExpected, Path: path}
}

func UnsupportedArchiveFormat(path string) *Error {
	return &Error{Code: CodeUnsupportedArchiveFormat, Path: path}
}

func EncryptedArchive(path string) *Error {
	return &Error{Code: CodeEncryptedArchive, Path: path}
}

func SplitArchive(path string) *Error {
	return &Error{Code: CodeSplitArchive, Path: path}
}

func InvalidArchive(path string) *Error {
	return &Error{Code: CodeInvalidArchive, Path: path}
}

func OutOfMemory(path string) *Error {
	return &Error{Code: CodeOutOfMemory, Path: path}
}

func IOFailure(path string, cause error) *Error {
	return &Error{Code: CodeIOFailure, Path: path, Cause: cause}
}
