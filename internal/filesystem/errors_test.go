package filesystem

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodes(t *testing.T) {
	cases := []struct {
		err  *Error
		code Code
	}{
		{NotFound("/a"), CodeNotFound},
		{AlreadyExists("/a"), CodeAlreadyExists},
		{DirectoryExpected("/a"), CodeDirectoryExpected},
		{UnsupportedArchiveFormat("/a"), CodeUnsupportedArchiveFormat},
		{EncryptedArchive("/a"), CodeEncryptedArchive},
		{SplitArchive("/a"), CodeSplitArchive},
		{InvalidArchive("/a"), CodeInvalidArchive},
		{OutOfMemory("/a"), CodeOutOfMemory},
		{IOFailure("/a", errors.New("disk gone")), CodeIOFailure},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.err.Code)
		assert.Equal(t, "/a", tc.err.Path)
		assert.Equal(t, tc.code, CodeOf(tc.err))
		assert.Equal(t, "/a", PathOf(tc.err))
	}
}

func TestErrorIsMatchesByCode(t *testing.T) {
	err := NotFound("/missing/file.txt")

	assert.True(t, errors.Is(err, &Error{Code: CodeNotFound}))
	assert.True(t, errors.Is(err, &Error{Code: CodeNotFound, Path: "/missing/file.txt"}))
	assert.False(t, errors.Is(err, &Error{Code: CodeNotFound, Path: "/other"}))
	assert.False(t, errors.Is(err, &Error{Code: CodeAlreadyExists}))
}

func TestErrorIsMatchesWrapped(t *testing.T) {
	err := fmt.Errorf("listing failed: %w", DirectoryExpected("/a/file.txt"))

	assert.True(t, errors.Is(err, &Error{Code: CodeDirectoryExpected}))
	assert.Equal(t, CodeDirectoryExpected, CodeOf(err))
	assert.Equal(t, "/a/file.txt", PathOf(err))
}

func TestIOFailurePreservesCause(t *testing.T) {
	cause := errors.New("device offline")
	err := IOFailure("/mnt/usb", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "i/o failure")
	assert.Contains(t, err.Error(), "/mnt/usb")
	assert.Contains(t, err.Error(), "device offline")
}

func TestCodeOfForeignError(t *testing.T) {
	assert.Equal(t, Code(0), CodeOf(errors.New("plain")))
	assert.Equal(t, "", PathOf(errors.New("plain")))
}
