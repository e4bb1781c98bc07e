package jobs

import (
	"fmt"

	"github.com/filedock/backend/internal/filesystem"
)

// Level is a notification severity.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notification is a toast-style user message. The mapping from failure kind
// to text is pure presentation: one message per taxonomy code, nothing the
// driver itself knows about.
type Notification struct {
	Level   Level  `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

func notificationFor(jobName string, status Status, err error) Notification {
	switch status {
	case StatusSucceeded:
		return Notification{Level: LevelInfo, Title: jobName, Message: "Completed"}
	case StatusCancelled:
		return Notification{Level: LevelInfo, Title: jobName, Message: "Cancelled"}
	default:
		return Notification{Level: LevelError, Title: jobName, Message: failureMessage(err)}
	}
}

func failureMessage(err error) string {
	path := filesystem.PathOf(err)
	switch filesystem.CodeOf(err) {
	case filesystem.CodeNotFound:
		return fmt.Sprintf("%s no longer exists", path)
	case filesystem.CodeAlreadyExists:
		return fmt.Sprintf("%s already exists", path)
	case filesystem.CodeDirectoryExpected:
		return fmt.Sprintf("%s is not a directory", path)
	case filesystem.CodeUnsupportedArchiveFormat:
		return fmt.Sprintf("%s is not a supported archive", path)
	case filesystem.CodeEncryptedArchive:
		return fmt.Sprintf("%s is password protected", path)
	case filesystem.CodeSplitArchive:
		return fmt.Sprintf("%s is a split archive", path)
	case filesystem.CodeInvalidArchive:
		return fmt.Sprintf("%s is damaged", path)
	case filesystem.CodeOutOfMemory:
		return fmt.Sprintf("%s is too large to open", path)
	case filesystem.CodeIOFailure:
		return fmt.Sprintf("Device error on %s", path)
	default:
		return err.Error()
	}
}
