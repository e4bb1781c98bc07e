package filesystem

import (
	"os"
	"strings"
	"time"
)

// Kind classifies a filesystem entry.
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
)

// String returns the wire name for the kind.
func (k Kind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// Permissions holds the access flags read from the device.
type Permissions struct {
	Readable   bool `json:"readable"`
	Writable   bool `json:"writable"`
	Executable bool `json:"executable"`
}

// Entry is a point-in-time snapshot of one filesystem location. Paths are
// absolute with platform-neutral forward-slash separators. Staleness is
// expected: operations re-validate existence before acting.
type Entry struct {
	Path        string      `json:"path"`
	Name        string      `json:"name"`
	Size        int64       `json:"size"`
	Modified    time.Time   `json:"modified"`
	Kind        Kind        `json:"kind"`
	Symlink     bool        `json:"symlink"`
	Hidden      bool        `json:"hidden"`
	Permissions Permissions `json:"permissions"`
}

// IsDir reports whether the snapshot classified the entry as a directory.
func (e Entry) IsDir() bool { return e.Kind == KindDirectory }

// EntryAt builds a snapshot from live device state. Construction never
// fails: absence is the caller's concern, and an unreadable path yields a
// bare snapshot carrying only the path and name.
func EntryAt(p string) Entry {
	p = cleanPath(p)
	e := Entry{
		Path:   p,
		Name:   baseName(p),
		Hidden: strings.HasPrefix(baseName(p), "."),
	}
	info, err := os.Lstat(fromSlash(p))
	if err != nil {
		return e
	}
	if info.Mode()&os.ModeSymlink != 0 {
		e.Symlink = true
		if resolved, rerr := os.Stat(fromSlash(p)); rerr == nil {
			info = resolved
		}
	}
	fillFromInfo(&e, info)
	return e
}

func entryFromInfo(p string, info os.FileInfo) Entry {
	e := Entry{
		Path:   p,
		Name:   baseName(p),
		Hidden: strings.HasPrefix(baseName(p), "."),
	}
	fillFromInfo(&e, info)
	return e
}

func fillFromInfo(e *Entry, info os.FileInfo) {
	e.Size = info.Size()
	e.Modified = info.ModTime()
	if info.IsDir() {
		e.Kind = KindDirectory
	} else {
		e.Kind = KindFile
	}
	e.Permissions = permissionsOf(info)
}

func permissionsOf(info os.FileInfo) Permissions {
	mode := info.Mode().Perm()
	return Permissions{
		Readable:   mode&0400 != 0,
		Writable:   mode&0200 != 0,
		Executable: mode&0100 != 0,
	}
}

// Tree is a directory snapshot: the root entry plus its immediate children.
// An empty directory yields an empty children slice, never an error.
type Tree struct {
	Root     Entry   `json:"root"`
	Children []Entry `json:"children"`
}

// LineEnding is the terminator style applied when saving text.
type LineEnding string

const (
	LF   LineEnding = "\n"
	CRLF LineEnding = "\r\n"
	CR   LineEnding = "\r"
)

// TextParams governs read decoding and write encoding. When DetectCharset
// is false, Charset must be an identifier the text codec can look up.
type TextParams struct {
	Charset       string     `json:"charset"`
	DetectCharset bool       `json:"detect_charset"`
	LineEnding    LineEnding `json:"line_ending"`
}

// DefaultTextParams detects the charset on read, falls back to UTF-8, and
// writes LF terminators.
func DefaultTextParams() TextParams {
	return TextParams{Charset: "utf-8", DetectCharset: true, LineEnding: LF}
}

// CountUnknown marks a text statistic that does not apply to the entry
// (directory, binary, undetectable content). Deliberately "unknown, not
// zero": an empty text file reports 0, a binary reports CountUnknown.
const CountUnknown = -1

// Properties is the display metadata for a single entry.
type Properties struct {
	Name         string `json:"name"`
	AbsolutePath string `json:"absolute_path"`
	LastModified string `json:"last_modified"`
	Size         string `json:"size"`
	LineCount    int64  `json:"line_count"`
	WordCount    int64  `json:"word_count"`
	CharCount    int64  `json:"char_count"`
	Readable     bool   `json:"readable"`
	Writable     bool   `json:"writable"`
	Executable   bool   `json:"executable"`
}
