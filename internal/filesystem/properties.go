package filesystem

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
)

const timestampLayout = "2006-01-02 15:04:05"

// PropertiesOf derives display metadata for one entry. Text statistics are
// reported only for textual content; directories and binaries carry the
// CountUnknown sentinel instead.
func PropertiesOf(p string) (*Properties, error) {
	p = cleanPath(p)
	sys := fromSlash(p)
	info, err := os.Stat(sys)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NotFound(p)
		}
		return nil, IOFailure(p, err)
	}

	perm := permissionsOf(info)
	props := &Properties{
		Name:         baseName(p),
		AbsolutePath: p,
		LastModified: info.ModTime().Format(timestampLayout),
		Size:         formatBytes(info.Size()),
		LineCount:    CountUnknown,
		WordCount:    CountUnknown,
		CharCount:    CountUnknown,
		Readable:     perm.Readable,
		Writable:     perm.Writable,
		Executable:   perm.Executable,
	}
	if info.IsDir() {
		// Directories report the size of their contents, not the inode.
		if total, serr := recursiveSize(sys); serr == nil {
			props.Size = formatBytes(total)
		}
		return props, nil
	}
	if !isTextFile(sys) {
		return props, nil
	}

	data, err := os.ReadFile(sys)
	if err != nil {
		return nil, IOFailure(p, err)
	}
	props.CharCount = int64(len(data))
	props.LineCount, props.WordCount = countLinesAndWords(string(data))
	return props, nil
}

// isTextFile classifies content by detected MIME type: text/* plus the
// structured text applications.
func isTextFile(sys string) bool {
	mtype, err := mimetype.DetectFile(sys)
	if err != nil {
		return false
	}
	for t := mtype; t != nil; t = t.Parent() {
		if strings.HasPrefix(t.String(), "text/") {
			return true
		}
	}
	s := mtype.String()
	return s == "application/json" || s == "application/xml" || s == "application/javascript"
}

// countLinesAndWords implements the deliberately naive text statistics:
// lines are terminator-delimited segments (a trailing unterminated segment
// counts as one line); words are single-space splits per line, so
// consecutive spaces contribute empty-string words, while an empty line
// contributes none.
func countLinesAndWords(text string) (lines, words int64) {
	normalized := NormalizeLineEndings(text, LF)
	if normalized == "" {
		return 0, 0
	}
	trimmed := strings.TrimSuffix(normalized, "\n")
	for _, line := range strings.Split(trimmed, "\n") {
		lines++
		if line == "" {
			continue
		}
		words += int64(len(strings.Split(line, " ")))
	}
	return lines, words
}

// recursiveSize sums regular file sizes under root with a parallel walk.
func recursiveSize(root string) (int64, error) {
	var total atomic.Int64
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(p string, de os.DirEntry, err error) error {
		if err != nil || de.IsDir() {
			return nil
		}
		if info, ierr := de.Info(); ierr == nil {
			total.Add(info.Size())
		}
		return nil
	})
	return total.Load(), err
}

// formatBytes renders a byte count in human-readable form.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	units := []string{"KB", "MB", "GB", "TB", "PB"}
	return fmt.Sprintf("%.2f %s", float64(n)/float64(div), units[exp])
}
