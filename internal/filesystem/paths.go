package filesystem

import (
	"path"
	"path/filepath"
)

// Entry paths are slash-separated regardless of platform; conversion to the
// device representation happens only at the os call boundary.

func cleanPath(p string) string {
	return path.Clean(filepath.ToSlash(p))
}

func fromSlash(p string) string {
	return filepath.FromSlash(p)
}

func toSlash(p string) string {
	return filepath.ToSlash(p)
}

func baseName(p string) string {
	return path.Base(p)
}

func parentPath(p string) string {
	return path.Dir(p)
}

func joinPath(parts ...string) string {
	return path.Join(parts...)
}
