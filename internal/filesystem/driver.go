package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"

	"github.com/filedock/backend/internal/infrastructure/logging"
)

// Options configures a Driver.
type Options struct {
	// Root is the default location: the absolute path List resolves to when
	// no parent is given.
	Root string
	// MaxTextBytes caps Load materialization; zero means DefaultMaxTextBytes.
	MaxTextBytes int64
	Logger       *logging.Logger
}

// Driver exposes the fallible filesystem API over one storage root. It is a
// stateless service value: no cache, no lock manager. Correctness depends
// only on live device state at the moment of each call, so a rename racing
// a delete on the same entry is the caller's hazard to arbitrate.
type Driver struct {
	root         string
	maxTextBytes int64
	log          *logging.Logger
}

// New creates a driver over opts.Root.
func New(opts Options) *Driver {
	maxBytes := opts.MaxTextBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxTextBytes
	}
	log := opts.Logger
	if log == nil {
		log = logging.NewDefault()
	}
	return &Driver{
		root:         cleanPath(opts.Root),
		maxTextBytes: maxBytes,
		log:          log,
	}
}

// Root returns the configured default location.
func (d *Driver) Root() string { return d.root }

// List returns a directory's immediate children. An empty dirPath resolves
// to the default root. Fails with DirectoryExpected when the target is not
// a directory; an empty directory yields an empty children slice.
func (d *Driver) List(ctx context.Context, dirPath string) (*Tree, error) {
	if dirPath == "" {
		dirPath = d.root
	}
	dirPath = cleanPath(dirPath)
	sys := fromSlash(dirPath)

	info, err := os.Stat(sys)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NotFound(dirPath)
		}
		return nil, IOFailure(dirPath, err)
	}
	if !info.IsDir() {
		return nil, DirectoryExpected(dirPath)
	}

	dirents, err := os.ReadDir(sys)
	if err != nil {
		return nil, IOFailure(dirPath, err)
	}

	tree := &Tree{
		Root:     entryFromInfo(dirPath, info),
		Children: make([]Entry, 0, len(dirents)),
	}
	for _, de := range dirents {
		if ctx.Err() != nil {
			return nil, IOFailure(dirPath, ctx.Err())
		}
		tree.Children = append(tree.Children, EntryAt(joinPath(dirPath, de.Name())))
	}
	return tree, nil
}

// Create makes the entry on the device: the full directory chain for a
// directory entry, or the file plus any missing parents for a file entry.
// Fails with AlreadyExists when the target is present.
func (d *Driver) Create(ctx context.Context, entry Entry) (*Entry, error) {
	p := cleanPath(entry.Path)
	sys := fromSlash(p)

	if _, err := os.Lstat(sys); err == nil {
		return nil, AlreadyExists(p)
	} else if !os.IsNotExist(err) {
		return nil, IOFailure(p, err)
	}

	if entry.Kind == KindDirectory {
		if err := os.MkdirAll(sys, 0o755); err != nil {
			return nil, IOFailure(p, err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(sys), 0o755); err != nil {
			return nil, IOFailure(parentPath(p), err)
		}
		f, err := os.OpenFile(sys, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			if os.IsExist(err) {
				return nil, AlreadyExists(p)
			}
			return nil, IOFailure(p, err)
		}
		if err := f.Close(); err != nil {
			return nil, IOFailure(p, err)
		}
	}

	d.log.Debug("entry created", zap.String("path", p), zap.Stringer("kind", entry.Kind))
	created := EntryAt(p)
	return &created, nil
}

// Rename gives the entry a new name within its parent directory. Fails with
// NotFound when the source is absent and AlreadyExists when a sibling with
// newName is present.
func (d *Driver) Rename(ctx context.Context, entry Entry, newName string) (*Entry, error) {
	src := cleanPath(entry.Path)
	if _, err := os.Lstat(fromSlash(src)); err != nil {
		if os.IsNotExist(err) {
			return nil, NotFound(src)
		}
		return nil, IOFailure(src, err)
	}

	dst := joinPath(parentPath(src), newName)
	if _, err := os.Lstat(fromSlash(dst)); err == nil {
		return nil, AlreadyExists(dst)
	} else if !os.IsNotExist(err) {
		return nil, IOFailure(dst, err)
	}

	if err := os.Rename(fromSlash(src), fromSlash(dst)); err != nil {
		return nil, IOFailure(src, err)
	}

	d.log.Debug("entry renamed", zap.String("from", src), zap.String("to", dst))
	renamed := EntryAt(dst)
	return &renamed, nil
}

// Delete removes the entry, recursively for directories, and returns a
// snapshot of its parent.
func (d *Driver) Delete(ctx context.Context, entry Entry) (*Entry, error) {
	p := cleanPath(entry.Path)
	if _, err := os.Lstat(fromSlash(p)); err != nil {
		if os.IsNotExist(err) {
			return nil, NotFound(p)
		}
		return nil, IOFailure(p, err)
	}

	if err := os.RemoveAll(fromSlash(p)); err != nil {
		return nil, IOFailure(p, err)
	}

	d.log.Debug("entry deleted", zap.String("path", p))
	parent := EntryAt(parentPath(p))
	return &parent, nil
}

// Copy duplicates source under destDir, recursively for directories. It
// never overwrites: a same-named entry under destDir fails with
// AlreadyExists.
func (d *Driver) Copy(ctx context.Context, source Entry, destDir Entry) (*Entry, error) {
	src := cleanPath(source.Path)
	info, err := os.Stat(fromSlash(src))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NotFound(src)
		}
		return nil, IOFailure(src, err)
	}

	dst := joinPath(cleanPath(destDir.Path), baseName(src))
	if _, err := os.Lstat(fromSlash(dst)); err == nil {
		return nil, AlreadyExists(dst)
	} else if !os.IsNotExist(err) {
		return nil, IOFailure(dst, err)
	}

	if info.IsDir() {
		if err := d.copyTree(ctx, src, dst); err != nil {
			return nil, err
		}
	} else {
		if err := copyFile(src, dst, info); err != nil {
			return nil, err
		}
	}

	d.log.Debug("entry copied", zap.String("from", src), zap.String("to", dst))
	copied := EntryAt(dst)
	return &copied, nil
}

func (d *Driver) copyTree(ctx context.Context, src, dst string) error {
	srcRoot := fromSlash(src)
	dstRoot := fromSlash(dst)
	return filepath.WalkDir(srcRoot, func(p string, de os.DirEntry, err error) error {
		if err != nil {
			return IOFailure(toSlash(p), err)
		}
		if ctx.Err() != nil {
			return IOFailure(src, ctx.Err())
		}
		rel, relErr := filepath.Rel(srcRoot, p)
		if relErr != nil {
			return IOFailure(toSlash(p), relErr)
		}
		target := filepath.Join(dstRoot, rel)
		if de.IsDir() {
			if mkErr := os.MkdirAll(target, 0o755); mkErr != nil {
				return IOFailure(toSlash(target), mkErr)
			}
			return nil
		}
		info, infoErr := de.Info()
		if infoErr != nil {
			return IOFailure(toSlash(p), infoErr)
		}
		return copyFile(toSlash(p), toSlash(target), info)
	})
}

func copyFile(src, dst string, info os.FileInfo) error {
	in, err := os.Open(fromSlash(src))
	if err != nil {
		return IOFailure(src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(fromSlash(dst), os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		if os.IsExist(err) {
			return AlreadyExists(dst)
		}
		return IOFailure(dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return IOFailure(dst, err)
	}
	if err := out.Close(); err != nil {
		return IOFailure(dst, err)
	}
	return nil
}

// Properties re-validates existence and derives display metadata for the
// entry.
func (d *Driver) Properties(ctx context.Context, entry Entry) (*Properties, error) {
	return PropertiesOf(entry.Path)
}

// Load reads the entry's content as text under params. Content larger than
// the configured ceiling fails with OutOfMemory before any allocation, so
// callers can distinguish "too large" from generic device trouble.
func (d *Driver) Load(ctx context.Context, entry Entry, params TextParams) (string, error) {
	p := cleanPath(entry.Path)
	sys := fromSlash(p)

	info, err := os.Stat(sys)
	if err != nil {
		if os.IsNotExist(err) {
			return "", NotFound(p)
		}
		return "", IOFailure(p, err)
	}
	if info.Size() > d.maxTextBytes {
		return "", OutOfMemory(p)
	}

	data, err := os.ReadFile(sys)
	if err != nil {
		return "", IOFailure(p, err)
	}
	return Decode(p, data, params)
}

// Save normalizes text to params.LineEnding, encodes it with params.Charset
// and writes it to the entry's path, creating the file and any missing
// parents. Save never fails with NotFound.
func (d *Driver) Save(ctx context.Context, entry Entry, text string, params TextParams) error {
	p := cleanPath(entry.Path)
	data, err := Encode(p, text, params)
	if err != nil {
		return err
	}

	sys := fromSlash(p)
	if err := os.MkdirAll(filepath.Dir(sys), 0o755); err != nil {
		return IOFailure(parentPath(p), err)
	}
	if err := os.WriteFile(sys, data, 0o644); err != nil {
		return IOFailure(p, err)
	}

	d.log.Debug("entry saved", zap.String("path", p), zap.Int("bytes", len(data)))
	return nil
}

// Find returns entries under the root whose root-relative slash path
// matches the doublestar pattern, sorted by name. A malformed pattern is a
// programming error, reported as a plain invalid-argument error rather than
// a taxonomy failure.
func (d *Driver) Find(ctx context.Context, pattern string) ([]Entry, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("filesystem: invalid pattern %q", pattern)
	}

	rootSys := fromSlash(d.root)
	var (
		mu      sync.Mutex
		matches []Entry
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, rootSys, func(p string, de os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rel, relErr := filepath.Rel(rootSys, p)
		if relErr != nil || rel == "." {
			return nil
		}
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); ok {
			e := EntryAt(toSlash(p))
			mu.Lock()
			matches = append(matches, e)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, IOFailure(d.root, err)
	}

	// The walk is parallel; impose a stable order before returning.
	if err := SortEntries(matches, SortByName); err != nil {
		return nil, err
	}
	return matches, nil
}
