package filesystem

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"
	"go.uber.org/zap"
)

// ArchiveExt is the single container suffix recognized for extraction,
// matched case-insensitively. Every other suffix is rejected without
// inspecting content.
const ArchiveExt = ".zip"

var (
	localHeaderSig   = []byte{'P', 'K', 0x03, 0x04}
	centralHeaderSig = []byte{'P', 'K', 0x01, 0x02}
	eocdSig          = []byte{'P', 'K', 0x05, 0x06}
	spannedMarker    = []byte{'P', 'K', 0x07, 0x08}
)

// IsArchivePath reports whether name carries the recognized container
// suffix.
func IsArchivePath(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ArchiveExt)
}

// ProgressEvent is one item of the compress progress stream: either a
// completed member snapshot or the terminal error. After an error event the
// stream is exhausted.
type ProgressEvent struct {
	Entry Entry
	Err   error
}

// Compress creates a new archive at destDir/archiveName and streams one
// event per completed source, in order. It fails synchronously with
// AlreadyExists if the archive path is taken; archives are never appended
// to or overwritten.
//
// The returned channel is unbuffered: the producer blocks until the
// consumer accepts each member, so at most one item is in flight.
// A missing source terminates the stream with NotFound and later sources
// are not processed; the partially written archive stays on the device for
// the caller to clean up. Cancelling ctx stops processing before the next
// member and emits no further events.
func (d *Driver) Compress(ctx context.Context, sources []Entry, destDir Entry, archiveName string) (<-chan ProgressEvent, error) {
	archivePath := joinPath(cleanPath(destDir.Path), archiveName)
	f, err := os.OpenFile(fromSlash(archivePath), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, AlreadyExists(archivePath)
		}
		return nil, IOFailure(archivePath, err)
	}

	d.log.Info("compress started",
		zap.String("archive", archivePath),
		zap.Int("sources", len(sources)),
	)

	events := make(chan ProgressEvent)
	go func() {
		defer close(events)

		zw := zip.NewWriter(f)
		zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(out, flate.BestSpeed)
		})

		emit := func(ev ProgressEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		var terminal error
		for _, src := range sources {
			if ctx.Err() != nil {
				break
			}
			srcPath := cleanPath(src.Path)
			info, statErr := os.Stat(fromSlash(srcPath))
			switch {
			case statErr != nil && os.IsNotExist(statErr):
				terminal = NotFound(srcPath)
			case statErr != nil:
				terminal = IOFailure(srcPath, statErr)
			default:
				terminal = addMember(zw, srcPath, info)
			}
			if terminal != nil {
				break
			}
			if !emit(ProgressEvent{Entry: EntryAt(srcPath)}) {
				break
			}
		}

		// Close out the central directory so the partial archive stays
		// readable even after a mid-stream failure.
		if cerr := zw.Close(); cerr != nil && terminal == nil {
			terminal = IOFailure(archivePath, cerr)
		}
		if cerr := f.Close(); cerr != nil && terminal == nil {
			terminal = IOFailure(archivePath, cerr)
		}

		if terminal != nil {
			d.log.Warn("compress failed", zap.String("archive", archivePath), zap.Error(terminal))
			emit(ProgressEvent{Err: terminal})
		}
	}()

	return events, nil
}

// addMember writes one source (file or whole directory subtree) into the
// archive. Member names mirror the source's base name plus its relative
// subtree paths.
func addMember(zw *zip.Writer, src string, info os.FileInfo) error {
	base := baseName(src)
	if !info.IsDir() {
		return addFile(zw, src, base, info)
	}

	root := fromSlash(src)
	return filepath.WalkDir(root, func(p string, de os.DirEntry, err error) error {
		if err != nil {
			return IOFailure(toSlash(p), err)
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return IOFailure(toSlash(p), relErr)
		}
		member := base
		if rel != "." {
			member = base + "/" + filepath.ToSlash(rel)
		}
		if de.IsDir() {
			if _, werr := zw.Create(member + "/"); werr != nil {
				return IOFailure(toSlash(p), werr)
			}
			return nil
		}
		fi, infoErr := de.Info()
		if infoErr != nil {
			return IOFailure(toSlash(p), infoErr)
		}
		return addFile(zw, toSlash(p), member, fi)
	})
}

func addFile(zw *zip.Writer, path, member string, info os.FileInfo) error {
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return IOFailure(path, err)
	}
	hdr.Name = member
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return IOFailure(path, err)
	}
	f, err := os.Open(fromSlash(path))
	if err != nil {
		return IOFailure(path, err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return IOFailure(path, err)
	}
	return nil
}

// Decompress validates source as a supported container and extracts it
// fully into destDir. On success the source entry is returned unchanged.
func (d *Driver) Decompress(ctx context.Context, source Entry, destDir Entry) (*Entry, error) {
	srcPath := cleanPath(source.Path)
	if err := ValidateArchive(srcPath); err != nil {
		return nil, err
	}

	rc, err := zip.OpenReader(fromSlash(srcPath))
	if err != nil {
		return nil, InvalidArchive(srcPath)
	}
	defer rc.Close()

	destRoot := filepath.Clean(fromSlash(cleanPath(destDir.Path)))
	extracted := 0
	for _, member := range rc.File {
		select {
		case <-ctx.Done():
			return nil, IOFailure(srcPath, ctx.Err())
		default:
		}

		target := filepath.Join(destRoot, filepath.FromSlash(member.Name))
		// Guard against zip-slip: members must stay under destRoot.
		if !strings.HasPrefix(target, destRoot+string(os.PathSeparator)) {
			continue
		}

		if member.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, IOFailure(toSlash(target), err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, IOFailure(toSlash(target), err)
		}
		if err := extractFile(member, target); err != nil {
			return nil, err
		}
		extracted++
	}

	d.log.Info("decompress finished",
		zap.String("archive", srcPath),
		zap.String("destination", toSlash(destRoot)),
		zap.Int("files", extracted),
	)

	out := source
	return &out, nil
}

func extractFile(member *zip.File, target string) error {
	src, err := member.Open()
	if err != nil {
		return InvalidArchive(toSlash(target))
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, member.Mode().Perm()|0o200)
	if err != nil {
		return IOFailure(toSlash(target), err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return IOFailure(toSlash(target), err)
	}
	if err := dst.Close(); err != nil {
		return IOFailure(toSlash(target), err)
	}
	return nil
}

// ValidateArchive applies the decompress preconditions in their required
// order: recognized suffix, existence, encryption, split volumes,
// structural validity. The reported error is always the first violated
// precondition.
func ValidateArchive(path string) error {
	path = cleanPath(path)
	if !IsArchivePath(path) {
		return UnsupportedArchiveFormat(path)
	}
	data, err := os.ReadFile(fromSlash(path))
	if err != nil {
		if os.IsNotExist(err) {
			return NotFound(path)
		}
		return IOFailure(path, err)
	}
	// Encryption is checked from raw local headers so a damaged encrypted
	// container still reports EncryptedArchive, not InvalidArchive.
	if hasEncryptedMember(data) {
		return EncryptedArchive(path)
	}
	if bytes.HasPrefix(data, spannedMarker) {
		return SplitArchive(path)
	}
	if _, err := zip.NewReader(bytes.NewReader(data), int64(len(data))); err != nil {
		return InvalidArchive(path)
	}
	return nil
}

// hasEncryptedMember reports whether any member carries the general-purpose
// encryption flag (bit 0). The central directory is authoritative when
// readable: compressed payload bytes can mimic a local header signature, so
// the raw scan is only the fallback for containers whose directory is gone.
func hasEncryptedMember(data []byte) bool {
	if dir, ok := centralDirectory(data); ok {
		return dirHasEncryptedEntry(dir)
	}
	return scanLocalHeaders(data)
}

// centralDirectory locates the central directory through the
// end-of-central-directory record.
func centralDirectory(data []byte) ([]byte, bool) {
	pos := bytes.LastIndex(data, eocdSig)
	if pos < 0 || pos+22 > len(data) {
		return nil, false
	}
	size := int(binary.LittleEndian.Uint32(data[pos+12 : pos+16]))
	offset := int(binary.LittleEndian.Uint32(data[pos+16 : pos+20]))
	if offset+size > pos {
		return nil, false
	}
	return data[offset : offset+size], true
}

func dirHasEncryptedEntry(dir []byte) bool {
	for off := 0; off+46 <= len(dir) && bytes.Equal(dir[off:off+4], centralHeaderSig); {
		flags := binary.LittleEndian.Uint16(dir[off+8 : off+10])
		if flags&0x1 != 0 {
			return true
		}
		nameLen := int(binary.LittleEndian.Uint16(dir[off+28 : off+30]))
		extraLen := int(binary.LittleEndian.Uint16(dir[off+30 : off+32]))
		commentLen := int(binary.LittleEndian.Uint16(dir[off+32 : off+34]))
		off += 46 + nameLen + extraLen + commentLen
	}
	return false
}

// scanLocalHeaders checks every local header signature for the encryption
// flag. Damaged containers lose their central directory but usually keep
// the leading local headers, so an encrypted-but-damaged archive still
// reports as encrypted rather than merely invalid.
func scanLocalHeaders(data []byte) bool {
	for i := 0; i+8 <= len(data); {
		j := bytes.Index(data[i:], localHeaderSig)
		if j < 0 {
			return false
		}
		off := i + j
		if off+8 <= len(data) {
			flags := binary.LittleEndian.Uint16(data[off+6 : off+8])
			if flags&0x1 != 0 {
				return true
			}
		}
		i = off + len(localHeaderSig)
	}
	return false
}
