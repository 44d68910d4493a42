package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

var (
	ErrArchiveNotFound = errors.New("archive not found")
	ErrArchiveInvalid  = errors.New("archive is not a zip file")
	ErrMemberNotFound  = errors.New("file not found in archive")
	ErrMemberInvalid   = errors.New("file name escapes the archive")
)

// ArchiveDriver reads book files out of zip archives under one root directory.
type ArchiveDriver struct {
	root string
}

func NewArchiveDriver(root string) *ArchiveDriver {
	return &ArchiveDriver{root: root}
}

// ArchivePath resolves an archive name to a path under the root. Directory parts are ignored.
func (d *ArchiveDriver) ArchivePath(name string) string {
	return filepath.Join(d.root, filepath.Base(name))
}

// ExtractMember copies member of archiveName into destDir and returns the written path.
func (d *ArchiveDriver) ExtractMember(archiveName, member, destDir string) (string, error) {
	path := d.ArchivePath(archiveName)

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrArchiveNotFound, path)
	}

	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrArchiveInvalid, path)
	}
	defer reader.Close()

	if !filepath.IsLocal(filepath.FromSlash(member)) {
		return "", fmt.Errorf("%w: %s in %s", ErrMemberInvalid, member, path)
	}

	var entry *zip.File
	for _, f := range reader.File {
		if f.Name == member {
			entry = f
			break
		}
	}
	if entry == nil || entry.FileInfo().IsDir() {
		return "", fmt.Errorf("%w: %s in %s", ErrMemberNotFound, member, path)
	}

	src, err := entry.Open()
	if err != nil {
		return "", &DriverError{Op: "ExtractMember", Err: err.Error()}
	}
	defer src.Close()

	target := filepath.Join(destDir, filepath.FromSlash(member))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", &DriverError{Op: "ExtractMember", Err: err.Error()}
	}
	dst, err := os.Create(target)
	if err != nil {
		return "", &DriverError{Op: "ExtractMember", Err: err.Error()}
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", &DriverError{Op: "ExtractMember", Err: err.Error()}
	}
	if err := dst.Close(); err != nil {
		return "", &DriverError{Op: "ExtractMember", Err: err.Error()}
	}
	return target, nil
}
