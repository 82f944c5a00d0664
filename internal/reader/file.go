package reader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File is a selected file: an identity plus a way to open its contents.
type File interface {
	Name() string
	Size() int64
	Open() (io.ReadCloser, error)
}

// LocalFile is a File on the local filesystem.
type LocalFile struct {
	Path string
	size int64
}

// Stat builds a LocalFile for path. Directories are rejected.
func Stat(path string) (*LocalFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("not a regular file: %s", path)
	}
	return &LocalFile{Path: path, size: info.Size()}, nil
}

func (f *LocalFile) Name() string { return filepath.Base(f.Path) }
func (f *LocalFile) Size() int64  { return f.size }

func (f *LocalFile) Open() (io.ReadCloser, error) {
	return os.Open(f.Path)
}
