// Package sink stores an exported log where a user can download it.
package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nsyszr/flowpilot/config"
	"github.com/pkg/errors"
)

// Sink receives an exported file and returns where it was put.
type Sink interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

// New returns the sink selected by c.ExportSink ("file" or "s3").
func New(ctx context.Context, c *config.Config) (Sink, error) {
	switch c.ExportSink {
	case "", "file":
		return NewFile(c.ExportDir), nil
	case "s3":
		return NewS3(ctx, S3Config{
			Bucket:   c.S3Bucket,
			Region:   c.S3Region,
			Endpoint: c.S3Endpoint,
			Prefix:   c.S3Prefix,
		})
	}
	return nil, fmt.Errorf("unknown export sink '%s'", c.ExportSink)
}

// File writes exports into a local directory.
type File struct {
	dir string
}

func NewFile(dir string) *File {
	if dir == "" {
		dir = "."
	}
	return &File{dir: dir}
}

// Put writes data to <dir>/<name>. The file is replaced atomically so a
// reader never sees a partial export.
func (f *File) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create export directory")
	}

	tmp, err := os.CreateTemp(f.dir, "."+name+".*")
	if err != nil {
		return "", errors.Wrap(err, "failed to create export file")
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return "", errors.Wrap(err, "failed to create export file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", errors.Wrap(err, "failed to write export file")
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(err, "failed to write export file")
	}

	path := filepath.Join(f.dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", errors.Wrap(err, "failed to move export file")
	}

	return path, nil
}
