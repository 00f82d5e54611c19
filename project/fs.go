package project

import (
	"bytes"
	"os"

	"github.com/natefinch/atomic"

	"github.com/willibrandon/gocsx/observability"
)

// FS is the filesystem surface the readers and writers use.
type FS interface {
	ReadFile(name string) ([]byte, error)
	// WriteFile replaces name in a single step; a failed write leaves the old content.
	WriteFile(name string, data []byte) error
	// IsDir reports whether name is an existing directory. Stat failures report false.
	IsDir(name string) bool
}

// OSFS is the real filesystem.
type OSFS struct{}

// ReadFile implements FS.
func (OSFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// WriteFile implements FS.
func (OSFS) WriteFile(name string, data []byte) error {
	return atomic.WriteFile(name, bytes.NewReader(data))
}

// IsDir implements FS.
func (OSFS) IsDir(name string) bool {
	info, err := os.Stat(name)
	return err == nil && info.IsDir()
}

type options struct {
	fs     FS
	logger observability.Logger
}

// Option configures readers and writers.
type Option func(*options)

// WithFS replaces the filesystem, mainly for tests.
func WithFS(fs FS) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithLogger sets the logger. Readers are silent by default.
func WithLogger(logger observability.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) options {
	o := options{fs: OSFS{}, logger: observability.NewNullLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
