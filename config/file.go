// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"
)

// FileReader is an io.Reader that handles opening a file for reading automatically.
type FileReader struct {
	path string

	openOnce sync.Once
	openErr  error
	fs       fs.FS
	file     io.ReadCloser
}

// NewFileReader configures a FileReader.
func NewFileReader(fs fs.FS, path string) *FileReader {
	return &FileReader{
		path: path,
		fs:   fs,
	}
}

// Read implements the Read interface.
func (r *FileReader) Read(b []byte) (int, error) {
	r.openOnce.Do(func() {
		r.file, r.openErr = r.fs.Open(r.path)
	})
	if r.openErr != nil {
		return 0, r.openErr
	}
	return r.file.Read(b)
}

// Close implements the io.Closer interface.
func (r *FileReader) Close() error {
	if r.file == nil {
		return nil
	}

	err := r.file.Close()
	r.file = nil
	return err
}

// UnknownFormatError occurs when a settings file extension
// doesn't map to any supported Source.
type UnknownFormatError struct {
	Path string
}

// Error implements the error interface.
func (e UnknownFormatError) Error() string {
	return fmt.Sprintf("unsupported settings file format: %s", e.Path)
}

// FromFile returns the Source matching the extension of p.
// The contents of r are only read once the Source is applied.
func FromFile(p string, r io.Reader) (Source, error) {
	switch strings.ToLower(path.Ext(p)) {
	case ".properties", ".props":
		return FromProperties(r), nil
	case ".yaml", ".yml":
		return FromYaml(r), nil
	case ".json":
		return FromJson(r), nil
	default:
		return nil, UnknownFormatError{Path: p}
	}
}
