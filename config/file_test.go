// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fsFunc func(string) (fs.File, error)

func (f fsFunc) Open(path string) (fs.File, error) {
	return f(path)
}

func TestFileReader_Read(t *testing.T) {
	t.Run("will return an error", func(t *testing.T) {
		t.Run("if the fs.FS fails to open the file", func(t *testing.T) {
			openErr := errors.New("failed to open")
			fs := fsFunc(func(s string) (fs.File, error) {
				return nil, openErr
			})

			r := NewFileReader(fs, "multilang.properties")
			_, err := io.ReadAll(r)
			if !assert.ErrorIs(t, err, openErr) {
				return
			}
		})
	})

	t.Run("will read the file contents", func(t *testing.T) {
		fsys := fstest.MapFS{
			"multilang.properties": &fstest.MapFile{Data: []byte("streamName = orders")},
		}

		r := NewFileReader(fsys, "multilang.properties")
		s, err := Read(FromProperties(r))
		if !assert.Nil(t, err) {
			return
		}
		if !assert.Equal(t, "orders", s["streamName"]) {
			return
		}
	})
}

func TestFileReader_Close(t *testing.T) {
	t.Run("will not return an error", func(t *testing.T) {
		t.Run("if Close is called before the underlying file has been opened", func(t *testing.T) {
			fs := fsFunc(func(s string) (fs.File, error) {
				return nil, nil
			})

			r := NewFileReader(fs, "multilang.properties")
			err := r.Close()
			if !assert.Nil(t, err) {
				return
			}
		})
	})
}

func TestFromFile(t *testing.T) {
	testCases := []struct {
		path     string
		expected Source
	}{
		{path: "app.properties", expected: Properties{}},
		{path: "app.PROPERTIES", expected: Properties{}},
		{path: "app.yaml", expected: Yaml{}},
		{path: "app.yml", expected: Yaml{}},
		{path: "app.json", expected: Json{}},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			src, err := FromFile(tc.path, strings.NewReader(""))
			require.NoError(t, err)
			require.IsType(t, tc.expected, src)
		})
	}

	t.Run("will return an error if the extension is unknown", func(t *testing.T) {
		_, err := FromFile("app.toml", strings.NewReader(""))

		var ferr UnknownFormatError
		require.ErrorAs(t, err, &ferr)
		require.Equal(t, "app.toml", ferr.Path)
		require.NotEmpty(t, ferr.Error())
	})
}
